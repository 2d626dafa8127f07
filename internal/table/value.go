package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the declared type of a column.
type Kind int

const (
	KindString Kind = iota
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText lets schemas render as "string"/"number" in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind accepts "string"|"text"|"category" and "number"|"numeric"|"float".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text", "category", "categorical":
		return KindString, nil
	case "number", "numeric", "float":
		return KindNumber, nil
	default:
		return KindString, fmt.Errorf("unknown column kind: %q (use string|number)", s)
	}
}

// Value is a single cell: a string, a number, or null. The zero Value is null.
type Value struct {
	kind  Kind
	str   string
	num   float64
	valid bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindString, str: s, valid: true} }

// Num returns a numeric value. NaN is stored as null.
func Num(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f, valid: true}
}

func (v Value) IsNull() bool { return !v.valid }

// Kind reports the value's type. It is meaningless for null values.
func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric payload; ok is false for nulls and strings.
func (v Value) Float() (f float64, ok bool) {
	if !v.valid || v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String formats the value for display and CSV output. Null is "".
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// Interface returns nil, a string, or a float64.
func (v Value) Interface() any {
	if !v.valid {
		return nil
	}
	if v.kind == KindNumber {
		return v.num
	}
	return v.str
}

func (v Value) Equal(o Value) bool {
	if v.valid != o.valid {
		return false
	}
	if !v.valid {
		return true
	}
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindNumber {
		return v.num == o.num
	}
	return v.str == o.str
}

func (v Value) GoString() string {
	switch {
	case !v.valid:
		return "null"
	case v.kind == KindNumber:
		return v.String()
	default:
		return strconv.Quote(v.str)
	}
}

// Compare orders two non-null values of one column. Numbers compare
// numerically, everything else lexically; callers decide where nulls go.
func Compare(a, b Value) int {
	if a.kind == KindNumber && b.kind == KindNumber {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.String(), b.String())
}
