package table

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema matches any *SchemaError via errors.Is.
	ErrSchema = errors.New("schema error")
	// ErrNullValue matches any *NullValueError via errors.Is.
	ErrNullValue = errors.New("non-numeric operand")
	// ErrEmptyTable matches any *EmptyTableError via errors.Is.
	ErrEmptyTable = errors.New("empty table")
)

// SchemaError indicates a referenced column is absent or has the wrong kind.
type SchemaError struct {
	Column string
	Want   Kind
	Got    Kind
	// Missing is true when the column does not exist at all.
	Missing bool
	Reason  string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Missing:
		return fmt.Sprintf("schema error: column %q not found", e.Column)
	case e.Column == "":
		return "schema error: " + e.Reason
	case e.Reason != "":
		return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
	default:
		return fmt.Sprintf("schema error: column %q is %s, want %s", e.Column, e.Got, e.Want)
	}
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// NullValueError is raised by element-wise arithmetic when an operand cell is
// present but not numeric. Null cells are not errors.
type NullValueError struct {
	Column string
	Row    int
	Value  string
}

func (e *NullValueError) Error() string {
	return fmt.Sprintf("non-numeric operand in column %q at row %d: %q", e.Column, e.Row, e.Value)
}

func (e *NullValueError) Is(target error) bool { return target == ErrNullValue }

// EmptyTableError indicates an aggregate operation was given zero rows.
type EmptyTableError struct {
	Op string
}

func (e *EmptyTableError) Error() string {
	if e.Op == "" {
		return "empty table"
	}
	return fmt.Sprintf("%s: empty table", e.Op)
}

func (e *EmptyTableError) Is(target error) bool { return target == ErrEmptyTable }
