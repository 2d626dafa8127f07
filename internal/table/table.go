package table

import (
	"fmt"
	"strings"
)

// Column describes one named, typed column.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// Schema is the ordered column list shared by every row of a Table.
type Schema []Column

// Index returns the position of name, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Name
	}
	return out
}

// Direction selects ascending or descending order.
type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// ParseDirection accepts asc|ascending|desc|descending. Empty means Descending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	default:
		return Descending, fmt.Errorf("invalid direction: %s (use asc|desc)", s)
	}
}

// CategoryRank is one entry of an explicit category ordering.
type CategoryRank struct {
	Key       string  `json:"key" yaml:"key"`
	Aggregate float64 `json:"aggregate" yaml:"aggregate"`
	Rank      int     `json:"rank" yaml:"rank"`
}

// CategoryOrder is the axis ordering attached to a table by a reorder step.
// Renderers use it instead of sorting categories alphabetically.
type CategoryOrder struct {
	Column     string         `json:"column" yaml:"column"`
	Direction  Direction      `json:"-" yaml:"-"`
	Categories []CategoryRank `json:"categories" yaml:"categories"`
}

// Keys returns the category keys in rank order.
func (o *CategoryOrder) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.Categories))
	for i, c := range o.Categories {
		out[i] = c.Key
	}
	return out
}

// Aggregates returns the aggregates in rank order.
func (o *CategoryOrder) Aggregates() []float64 {
	if o == nil {
		return nil
	}
	out := make([]float64, len(o.Categories))
	for i, c := range o.Categories {
		out[i] = c.Aggregate
	}
	return out
}

// Rank returns the 0-based rank of key.
func (o *CategoryOrder) Rank(key string) (int, bool) {
	if o == nil {
		return 0, false
	}
	for _, c := range o.Categories {
		if c.Key == key {
			return c.Rank, true
		}
	}
	return 0, false
}

// Table is an immutable, ordered set of rows sharing one schema. Operations
// that transform a table return a new one.
type Table struct {
	schema Schema
	rows   [][]Value
	order  *CategoryOrder
}

// New validates schema and rows and returns a table that owns copies of both.
func New(schema Schema, rows [][]Value) (*Table, error) {
	seen := make(map[string]struct{}, len(schema))
	for _, c := range schema {
		if c.Name == "" {
			return nil, &SchemaError{Column: c.Name, Reason: "empty column name"}
		}
		if _, dup := seen[c.Name]; dup {
			return nil, &SchemaError{Column: c.Name, Reason: "duplicate column name"}
		}
		seen[c.Name] = struct{}{}
	}
	out := make([][]Value, len(rows))
	for i, r := range rows {
		if len(r) != len(schema) {
			return nil, &SchemaError{Reason: fmt.Sprintf("row %d has %d values, schema has %d columns", i, len(r), len(schema))}
		}
		for j, v := range r {
			if !v.IsNull() && v.Kind() != schema[j].Kind {
				return nil, &SchemaError{Column: schema[j].Name, Want: schema[j].Kind, Got: v.Kind()}
			}
		}
		out[i] = append([]Value(nil), r...)
	}
	return &Table{schema: append(Schema(nil), schema...), rows: out}, nil
}

// MustNew is like New but panics on error. Intended for fixtures.
func MustNew(schema Schema, rows [][]Value) *Table {
	t, err := New(schema, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Schema returns a copy of the column list.
func (t *Table) Schema() Schema { return append(Schema(nil), t.schema...) }

// Columns returns the column names.
func (t *Table) Columns() []string { return t.schema.Names() }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value { return append([]Value(nil), t.rows[i]...) }

// Rows returns a deep copy of all rows.
func (t *Table) Rows() [][]Value {
	out := make([][]Value, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Order returns the attached category ordering, if any.
func (t *Table) Order() *CategoryOrder { return t.order }

// WithOrder returns a table sharing t's rows with o attached.
func (t *Table) WithOrder(o *CategoryOrder) *Table {
	return &Table{schema: t.schema, rows: t.rows, order: o}
}

// Lookup returns the index of a column, or a SchemaError if it is absent.
func (t *Table) Lookup(name string) (int, error) {
	idx := t.schema.Index(name)
	if idx < 0 {
		return -1, &SchemaError{Column: name, Missing: true}
	}
	return idx, nil
}

// NumericColumn returns the index of a column that must be numeric.
func (t *Table) NumericColumn(name string) (int, error) {
	idx, err := t.Lookup(name)
	if err != nil {
		return -1, err
	}
	if k := t.schema[idx].Kind; k != KindNumber {
		return -1, &SchemaError{Column: name, Want: KindNumber, Got: k}
	}
	return idx, nil
}

// StringColumn returns the index of a column that must hold strings.
func (t *Table) StringColumn(name string) (int, error) {
	idx, err := t.Lookup(name)
	if err != nil {
		return -1, err
	}
	if k := t.schema[idx].Kind; k != KindString {
		return -1, &SchemaError{Column: name, Want: KindString, Got: k}
	}
	return idx, nil
}

// Value returns the cell at row i in column name.
func (t *Table) Value(i int, name string) (Value, error) {
	idx, err := t.Lookup(name)
	if err != nil {
		return Value{}, err
	}
	if i < 0 || i >= len(t.rows) {
		return Value{}, fmt.Errorf("row %d out of range [0,%d)", i, len(t.rows))
	}
	return t.rows[i][idx], nil
}

// Records returns each row as a column-name keyed map with nil for nulls.
// Structured printers and jq filters consume this shape.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.rows))
	for i, r := range t.rows {
		m := make(map[string]any, len(r))
		for j, v := range r {
			m[t.schema[j].Name] = v.Interface()
		}
		out[i] = m
	}
	return out
}

// Strings returns the header and every row formatted as strings.
func (t *Table) Strings() (header []string, rows [][]string) {
	header = t.schema.Names()
	rows = make([][]string, len(t.rows))
	for i, r := range t.rows {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = v.String()
		}
		rows[i] = row
	}
	return header, rows
}
