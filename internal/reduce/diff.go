package reduce

import (
	"strings"

	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// ElementwiseDifference adds outCol = colA - colB. A null in either operand
// yields null. A present, non-numeric operand fails with *table.NullValueError.
func ElementwiseDifference(t *table.Table, colA, colB, outCol string) (*table.Table, error) {
	aIdx, err := t.Lookup(colA)
	if err != nil {
		return nil, err
	}
	bIdx, err := t.Lookup(colB)
	if err != nil {
		return nil, err
	}
	if outCol == "" {
		outCol = colA + "_minus_" + colB
	}
	rows := t.Rows()
	vals := make([]table.Value, len(rows))
	for i, r := range rows {
		a, b := r[aIdx], r[bIdx]
		if err := checkOperand(a, colA, i); err != nil {
			return nil, err
		}
		if err := checkOperand(b, colB, i); err != nil {
			return nil, err
		}
		fa, okA := a.Float()
		fb, okB := b.Float()
		if !okA || !okB {
			vals[i] = table.Null()
			continue
		}
		vals[i] = table.Num(fa - fb)
	}
	return withNumericColumn(t, outCol, rows, vals)
}

func checkOperand(v table.Value, col string, row int) error {
	if v.IsNull() || v.Kind() == table.KindNumber {
		return nil
	}
	return &table.NullValueError{Column: col, Row: row, Value: v.String()}
}

// Replace substitutes every occurrence of old with repl in a string column.
func Replace(t *table.Table, col, old, repl string) (*table.Table, error) {
	idx, err := t.StringColumn(col)
	if err != nil {
		return nil, err
	}
	if old == "" {
		return t, nil
	}
	rows := t.Rows()
	for _, r := range rows {
		if r[idx].IsNull() {
			continue
		}
		r[idx] = table.Str(strings.ReplaceAll(r[idx].String(), old, repl))
	}
	out, err := table.New(t.Schema(), rows)
	if err != nil {
		return nil, err
	}
	if t.Order() != nil && t.Order().Column != col {
		out = out.WithOrder(t.Order())
	}
	return out, nil
}
