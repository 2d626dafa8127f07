// Package reduce prepares tables for charting: ordering categories by an
// aggregate, collapsing long tails into an "other" bucket, running totals,
// grouped aggregates and derived columns.
//
// Every function is pure. Inputs are never modified and a failed call
// returns no partial table.
package reduce

import (
	"fmt"
	"strings"

	"github.com/aclements/go-moremath/stats"

	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// AggFunc names a reduction over the non-null values of a group.
type AggFunc string

const (
	Sum   AggFunc = "sum"
	Mean  AggFunc = "mean"
	Count AggFunc = "count"
)

// ParseAggFunc accepts sum|mean|avg|average|count. Empty means Sum.
func ParseAggFunc(s string) (AggFunc, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sum", "total":
		return Sum, nil
	case "mean", "avg", "average":
		return Mean, nil
	case "count", "n":
		return Count, nil
	default:
		return "", fmt.Errorf("unknown aggregate: %s (use sum|mean|count)", s)
	}
}

// apply reduces xs. ok is false when fn is undefined for xs (mean of nothing).
func (fn AggFunc) apply(xs []float64) (v float64, ok bool) {
	switch fn {
	case Count:
		return float64(len(xs)), true
	case Mean:
		if len(xs) == 0 {
			return 0, false
		}
		return stats.Mean(xs), true
	default:
		return stats.Sample{Xs: xs}.Sum(), true
	}
}

// CategoryKey returns the grouping key for a cell. Null cells share the
// empty key.
func CategoryKey(v table.Value) string { return v.String() }

// groups collects the non-null values of one numeric column per category,
// remembering first-seen category order.
type groups struct {
	keys   []string
	values map[string][]float64
}

func collect(t *table.Table, catIdx, valIdx int) *groups {
	g := &groups{values: make(map[string][]float64)}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		key := CategoryKey(row[catIdx])
		xs, seen := g.values[key]
		if !seen {
			g.keys = append(g.keys, key)
		}
		if f, ok := row[valIdx].Float(); ok {
			xs = append(xs, f)
		}
		g.values[key] = xs
	}
	return g
}

// withNumericColumn appends (or overwrites) a numeric column, keeping any
// category ordering that still applies.
func withNumericColumn(t *table.Table, name string, rows [][]table.Value, vals []table.Value) (*table.Table, error) {
	schema := t.Schema()
	idx := schema.Index(name)
	if idx >= 0 && schema[idx].Kind != table.KindNumber {
		return nil, &table.SchemaError{Column: name, Reason: "output column exists and is not numeric"}
	}
	for i := range rows {
		if idx >= 0 {
			rows[i][idx] = vals[i]
		} else {
			rows[i] = append(rows[i], vals[i])
		}
	}
	if idx < 0 {
		schema = append(schema, table.Column{Name: name, Kind: table.KindNumber})
	}
	out, err := table.New(schema, rows)
	if err != nil {
		return nil, err
	}
	if o := t.Order(); o != nil && o.Column != name {
		out = out.WithOrder(o)
	}
	return out, nil
}
