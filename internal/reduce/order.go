package reduce

import (
	"sort"

	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// ReorderByAggregate ranks the categories of categoryCol by the sum of
// valueCol and attaches the ranking to the returned table. Rows and values
// are unchanged. Ties keep first-seen category order.
func ReorderByAggregate(t *table.Table, categoryCol, valueCol string, dir table.Direction) (*table.Table, error) {
	return ReorderByAggregateFunc(t, categoryCol, valueCol, dir, Sum)
}

// ReorderByAggregateFunc is ReorderByAggregate with a chosen aggregate.
// Categories with no non-null values rank with an aggregate of 0.
func ReorderByAggregateFunc(t *table.Table, categoryCol, valueCol string, dir table.Direction, fn AggFunc) (*table.Table, error) {
	order, err := rank(t, categoryCol, valueCol, dir, fn, "reorder")
	if err != nil {
		return nil, err
	}
	return t.WithOrder(order), nil
}

func rank(t *table.Table, categoryCol, valueCol string, dir table.Direction, fn AggFunc, op string) (*table.CategoryOrder, error) {
	catIdx, err := t.Lookup(categoryCol)
	if err != nil {
		return nil, err
	}
	valIdx, err := t.NumericColumn(valueCol)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, &table.EmptyTableError{Op: op}
	}
	g := collect(t, catIdx, valIdx)
	cats := make([]table.CategoryRank, len(g.keys))
	for i, key := range g.keys {
		agg, _ := fn.apply(g.values[key])
		cats[i] = table.CategoryRank{Key: key, Aggregate: agg}
	}
	sort.SliceStable(cats, func(i, j int) bool {
		if dir == table.Ascending {
			return cats[i].Aggregate < cats[j].Aggregate
		}
		return cats[i].Aggregate > cats[j].Aggregate
	})
	for i := range cats {
		cats[i].Rank = i
	}
	return &table.CategoryOrder{Column: categoryCol, Direction: dir, Categories: cats}, nil
}

// SortByOrder returns t's rows stably sorted by the rank of their category
// in the attached ordering. Categories missing from the ordering go last.
func SortByOrder(t *table.Table) (*table.Table, error) {
	order := t.Order()
	if order == nil {
		return t, nil
	}
	catIdx, err := t.Lookup(order.Column)
	if err != nil {
		return nil, err
	}
	rows := t.Rows()
	pos := func(r []table.Value) int {
		if rk, ok := order.Rank(CategoryKey(r[catIdx])); ok {
			return rk
		}
		return len(order.Categories)
	}
	sort.SliceStable(rows, func(i, j int) bool { return pos(rows[i]) < pos(rows[j]) })
	out, err := table.New(t.Schema(), rows)
	if err != nil {
		return nil, err
	}
	return out.WithOrder(order), nil
}

// TopNByAggregate returns the n categories with the largest sum of valueCol,
// largest first, ties by first-seen order. n larger than the number of
// categories returns all of them.
func TopNByAggregate(t *table.Table, categoryCol, valueCol string, n int) ([]string, error) {
	order, err := rank(t, categoryCol, valueCol, table.Descending, Sum, "top")
	if err != nil {
		return nil, err
	}
	keys := order.Keys()
	if n < 0 {
		n = 0
	}
	if n < len(keys) {
		keys = keys[:n]
	}
	return keys, nil
}
