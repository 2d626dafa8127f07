package reduce

import (
	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// ResultColumn names the aggregate column produced by GroupAggregate.
func ResultColumn(fn AggFunc, valueCol string) string { return string(fn) + "_" + valueCol }

// GroupAggregate returns one row per distinct groupCol value, in first-seen
// order, with columns {groupCol, <fn>_<valueCol>}. Nulls are skipped; a group
// with no values has a null mean and a zero sum or count.
func GroupAggregate(t *table.Table, groupCol, valueCol string, fn AggFunc) (*table.Table, error) {
	groupIdx, err := t.Lookup(groupCol)
	if err != nil {
		return nil, err
	}
	valIdx, err := t.NumericColumn(valueCol)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, &table.EmptyTableError{Op: "group"}
	}
	if fn == "" {
		fn = Mean
	}
	groupKind := t.Schema()[groupIdx].Kind

	// Keep the first cell of each group so numeric group keys stay numeric.
	firstCell := map[string]table.Value{}
	for i := 0; i < t.Len(); i++ {
		v := t.Row(i)[groupIdx]
		if _, ok := firstCell[CategoryKey(v)]; !ok {
			firstCell[CategoryKey(v)] = v
		}
	}

	g := collect(t, groupIdx, valIdx)
	rows := make([][]table.Value, len(g.keys))
	for i, key := range g.keys {
		agg := table.Null()
		if v, ok := fn.apply(g.values[key]); ok {
			agg = table.Num(v)
		}
		rows[i] = []table.Value{firstCell[key], agg}
	}
	schema := table.Schema{
		{Name: groupCol, Kind: groupKind},
		{Name: ResultColumn(fn, valueCol), Kind: table.KindNumber},
	}
	return table.New(schema, rows)
}
