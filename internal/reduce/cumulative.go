package reduce

import (
	"sort"

	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// CumulativeSum stably sorts t by sortCol and adds outCol holding the running
// total of valueCol in that order. Rows whose valueCol is null are dropped
// rather than zero-filled. Rows with a null sortCol sort last. If outCol is
// empty it defaults to "cumulative_<valueCol>".
func CumulativeSum(t *table.Table, sortCol, valueCol string, dir table.Direction, outCol string) (*table.Table, error) {
	rows, valIdx, err := sortedNonNull(t, sortCol, valueCol, dir)
	if err != nil {
		return nil, err
	}
	if outCol == "" {
		outCol = "cumulative_" + valueCol
	}
	vals := make([]table.Value, len(rows))
	total := 0.0
	for i, r := range rows {
		f, _ := r[valIdx].Float()
		total += f
		vals[i] = table.Num(total)
	}
	return withNumericColumn(t, outCol, rows, vals)
}

// CumulativeShare is CumulativeSum divided by the grand total, so the last
// row is 1. A zero grand total yields nulls. If outCol is empty it defaults
// to "cumulative_share_<valueCol>".
func CumulativeShare(t *table.Table, sortCol, valueCol string, dir table.Direction, outCol string) (*table.Table, error) {
	rows, valIdx, err := sortedNonNull(t, sortCol, valueCol, dir)
	if err != nil {
		return nil, err
	}
	if outCol == "" {
		outCol = "cumulative_share_" + valueCol
	}
	grand := 0.0
	for _, r := range rows {
		f, _ := r[valIdx].Float()
		grand += f
	}
	vals := make([]table.Value, len(rows))
	running := 0.0
	for i, r := range rows {
		f, _ := r[valIdx].Float()
		running += f
		if grand == 0 {
			vals[i] = table.Null()
			continue
		}
		vals[i] = table.Num(running / grand)
	}
	return withNumericColumn(t, outCol, rows, vals)
}

func sortedNonNull(t *table.Table, sortCol, valueCol string, dir table.Direction) ([][]table.Value, int, error) {
	sortIdx, err := t.Lookup(sortCol)
	if err != nil {
		return nil, 0, err
	}
	valIdx, err := t.NumericColumn(valueCol)
	if err != nil {
		return nil, 0, err
	}
	if t.Len() == 0 {
		return nil, 0, &table.EmptyTableError{Op: "cumsum"}
	}
	rows := make([][]table.Value, 0, t.Len())
	for _, r := range t.Rows() {
		if r[valIdx].IsNull() {
			continue
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][sortIdx], rows[j][sortIdx]
		if a.IsNull() || b.IsNull() {
			return !a.IsNull() && b.IsNull()
		}
		c := table.Compare(a, b)
		if dir == table.Ascending {
			return c < 0
		}
		return c > 0
	})
	return rows, valIdx, nil
}
