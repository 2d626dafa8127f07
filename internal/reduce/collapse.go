package reduce

import (
	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// CollapseToOther replaces every value of categoryCol that is not in keep
// with otherLabel. Row order and all other columns are preserved. An empty
// keep collapses everything.
//
// If otherLabel equals a kept label the collapsed rows merge into that
// category; callers that care must pick a distinct label.
func CollapseToOther(t *table.Table, categoryCol string, keep []string, otherLabel string) (*table.Table, error) {
	catIdx, err := t.StringColumn(categoryCol)
	if err != nil {
		return nil, err
	}
	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}
	rows := t.Rows()
	for _, r := range rows {
		if _, ok := keepSet[CategoryKey(r[catIdx])]; ok {
			continue
		}
		r[catIdx] = table.Str(otherLabel)
	}
	// The input ordering no longer describes the relabelled categories.
	return table.New(t.Schema(), rows)
}

// CollapseTail keeps the n largest categories of categoryCol by the sum of
// valueCol and collapses the rest into otherLabel.
func CollapseTail(t *table.Table, categoryCol, valueCol string, n int, otherLabel string) (*table.Table, error) {
	keep, err := TopNByAggregate(t, categoryCol, valueCol, n)
	if err != nil {
		return nil, err
	}
	return CollapseToOther(t, categoryCol, keep, otherLabel)
}
