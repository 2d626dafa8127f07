package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

func religions(t *testing.T) *table.Table {
	t.Helper()
	tab, err := table.New(table.Schema{
		{Name: "religion", Kind: table.KindString},
		{Name: "adherents", Kind: table.KindNumber},
	}, [][]table.Value{
		{table.Str("Unaffiliated"), table.Num(1193750000)},
		{table.Str("Christians"), table.Num(2382750000)},
		{table.Str("Muslims"), table.Num(1907110000)},
		{table.Str("Jews"), table.Null()},
	})
	require.NoError(t, err)
	return tab
}

func withOrder(tab *table.Table, keys ...string) *table.Table {
	o := &table.CategoryOrder{Column: "religion"}
	for i, k := range keys {
		o.Categories = append(o.Categories, table.CategoryRank{Key: k, Rank: i})
	}
	return tab.WithOrder(o)
}

func TestPrepareUsesAttachedOrder(t *testing.T) {
	tab := withOrder(religions(t), "Christians", "Muslims", "Unaffiliated")
	s, err := prepare(tab, Chart{Category: "religion", Value: "adherents"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Christians", "Muslims", "Unaffiliated"}, s.names)
	assert.Equal(t, []int{2, 0, 1}, s.ranks, "rows keep their positions, x follows the ranking")
	assert.Len(t, s.values, 3, "null values are skipped")
}

func TestPrepareFallsBackToFirstSeen(t *testing.T) {
	s, err := prepare(religions(t), Chart{Category: "religion", Value: "adherents"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Unaffiliated", "Christians", "Muslims"}, s.names)

	// An order over another column is ignored.
	other := religions(t).WithOrder(&table.CategoryOrder{Column: "region"})
	s, err = prepare(other, Chart{Category: "religion", Value: "adherents"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, s.ranks)
}

func TestRenderBarHonorsOrder(t *testing.T) {
	tab := withOrder(religions(t), "Christians", "Muslims", "Unaffiliated")
	var buf bytes.Buffer
	err := Render(&buf, tab, Chart{Kind: Bar, Category: "religion", Value: "adherents", Title: "Followers by faith", Width: 640, Height: 400})
	require.NoError(t, err)

	svg := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(svg), "<?xml") || strings.Contains(svg, "<svg"))
	assert.Contains(t, svg, "Followers by faith")
	c, m, u := strings.Index(svg, "Christians"), strings.Index(svg, "Muslims"), strings.Index(svg, "Unaffiliated")
	require.True(t, c >= 0 && m >= 0 && u >= 0, "all category labels are drawn")
	assert.True(t, c < m && m < u, "labels follow the ranking, not the alphabet")
}

func TestRenderKinds(t *testing.T) {
	for _, k := range []Kind{Line, Points, Area} {
		var buf bytes.Buffer
		err := Render(&buf, religions(t), Chart{Kind: k, Category: "religion", Value: "adherents", Labels: true})
		require.NoError(t, err, k)
		assert.Contains(t, buf.String(), "<svg", k)
	}
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, religions(t), Chart{Category: "religion", Value: "religion"})
	assert.True(t, errors.Is(err, table.ErrSchema))

	err = Render(&buf, religions(t), Chart{Category: "faith", Value: "adherents"})
	assert.True(t, errors.Is(err, table.ErrSchema))

	empty := table.MustNew(religions(t).Schema(), nil)
	err = Render(&buf, empty, Chart{Category: "religion", Value: "adherents"})
	assert.True(t, errors.Is(err, table.ErrEmptyTable))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, Bar, k)
	k, err = ParseKind("Scatter")
	require.NoError(t, err)
	assert.Equal(t, Points, k)
	_, err = ParseKind("pie")
	assert.Error(t, err)
}
