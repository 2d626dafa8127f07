package recipe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chartprep-cli/internal/loader"
	"github.com/KaramelBytes/chartprep-cli/internal/reduce"
	"github.com/KaramelBytes/chartprep-cli/internal/render"
	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

const religions = `religion,adherents
Christianity,2380
Islam,1910
Hinduism,1160
Buddhism,507
Folk,430
Judaism,15
`

func writeCSV(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func column(t *testing.T, tb *table.Table, name string) []string {
	t.Helper()
	idx, err := tb.Lookup(name)
	require.NoError(t, err)
	_, rows := tb.Strings()
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[idx]
	}
	return out
}

func TestParseStep(t *testing.T) {
	s, err := ParseStep(`top religion adherents -n 3 --other "Other religions"`)
	require.NoError(t, err)
	assert.Equal(t, "top", s.Op)
	assert.Equal(t, []string{"religion", "adherents"}, s.Args)
	assert.Equal(t, 3, s.N)
	assert.Equal(t, "Other religions", s.Other)

	s, err = ParseStep("reorder religion adherents --asc --agg mean --sort")
	require.NoError(t, err)
	assert.True(t, s.Asc)
	assert.True(t, s.Sort)
	assert.Equal(t, reduce.Mean, s.Agg)

	s, err = ParseStep("group region pct")
	require.NoError(t, err)
	assert.Equal(t, reduce.Mean, s.Agg)

	s, err = ParseStep(`collapse religion Islam 'Folk religion'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"religion", "Islam", "Folk religion"}, s.Args)
}

func TestParseStepErrors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"", "empty step"},
		{"pivot a b", `unknown operation "pivot"`},
		{"top religion", "got 1 arguments"},
		{"top religion adherents -n -1", "-n must be >= 0"},
		{"reorder a b --agg median", "unknown aggregate"},
		{"diff a b --bogus", "unknown flag"},
		{`replace col "unterminated`, "split step"},
		{"sort extra", "got 1 arguments"},
	}
	for _, tt := range tests {
		_, err := ParseStep(tt.line)
		require.Error(t, err, tt.line)
		assert.Contains(t, err.Error(), tt.want, tt.line)
	}
}

func TestReadSpecOptions(t *testing.T) {
	r, err := ReadSpec{
		Format:    "csv",
		Delimiter: `\t`,
		Decimal:   ",",
		Thousands: ".",
		Kinds:     map[string]string{"year": "string"},
		MaxRows:   10,
	}.Options()
	require.NoError(t, err)
	assert.Equal(t, '\t', r.Delimiter)
	assert.Equal(t, ',', r.DecimalSeparator)
	assert.Equal(t, '.', r.ThousandsSeparator)
	assert.Equal(t, table.KindString, r.Kinds["year"])
	assert.Equal(t, 10, r.MaxRows)

	_, err = ReadSpec{Delimiter: ";;"}.Options()
	assert.Error(t, err)
	_, err = ReadSpec{Kinds: map[string]string{"x": "date"}}.Options()
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r := New("religions", "data/religions.csv")
	r.Description = "World religions by adherents"
	r.Steps = []string{`top religion adherents -n 3 --other "Other religions"`, "reorder religion adherents --sort"}
	r.Chart = &render.Chart{Kind: render.Bar, Category: "religion", Value: "adherents"}

	path := filepath.Join(t.TempDir(), "recipes", "religions.yaml")
	require.NoError(t, r.Save(path))
	assert.Equal(t, path, r.Path())

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(r.Steps, got.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Description, got.Description)
	require.NotNil(t, got.Chart)
	assert.Equal(t, "religion", got.Chart.Category)
	assert.True(t, got.CreatedAt.Equal(r.CreatedAt))
}

func TestLoadInvalid(t *testing.T) {
	path := writeCSV(t, "bad.yaml", "name: \"\"\nsource: x.csv\nsteps:\n  - pivot a\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.Index)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunnerRun(t *testing.T) {
	src := writeCSV(t, "religions.csv", religions)
	r := New("religions", src)
	r.Steps = []string{
		`top religion adherents -n 3 --other "Other religions"`,
		"reorder religion adherents --asc --sort",
	}
	rn := &Runner{Loader: loader.New(loader.DefaultOptions())}
	out, err := rn.Run(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, []string{"Other religions", "Other religions", "Other religions", "Hinduism", "Islam", "Christianity"}, column(t, out, "religion"))
	require.NotNil(t, out.Order())
	assert.Equal(t, []string{"Other religions", "Hinduism", "Islam", "Christianity"}, out.Order().Keys())
}

func TestRunnerUsesDefaultOtherLabel(t *testing.T) {
	src := writeCSV(t, "religions.csv", religions)
	r := New("religions", src)
	r.Steps = []string{"top religion adherents -n 1", "group religion adherents --agg sum"}
	rn := &Runner{OtherLabel: "Rest"}
	out, err := rn.Run(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []string{"Christianity", "Rest"}, column(t, out, "religion"))
	assert.Equal(t, []string{"2380", "4022"}, column(t, out, reduce.ResultColumn(reduce.Sum, "adherents")))
}

func TestRunnerStepError(t *testing.T) {
	src := writeCSV(t, "religions.csv", religions)
	r := New("religions", src)
	r.Steps = []string{"reorder religion adherents", "cumsum religion population"}
	_, err := (&Runner{}).Run(context.Background(), r)
	require.Error(t, err)
	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)
	assert.True(t, errors.Is(err, table.ErrSchema))
	assert.True(t, strings.HasPrefix(err.Error(), "step 2 (cumsum religion population): "))
}

func TestRunnerChart(t *testing.T) {
	src := writeCSV(t, "religions.csv", religions)
	r := New("World religions", src)
	r.Steps = []string{"reorder religion adherents"}
	rn := &Runner{Width: 640, Height: 400}
	out, err := rn.Run(context.Background(), r)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rn.Chart(&buf, out, r))
	assert.Zero(t, buf.Len())

	r.Chart = &render.Chart{Category: "religion", Value: "adherents"}
	require.NoError(t, rn.Chart(&buf, out, r))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "World religions")
}
