// Package render draws prepared tables as SVG charts with go-gg.
//
// The x axis is categorical. Categories are placed by the table's attached
// CategoryOrder when it ranks the charted column, otherwise by first
// appearance in the rows. They are never re-sorted by label.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/gg"
	ggtable "github.com/aclements/go-gg/table"

	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// Kind selects the mark used for each category.
type Kind string

const (
	Bar    Kind = "bar"
	Line   Kind = "line"
	Points Kind = "points"
	Area   Kind = "area"
)

// ParseKind accepts bar|line|points|area. Empty means Bar.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return Bar, nil
	case Bar, Line, Points, Area:
		return k, nil
	case "point", "scatter":
		return Points, nil
	default:
		return "", fmt.Errorf("unknown chart kind: %s (use bar|line|points|area)", s)
	}
}

// Chart describes one chart.
type Chart struct {
	Kind     Kind   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Category string `yaml:"category" json:"category"`
	Value    string `yaml:"value" json:"value"`
	Title    string `yaml:"title,omitempty" json:"title,omitempty"`
	XLabel   string `yaml:"x_label,omitempty" json:"x_label,omitempty"`
	YLabel   string `yaml:"y_label,omitempty" json:"y_label,omitempty"`
	Width    int    `yaml:"width,omitempty" json:"width,omitempty"`
	Height   int    `yaml:"height,omitempty" json:"height,omitempty"`
	// Labels tags every mark with its value.
	Labels bool `yaml:"labels,omitempty" json:"labels,omitempty"`
}

const (
	defaultWidth  = 800
	defaultHeight = 500

	rankCol  = "rank"
	labelCol = "category"
	tagCol   = "value label"
)

// series is the charted data in x order.
type series struct {
	ranks  []int
	labels []string
	values []float64
	// names maps rank to category label for axis ticks.
	names []string
}

// Render writes c as SVG to w. Rows whose value is null are skipped.
func Render(w io.Writer, t *table.Table, c Chart) error {
	s, err := prepare(t, c)
	if err != nil {
		return err
	}
	kind := c.Kind
	if kind == "" {
		kind = Bar
	}
	width, height := c.Width, c.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	data := new(ggtable.Builder).
		Add(rankCol, s.ranks).
		Add(labelCol, s.labels).
		Add(c.Value, s.values).
		Done()
	plot := gg.NewPlot(data)

	x := gg.NewOrdinalScale()
	x.SetFormatter(func(rank int) string {
		if rank >= 0 && rank < len(s.names) {
			return s.names[rank]
		}
		return strconv.Itoa(rank)
	})
	plot.SetScale("x", x)

	switch kind {
	case Bar:
		plot.SetScale("y", gg.NewLinearScaler().Include(0))
		plot.Save().SetData(stems(s, c.Value)).GroupBy(labelCol)
		plot.Add(gg.LayerPaths{X: rankCol, Y: c.Value})
		plot.Restore()
		plot.Add(gg.LayerPoints{X: rankCol, Y: c.Value})
	case Area:
		plot.SetScale("y", gg.NewLinearScaler().Include(0))
		plot.Add(gg.LayerArea{X: rankCol, Upper: c.Value})
		plot.Add(gg.LayerLines{X: rankCol, Y: c.Value})
	case Line:
		plot.Add(gg.LayerLines{X: rankCol, Y: c.Value})
		plot.Add(gg.LayerPoints{X: rankCol, Y: c.Value})
	case Points:
		plot.Add(gg.LayerPoints{X: rankCol, Y: c.Value})
	default:
		return fmt.Errorf("unknown chart kind: %s", kind)
	}

	if c.Labels {
		plot.Save().SetData(tags(s, c.Value))
		plot.Add(gg.LayerTags{X: rankCol, Y: c.Value, Label: tagCol})
		plot.Restore()
	}
	if c.Title != "" {
		plot.Add(gg.Title(c.Title))
	}
	xl, yl := c.XLabel, c.YLabel
	if xl == "" {
		xl = c.Category
	}
	if yl == "" {
		yl = c.Value
	}
	plot.Add(gg.AxisLabel("x", xl), gg.AxisLabel("y", yl))

	if err := plot.WriteSVG(w, width, height); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// prepare resolves x positions for every non-null row.
func prepare(t *table.Table, c Chart) (*series, error) {
	catIdx, err := t.Lookup(c.Category)
	if err != nil {
		return nil, err
	}
	valIdx, err := t.NumericColumn(c.Value)
	if err != nil {
		return nil, err
	}
	if c.Value == rankCol || c.Value == labelCol || c.Value == tagCol {
		return nil, &table.SchemaError{Column: c.Value, Reason: "name is reserved by the renderer"}
	}

	pos := map[string]int{}
	s := &series{}
	if o := t.Order(); o != nil && o.Column == c.Category {
		for _, cat := range o.Categories {
			pos[cat.Key] = len(s.names)
			s.names = append(s.names, cat.Key)
		}
	}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		f, ok := row[valIdx].Float()
		if !ok {
			continue
		}
		key := row[catIdx].String()
		rank, seen := pos[key]
		if !seen {
			rank = len(s.names)
			pos[key] = rank
			s.names = append(s.names, key)
		}
		s.ranks = append(s.ranks, rank)
		s.labels = append(s.labels, key)
		s.values = append(s.values, f)
	}
	if len(s.values) == 0 {
		return nil, &table.EmptyTableError{Op: "render"}
	}
	return s, nil
}

// stems builds two rows per mark, from zero to the value, so grouped paths
// draw one vertical bar per category.
func stems(s *series, valueCol string) *ggtable.Table {
	n := len(s.values)
	ranks := make([]int, 0, 2*n)
	labels := make([]string, 0, 2*n)
	values := make([]float64, 0, 2*n)
	for i := range s.values {
		// Distinct group per row so repeated categories draw separately.
		group := s.labels[i] + "\x00" + strconv.Itoa(i)
		ranks = append(ranks, s.ranks[i], s.ranks[i])
		labels = append(labels, group, group)
		values = append(values, 0, s.values[i])
	}
	return new(ggtable.Builder).
		Add(rankCol, ranks).
		Add(labelCol, labels).
		Add(valueCol, values).
		Done()
}

func tags(s *series, valueCol string) *ggtable.Table {
	text := make([]string, len(s.values))
	for i, v := range s.values {
		text[i] = strconv.FormatFloat(v, 'g', 4, 64)
	}
	return new(ggtable.Builder).
		Add(rankCol, s.ranks).
		Add(valueCol, s.values).
		Add(tagCol, text).
		Done()
}
