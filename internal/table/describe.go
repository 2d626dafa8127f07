package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aclements/go-moremath/stats"
)

// DescribeOptions controls the column summary report.
type DescribeOptions struct {
	// SampleRows is how many leading rows to include; 0 disables samples.
	SampleRows int
	// TopValues caps the categories listed per string column.
	TopValues int
}

// DefaultDescribeOptions returns reasonable defaults.
func DefaultDescribeOptions() DescribeOptions {
	return DescribeOptions{SampleRows: 5, TopValues: 8}
}

// Report is a markdown-friendly summary of a table.
type Report struct {
	Name    string          `json:"name,omitempty" yaml:"name,omitempty"`
	Rows    int             `json:"rows" yaml:"rows"`
	Cols    []ColumnSummary `json:"columns" yaml:"columns"`
	Order   *CategoryOrder  `json:"order,omitempty" yaml:"order,omitempty"`
	Samples [][]string      `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// ColumnSummary captures statistics per column.
type ColumnSummary struct {
	Name    string `json:"name" yaml:"name"`
	Kind    Kind   `json:"kind" yaml:"kind"`
	NonNull int    `json:"non_null" yaml:"non_null"`
	Missing int    `json:"missing" yaml:"missing"`
	// Numeric stats
	Sum  float64 `json:"sum,omitempty" yaml:"sum,omitempty"`
	Min  float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std  float64 `json:"std,omitempty" yaml:"std,omitempty"`
	// Categorical stats
	Unique    int             `json:"unique,omitempty" yaml:"unique,omitempty"`
	TopValues []CategoryCount `json:"top_values,omitempty" yaml:"top_values,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Describe summarizes every column of t.
func Describe(t *Table, name string, opt DescribeOptions) *Report {
	rep := &Report{Name: name, Rows: t.Len(), Order: t.Order()}
	for j, col := range t.schema {
		s := ColumnSummary{Name: col.Name, Kind: col.Kind}
		var xs []float64
		counts := map[string]int{}
		for _, row := range t.rows {
			v := row[j]
			if v.IsNull() {
				s.Missing++
				continue
			}
			s.NonNull++
			if f, ok := v.Float(); ok {
				xs = append(xs, f)
				continue
			}
			counts[v.String()]++
		}
		if col.Kind == KindNumber && len(xs) > 0 {
			sample := stats.Sample{Xs: xs}
			s.Sum = sample.Sum()
			s.Min, s.Max = sample.Bounds()
			s.Mean = sample.Mean()
			if len(xs) > 1 {
				s.Std = sample.StdDev()
			}
		}
		if col.Kind == KindString {
			s.Unique = len(counts)
			s.TopValues = topCounts(counts, opt.TopValues)
		}
		rep.Cols = append(rep.Cols, s)
	}
	_, rows := t.Strings()
	if opt.SampleRows > 0 {
		if len(rows) > opt.SampleRows {
			rows = rows[:opt.SampleRows]
		}
		rep.Samples = rows
	}
	return rep
}

func topCounts(counts map[string]int, limit int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if limit > 0 && len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

// Markdown renders a compact report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		fmt.Fprintf(&b, "Source: %s\n", r.Name)
	}
	fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	fmt.Fprintf(&b, "Columns: %d\n\n", len(r.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", safeVal(c.Name), c.Kind, c.NonNull, missPct)
		switch {
		case c.Kind == KindNumber && c.NonNull > 0:
			fmt.Fprintf(&b, " | sum %.6g, min %.4g, max %.4g, mean %.4g, std %.4g", c.Sum, c.Min, c.Max, c.Mean, c.Std)
		case c.Kind == KindString && len(c.TopValues) > 0:
			b.WriteString(" | top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
			}
			if c.Unique > len(c.TopValues) {
				fmt.Fprintf(&b, "; unique=%d", c.Unique)
			}
		}
		b.WriteString("\n")
	}

	if r.Order != nil && len(r.Order.Categories) > 0 {
		fmt.Fprintf(&b, "\n[CATEGORY ORDER]\n%s (%s)\n", r.Order.Column, r.Order.Direction)
		for _, c := range r.Order.Categories {
			fmt.Fprintf(&b, "%d. %s: %.6g\n", c.Rank+1, safeVal(c.Key), c.Aggregate)
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(c.Name))
		}
		b.WriteString(" |\n|")
		for range r.Cols {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				if r := []rune(val); len(r) > 80 {
					val = string(r[:77]) + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
