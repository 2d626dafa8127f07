package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// PrintTable writes t in the printer's format. Structured formats emit one
// object per row with keys in column order and null for missing cells.
func (p *Printer) PrintTable(ctx context.Context, t *table.Table) error {
	format := p.format
	query := QueryFromContext(ctx)
	if query != "" && !IsStructured(format) {
		format = FormatJSON
	}
	header, rows := t.Strings()
	switch format {
	case FormatTable:
		return p.printAligned(header, rows, t)
	case FormatText:
		return p.printBlocks(header, rows, t)
	case FormatCSV:
		return table.WriteCSV(p.w, t)
	case FormatMarkdown:
		return p.printMarkdown(header, rows)
	case FormatJSON, FormatNDJSON, FormatYAML:
		if query != "" {
			recs := t.Records()
			items := make([]any, len(recs))
			for i, r := range recs {
				items[i] = r
			}
			return p.printStructured(ctx, format, items)
		}
		items := make([]any, t.Len())
		for i := range items {
			items[i] = orderedRow{cols: header, vals: t.Row(i)}
		}
		return p.encode(format, items, true)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

func (p *Printer) printAligned(header []string, rows [][]string, t *table.Table) error {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for i, row := range rows {
		fmt.Fprintln(w, strings.Join(displayRow(row, t, i), "\t"))
	}
	return w.Flush()
}

func (p *Printer) printBlocks(header []string, rows [][]string, t *table.Table) error {
	for i, row := range rows {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		for j, cell := range displayRow(row, t, i) {
			if _, err := fmt.Fprintf(p.w, "%s: %s\n", header[j], cell); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Printer) printMarkdown(header []string, rows [][]string) error {
	var b bytes.Buffer
	b.WriteString("| " + strings.Join(escapeCells(header), " | ") + " |\n|")
	for range header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
	_, err := p.w.Write(b.Bytes())
	return err
}

// displayRow marks nulls so they stand out from empty strings in aligned output.
func displayRow(row []string, t *table.Table, i int) []string {
	out := append([]string(nil), row...)
	for j, v := range t.Row(i) {
		if v.IsNull() {
			out[j] = "NA"
		}
	}
	return out
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(strings.ReplaceAll(c, "|", "\\|"), "\n", " ")
	}
	return out
}

// orderedRow encodes one row as an object whose keys follow the schema.
type orderedRow struct {
	cols []string
	vals []table.Value
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.vals[i].Interface())
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (r orderedRow) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i, c := range r.cols {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c}
		val := &yaml.Node{Kind: yaml.ScalarNode}
		v := r.vals[i]
		switch {
		case v.IsNull():
			val.Tag, val.Value = "!!null", "null"
		case v.Kind() == table.KindNumber:
			val.Tag, val.Value = "!!float", v.String()
			if !strings.ContainsAny(v.String(), ".eE") {
				val.Tag = "!!int"
			}
		default:
			val.Tag, val.Value = "!!str", v.String()
		}
		n.Content = append(n.Content, key, val)
	}
	return n, nil
}
