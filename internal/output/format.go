package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"
)

// Format represents the output format type.
type Format string

const (
	// FormatTable aligns rows in columns (default).
	FormatTable Format = "table"
	// FormatText prints one "column: value" block per row.
	FormatText Format = "text"
	// FormatCSV is comma-separated values with a header row.
	FormatCSV Format = "csv"
	// FormatMarkdown is a pipe table.
	FormatMarkdown Format = "markdown"
	// FormatJSON is pretty-printed JSON.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON, one row per line.
	FormatNDJSON Format = "ndjson"
	// FormatYAML is YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format. Empty means FormatTable.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatText, FormatCSV, FormatJSON, FormatNDJSON, FormatYAML:
		return f, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", errors.New("invalid --output format (expected table|text|csv|markdown|json|ndjson|yaml)")
	}
}

// IsStructured reports whether the format is machine-readable structured output.
func IsStructured(format Format) bool {
	switch format {
	case FormatJSON, FormatNDJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// Markdowner is implemented by values with a preferred human rendering.
type Markdowner interface {
	Markdown() string
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Format returns the printer's format.
func (p *Printer) Format() Format { return p.format }

// Print outputs an arbitrary value. Structured formats encode it (through the
// --query filter when one is set); human formats use Markdown() when
// available and fmt otherwise.
func (p *Printer) Print(ctx context.Context, data any) error {
	if data == nil {
		return nil
	}
	format := p.format
	if QueryFromContext(ctx) != "" && !IsStructured(format) {
		format = FormatJSON
	}
	switch format {
	case FormatJSON, FormatNDJSON, FormatYAML:
		return p.printStructured(ctx, format, data)
	}
	if m, ok := data.(Markdowner); ok {
		_, err := io.WriteString(p.w, ensureNewline(m.Markdown()))
		return err
	}
	switch v := data.(type) {
	case []string:
		for _, s := range v {
			if _, err := fmt.Fprintln(p.w, s); err != nil {
				return err
			}
		}
		return nil
	case string:
		_, err := io.WriteString(p.w, ensureNewline(v))
		return err
	}
	_, err := fmt.Fprintf(p.w, "%v\n", data)
	return err
}

// printStructured encodes data, or the results of the context's jq query
// run over its JSON form.
func (p *Printer) printStructured(ctx context.Context, format Format, data any) error {
	query := QueryFromContext(ctx)
	if query == "" {
		return p.encode(format, data, true)
	}
	input, err := jqValue(data)
	if err != nil {
		return err
	}
	code, err := compileQuery(query)
	if err != nil {
		return err
	}
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %w", err)
		}
		if err := p.encode(format, v, false); err != nil {
			return err
		}
	}
}

func (p *Printer) encode(format Format, v any, split bool) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatNDJSON:
		enc := json.NewEncoder(p.w)
		enc.SetEscapeHTML(false)
		if items, ok := v.([]any); ok && split {
			for _, item := range items {
				if err := enc.Encode(item); err != nil {
					return err
				}
			}
			return nil
		}
		return enc.Encode(v)
	default:
		enc := json.NewEncoder(p.w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func compileQuery(query string) (*gojq.Code, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("invalid --query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("invalid --query: %w", err)
	}
	return code, nil
}

// jqValue converts data to the plain maps and slices gojq operates on.
func jqValue(data any) (any, error) {
	switch v := data.(type) {
	case []any, map[string]any:
		return v, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode for query: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode for query: %w", err)
	}
	return out, nil
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
