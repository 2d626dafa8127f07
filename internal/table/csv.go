package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadOptions controls how delimited text and spreadsheets become tables.
type ReadOptions struct {
	// Delimiter for CSV. If 0, ',' is used.
	Delimiter rune
	// Numeric parsing locale. Zero values auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// NoHeader treats the first record as data. Names must then be supplied
	// or columns are named col1..colN.
	NoHeader bool
	// Names renames columns positionally; extra names are ignored.
	Names []string
	// Kinds forces the kind of the named columns instead of inferring it.
	Kinds map[string]Kind
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
}

// SniffDelimiter picks a delimiter from the file name.
func SniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}

// ReadCSV decodes delimited text into a table, inferring column kinds.
func ReadCSV(r io.Reader, opt ReadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	var header []string
	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		if header == nil && !opt.NoHeader {
			header = append([]string(nil), rec...)
			continue
		}
		if opt.MaxRows > 0 && len(records) >= opt.MaxRows {
			continue
		}
		records = append(records, rec)
	}
	return FromRecords(header, records, opt)
}

// FromRecords builds a table from string records. A column is numeric when
// every non-null cell parses as a number and at least one does.
func FromRecords(header []string, records [][]string, opt ReadOptions) (*Table, error) {
	ncol := len(header)
	for _, r := range records {
		if len(r) > ncol {
			ncol = len(r)
		}
	}
	names := make([]string, ncol)
	for i := range names {
		if i < len(header) {
			names[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
		}
		if i < len(opt.Names) && strings.TrimSpace(opt.Names[i]) != "" {
			names[i] = strings.TrimSpace(opt.Names[i])
		}
		if names[i] == "" {
			names[i] = fmt.Sprintf("col%d", i+1)
		}
	}

	schema := make(Schema, ncol)
	for j := 0; j < ncol; j++ {
		schema[j] = Column{Name: names[j], Kind: inferKind(records, j, opt)}
		if k, ok := opt.Kinds[names[j]]; ok {
			schema[j].Kind = k
		}
	}

	rows := make([][]Value, len(records))
	for i, rec := range records {
		row := make([]Value, ncol)
		for j := 0; j < ncol; j++ {
			var cell string
			if j < len(rec) {
				cell = strings.TrimSpace(rec[j])
			}
			v, err := parseCell(cell, schema[j], opt)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return New(schema, rows)
}

func inferKind(records [][]string, j int, opt ReadOptions) Kind {
	seen := 0
	for _, rec := range records {
		if j >= len(rec) || isNullToken(rec[j]) {
			continue
		}
		if _, ok := ParseNumber(rec[j], opt.DecimalSeparator, opt.ThousandsSeparator); !ok {
			return KindString
		}
		seen++
	}
	if seen == 0 {
		return KindString
	}
	return KindNumber
}

func parseCell(cell string, col Column, opt ReadOptions) (Value, error) {
	if isNullToken(cell) {
		return Null(), nil
	}
	if col.Kind == KindString {
		return Str(cell), nil
	}
	f, ok := ParseNumber(cell, opt.DecimalSeparator, opt.ThousandsSeparator)
	if !ok {
		return Value{}, &SchemaError{Column: col.Name, Reason: fmt.Sprintf("cannot parse %q as number", cell)}
	}
	return Num(f), nil
}

// WriteCSV encodes t with a header row. Nulls become empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	header, rows := t.Strings()
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
