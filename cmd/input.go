package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/chartprep-cli/internal/recipe"
	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// inputFlags are the read options shared by every command that loads a table.
type inputFlags struct {
	format     string
	delimiter  string
	decimal    string
	thousands  string
	names      []string
	kinds      []string
	noHeader   bool
	sheet      string
	sheetIndex int
	maxRows    int
}

var input inputFlags

func (f *inputFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("input", pflag.ContinueOnError)
	fs.StringVar(&f.format, "format", "", "input format: csv|tsv|xlsx (default: from file extension)")
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter, e.g. ';' or 'tab'")
	fs.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.' or ','")
	fs.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ',', '.', or ' '")
	fs.StringSliceVar(&f.names, "names", nil, "column names, positional (required with --no-header)")
	fs.StringSliceVar(&f.kinds, "kind", nil, "force a column kind, e.g. --kind year=string")
	fs.BoolVar(&f.noHeader, "no-header", false, "first row is data, not a header")
	fs.StringVar(&f.sheet, "sheet", "", "XLSX sheet name")
	fs.IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX sheet index (1-based, used when --sheet is empty)")
	fs.IntVar(&f.maxRows, "max-rows", 0, "read at most this many rows (0 = all)")
	return fs
}

// spec converts the flags into the recipe file representation.
func (f *inputFlags) spec() (recipe.ReadSpec, error) {
	s := recipe.ReadSpec{
		Format:     strings.ToLower(f.format),
		Delimiter:  f.delimiter,
		Decimal:    f.decimal,
		Thousands:  f.thousands,
		NoHeader:   f.noHeader,
		Names:      f.names,
		Sheet:      f.sheet,
		SheetIndex: f.sheetIndex,
		MaxRows:    f.maxRows,
	}
	if len(f.kinds) > 0 {
		s.Kinds = make(map[string]string, len(f.kinds))
		for _, kv := range f.kinds {
			col, kind, ok := strings.Cut(kv, "=")
			if !ok || col == "" {
				return s, fmt.Errorf("invalid --kind %q (use column=string|number)", kv)
			}
			s.Kinds[col] = kind
		}
	}
	return s, nil
}

func (f *inputFlags) reset() { *f = inputFlags{} }

// addInputFlags registers the shared input flags on cmd.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().AddFlagSet(input.flagSet())
}

// loadInput reads the table named by source using the shared input flags.
func loadInput(cmd *cobra.Command, source string) (*table.Table, error) {
	s, err := input.spec()
	if err != nil {
		return nil, err
	}
	read, err := s.Options()
	if err != nil {
		return nil, err
	}
	l := newLoader()
	l.Stdin = cmd.InOrStdin()
	t, err := l.WithRead(read).Load(cmd.Context(), source)
	if err != nil {
		return nil, err
	}
	logger.Debug("table loaded", "source", source, "rows", t.Len(), "columns", t.Columns())
	return t, nil
}
