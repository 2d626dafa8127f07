// Package recipe stores a reproducible chart preparation: a source, how to
// read it, an ordered list of reduction steps and an optional chart.
package recipe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/chartprep-cli/internal/loader"
	"github.com/KaramelBytes/chartprep-cli/internal/render"
	"github.com/KaramelBytes/chartprep-cli/internal/table"
	"github.com/KaramelBytes/chartprep-cli/internal/utils"
)

// Recipe represents a chartprep recipe persisted as YAML.
type Recipe struct {
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Source      string        `yaml:"source" json:"source"`
	Read        ReadSpec      `yaml:"read,omitempty" json:"read,omitempty"`
	Steps       []string      `yaml:"steps" json:"steps"`
	Chart       *render.Chart `yaml:"chart,omitempty" json:"chart,omitempty"`
	CreatedAt   time.Time     `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `yaml:"updated_at" json:"updated_at"`

	// Not serialized: on-disk location of the recipe file
	path string
}

// ReadSpec is the file form of loader.Read.
type ReadSpec struct {
	Format     string            `yaml:"format,omitempty" json:"format,omitempty"`
	Delimiter  string            `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Decimal    string            `yaml:"decimal,omitempty" json:"decimal,omitempty"`
	Thousands  string            `yaml:"thousands,omitempty" json:"thousands,omitempty"`
	NoHeader   bool              `yaml:"no_header,omitempty" json:"no_header,omitempty"`
	Names      []string          `yaml:"names,omitempty" json:"names,omitempty"`
	Kinds      map[string]string `yaml:"kinds,omitempty" json:"kinds,omitempty"`
	Sheet      string            `yaml:"sheet,omitempty" json:"sheet,omitempty"`
	SheetIndex int               `yaml:"sheet_index,omitempty" json:"sheet_index,omitempty"`
	MaxRows    int               `yaml:"max_rows,omitempty" json:"max_rows,omitempty"`
}

// Options converts the spec into loader read options.
func (s ReadSpec) Options() (loader.Read, error) {
	var r loader.Read
	var err error
	if r.Delimiter, err = ParseRune("delimiter", s.Delimiter); err != nil {
		return r, err
	}
	if r.DecimalSeparator, err = ParseRune("decimal", s.Decimal); err != nil {
		return r, err
	}
	if r.ThousandsSeparator, err = ParseRune("thousands", s.Thousands); err != nil {
		return r, err
	}
	if len(s.Kinds) > 0 {
		r.Kinds = make(map[string]table.Kind, len(s.Kinds))
		for col, k := range s.Kinds {
			kind, err := table.ParseKind(k)
			if err != nil {
				return r, fmt.Errorf("kinds.%s: %w", col, err)
			}
			r.Kinds[col] = kind
		}
	}
	if s.SheetIndex < 0 {
		return r, fmt.Errorf("sheet_index must be >= 0, got %d", s.SheetIndex)
	}
	if s.MaxRows < 0 {
		return r, fmt.Errorf("max_rows must be >= 0, got %d", s.MaxRows)
	}
	r.Format = s.Format
	r.NoHeader = s.NoHeader
	r.Names = s.Names
	r.Sheet = s.Sheet
	r.SheetIndex = s.SheetIndex
	r.MaxRows = s.MaxRows
	return r, nil
}

// ParseRune reads a single-character option. "\t" and "tab" mean a tab.
func ParseRune(name, s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab", "TAB":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s must be a single character, got %q", name, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// New constructs an in-memory recipe with a fresh ID. Call Save to persist.
func New(name, source string) *Recipe {
	now := time.Now().UTC()
	return &Recipe{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    source,
		Steps:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Load reads and validates a recipe file.
func Load(path string) (*Recipe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("recipe not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	var r Recipe
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse recipe %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.path = path
	return &r, nil
}

// Path returns where the recipe was loaded from or last saved to.
func (r *Recipe) Path() string { return r.path }

// Validate checks the fields needed to run the recipe, including that every
// step parses.
func (r *Recipe) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.TrimSpace(r.Source) == "" {
		errs = append(errs, errors.New("source is required"))
	}
	if r.ID != "" {
		if _, err := uuid.Parse(r.ID); err != nil {
			errs = append(errs, fmt.Errorf("invalid id %q: %w", r.ID, err))
		}
	}
	if _, err := r.Read.Options(); err != nil {
		errs = append(errs, fmt.Errorf("read: %w", err))
	}
	for i, s := range r.Steps {
		if _, err := ParseStep(s); err != nil {
			errs = append(errs, &StepError{Index: i, Step: s, Err: err})
		}
	}
	if r.Chart != nil {
		if r.Chart.Category == "" || r.Chart.Value == "" {
			errs = append(errs, errors.New("chart: category and value are required"))
		}
		if _, err := render.ParseKind(string(r.Chart.Kind)); err != nil {
			errs = append(errs, fmt.Errorf("chart: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Save writes the recipe to path using an atomic write.
func (r *Recipe) Save(path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.UpdatedAt = time.Now().UTC()
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return err
	}
	r.path = path
	return nil
}

// Marshal encodes the recipe as YAML with two-space indentation.
func (r *Recipe) Marshal() ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("marshal recipe: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal recipe: %w", err)
	}
	return []byte(b.String()), nil
}

// StepError reports which step of a recipe failed.
type StepError struct {
	Index int
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
