package recipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/KaramelBytes/chartprep-cli/internal/loader"
	"github.com/KaramelBytes/chartprep-cli/internal/render"
	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// Runner executes recipes.
type Runner struct {
	Loader     *loader.Loader
	OtherLabel string
	// Chart defaults applied when the recipe's chart leaves them zero.
	Width, Height int
	Log           *slog.Logger
}

// Run loads the recipe's source and applies its steps in order. The first
// failing step aborts the run with a *StepError.
func (rn *Runner) Run(ctx context.Context, r *Recipe) (*table.Table, error) {
	log := rn.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	read, err := r.Read.Options()
	if err != nil {
		return nil, fmt.Errorf("recipe %s: read: %w", r.Name, err)
	}
	steps := make([]*Step, len(r.Steps))
	for i, line := range r.Steps {
		s, err := ParseStep(line)
		if err != nil {
			return nil, &StepError{Index: i, Step: line, Err: err}
		}
		steps[i] = s
	}

	l := rn.Loader
	if l == nil {
		l = loader.New(loader.DefaultOptions())
	}
	t, err := l.WithRead(read).Load(ctx, r.Source)
	if err != nil {
		return nil, err
	}
	log.Debug("recipe source loaded", "recipe", r.Name, "rows", t.Len(), "columns", len(t.Columns()))

	other := rn.OtherLabel
	if other == "" {
		other = "Other"
	}
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := s.Apply(t, other)
		if err != nil {
			return nil, &StepError{Index: i, Step: r.Steps[i], Err: err}
		}
		log.Debug("recipe step applied", "step", i+1, "op", s.Op, "rows", next.Len())
		t = next
	}
	return t, nil
}

// Chart renders the recipe's chart for t. It is a no-op without a chart.
func (rn *Runner) Chart(w io.Writer, t *table.Table, r *Recipe) error {
	if r.Chart == nil {
		return nil
	}
	c := *r.Chart
	if c.Width == 0 {
		c.Width = rn.Width
	}
	if c.Height == 0 {
		c.Height = rn.Height
	}
	if c.Title == "" {
		c.Title = r.Name
	}
	if err := render.Render(w, t, c); err != nil {
		return fmt.Errorf("render %s: %w", r.Name, err)
	}
	return nil
}
