package recipe

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/chartprep-cli/internal/reduce"
	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

// Step is one parsed reduction line, for example
//
//	top religion adherents -n 5 --other "Other religions"
type Step struct {
	Op   string
	Args []string

	Asc   bool
	Agg   reduce.AggFunc
	Sort  bool
	N     int
	Other string
	Out   string
	Share bool
}

type opSpec struct {
	usage   string
	minArgs int
	maxArgs int // -1 for unbounded
	flags   func(fs *pflag.FlagSet, s *Step, agg *string)
}

var ops = map[string]opSpec{
	"reorder": {
		usage:   "reorder <category> <value> [--asc] [--agg sum|mean|count] [--sort]",
		minArgs: 2, maxArgs: 2,
		flags: func(fs *pflag.FlagSet, s *Step, agg *string) {
			fs.BoolVar(&s.Asc, "asc", false, "ascending order")
			fs.StringVar(agg, "agg", "sum", "aggregate")
			fs.BoolVar(&s.Sort, "sort", false, "also sort rows by the new order")
		},
	},
	"sort": {
		usage:   "sort",
		minArgs: 0, maxArgs: 0,
	},
	"collapse": {
		usage:   "collapse <category> <keep>... [--other label]",
		minArgs: 1, maxArgs: -1,
		flags: func(fs *pflag.FlagSet, s *Step, _ *string) {
			fs.StringVar(&s.Other, "other", "", "label for collapsed categories")
		},
	},
	"top": {
		usage:   "top <category> <value> -n N [--other label]",
		minArgs: 2, maxArgs: 2,
		flags: func(fs *pflag.FlagSet, s *Step, _ *string) {
			fs.IntVarP(&s.N, "n", "n", 5, "categories to keep")
			fs.StringVar(&s.Other, "other", "", "label for collapsed categories")
		},
	},
	"cumsum": {
		usage:   "cumsum <sort> <value> [--asc] [--out name] [--share]",
		minArgs: 2, maxArgs: 2,
		flags: func(fs *pflag.FlagSet, s *Step, _ *string) {
			fs.BoolVar(&s.Asc, "asc", false, "ascending order")
			fs.StringVar(&s.Out, "out", "", "output column")
			fs.BoolVar(&s.Share, "share", false, "running share of the total instead of running sum")
		},
	},
	"group": {
		usage:   "group <group> <value> [--agg sum|mean|count]",
		minArgs: 2, maxArgs: 2,
		flags: func(fs *pflag.FlagSet, s *Step, agg *string) {
			fs.StringVar(agg, "agg", "mean", "aggregate")
		},
	},
	"diff": {
		usage:   "diff <a> <b> [--out name]",
		minArgs: 2, maxArgs: 2,
		flags: func(fs *pflag.FlagSet, s *Step, _ *string) {
			fs.StringVar(&s.Out, "out", "", "output column")
		},
	},
	"replace": {
		usage:   "replace <column> <old> <new>",
		minArgs: 3, maxArgs: 3,
	},
}

// Ops lists the step operations in alphabetical order.
func Ops() []string {
	names := make([]string, 0, len(ops))
	for k := range ops {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Usage returns the one-line synopsis of op.
func Usage(op string) string { return ops[op].usage }

// ParseStep splits a shell-quoted step line and parses its flags.
func ParseStep(line string) (*Step, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("split step: %w", err)
	}
	if len(words) == 0 {
		return nil, errors.New("empty step")
	}
	op := strings.ToLower(words[0])
	spec, ok := ops[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q (use %s)", words[0], strings.Join(Ops(), ", "))
	}
	s := &Step{Op: op}
	agg := ""
	fs := pflag.NewFlagSet(op, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if spec.flags != nil {
		spec.flags(fs, s, &agg)
	}
	if err := fs.Parse(words[1:]); err != nil {
		return nil, fmt.Errorf("%w (usage: %s)", err, spec.usage)
	}
	s.Args = fs.Args()
	if len(s.Args) < spec.minArgs || (spec.maxArgs >= 0 && len(s.Args) > spec.maxArgs) {
		return nil, fmt.Errorf("%s: got %d arguments (usage: %s)", op, len(s.Args), spec.usage)
	}
	if agg != "" {
		if s.Agg, err = reduce.ParseAggFunc(agg); err != nil {
			return nil, err
		}
	}
	if op == "top" && s.N < 0 {
		return nil, fmt.Errorf("top: -n must be >= 0, got %d", s.N)
	}
	return s, nil
}

func (s *Step) direction() table.Direction {
	if s.Asc {
		return table.Ascending
	}
	return table.Descending
}

// Apply runs the step against t. otherLabel is used when the step names none.
func (s *Step) Apply(t *table.Table, otherLabel string) (*table.Table, error) {
	other := s.Other
	if other == "" {
		other = otherLabel
	}
	a := s.Args
	switch s.Op {
	case "reorder":
		out, err := reduce.ReorderByAggregateFunc(t, a[0], a[1], s.direction(), s.Agg)
		if err != nil || !s.Sort {
			return out, err
		}
		return reduce.SortByOrder(out)
	case "sort":
		return reduce.SortByOrder(t)
	case "collapse":
		return reduce.CollapseToOther(t, a[0], a[1:], other)
	case "top":
		return reduce.CollapseTail(t, a[0], a[1], s.N, other)
	case "cumsum":
		if s.Share {
			return reduce.CumulativeShare(t, a[0], a[1], s.direction(), s.Out)
		}
		return reduce.CumulativeSum(t, a[0], a[1], s.direction(), s.Out)
	case "group":
		return reduce.GroupAggregate(t, a[0], a[1], s.Agg)
	case "diff":
		return reduce.ElementwiseDifference(t, a[0], a[1], s.Out)
	case "replace":
		return reduce.Replace(t, a[0], a[1], a[2])
	default:
		return nil, fmt.Errorf("unknown operation %q", s.Op)
	}
}
