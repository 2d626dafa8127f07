package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartprep-cli/internal/reduce"
	"github.com/KaramelBytes/chartprep-cli/internal/render"
	"github.com/KaramelBytes/chartprep-cli/internal/table"
	"github.com/KaramelBytes/chartprep-cli/internal/utils"
)

var (
	renderKind    string
	renderTitle   string
	renderXLabel  string
	renderYLabel  string
	renderWidth   int
	renderHeight  int
	renderLabels  bool
	renderOut     string
	renderReorder string
)

var renderCmd = &cobra.Command{
	Use:   "render <source> <category> <value>",
	Short: "Render a table as an SVG chart",
	Long: `Renders <value> per <category> as SVG. Categories appear in the order
given by --reorder, otherwise in the order they first appear.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := render.ParseKind(renderKind)
		if err != nil {
			return err
		}
		t, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		if r := strings.TrimSpace(renderReorder); r != "" && r != "none" {
			dir, err := table.ParseDirection(r)
			if err != nil {
				return err
			}
			if t, err = reduce.ReorderByAggregate(t, args[1], args[2], dir); err != nil {
				return err
			}
		}
		c := render.Chart{
			Kind:     kind,
			Category: args[1],
			Value:    args[2],
			Title:    renderTitle,
			XLabel:   renderXLabel,
			YLabel:   renderYLabel,
			Width:    renderWidth,
			Height:   renderHeight,
			Labels:   renderLabels,
		}
		if c.Width == 0 && cfg != nil {
			c.Width = cfg.ChartWidth
		}
		if c.Height == 0 && cfg != nil {
			c.Height = cfg.ChartHeight
		}
		return writeChart(cmd, renderOut, func(w *bytes.Buffer) error { return render.Render(w, t, c) })
	},
}

// writeChart renders into memory and writes to path, or stdout for "" or "-".
func writeChart(cmd *cobra.Command, path string, fn func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	p, err := utils.ExpandHome(path)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(p, buf.Bytes()); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Chart written: %s\n", p)
	return nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addInputFlags(renderCmd)
	renderCmd.Flags().StringVar(&renderKind, "chart-kind", "bar", "chart kind: bar|line|points|area")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "chart title")
	renderCmd.Flags().StringVar(&renderXLabel, "x-label", "", "x axis label (default category column)")
	renderCmd.Flags().StringVar(&renderYLabel, "y-label", "", "y axis label (default value column)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "width in pixels (default from config chart_width)")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "height in pixels (default from config chart_height)")
	renderCmd.Flags().BoolVar(&renderLabels, "labels", false, "label each point with its value")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "write SVG to this file instead of stdout")
	renderCmd.Flags().StringVar(&renderReorder, "reorder", "", "rank categories by summed value first: asc|desc|none")
}
