package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartprep-cli/internal/reduce"
)

var collapseOther string

var collapseCmd = &cobra.Command{
	Use:   "collapse <source> <category> [keep...]",
	Short: "Relabel every category not in keep as Other",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := reduce.CollapseToOther(t, args[1], args[2:], otherLabel(collapseOther))
		if err != nil {
			return err
		}
		return printer(cmd).PrintTable(cmd.Context(), out)
	},
}

func init() {
	rootCmd.AddCommand(collapseCmd)
	addInputFlags(collapseCmd)
	collapseCmd.Flags().StringVar(&collapseOther, "other", "", "label for collapsed categories (default from config other_label)")
}
