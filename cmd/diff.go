package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartprep-cli/internal/reduce"
)

var diffOut string

var diffCmd = &cobra.Command{
	Use:   "diff <source> <column-a> <column-b>",
	Short: "Add a column holding a - b per row",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := reduce.ElementwiseDifference(t, args[1], args[2], diffOut)
		if err != nil {
			return err
		}
		return printer(cmd).PrintTable(cmd.Context(), out)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	addInputFlags(diffCmd)
	diffCmd.Flags().StringVar(&diffOut, "out", "", "output column (default <a>_minus_<b>)")
}
