package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartprep-cli/internal/reduce"
	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

var (
	cumsumAsc   bool
	cumsumOut   string
	cumsumShare bool
)

var cumsumCmd = &cobra.Command{
	Use:   "cumsum <source> <sort-column> <value>",
	Short: "Sort rows and add a running total of a value column",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := table.Descending
		if cumsumAsc {
			dir = table.Ascending
		}
		t, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		op := reduce.CumulativeSum
		if cumsumShare {
			op = reduce.CumulativeShare
		}
		out, err := op(t, args[1], args[2], dir, cumsumOut)
		if err != nil {
			return err
		}
		return printer(cmd).PrintTable(cmd.Context(), out)
	},
}

func init() {
	rootCmd.AddCommand(cumsumCmd)
	addInputFlags(cumsumCmd)
	cumsumCmd.Flags().BoolVar(&cumsumAsc, "asc", false, "ascending order (default descending)")
	cumsumCmd.Flags().StringVar(&cumsumOut, "out", "", "output column (default cumulative_<value>)")
	cumsumCmd.Flags().BoolVar(&cumsumShare, "share", false, "running share of the total instead of the running sum")
}
