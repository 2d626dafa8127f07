package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartprep-cli/internal/reduce"
)

var groupAgg string

var groupCmd = &cobra.Command{
	Use:   "group <source> <group-column> <value>",
	Short: "Aggregate a value column per group",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		fn, err := reduce.ParseAggFunc(groupAgg)
		if err != nil {
			return err
		}
		t, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := reduce.GroupAggregate(t, args[1], args[2], fn)
		if err != nil {
			return err
		}
		return printer(cmd).PrintTable(cmd.Context(), out)
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
	addInputFlags(groupCmd)
	groupCmd.Flags().StringVar(&groupAgg, "agg", "mean", "aggregate: sum|mean|count")
}
