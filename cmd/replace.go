package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartprep-cli/internal/reduce"
)

var replaceCmd = &cobra.Command{
	Use:   "replace <source> <column> <old> <new>",
	Short: "Replace a substring in every value of a string column",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := reduce.Replace(t, args[1], args[2], args[3])
		if err != nil {
			return err
		}
		return printer(cmd).PrintTable(cmd.Context(), out)
	},
}

func init() {
	rootCmd.AddCommand(replaceCmd)
	addInputFlags(replaceCmd)
}
