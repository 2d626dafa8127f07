package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

var (
	describeSampleRows int
	describeTopValues  int
)

var describeCmd = &cobra.Command{
	Use:   "describe <source>",
	Short: "Summarize the columns of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		opt := table.DefaultDescribeOptions()
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = describeSampleRows
		}
		if cmd.Flags().Changed("top") {
			opt.TopValues = describeTopValues
		}
		rep := table.Describe(t, filepath.Base(args[0]), opt)
		return printer(cmd).Print(cmd.Context(), rep)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	addInputFlags(describeCmd)
	describeCmd.Flags().IntVar(&describeSampleRows, "sample-rows", 5, "leading rows to include (0 disables)")
	describeCmd.Flags().IntVar(&describeTopValues, "top", 8, "top categories listed per string column")
}
