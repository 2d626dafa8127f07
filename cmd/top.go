package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartprep-cli/internal/reduce"
)

var (
	topN     int
	topOther string
	topKeys  bool
)

var topCmd = &cobra.Command{
	Use:   "top <source> <category> <value>",
	Short: "Keep the N largest categories and collapse the rest",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		if topKeys {
			keys, err := reduce.TopNByAggregate(t, args[1], args[2], topN)
			if err != nil {
				return err
			}
			return printer(cmd).Print(cmd.Context(), keys)
		}
		out, err := reduce.CollapseTail(t, args[1], args[2], topN, otherLabel(topOther))
		if err != nil {
			return err
		}
		return printer(cmd).PrintTable(cmd.Context(), out)
	},
}

func init() {
	rootCmd.AddCommand(topCmd)
	addInputFlags(topCmd)
	topCmd.Flags().IntVarP(&topN, "n", "n", 5, "number of categories to keep")
	topCmd.Flags().StringVar(&topOther, "other", "", "label for collapsed categories (default from config other_label)")
	topCmd.Flags().BoolVar(&topKeys, "keys", false, "print only the top category names")
}
