package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartprep-cli/internal/reduce"
	"github.com/KaramelBytes/chartprep-cli/internal/table"
)

var (
	reorderAsc  bool
	reorderAgg  string
	reorderRows bool
)

var reorderCmd = &cobra.Command{
	Use:   "reorder <source> <category> <value>",
	Short: "Rank categories by an aggregate of a value column",
	Long: `Ranks the distinct values of <category> by the sum (or --agg) of <value>.
Prints the ranking, or with --rows the table sorted by it.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := table.Descending
		if reorderAsc {
			dir = table.Ascending
		}
		fn, err := reduce.ParseAggFunc(reorderAgg)
		if err != nil {
			return err
		}
		t, err := loadInput(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := reduce.ReorderByAggregateFunc(t, args[1], args[2], dir, fn)
		if err != nil {
			return err
		}
		if reorderRows {
			if out, err = reduce.SortByOrder(out); err != nil {
				return err
			}
			return printer(cmd).PrintTable(cmd.Context(), out)
		}
		ranking, err := rankingTable(out.Order(), fn)
		if err != nil {
			return err
		}
		return printer(cmd).PrintTable(cmd.Context(), ranking)
	},
}

// rankingTable lays out an ordering as {rank, <column>, <agg>} rows. The rank
// and aggregate columns are renamed when the category column already uses
// their name.
func rankingTable(o *table.CategoryOrder, fn reduce.AggFunc) (*table.Table, error) {
	if fn == "" {
		fn = reduce.Sum
	}
	rankCol, aggCol := "rank", string(fn)
	if rankCol == o.Column {
		rankCol = "category_rank"
	}
	if aggCol == o.Column {
		aggCol += "_agg"
	}
	rows := make([][]table.Value, len(o.Categories))
	for i, c := range o.Categories {
		rows[i] = []table.Value{table.Num(float64(c.Rank + 1)), table.Str(c.Key), table.Num(c.Aggregate)}
	}
	return table.New(table.Schema{
		{Name: rankCol, Kind: table.KindNumber},
		{Name: o.Column, Kind: table.KindString},
		{Name: aggCol, Kind: table.KindNumber},
	}, rows)
}

func init() {
	rootCmd.AddCommand(reorderCmd)
	addInputFlags(reorderCmd)
	reorderCmd.Flags().BoolVar(&reorderAsc, "asc", false, "ascending order (default descending)")
	reorderCmd.Flags().StringVar(&reorderAgg, "agg", "sum", "aggregate: sum|mean|count")
	reorderCmd.Flags().BoolVar(&reorderRows, "rows", false, "print the table sorted by the ranking instead of the ranking")
}
