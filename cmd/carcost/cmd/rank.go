package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simplici0/carcost/internal/report"
	"github.com/Simplici0/carcost/internal/store"
	"github.com/Simplici0/carcost/internal/tco"
)

func newRankCmd(a *app) *cobra.Command {
	var (
		dbPath string
		sortBy string
		filter store.VehicleFilter
	)

	rankCmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank stored vehicles by cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !report.ValidSortKey(sortBy) {
				return fmt.Errorf("unknown sort key %q", sortBy)
			}

			conn, st, err := a.openStore(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			settings, err := st.Settings(cmd.Context())
			if err != nil {
				return err
			}
			database, err := st.MaintenanceDatabase(cmd.Context())
			if err != nil {
				return err
			}
			vehicles, err := st.ListVehicles(cmd.Context(), filter)
			if err != nil {
				return err
			}

			entries := make([]report.Entry, 0, len(vehicles))
			for _, v := range vehicles {
				entries = append(entries, report.Entry{
					ID:        v.ID,
					Title:     v.Title(),
					Breakdown: tco.ComputeCostBreakdown(settings, v.Snapshot(), database),
				})
			}
			if err := report.SortEntries(entries, sortBy); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "#\tID\tVehicle\tTotal\tAnnual\tPer 10k mi\t")
			for i, e := range entries {
				v := report.Round(e.Breakdown)
				fmt.Fprintf(tw, "%d\t%d\t%s\t$%s\t$%s\t$%s\t\n",
					i+1, e.ID, e.Title, v.TotalCost, v.AnnualCost, v.CostPer10kMiles)
			}
			return tw.Flush()
		},
	}

	rankCmd.Flags().StringVar(&dbPath, "db", "./dev.db", "SQLite database path")
	rankCmd.Flags().StringVar(&sortBy, "sort", report.SortByTotalCost, "sort key (id, total_cost, annual_cost, cost_per_10k)")
	rankCmd.Flags().StringVar(&filter.Query, "query", "", "free-text filter on make, model, trim, VIN and notes")
	rankCmd.Flags().StringVar(&filter.Tag, "tag", "", "only vehicles with this tag")

	return rankCmd
}
