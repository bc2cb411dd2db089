package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/carcost/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	var dbPath string

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the database schema and load default settings and sample maintenance tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := a.openStore(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			stats, err := seed.Run(cmd.Context(), conn)
			if err != nil {
				return err
			}
			a.logger.Info("seed completed", zap.Int("inserts", stats.Inserts), zap.Int("existing", stats.Existing))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d inserted, %d already present\n", dbPath, stats.Inserts, stats.Existing)
			return nil
		},
	}

	seedCmd.Flags().StringVar(&dbPath, "db", "./dev.db", "SQLite database path")

	return seedCmd
}
