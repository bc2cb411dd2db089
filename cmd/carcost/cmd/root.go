// Package cmd provides the CLI commands for carcost.
package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/carcost/internal/db"
	"github.com/Simplici0/carcost/internal/logging"
	"github.com/Simplici0/carcost/internal/migrations"
	"github.com/Simplici0/carcost/internal/store"
)

// Version is overridden at build time with -ldflags.
var Version = "0.1.0"

// app carries state shared by every subcommand.
type app struct {
	logLevel  string
	logFormat string
	logger    *zap.Logger
}

// NewRootCmd builds the carcost command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "carcost",
		Short: "Estimate the total cost of owning a used car",
		Long: `carcost prices the remaining life of a vehicle: fuel, insurance,
maintenance and the opportunity cost of the purchase price.

Examples:
  carcost estimate --make Toyota --model Prius --year 2018 --price 18000 --mileage 60000 --mpg 50
  carcost estimate --db ./dev.db --format json --make Ford --model F-150 --price 30000
  carcost rank --db ./dev.db --sort cost_per_10k`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := logging.DefaultConfig()
			cfg.Level = a.logLevel
			cfg.Format = a.logFormat
			logger, err := logging.New(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(newEstimateCmd(a))
	rootCmd.AddCommand(newRankCmd(a))
	rootCmd.AddCommand(newSeedCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// openStore opens the SQLite database at path and applies the embedded migrations.
func (a *app) openStore(ctx context.Context, path string) (*sql.DB, *store.Store, error) {
	database, err := db.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.Up(ctx, database, ""); err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	a.logger.Debug("database ready", zap.String("path", path))
	return database, store.New(database), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "carcost version %s\n", Version)
		},
	}
}
