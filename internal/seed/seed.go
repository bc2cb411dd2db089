package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/carcost/internal/maintenance"
	"github.com/Simplici0/carcost/internal/store"
	"github.com/Simplici0/carcost/internal/tco"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts  int
	Existing int
}

// Run executes the startup seed in an idempotent way. Rows that already exist are left
// untouched so edits made through the API survive restarts.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureSettings(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	for _, t := range SampleTables() {
		if err := ensureMaintenanceTable(ctx, tx, t, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureSettings(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check settings existence: %w", err)
	}
	if exists {
		stats.Existing++
		return nil
	}

	d := tco.DefaultSettings()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settings (id, opportunity_cost_rate, annual_mileage, lifetime_miles, average_gas_price)
		VALUES (1, ?, ?, ?, ?)
	`, d.OpportunityCostRate, d.AnnualMileage, d.LifetimeMiles, d.AvgGasPrice); err != nil {
		return fmt.Errorf("insert settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureMaintenanceTable(ctx context.Context, tx *sql.Tx, t maintenance.Table, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM maintenance_tables
			WHERE make_model_key = ? AND year_min = ? AND year_max = ?
			LIMIT 1
		)
	`, maintenance.Key(t.Make, t.Model), t.YearRange.Min(), t.YearRange.Max()).Scan(&exists); err != nil {
		return fmt.Errorf("check maintenance table existence: %w", err)
	}
	if exists {
		stats.Existing++
		return nil
	}

	if err := store.InsertMaintenanceTable(ctx, tx, t.Make, t.Model, t); err != nil {
		return err
	}
	stats.Inserts++
	return nil
}
