package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/carcost/internal/tco"
)

// Settings returns the singleton settings row. A database that was never seeded yields the
// defaults.
func (s *Store) Settings(ctx context.Context) (tco.Settings, error) {
	var st tco.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT opportunity_cost_rate, annual_mileage, lifetime_miles, average_gas_price
		FROM settings
		WHERE id = 1
	`).Scan(&st.OpportunityCostRate, &st.AnnualMileage, &st.LifetimeMiles, &st.AvgGasPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tco.DefaultSettings(), nil
		}
		return tco.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return st, nil
}

// UpdateSettings writes the singleton settings row, creating it if needed.
func (s *Store) UpdateSettings(ctx context.Context, st tco.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, opportunity_cost_rate, annual_mileage, lifetime_miles, average_gas_price, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			opportunity_cost_rate = excluded.opportunity_cost_rate,
			annual_mileage = excluded.annual_mileage,
			lifetime_miles = excluded.lifetime_miles,
			average_gas_price = excluded.average_gas_price,
			updated_at = excluded.updated_at
	`,
		st.OpportunityCostRate,
		st.AnnualMileage,
		st.LifetimeMiles,
		st.AvgGasPrice,
		s.now().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}
