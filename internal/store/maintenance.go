package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Simplici0/carcost/internal/maintenance"
)

// MaintenanceDatabase loads every stored maintenance table.
func (s *Store) MaintenanceDatabase(ctx context.Context) (maintenance.Database, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT make, model, year_min, year_max, by_mileage_json, by_time_json
		FROM maintenance_tables
		ORDER BY make_model_key, year_min, year_max
	`)
	if err != nil {
		return nil, fmt.Errorf("query maintenance tables: %w", err)
	}
	defer rows.Close()

	tables := make([]maintenance.Table, 0)
	for rows.Next() {
		var (
			t           maintenance.Table
			mileageJSON string
			timeJSON    string
		)
		if err := rows.Scan(&t.Make, &t.Model, &t.YearRange[0], &t.YearRange[1], &mileageJSON, &timeJSON); err != nil {
			return nil, fmt.Errorf("scan maintenance table: %w", err)
		}
		if err := json.Unmarshal([]byte(mileageJSON), &t.ByMileage); err != nil {
			return nil, fmt.Errorf("decode %s %s mileage curve: %w", t.Make, t.Model, err)
		}
		if err := json.Unmarshal([]byte(timeJSON), &t.ByTime); err != nil {
			return nil, fmt.Errorf("decode %s %s time curve: %w", t.Make, t.Model, err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate maintenance tables: %w", err)
	}

	return maintenance.NewDatabase(tables...), nil
}

// ReplaceMaintenance swaps all tables of one make/model for tables in a single transaction.
// An empty tables slice removes the make/model.
func (s *Store) ReplaceMaintenance(ctx context.Context, brand, model string, tables []maintenance.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin maintenance transaction: %w", err)
	}

	key := maintenance.Key(brand, model)
	if _, err := tx.ExecContext(ctx, `DELETE FROM maintenance_tables WHERE make_model_key = ?`, key); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear maintenance tables: %w", err)
	}
	for _, t := range tables {
		if err := InsertMaintenanceTable(ctx, tx, brand, model, t); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit maintenance transaction: %w", err)
	}
	return nil
}

// DeleteMaintenance removes every table of one make/model.
func (s *Store) DeleteMaintenance(ctx context.Context, brand, model string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM maintenance_tables WHERE make_model_key = ?`, maintenance.Key(brand, model))
	if err != nil {
		return fmt.Errorf("delete maintenance tables: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete maintenance tables: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("maintenance %s %s: %w", brand, model, ErrNotFound)
	}
	return nil
}

// InsertMaintenanceTable writes one table row inside tx.
func InsertMaintenanceTable(ctx context.Context, tx *sql.Tx, brand, model string, t maintenance.Table) error {
	mileageJSON, err := json.Marshal(pointsOrEmpty(t.ByMileage))
	if err != nil {
		return fmt.Errorf("encode mileage curve: %w", err)
	}
	timeJSON, err := json.Marshal(pointsOrEmpty(t.ByTime))
	if err != nil {
		return fmt.Errorf("encode time curve: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO maintenance_tables (make_model_key, make, model, year_min, year_max, by_mileage_json, by_time_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, maintenance.Key(brand, model), brand, model, t.YearRange.Min(), t.YearRange.Max(), string(mileageJSON), string(timeJSON))
	if err != nil {
		return fmt.Errorf("insert maintenance table %s %s %d-%d: %w", brand, model, t.YearRange.Min(), t.YearRange.Max(), err)
	}
	return nil
}

func pointsOrEmpty(points []maintenance.Point) []maintenance.Point {
	if points == nil {
		return []maintenance.Point{}
	}
	return points
}
