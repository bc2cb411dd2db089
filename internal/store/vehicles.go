package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/carcost/internal/models"
)

// VehicleFilter narrows ListVehicles. Empty fields match everything.
type VehicleFilter struct {
	Query string
	Tag   string
}

const vehicleColumns = `
	id, make, model, trim, year, purchase_price, current_mileage, mpg, insurance_premium_6mo,
	vin, listing_url, notes, tags_json, lifetime_miles_override, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

// ListVehicles returns vehicles matching filter, oldest first.
func (s *Store) ListVehicles(ctx context.Context, filter VehicleFilter) ([]models.Vehicle, error) {
	query := strings.TrimSpace(filter.Query)
	tag := strings.ToLower(strings.TrimSpace(filter.Tag))
	search := "%" + query + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE (? = '' OR make LIKE ? OR model LIKE ? OR trim LIKE ? OR vin LIKE ? OR notes LIKE ?)
		  AND (? = '' OR EXISTS (SELECT 1 FROM json_each(vehicles.tags_json) WHERE json_each.value = ?))
		ORDER BY id ASC
	`, query, search, search, search, search, search, tag, tag)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := make([]models.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}

	return vehicles, nil
}

// GetVehicle returns the vehicle with id or ErrNotFound.
func (s *Store) GetVehicle(ctx context.Context, id int64) (models.Vehicle, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
		}
		return models.Vehicle{}, err
	}
	return v, nil
}

// CreateVehicle inserts v and returns it with its assigned ID and timestamps.
func (s *Store) CreateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	tagsJSON, err := encodeTags(v.Tags)
	if err != nil {
		return models.Vehicle{}, err
	}
	now := s.now()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO vehicles (
			make, model, trim, year, purchase_price, current_mileage, mpg, insurance_premium_6mo,
			vin, listing_url, notes, tags_json, lifetime_miles_override, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		v.Make, v.Model, v.Trim, nullableYear(v.Year), v.PurchasePrice, v.CurrentMileage, v.MPG,
		v.InsurancePremium6mo, v.VIN, v.ListingURL, v.Notes, tagsJSON, v.LifetimeMilesOverride,
		now.Format(timestampLayout), now.Format(timestampLayout),
	)
	if err != nil {
		return models.Vehicle{}, fmt.Errorf("insert vehicle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Vehicle{}, fmt.Errorf("read vehicle id: %w", err)
	}
	return s.GetVehicle(ctx, id)
}

// UpdateVehicle replaces every editable field of vehicle id.
func (s *Store) UpdateVehicle(ctx context.Context, id int64, v models.Vehicle) (models.Vehicle, error) {
	tagsJSON, err := encodeTags(v.Tags)
	if err != nil {
		return models.Vehicle{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE vehicles
		SET
			make = ?,
			model = ?,
			trim = ?,
			year = ?,
			purchase_price = ?,
			current_mileage = ?,
			mpg = ?,
			insurance_premium_6mo = ?,
			vin = ?,
			listing_url = ?,
			notes = ?,
			tags_json = ?,
			lifetime_miles_override = ?,
			updated_at = ?
		WHERE id = ?
	`,
		v.Make, v.Model, v.Trim, nullableYear(v.Year), v.PurchasePrice, v.CurrentMileage, v.MPG,
		v.InsurancePremium6mo, v.VIN, v.ListingURL, v.Notes, tagsJSON, v.LifetimeMilesOverride,
		s.now().Format(timestampLayout), id,
	)
	if err != nil {
		return models.Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return models.Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}
	if affected == 0 {
		return models.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
	}
	return s.GetVehicle(ctx, id)
}

// DeleteVehicle removes vehicle id.
func (s *Store) DeleteVehicle(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListTags returns every distinct tag in use, sorted.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT j.value
		FROM vehicles, json_each(vehicles.tags_json) AS j
		ORDER BY j.value
	`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

func scanVehicle(row rowScanner) (models.Vehicle, error) {
	var (
		v         models.Vehicle
		year      sql.NullInt64
		override  sql.NullFloat64
		tagsJSON  string
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&v.ID, &v.Make, &v.Model, &v.Trim, &year, &v.PurchasePrice, &v.CurrentMileage, &v.MPG,
		&v.InsurancePremium6mo, &v.VIN, &v.ListingURL, &v.Notes, &tagsJSON, &override,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Vehicle{}, err
		}
		return models.Vehicle{}, fmt.Errorf("scan vehicle: %w", err)
	}

	if year.Valid {
		v.Year = int(year.Int64)
	}
	if override.Valid {
		o := override.Float64
		v.LifetimeMilesOverride = &o
	}
	v.Tags = make([]string, 0)
	if err := json.Unmarshal([]byte(tagsJSON), &v.Tags); err != nil {
		return models.Vehicle{}, fmt.Errorf("decode vehicle %d tags: %w", v.ID, err)
	}
	v.CreatedAt = parseTimestamp(createdAt)
	v.UpdatedAt = parseTimestamp(updatedAt)
	return v, nil
}

func encodeTags(tags []string) (string, error) {
	data, err := json.Marshal(models.NormalizeTags(tags))
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

func nullableYear(year int) any {
	if year <= 0 {
		return nil
	}
	return year
}
