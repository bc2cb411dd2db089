package maintenance

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Point is one tabulated pair. In Table.ByMileage the key is an odometer mark in miles and
// the value a cost per thousand miles; in Table.ByTime the key is an age in years and the
// value an annual cost.
type Point struct {
	Key   float64
	Value float64
}

// MarshalJSON encodes the point as a two-element array.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Key, p.Value})
}

// UnmarshalJSON decodes a two-element array.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode maintenance point: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode maintenance point: want 2 values, got %d", len(pair))
	}
	p.Key, p.Value = pair[0], pair[1]
	return nil
}

// YearRange is an inclusive [min, max] span of model years.
type YearRange [2]int

// Min returns the lower bound.
func (r YearRange) Min() int { return min(r[0], r[1]) }

// Max returns the upper bound.
func (r YearRange) Max() int { return max(r[0], r[1]) }

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min() && year <= r.Max()
}

// Distance is the number of years between year and the closest boundary, 0 when contained.
func (r YearRange) Distance(year int) int {
	switch {
	case year < r.Min():
		return r.Min() - year
	case year > r.Max():
		return year - r.Max()
	default:
		return 0
	}
}

// Table is the reference upkeep cost for one make/model over a span of model years.
// Both point sequences are expected sorted ascending by key with non-decreasing values.
type Table struct {
	Make      string    `json:"make,omitempty"`
	Model     string    `json:"model,omitempty"`
	YearRange YearRange `json:"year_range"`
	ByMileage []Point   `json:"by_mileage"`
	ByTime    []Point   `json:"by_time"`
}

// Database maps a normalized "make|model" key to the tables for that vehicle, ordered by
// the lower bound of their year range.
type Database map[string][]Table

// Key normalizes a make/model pair into a Database key.
func Key(brand, model string) string {
	return strings.ToLower(strings.TrimSpace(brand)) + "|" + strings.ToLower(strings.TrimSpace(model))
}

// NewDatabase indexes tables by their Make and Model.
func NewDatabase(tables ...Table) Database {
	db := make(Database)
	for _, t := range tables {
		k := Key(t.Make, t.Model)
		db[k] = append(db[k], t)
	}
	for k := range db {
		sortByYear(db[k])
	}
	return db
}

// Lookup returns the tables stored for make/model, or nil when either is blank.
func (db Database) Lookup(brand, model string) []Table {
	if strings.TrimSpace(brand) == "" || strings.TrimSpace(model) == "" {
		return nil
	}
	return db[Key(brand, model)]
}

// Set replaces every table stored for make/model.
func (db Database) Set(brand, model string, tables []Table) {
	k := Key(brand, model)
	if len(tables) == 0 {
		delete(db, k)
		return
	}
	entries := make([]Table, len(tables))
	for i, t := range tables {
		t.Make, t.Model = brand, model
		entries[i] = t
	}
	sortByYear(entries)
	db[k] = entries
}

// Remove deletes every table stored for make/model.
func (db Database) Remove(brand, model string) {
	delete(db, Key(brand, model))
}

// Keys returns the stored keys in sorted order.
func (db Database) Keys() []string {
	keys := make([]string, 0, len(db))
	for k := range db {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// UnmarshalJSON accepts keys in any case and fills Make/Model on entries that omit them.
func (db *Database) UnmarshalJSON(data []byte) error {
	var raw map[string][]Table
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode maintenance database: %w", err)
	}

	out := make(Database, len(raw))
	for key, tables := range raw {
		brand, model, _ := strings.Cut(key, "|")
		for i := range tables {
			if tables[i].Make == "" {
				tables[i].Make = strings.TrimSpace(brand)
			}
			if tables[i].Model == "" {
				tables[i].Model = strings.TrimSpace(model)
			}
		}
		k := Key(brand, model)
		out[k] = append(out[k], tables...)
	}
	for k := range out {
		sortByYear(out[k])
	}

	*db = out
	return nil
}

func sortByYear(tables []Table) {
	slices.SortStableFunc(tables, func(a, b Table) int {
		return a.YearRange.Min() - b.YearRange.Min()
	})
}
