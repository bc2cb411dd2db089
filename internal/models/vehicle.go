// Package models holds the stored vehicle record and its wire decoding.
package models

import (
	"encoding/json"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Simplici0/carcost/internal/coerce"
	"github.com/Simplici0/carcost/internal/tco"
)

// Vehicle is a stored candidate car.
type Vehicle struct {
	ID                    int64     `json:"id"`
	Make                  string    `json:"make"`
	Model                 string    `json:"model"`
	Trim                  string    `json:"trim,omitempty"`
	Year                  int       `json:"year,omitempty"`
	PurchasePrice         float64   `json:"purchase_price"`
	CurrentMileage        float64   `json:"current_mileage"`
	MPG                   float64   `json:"mpg"`
	InsurancePremium6mo   float64   `json:"insurance_premium_6mo"`
	VIN                   string    `json:"vin,omitempty"`
	ListingURL            string    `json:"listing_url,omitempty"`
	Notes                 string    `json:"notes,omitempty"`
	Tags                  []string  `json:"tags"`
	LifetimeMilesOverride *float64  `json:"lifetime_miles_override,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type vehicleWire struct {
	ID                    int64           `json:"id"`
	Make                  string          `json:"make"`
	Model                 string          `json:"model"`
	Trim                  string          `json:"trim"`
	Year                  coerce.Optional `json:"year"`
	PurchasePrice         coerce.Number   `json:"purchase_price"`
	CurrentMileage        coerce.Number   `json:"current_mileage"`
	MPG                   coerce.Number   `json:"mpg"`
	InsurancePremium6mo   *coerce.Number  `json:"insurance_premium_6mo"`
	InsuranceCost         *coerce.Number  `json:"insurance_cost"`
	VIN                   string          `json:"vin"`
	ListingURL            string          `json:"listing_url"`
	Notes                 string          `json:"notes"`
	Tags                  []string        `json:"tags"`
	LifetimeMilesOverride coerce.Optional `json:"lifetime_miles_override"`
}

// UnmarshalJSON accepts numeric fields as numbers or strings. insurance_cost is read as an
// alias of insurance_premium_6mo. Timestamps are never taken from the client.
func (v *Vehicle) UnmarshalJSON(data []byte) error {
	var w vehicleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	insurance := w.InsurancePremium6mo
	if insurance == nil {
		insurance = w.InsuranceCost
	}

	*v = Vehicle{
		ID:                    w.ID,
		Make:                  strings.TrimSpace(w.Make),
		Model:                 strings.TrimSpace(w.Model),
		Trim:                  strings.TrimSpace(w.Trim),
		PurchasePrice:         float64(w.PurchasePrice),
		CurrentMileage:        float64(w.CurrentMileage),
		MPG:                   float64(w.MPG),
		VIN:                   strings.TrimSpace(w.VIN),
		ListingURL:            strings.TrimSpace(w.ListingURL),
		Notes:                 strings.TrimSpace(w.Notes),
		Tags:                  NormalizeTags(w.Tags),
		LifetimeMilesOverride: w.LifetimeMilesOverride.Ptr(),
	}
	if insurance != nil {
		v.InsurancePremium6mo = float64(*insurance)
	}
	if w.Year.Valid {
		v.Year = int(math.Trunc(w.Year.Value))
	}
	return nil
}

// VehicleFromForm builds a vehicle from submitted form values. Tags are comma separated.
func VehicleFromForm(form url.Values) Vehicle {
	insurance := form.Get("insurance_premium_6mo")
	if strings.TrimSpace(insurance) == "" {
		insurance = form.Get("insurance_cost")
	}

	return Vehicle{
		Make:                  strings.TrimSpace(form.Get("make")),
		Model:                 strings.TrimSpace(form.Get("model")),
		Trim:                  strings.TrimSpace(form.Get("trim")),
		Year:                  coerce.Int(form.Get("year")),
		PurchasePrice:         coerce.Float(form.Get("purchase_price")),
		CurrentMileage:        coerce.Float(form.Get("current_mileage")),
		MPG:                   coerce.Float(form.Get("mpg")),
		InsurancePremium6mo:   coerce.Float(insurance),
		VIN:                   strings.TrimSpace(form.Get("vin")),
		ListingURL:            strings.TrimSpace(form.Get("listing_url")),
		Notes:                 strings.TrimSpace(form.Get("notes")),
		Tags:                  NormalizeTags(strings.Split(form.Get("tags"), ",")),
		LifetimeMilesOverride: coerce.OptionalFloat(form.Get("lifetime_miles_override")),
	}
}

// Snapshot returns the engine's view of the vehicle.
func (v Vehicle) Snapshot() tco.Vehicle {
	var override *float64
	if v.LifetimeMilesOverride != nil {
		o := *v.LifetimeMilesOverride
		override = &o
	}
	return tco.Vehicle{
		PurchasePrice:         v.PurchasePrice,
		CurrentMileage:        v.CurrentMileage,
		MPG:                   v.MPG,
		InsurancePremium6mo:   v.InsurancePremium6mo,
		LifetimeMilesOverride: override,
		Make:                  v.Make,
		Model:                 v.Model,
		Year:                  v.Year,
	}
}

// Title is a human label such as "2018 Toyota Prius Two".
func (v Vehicle) Title() string {
	parts := make([]string, 0, 4)
	if v.Year > 0 {
		parts = append(parts, strconv.Itoa(v.Year))
	}
	for _, p := range []string{v.Make, v.Model, v.Trim} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Untitled vehicle"
	}
	return strings.Join(parts, " ")
}

// HasTag reports whether the vehicle carries tag, ignoring case.
func (v Vehicle) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return slices.Contains(v.Tags, tag)
}

// Matches reports whether query appears in the vehicle's make, model, trim, VIN or notes.
func (v Vehicle) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range []string{v.Make, v.Model, v.Trim, v.VIN, v.Notes} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// NormalizeTags trims, lower-cases, de-duplicates and sorts tags. It never returns nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
