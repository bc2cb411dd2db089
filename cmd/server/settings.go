package main

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Simplici0/carcost/internal/tco"
)

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.writeError(w, r, err, "load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handlePutSettings replaces the settings. Fields missing from the request keep their
// stored values.
func (s *server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.store.Settings(r.Context())
	if err != nil {
		s.writeError(w, r, err, "load settings")
		return
	}

	settings, err := parseSettings(w, r, current)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateSettings(r.Context(), settings); err != nil {
		s.writeError(w, r, err, "save settings")
		return
	}
	s.triggerRecompute()

	writeJSON(w, http.StatusOK, settings)
}

func parseSettings(w http.ResponseWriter, r *http.Request, base tco.Settings) (tco.Settings, error) {
	settings := base

	if isJSON(r) {
		if err := decodeJSON(w, r, &settings); err != nil {
			return base, fmt.Errorf("invalid settings: %w", err)
		}
		return settings, settings.Validate()
	}

	if err := r.ParseForm(); err != nil {
		return base, fmt.Errorf("invalid form")
	}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"opportunity_cost_rate", &settings.OpportunityCostRate},
		{"annual_mileage", &settings.AnnualMileage},
		{"lifetime_miles", &settings.LifetimeMiles},
		{"average_gas_price", &settings.AvgGasPrice},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(r.FormValue(f.name))
		if raw == "" {
			continue
		}
		v, err := parseNonNegativeFloat(raw, f.name)
		if err != nil {
			return base, err
		}
		*f.dst = v
	}
	return settings, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}
