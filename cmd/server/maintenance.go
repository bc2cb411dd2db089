package main

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/carcost/internal/maintenance"
)

func (s *server) handleGetMaintenance(w http.ResponseWriter, r *http.Request) {
	db, err := s.store.MaintenanceDatabase(r.Context())
	if err != nil {
		s.writeError(w, r, err, "load maintenance tables")
		return
	}
	writeJSON(w, http.StatusOK, db)
}

// handlePutMaintenance replaces every table of one make/model with the JSON array in the
// body. An empty array removes the make/model.
func (s *server) handlePutMaintenance(w http.ResponseWriter, r *http.Request) {
	brand, model, ok := makeModel(w, r)
	if !ok {
		return
	}

	var tables []maintenance.Table
	if err := decodeJSON(w, r, &tables); err != nil {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid maintenance tables: %v", err))
		return
	}
	for i, t := range tables {
		if err := validateTable(t); err != nil {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("table %d: %v", i, err))
			return
		}
	}

	if err := s.store.ReplaceMaintenance(r.Context(), brand, model, tables); err != nil {
		s.writeError(w, r, err, "save maintenance tables")
		return
	}
	s.triggerRecompute()

	db, err := s.store.MaintenanceDatabase(r.Context())
	if err != nil {
		s.writeError(w, r, err, "load maintenance tables")
		return
	}
	stored := db.Lookup(brand, model)
	if stored == nil {
		stored = []maintenance.Table{}
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *server) handleDeleteMaintenance(w http.ResponseWriter, r *http.Request) {
	brand, model, ok := makeModel(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteMaintenance(r.Context(), brand, model); err != nil {
		s.writeError(w, r, err, "delete maintenance tables")
		return
	}
	s.triggerRecompute()
	w.WriteHeader(http.StatusNoContent)
}

func makeModel(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	brand, errMake := url.PathUnescape(chi.URLParam(r, "make"))
	model, errModel := url.PathUnescape(chi.URLParam(r, "model"))
	brand, model = strings.TrimSpace(brand), strings.TrimSpace(model)
	if errMake != nil || errModel != nil || brand == "" || model == "" {
		writeMessage(w, http.StatusBadRequest, "make and model are required")
		return "", "", false
	}
	return brand, model, true
}

// validateTable checks that both curves are finite and ascending by key.
func validateTable(t maintenance.Table) error {
	curves := []struct {
		name   string
		points []maintenance.Point
	}{
		{"by_mileage", t.ByMileage},
		{"by_time", t.ByTime},
	}
	for _, c := range curves {
		name, points := c.name, c.points
		for i, p := range points {
			if math.IsNaN(p.Key) || math.IsInf(p.Key, 0) || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
				return fmt.Errorf("%s[%d] is not finite", name, i)
			}
			if i > 0 && p.Key < points[i-1].Key {
				return fmt.Errorf("%s must be sorted ascending by key", name)
			}
		}
	}
	return nil
}
