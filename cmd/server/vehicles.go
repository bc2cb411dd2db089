package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/carcost/internal/maintenance"
	"github.com/Simplici0/carcost/internal/models"
	"github.com/Simplici0/carcost/internal/report"
	"github.com/Simplici0/carcost/internal/store"
	"github.com/Simplici0/carcost/internal/tco"
)

type vehicleView struct {
	Vehicle   models.Vehicle `json:"vehicle"`
	Title     string         `json:"title"`
	Breakdown report.View    `json:"breakdown"`
}

// pricingInputs are the shared inputs of every breakdown in one request.
type pricingInputs struct {
	settings tco.Settings
	db       maintenance.Database
}

func (s *server) loadPricingInputs(ctx context.Context) (pricingInputs, error) {
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return pricingInputs{}, err
	}
	db, err := s.store.MaintenanceDatabase(ctx)
	if err != nil {
		return pricingInputs{}, err
	}
	return pricingInputs{settings: settings, db: db}, nil
}

func (s *server) breakdownFor(ctx context.Context, in pricingInputs, v models.Vehicle) tco.Breakdown {
	return s.memo.Breakdown(ctx, in.settings, v.Snapshot(), in.db)
}

func (s *server) viewFor(ctx context.Context, in pricingInputs, v models.Vehicle) vehicleView {
	return vehicleView{Vehicle: v, Title: v.Title(), Breakdown: report.Round(s.breakdownFor(ctx, in, v))}
}

// rankedViews prices vehicles and orders them by sortKey.
func (s *server) rankedViews(ctx context.Context, in pricingInputs, vehicles []models.Vehicle, sortKey string) ([]vehicleView, error) {
	byID := make(map[int64]models.Vehicle, len(vehicles))
	entries := make([]report.Entry, 0, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
		entries = append(entries, report.Entry{ID: v.ID, Title: v.Title(), Breakdown: s.breakdownFor(ctx, in, v)})
	}
	if err := report.SortEntries(entries, sortKey); err != nil {
		return nil, err
	}

	views := make([]vehicleView, 0, len(entries))
	for _, e := range entries {
		views = append(views, vehicleView{Vehicle: byID[e.ID], Title: e.Title, Breakdown: report.Round(e.Breakdown)})
	}
	return views, nil
}

func (s *server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sortKey := strings.TrimSpace(query.Get("sort"))
	if !report.ValidSortKey(sortKey) {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown sort %q", sortKey))
		return
	}

	vehicles, err := s.store.ListVehicles(r.Context(), store.VehicleFilter{
		Query: query.Get("q"),
		Tag:   query.Get("tag"),
	})
	if err != nil {
		s.writeError(w, r, err, "load vehicles")
		return
	}
	in, err := s.loadPricingInputs(r.Context())
	if err != nil {
		s.writeError(w, r, err, "load pricing inputs")
		return
	}

	views, err := s.rankedViews(r.Context(), in, vehicles, sortKey)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := decodeVehicle(w, r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateVehicle(r.Context(), v)
	if err != nil {
		s.writeError(w, r, err, "create vehicle")
		return
	}
	s.triggerRecompute()
	s.respondWithVehicle(w, r, http.StatusCreated, created)
}

func (s *server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}
	v, err := s.store.GetVehicle(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "load vehicle")
		return
	}
	s.respondWithVehicle(w, r, http.StatusOK, v)
}

func (s *server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}
	v, err := decodeVehicle(w, r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.UpdateVehicle(r.Context(), id, v)
	if err != nil {
		s.writeError(w, r, err, "update vehicle")
		return
	}
	s.triggerRecompute()
	s.respondWithVehicle(w, r, http.StatusOK, updated)
}

func (s *server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteVehicle(r.Context(), id); err != nil {
		s.writeError(w, r, err, "delete vehicle")
		return
	}
	s.triggerRecompute()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleVehicleSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}
	v, err := s.store.GetVehicle(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "load vehicle")
		return
	}
	in, err := s.loadPricingInputs(r.Context())
	if err != nil {
		s.writeError(w, r, err, "load pricing inputs")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(report.Summary(v.Title(), s.breakdownFor(r.Context(), in, v))))
}

func (s *server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTags(r.Context())
	if err != nil {
		s.writeError(w, r, err, "load tags")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *server) respondWithVehicle(w http.ResponseWriter, r *http.Request, status int, v models.Vehicle) {
	in, err := s.loadPricingInputs(r.Context())
	if err != nil {
		s.writeError(w, r, err, "load pricing inputs")
		return
	}
	writeJSON(w, status, s.viewFor(r.Context(), in, v))
}

func vehicleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid vehicle id")
		return 0, false
	}
	return id, true
}

// decodeVehicle reads a vehicle from a JSON body or a submitted form. Malformed numbers
// become 0; only an unreadable body is an error.
func decodeVehicle(w http.ResponseWriter, r *http.Request) (models.Vehicle, error) {
	if isJSON(r) {
		var v models.Vehicle
		if err := decodeJSON(w, r, &v); err != nil {
			return models.Vehicle{}, fmt.Errorf("invalid vehicle: %w", err)
		}
		return v, nil
	}

	if err := r.ParseForm(); err != nil {
		return models.Vehicle{}, fmt.Errorf("invalid form")
	}
	return models.VehicleFromForm(r.PostForm), nil
}
