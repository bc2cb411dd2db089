package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Simplici0/carcost/internal/models"
	"github.com/Simplici0/carcost/internal/report"
	"github.com/Simplici0/carcost/internal/tco"
)

type estimateRequest struct {
	Vehicle  models.Vehicle  `json:"vehicle"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type estimateResponse struct {
	Title     string       `json:"title"`
	Settings  tco.Settings `json:"settings"`
	Breakdown report.View  `json:"breakdown"`
}

// handleEstimate prices an unsaved vehicle. A JSON request may override any of the stored
// settings for this one calculation.
func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	in, err := s.loadPricingInputs(r.Context())
	if err != nil {
		s.writeError(w, r, err, "load pricing inputs")
		return
	}

	var vehicle models.Vehicle
	if isJSON(r) {
		var req estimateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid estimate: %v", err))
			return
		}
		if len(req.Settings) > 0 && string(req.Settings) != "null" {
			if err := json.Unmarshal(req.Settings, &in.settings); err != nil {
				writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid settings: %v", err))
				return
			}
			if err := in.settings.Validate(); err != nil {
				writeMessage(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		vehicle = req.Vehicle
	} else {
		if err := r.ParseForm(); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid form")
			return
		}
		vehicle = models.VehicleFromForm(r.PostForm)
	}

	writeJSON(w, http.StatusOK, estimateResponse{
		Title:     vehicle.Title(),
		Settings:  in.settings,
		Breakdown: report.Round(s.breakdownFor(r.Context(), in, vehicle)),
	})
}
