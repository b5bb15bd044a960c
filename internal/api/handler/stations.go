package handler

import (
	"fmt"
	"net/http"

	"github.com/mcoot/lanterngame/internal/api/request"
	"github.com/mcoot/lanterngame/internal/api/response"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/station"
)

// StationHandler handles station endpoints
type StationHandler struct {
	stations *station.Service
}

// NewStationHandler creates a new station handler
func NewStationHandler(stations *station.Service) *StationHandler {
	return &StationHandler{stations: stations}
}

// List handles GET /api/v1/stations?active=
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	active, ok := queryBool(w, r, "active")
	if !ok {
		return
	}

	stations, err := h.stations.List(r.Context(), active != nil && *active)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StationsFromModel(stations))
}

// Get handles GET /api/v1/stations/{id}
func (h *StationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	s, err := h.stations.Get(r.Context(), model.StationID(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StationFromModel(s))
}

// Create handles POST /api/v1/stations
func (h *StationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateStationRequest
	if !decode(w, r, &req) {
		return
	}

	s, err := h.stations.Create(r.Context(), req.ToModel())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.Created(w, fmt.Sprintf("/api/v1/stations/%d", s.StationID), response.StationFromModel(s))
}

// Update handles PATCH /api/v1/stations/{id}
func (h *StationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateStationRequest
	if !decode(w, r, &req) {
		return
	}
	update, err := req.ToModel()
	if err != nil {
		WriteError(w, r, err)
		return
	}

	s, err := h.stations.Update(r.Context(), model.StationID(id), update)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StationFromModel(s))
}

// Delete handles DELETE /api/v1/stations/{id}
func (h *StationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	if err := h.stations.Remove(r.Context(), model.StationID(id)); err != nil {
		WriteError(w, r, err)
		return
	}

	response.NoContent(w)
}

// ResetSignals handles POST /api/v1/stations/signals
func (h *StationHandler) ResetSignals(w http.ResponseWriter, r *http.Request) {
	var req request.ResetSignalsRequest
	if !decode(w, r, &req) {
		return
	}

	stations, err := h.stations.ResetSignals(r.Context(), req.Value)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StationsFromModel(stations))
}
