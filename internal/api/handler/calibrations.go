package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/lanterngame/internal/api/middleware"
	"github.com/mcoot/lanterngame/internal/api/request"
	"github.com/mcoot/lanterngame/internal/api/response"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/calibration"
)

// CalibrationHandler handles calibration mission endpoints
type CalibrationHandler struct {
	tracker *calibration.Tracker
}

// NewCalibrationHandler creates a new calibration handler
func NewCalibrationHandler(tracker *calibration.Tracker) *CalibrationHandler {
	return &CalibrationHandler{tracker: tracker}
}

// Start handles POST /api/v1/calibrations
func (h *CalibrationHandler) Start(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())

	var req request.StartCalibrationRequest
	if !decode(w, r, &req) {
		return
	}

	mission, err := h.tracker.Start(r.Context(), owner, model.StationID(req.StationID))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.Created(w, "/api/v1/calibrations/active", response.CalibrationMissionFromModel(mission))
}

// Active handles GET /api/v1/calibrations/active
func (h *CalibrationHandler) Active(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())

	mission, ok, err := h.tracker.GetActive(r.Context(), owner, true)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	resp := response.ActiveCalibration{Active: ok}
	if ok {
		m := response.CalibrationMissionFromModel(mission)
		resp.Mission = &m
	}
	response.JSON(w, http.StatusOK, resp)
}

// History handles GET /api/v1/calibrations/history
func (h *CalibrationHandler) History(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())

	missions, err := h.tracker.ListInactive(r.Context(), owner)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CalibrationMissionsFromModel(missions))
}

// Complete handles POST /api/v1/calibrations/active/complete
func (h *CalibrationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())

	var req request.CompleteCalibrationRequest
	if !decode(w, r, &req) {
		return
	}

	completion, err := h.tracker.Complete(r.Context(), owner, req.Code)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CompletionFromModel(completion))
}

// Cancel handles POST /api/v1/calibrations/active/cancel
func (h *CalibrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())

	mission, err := h.tracker.Cancel(r.Context(), owner)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CalibrationMissionFromModel(mission))
}

// ListAll handles GET /api/v1/admin/calibrations?include_inactive=
func (h *CalibrationHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	include, ok := queryBool(w, r, "include_inactive")
	if !ok {
		return
	}

	missions, err := h.tracker.ListAll(r.Context(), include != nil && *include)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CalibrationMissionsFromModel(missions))
}

// Remove handles DELETE /api/v1/admin/calibrations/{owner}
func (h *CalibrationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	owner := model.PlayerID(mux.Vars(r)["owner"])

	if err := h.tracker.Remove(r.Context(), owner); err != nil {
		WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}
