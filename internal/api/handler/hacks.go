package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/lanterngame/internal/api/middleware"
	"github.com/mcoot/lanterngame/internal/api/request"
	"github.com/mcoot/lanterngame/internal/api/response"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/hacking"
)

// HackHandler handles hack session endpoints
type HackHandler struct {
	engine *hacking.Engine
}

// NewHackHandler creates a new hack handler
func NewHackHandler(engine *hacking.Engine) *HackHandler {
	return &HackHandler{engine: engine}
}

// Start handles POST /api/v1/hacks
func (h *HackHandler) Start(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())

	var req request.StartHackRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.engine.Start(r.Context(), owner, model.StationID(req.StationID))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.Created(w, "/api/v1/hacks/current", response.HackSessionFromModel(session))
}

// Current handles GET /api/v1/hacks/current?station_id=&done=
func (h *HackHandler) Current(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())

	var stationID model.StationID
	if raw := r.URL.Query().Get("station_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, r, NewInvalidRequestError("station_id must be an integer"))
			return
		}
		stationID = model.StationID(id)
	}
	done, ok := queryBool(w, r, "done")
	if !ok {
		return
	}

	session, err := h.engine.Get(r.Context(), owner, stationID, done)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HackSessionFromModel(session))
}

// Guess handles POST /api/v1/hacks/current/guess. A wrong guess that used
// the last try resolves the session as failed.
func (h *HackHandler) Guess(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())

	var req request.GuessRequest
	if !decode(w, r, &req) {
		return
	}
	guess, coords := req.ToModel()

	result, err := h.engine.Guess(r.Context(), owner, guess, coords)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var resolution *hacking.Resolution
	if result.Exhausted {
		resolution, err = h.engine.Resolve(r.Context(), owner, result.Session.StationID, false, coords)
		if err != nil {
			logger.FromRequest(r).Warn().Err(err).Msg("failed to resolve exhausted hack session")
			resolution = nil
		}
	}

	response.JSON(w, http.StatusOK, response.GuessResponseFromResult(result, resolution))
}

// Abort handles POST /api/v1/hacks/current/abort
func (h *HackHandler) Abort(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Owner(r.Context())

	resolution, err := h.engine.Abort(r.Context(), owner)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResolutionFromModel(resolution))
}
