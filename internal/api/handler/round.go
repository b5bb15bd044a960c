package handler

import (
	"net/http"

	"github.com/mcoot/lanterngame/internal/api/request"
	"github.com/mcoot/lanterngame/internal/api/response"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/round"
)

// RoundHandler handles round endpoints
type RoundHandler struct {
	round *round.Service
}

// NewRoundHandler creates a new round handler
func NewRoundHandler(round *round.Service) *RoundHandler {
	return &RoundHandler{round: round}
}

// Get handles GET /api/v1/round
func (h *RoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.round.Get(r.Context()))
}

// Start handles POST /api/v1/round/start
func (h *RoundHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.round.Start(r.Context()))
}

// Stop handles POST /api/v1/round/stop
func (h *RoundHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.round.Stop(r.Context()))
}

// Update handles PATCH /api/v1/round
func (h *RoundHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateRoundRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r)(h.round.Update(r.Context(), req.ToModel()))
}

func (h *RoundHandler) respond(w http.ResponseWriter, r *http.Request) func(*model.Round, error) {
	return func(rd *model.Round, err error) {
		if err != nil {
			WriteError(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, response.RoundFromModel(rd))
	}
}
