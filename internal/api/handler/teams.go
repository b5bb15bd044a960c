package handler

import (
	"fmt"
	"net/http"

	"github.com/mcoot/lanterngame/internal/api/request"
	"github.com/mcoot/lanterngame/internal/api/response"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/scoring"
	"github.com/mcoot/lanterngame/internal/services/team"
)

// TeamHandler handles team and scoreboard endpoints
type TeamHandler struct {
	teams   *team.Service
	scoring *scoring.Service
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teams *team.Service, scoring *scoring.Service) *TeamHandler {
	return &TeamHandler{teams: teams, scoring: scoring}
}

// List handles GET /api/v1/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TeamsFromModel(teams))
}

// Get handles GET /api/v1/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	t, err := h.teams.Get(r.Context(), model.TeamID(id))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TeamFromModel(t))
}

// Create handles POST /api/v1/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTeamRequest
	if !decode(w, r, &req) {
		return
	}

	t, err := h.teams.Create(r.Context(), req.ToModel())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.Created(w, fmt.Sprintf("/api/v1/teams/%d", t.TeamID), response.TeamFromModel(t))
}

// Update handles PATCH /api/v1/teams/{id}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateTeamRequest
	if !decode(w, r, &req) {
		return
	}

	t, err := h.teams.Update(r.Context(), model.TeamID(id), req.ToModel())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TeamFromModel(t))
}

// Delete handles DELETE /api/v1/teams/{id}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	if err := h.teams.Remove(r.Context(), model.TeamID(id)); err != nil {
		WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// ResetPoints handles POST /api/v1/teams/points/reset
func (h *TeamHandler) ResetPoints(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.ResetAllPoints(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TeamsFromModel(teams))
}

// Standings handles GET /api/v1/standings
func (h *TeamHandler) Standings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.scoring.Standings(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StandingsFromModel(standings))
}
