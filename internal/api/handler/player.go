package handler

import (
	"net/http"

	"github.com/mcoot/lanterngame/internal/api/middleware"
	"github.com/mcoot/lanterngame/internal/api/request"
	"github.com/mcoot/lanterngame/internal/api/response"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/auth"
	"github.com/mcoot/lanterngame/internal/services/wallet"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	authService   *auth.Service
	walletService *wallet.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, walletService *wallet.Service) *PlayerHandler {
	return &PlayerHandler{
		authService:   authService,
		walletService: walletService,
	}
}

// CreateGuest handles POST /api/v1/players/guest
func (h *PlayerHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if !decode(w, r, &req) {
		return
	}

	if req.DisplayName == "" {
		WriteError(w, r, NewInvalidRequestError("display_name is required"))
		return
	}

	session, err := h.authService.CreateGuestPlayer(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Username == "" {
		WriteError(w, r, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, r, NewInvalidRequestError("password is required"))
		return
	}
	if req.DisplayName == "" {
		WriteError(w, r, NewInvalidRequestError("display_name is required"))
		return
	}

	session, err := h.authService.RegisterPlayer(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Username == "" {
		WriteError(w, r, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, r, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustPlayer(r.Context())
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// JoinTeam handles POST /api/v1/players/me/team
func (h *PlayerHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustPlayer(r.Context())

	var req request.JoinTeamRequest
	if !decode(w, r, &req) {
		return
	}

	updated, err := h.authService.JoinTeam(r.Context(), player.ID, model.TeamID(req.TeamID))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(updated))
}

// GetWallet handles GET /api/v1/players/me/wallet
func (h *PlayerHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustPlayer(r.Context())

	balance, err := h.walletService.Balance(r.Context(), player.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Wallet{Balance: balance})
}
