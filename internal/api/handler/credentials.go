package handler

import (
	"net/http"

	"github.com/mcoot/lanterngame/internal/api/request"
	"github.com/mcoot/lanterngame/internal/api/response"
	"github.com/mcoot/lanterngame/internal/services/credentials"
)

// CredentialHandler handles the admin credential pool endpoints
type CredentialHandler struct {
	credentials *credentials.Service
}

// NewCredentialHandler creates a new credential handler
func NewCredentialHandler(credentials *credentials.Service) *CredentialHandler {
	return &CredentialHandler{credentials: credentials}
}

// SeedGameUsers handles POST /api/v1/game-users
func (h *CredentialHandler) SeedGameUsers(w http.ResponseWriter, r *http.Request) {
	var req request.SeedGameUsersRequest
	if !decode(w, r, &req) {
		return
	}

	created, err := h.credentials.SeedGameUsers(r.Context(), req.ToModel())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SeedResult{Submitted: len(req.GameUsers), Created: created})
}

// ListGameUsers handles GET /api/v1/game-users
func (h *CredentialHandler) ListGameUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.credentials.ListGameUsers(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameUsersFromModel(users))
}

// AddFakePasswords handles POST /api/v1/fake-passwords
func (h *CredentialHandler) AddFakePasswords(w http.ResponseWriter, r *http.Request) {
	var req request.AddFakePasswordsRequest
	if !decode(w, r, &req) {
		return
	}

	passwords, err := h.credentials.AddFakePasswords(r.Context(), req.Passwords)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.FakePasswords{Passwords: passwords})
}

// ListFakePasswords handles GET /api/v1/fake-passwords
func (h *CredentialHandler) ListFakePasswords(w http.ResponseWriter, r *http.Request) {
	passwords, err := h.credentials.ListFakePasswords(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.FakePasswords{Passwords: passwords})
}
