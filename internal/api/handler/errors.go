package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/lanterngame/internal/api/apierr"
	"github.com/mcoot/lanterngame/internal/logger"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// WriteError writes an error response, logging anything that maps to a 5xx
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if status := apierr.Status(err); status >= http.StatusInternalServerError {
		logger.FromRequest(r).Error().Err(err).Int("status", status).Msg("request failed")
	}
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decode reads a JSON body into dst, writing a 400 on failure
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, r, NewInvalidRequestError("invalid request body"))
		return false
	}
	return true
}

// pathInt parses a numeric route variable, writing a 400 on failure
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		WriteError(w, r, NewInvalidRequestError(name+" must be an integer"))
		return 0, false
	}
	return v, true
}

// queryBool parses an optional boolean query parameter
func queryBool(w http.ResponseWriter, r *http.Request, name string) (*bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		WriteError(w, r, NewInvalidRequestError(name+" must be a boolean"))
		return nil, false
	}
	return &v, true
}
