package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidState        = "INVALID_STATE"
	CodeRoundNotActive      = "ROUND_NOT_ACTIVE"
	CodeStationInactive     = "STATION_INACTIVE"
	CodeSessionResolved     = "SESSION_RESOLVED"
	CodeNoTriesLeft         = "NO_TRIES_LEFT"
	CodeCodeMismatch        = "CODE_MISMATCH"
	CodeNoTeam              = "NO_TEAM"
	CodeCredentialPoolEmpty = "CREDENTIAL_POOL_EMPTY"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError. Rule sentinels are matched
// before the kinds they wrap.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrRoundNotActive):
		return &httpError{http.StatusConflict, APIError{CodeRoundNotActive, "Round is not active"}}
	case errors.Is(err, model.ErrStationInactive):
		return &httpError{http.StatusConflict, APIError{CodeStationInactive, "Station is not active"}}
	case errors.Is(err, model.ErrSessionResolved):
		return &httpError{http.StatusConflict, APIError{CodeSessionResolved, "Hack session is already resolved"}}
	case errors.Is(err, model.ErrNoTriesLeft):
		return &httpError{http.StatusConflict, APIError{CodeNoTriesLeft, "No tries left"}}
	case errors.Is(err, model.ErrCodeMismatch):
		return &httpError{http.StatusBadRequest, APIError{CodeCodeMismatch, "Calibration code does not match"}}
	case errors.Is(err, model.ErrNoTeam):
		return &httpError{http.StatusConflict, APIError{CodeNoTeam, "Join a team first"}}
	case errors.Is(err, model.ErrCredentialPoolEmpty):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeCredentialPoolEmpty, "No game users have been seeded"}}

	// Map error kinds; entity errors name the record involved
	case errors.Is(err, model.ErrInvalidInput):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case errors.Is(err, model.ErrNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, err.Error()}}
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, err.Error()}}
	case errors.Is(err, model.ErrInvalidState):
		return &httpError{http.StatusConflict, APIError{CodeInvalidState, err.Error()}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Admin access required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
