package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/mcoot/lanterngame/internal/api/apierr"
	"github.com/mcoot/lanterngame/internal/logger"
)

// AdminTokenHeader carries the shared admin secret
const AdminTokenHeader = "X-Admin-Token"

// Admin guards operator endpoints with a shared token. An empty token
// configures no admin access at all.
func Admin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(AdminTokenHeader)
			if token == "" || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				logger.FromRequest(r).Warn().
					Str("path", r.URL.Path).
					Bool("token_present", given != "").
					Msg("admin access denied")
				apierr.WriteError(w, apierr.NewForbiddenError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
