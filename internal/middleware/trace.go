package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mcoot/lanterngame/internal/logger"
)

// TraceHeader carries the request trace id in both directions
const TraceHeader = "X-Trace-ID"

// Trace attaches a child of base to the request context, tagged with the
// caller's trace id or a fresh one. The id is echoed in the response.
func Trace(base *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}
			w.Header().Set(TraceHeader, traceID)

			reqLogger := base.WithStr("trace_id", traceID)
			ctx := reqLogger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
