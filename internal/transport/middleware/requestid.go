package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/frahmantamala/permission-management/pkg/logger"
)

// TraceID propagates an inbound trace id (or mints one) into the logging
// context and echoes it on the response.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
