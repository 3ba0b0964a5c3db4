package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/cardlink/internal/api/shared"
	"github.com/phrazzld/cardlink/internal/platform/logger"
)

// NewTraceMiddleware adds a trace ID to the request context and stores a
// logger tagged with it, so handlers using logger.FromContextOrDefault log
// the trace ID without further wiring. It should be applied early in the
// middleware chain.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Attach a trace ID to the request context
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			// Tag the request logger with it
			log := base.With(slog.String("trace_id", traceID))
			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			// Echo the ID to the caller and continue with the tagged logger
			w.Header().Set("X-Trace-ID", traceID)
			next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, log)))
		})
	}
}
