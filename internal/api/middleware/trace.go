package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/platform/logger"
)

// TraceIDHeader carries the trace ID on responses and, when set by a
// proxy, on requests.
const TraceIDHeader = "X-Request-ID"

// maxIncomingTraceID bounds a client-supplied trace ID.
const maxIncomingTraceID = 64

// NewTraceMiddleware returns middleware that assigns each request a trace
// ID, echoes it in the response header and installs a logger carrying it in
// the request context.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if incoming := r.Header.Get(TraceIDHeader); incoming != "" && len(incoming) <= maxIncomingTraceID {
				ctx = shared.WithTraceID(ctx, incoming)
			} else {
				ctx = shared.SetTraceID(ctx)
			}
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)
			w.Header().Set(TraceIDHeader, traceID)

			start := time.Now()
			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))

			log.Debug("request finished",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration", time.Since(start)))
		})
	}
}
