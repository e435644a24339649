// Package logging wires log/slog for the service: console and weekly file
// sinks, package-level helpers and a request logging middleware.
package logging

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// LoggingMiddleware logs HTTP requests using slog with structured logging
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Probes and scrapers hit these constantly
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" || r.URL.Path == "/metrics/prometheus" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				requestID := middleware.GetReqID(r.Context())
				if requestID == "" {
					requestID = "unknown"
				}

				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				attrs := []any{
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
				}
				if r.URL.RawQuery != "" {
					attrs = append(attrs, "query", r.URL.RawQuery)
				}
				attrs = append(attrs,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent(),
					"status_code", status,
					"bytes_written", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
				)

				logger.InfoContext(r.Context(), "HTTP request", attrs...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
