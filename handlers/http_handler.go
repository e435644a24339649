// Package handlers provides the HTTP handlers for the informational endpoints.
// All handlers are read-only; the only state they touch is the metrics collector.
package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/ergon73/test-github-actions/config"
	"github.com/ergon73/test-github-actions/interfaces"
	"github.com/ergon73/test-github-actions/logging"
)

const (
	serviceMessage = "GitHub Actions CI/CD Demo (GHCR + Production Deploy)"
	repository     = "ergon73/test-github-actions"
	registry       = "ghcr.io"

	// dockerMarker is created by the Docker runtime in every container
	dockerMarker = "/.dockerenv"

	// isoTimeFormat is ISO-8601 with microseconds, "Z" for UTC
	isoTimeFormat   = "2006-01-02T15:04:05.000000Z07:00"
	humanTimeFormat = "2006-01-02 15:04:05"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler interface
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	config    *config.Config
	collector interfaces.MetricsCollector
	uptimer   interfaces.SystemUptimer
	endpoints []string

	now          func() time.Time
	getwd        func() (string, error)
	dockerMarker string
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies.
// endpoints is the list of route paths advertised by the root endpoint.
// A nil uptimer reports the system uptime as unavailable.
func NewHTTPHandler(cfg *config.Config, collector interfaces.MetricsCollector, uptimer interfaces.SystemUptimer, endpoints []string) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		config:       cfg,
		collector:    collector,
		uptimer:      uptimer,
		endpoints:    endpoints,
		now:          time.Now,
		getwd:        os.Getwd,
		dockerMarker: dockerMarker,
	}
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	h.RespondWithJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}

func (h *HTTPHandlerImpl) nowUTC() time.Time {
	return h.now().UTC()
}

func formatISO(t time.Time) string {
	return t.UTC().Format(isoTimeFormat)
}
