package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/ergon73/test-github-actions/logging"
	"github.com/ergon73/test-github-actions/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RootResponse describes the service
type RootResponse struct {
	Message    string   `json:"message"`
	Status     string   `json:"status"`
	Repository string   `json:"repository"`
	Version    string   `json:"version"`
	Registry   string   `json:"registry"`
	Endpoints  []string `json:"endpoints"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type TimeResponse struct {
	ServerTime    string `json:"server_time"`
	Timezone      string `json:"timezone"`
	UnixTimestamp int64  `json:"unix_timestamp"`
	Formatted     string `json:"formatted"`
}

// InfoResponse describes the runtime the service is deployed on.
// PythonVersion mirrors GoVersion: post-deploy smoke checks read that key.
type InfoResponse struct {
	GoVersion        string `json:"go_version"`
	PythonVersion    string `json:"python_version"`
	Platform         string `json:"platform"`
	Hostname         string `json:"hostname"`
	Dockerized       bool   `json:"dockerized"`
	WorkingDirectory string `json:"working_directory"`
	Environment      string `json:"environment"`
	CommitSHA        string `json:"commit_sha"`
}

// UptimeResponse reports process and host uptime; SystemUptimeSec is null when unknown
type UptimeResponse struct {
	NowUTC              string `json:"now_utc"`
	ProcessStartedAtUTC string `json:"process_started_at_utc"`
	ProcessUptimeSec    int64  `json:"process_uptime_sec"`
	SystemUptimeSec     *int64 `json:"system_uptime_sec"`
}

type MetricsResponse struct {
	NowUTC        string                              `json:"now_utc"`
	UptimeSec     int64                               `json:"uptime_sec"`
	TotalRequests uint64                              `json:"total_requests"`
	Endpoints     map[string]metrics.EndpointSnapshot `json:"endpoints"`
}

// Root serves the service descriptor
func (h *HTTPHandlerImpl) Root(w http.ResponseWriter, r *http.Request) {
	endpoints := h.endpoints
	if endpoints == nil {
		endpoints = []string{}
	}

	h.RespondWithJSON(w, http.StatusOK, RootResponse{
		Message:    serviceMessage,
		Status:     "running",
		Repository: repository,
		Version:    h.config.Version,
		Registry:   registry,
		Endpoints:  endpoints,
	})
}

// HealthCheck always reports healthy: answering at all is the signal
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: formatISO(h.nowUTC()),
	})
}

// ServerTime returns one instant in several representations
func (h *HTTPHandlerImpl) ServerTime(w http.ResponseWriter, r *http.Request) {
	now := h.nowUTC()

	h.RespondWithJSON(w, http.StatusOK, TimeResponse{
		ServerTime:    formatISO(now),
		Timezone:      "UTC",
		UnixTimestamp: now.Unix(),
		Formatted:     now.Format(humanTimeFormat),
	})
}

// SystemInfo reports the runtime, host and build labels
func (h *HTTPHandlerImpl) SystemInfo(w http.ResponseWriter, r *http.Request) {
	wd, err := h.getwd()
	if err != nil {
		logging.Error("Failed to read working directory", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Working directory unavailable")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, InfoResponse{
		GoVersion:        runtime.Version(),
		PythonVersion:    runtime.Version(),
		Platform:         platformString(runtime.GOOS, runtime.GOARCH),
		Hostname:         h.config.Hostname,
		Dockerized:       fileExists(h.dockerMarker),
		WorkingDirectory: wd,
		Environment:      h.config.Environment,
		CommitSHA:        h.config.CommitSHA,
	})
}

// Uptime reports process uptime and, when the host exposes it, system uptime
func (h *HTTPHandlerImpl) Uptime(w http.ResponseWriter, r *http.Request) {
	now := h.nowUTC()
	startedAt := h.collector.StartedAt()

	processUptime := now.Sub(startedAt)
	if processUptime < 0 {
		processUptime = 0
	}

	h.RespondWithJSON(w, http.StatusOK, UptimeResponse{
		NowUTC:              formatISO(now),
		ProcessStartedAtUTC: formatISO(startedAt),
		ProcessUptimeSec:    int64(processUptime / time.Second),
		SystemUptimeSec:     h.systemUptimeSeconds(),
	})
}

// Metrics serves the collector snapshot. The current request is recorded
// after it returns, so it is not part of its own snapshot.
func (h *HTTPHandlerImpl) Metrics(w http.ResponseWriter, r *http.Request) {
	snap := h.collector.Snapshot()
	if snap.Endpoints == nil {
		snap.Endpoints = map[string]metrics.EndpointSnapshot{}
	}

	h.RespondWithJSON(w, http.StatusOK, MetricsResponse{
		NowUTC:        formatISO(h.nowUTC()),
		UptimeSec:     snap.UptimeSec,
		TotalRequests: snap.TotalRequests,
		Endpoints:     snap.Endpoints,
	})
}

func (h *HTTPHandlerImpl) systemUptimeSeconds() *int64 {
	if h.uptimer == nil {
		return nil
	}

	uptime, err := h.uptimer.SystemUptime()
	if err != nil {
		logging.Debug("System uptime unavailable", "error", err)
		return nil
	}

	seconds := int64(uptime / time.Second)
	return &seconds
}

// platformString renders e.g. "Linux-amd64"
func platformString(goos, goarch string) string {
	return cases.Title(language.Und).String(goos) + "-" + goarch
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
