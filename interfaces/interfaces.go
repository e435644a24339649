// Package interfaces defines the contracts between the HTTP layer and the
// components it reads from, so handlers can be tested with isolated instances.
package interfaces

import (
	"net/http"
	"time"

	"github.com/ergon73/test-github-actions/metrics"
)

// MetricsCollector defines the contract for per-route request accounting.
// Implementations must be safe for concurrent use.
type MetricsCollector interface {
	Begin() metrics.Timer
	End(t metrics.Timer, route string)
	Snapshot() metrics.Snapshot

	// StartedAt returns the fixed process start instant
	StartedAt() time.Time
}

// SystemUptimer reports how long the host has been up.
// Errors mean the host does not expose the information.
type SystemUptimer interface {
	SystemUptime() (time.Duration, error)
}

// LogJanitor removes expired log files and reports how many were deleted
type LogJanitor interface {
	CleanupOldLogs() (int, error)
}

// Scheduler defines the contract for background jobs
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for the informational endpoints
type HTTPHandler interface {
	Root(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	ServerTime(w http.ResponseWriter, r *http.Request)
	SystemInfo(w http.ResponseWriter, r *http.Request)
	Uptime(w http.ResponseWriter, r *http.Request)
	Metrics(w http.ResponseWriter, r *http.Request)
}
