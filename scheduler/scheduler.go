// Package scheduler runs the service's background jobs: an hourly request
// summary in the logs and a daily cleanup of expired log files.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/ergon73/test-github-actions/interfaces"
	"github.com/ergon73/test-github-actions/logging"
	"github.com/ergon73/test-github-actions/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles periodic jobs using dependency injection
type Scheduler struct {
	collector interfaces.MetricsCollector
	janitor   interfaces.LogJanitor
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance. A nil janitor skips log cleanup.
func NewScheduler(collector interfaces.MetricsCollector, janitor interfaces.LogJanitor) *Scheduler {
	return &Scheduler{
		collector: collector,
		janitor:   janitor,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start registers the jobs and starts the scheduler asynchronously
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Hour().WaitForSchedule().Do(s.logMetricsSummary); err != nil {
		return fmt.Errorf("failed to schedule metrics summary: %w", err)
	}

	if s.janitor != nil {
		if _, err := s.scheduler.Every(1).Day().At("03:00").Do(s.cleanupLogs); err != nil {
			return fmt.Errorf("failed to schedule log cleanup: %w", err)
		}
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "jobs", s.scheduler.Len())

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) logMetricsSummary() {
	snap := s.collector.Snapshot()

	attrs := []any{
		"uptime_sec", snap.UptimeSec,
		"total_requests", snap.TotalRequests,
		"routes", len(snap.Endpoints),
	}
	if route, count := busiestRoute(snap.Endpoints); route != "" {
		attrs = append(attrs, "busiest_route", route, "busiest_count", count)
	}

	logging.Info("Request metrics summary", attrs...)
}

func (s *Scheduler) cleanupLogs() {
	deleted, err := s.janitor.CleanupOldLogs()
	if err != nil {
		logging.Warn("Failed to cleanup old logs", "error", err)
		return
	}
	if deleted > 0 {
		logging.Info("Cleaned up old log files", "deleted", deleted)
	}
}

// busiestRoute picks the highest count, ties broken by name
func busiestRoute(endpoints map[string]metrics.EndpointSnapshot) (string, uint64) {
	names := make([]string, 0, len(endpoints))
	for name := range endpoints {
		names = append(names, name)
	}
	sort.Strings(names)

	var best string
	var bestCount uint64
	for _, name := range names {
		if c := endpoints[name].Count; c > bestCount {
			best, bestCount = name, c
		}
	}
	return best, bestCount
}
