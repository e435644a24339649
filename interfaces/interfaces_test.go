package interfaces

import (
	"testing"

	"github.com/ergon73/test-github-actions/host"
	"github.com/ergon73/test-github-actions/metrics"
)

func TestImplementations(t *testing.T) {
	var _ MetricsCollector = metrics.NewCollector()
	var _ SystemUptimer = host.NewProcUptime("/proc")
}
