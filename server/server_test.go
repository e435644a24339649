package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ergon73/test-github-actions/config"
	"github.com/ergon73/test-github-actions/handlers"
	"github.com/ergon73/test-github-actions/host"
	"github.com/ergon73/test-github-actions/metrics"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:        "5000",
		Address:     "127.0.0.1",
		Environment: "test",
		Hostname:    "test-host",
		CommitSHA:   "deadbeef",
		Version:     "1.0.0",
		LogLevel:    "info",
	}
}

func newTestServer(t *testing.T) (*Server, *metrics.Collector) {
	t.Helper()
	collector := metrics.NewCollector()
	uptimer := host.NewProcUptime(filepath.Join(t.TempDir(), "missing-proc"))
	return NewServer(testConfig(), collector, uptimer), collector
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestNewServer(t *testing.T) {
	s, collector := newTestServer(t)

	if s.server.Addr != "127.0.0.1:5000" {
		t.Errorf("Expected server address 127.0.0.1:5000, got %s", s.server.Addr)
	}
	if s.collector != collector {
		t.Error("Collector should be set correctly")
	}
	if s.server.ReadTimeout != 15*time.Second || s.server.WriteTimeout != 15*time.Second {
		t.Errorf("Unexpected timeouts: read %v write %v", s.server.ReadTimeout, s.server.WriteTimeout)
	}
}

func TestAllRoutesRespondWithJSON(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/", "/health", "/time", "/info", "/uptime", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			rr := get(t, s.Handler(), path)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200 for %s, got %d", path, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Expected JSON content type for %s, got %s", path, ct)
			}
			if !json.Valid(rr.Body.Bytes()) {
				t.Errorf("Invalid JSON for %s: %s", path, rr.Body.String())
			}
		})
	}
}

func TestRootListsRegisteredEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	var body handlers.RootResponse
	if err := json.Unmarshal(get(t, s.Handler(), "/").Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}

	expected := "/,/health,/time,/info,/uptime,/metrics,/metrics/prometheus"
	if got := strings.Join(body.Endpoints, ","); got != expected {
		t.Errorf("Expected endpoints %s, got %s", expected, got)
	}
}

func TestMetricsScenario(t *testing.T) {
	s, _ := newTestServer(t)

	var first handlers.MetricsResponse
	if err := json.Unmarshal(get(t, s.Handler(), "/metrics").Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	// /metrics is recorded after its own snapshot is taken
	if first.TotalRequests != 0 {
		t.Errorf("Expected 0 requests on first /metrics, got %d", first.TotalRequests)
	}

	for i := 0; i < 3; i++ {
		if rr := get(t, s.Handler(), "/health"); rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
	}

	var second handlers.MetricsResponse
	if err := json.Unmarshal(get(t, s.Handler(), "/metrics").Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}

	if got := second.Endpoints["health"].Count; got != 3 {
		t.Errorf("Expected health count 3, got %d", got)
	}
	if got := second.Endpoints["metrics"].Count; got != 1 {
		t.Errorf("Expected metrics count 1, got %d", got)
	}
	if second.TotalRequests != 4 {
		t.Errorf("Expected 4 total requests, got %d", second.TotalRequests)
	}
	if second.UptimeSec < first.UptimeSec || first.UptimeSec < 0 {
		t.Errorf("Uptime should be non-negative and non-decreasing: %d then %d", first.UptimeSec, second.UptimeSec)
	}
}

func TestUnknownRouteIsCounted(t *testing.T) {
	s, collector := newTestServer(t)

	if rr := get(t, s.Handler(), "/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}

	if got := collector.Snapshot().Endpoints[metrics.UnknownRoute].Count; got != 1 {
		t.Errorf("Expected 1 unknown request, got %d", got)
	}
}

func TestTrailingSlashRedirects(t *testing.T) {
	s, _ := newTestServer(t)

	rr := get(t, s.Handler(), "/health/")
	if rr.Code != http.StatusMovedPermanently {
		t.Fatalf("Expected 301, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.HasSuffix(loc, "/health") {
		t.Errorf("Expected redirect to /health, got %s", loc)
	}
}

func TestUptimeWithoutProcfsReturnsNull(t *testing.T) {
	s, _ := newTestServer(t)

	rr := get(t, s.Handler(), "/uptime")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"system_uptime_sec":null`) {
		t.Errorf("Expected null system uptime, got %s", rr.Body.String())
	}
}

func TestPrometheusEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	get(t, s.Handler(), "/health")

	rr := get(t, s.Handler(), "/metrics/prometheus")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `http_request_total{method="GET",route="health",status="200"} 1`) {
		t.Errorf("Expected health counter in exposition, got %s", rr.Body.String())
	}
}

func TestStartAndShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "0"
	s := NewServer(cfg, metrics.NewCollector(), nil)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	// Give ListenAndServe a moment to bind
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Expected ErrServerClosed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestStartFailsWhenPortIsTaken(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve a port: %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	s := NewServer(cfg, metrics.NewCollector(), nil)

	err = s.Start()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Expected bind error, got %v", err)
	}
}
