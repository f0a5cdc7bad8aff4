package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestObserveJobRun_IncrementsCounterAndHistogram(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry(), nil)
	c.ObserveJobRun("radiosity", "indoor", 5*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "luxera_job_runs_total")
	assert.Contains(t, rec.Body.String(), "luxera_job_run_duration_seconds")
}

func TestObserveJobRun_RecordsErrorCounter(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry(), nil)
	c.ObserveJobRun("radiosity", "indoor", time.Millisecond, assert.AnError)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "luxera_job_run_errors_total")
}

func TestObserveCacheLookup_SplitsHitsAndMisses(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry(), nil)
	c.ObserveCacheLookup("result", true)
	c.ObserveCacheLookup("result", false)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "luxera_cache_hits_total")
	assert.Contains(t, body, "luxera_cache_misses_total")
}

func TestDefaultConfig_EnabledByDefault(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "/metrics", cfg.Path)
}

func TestServe_NoopWhenDisabled(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry(), nil)
	err := c.Serve(Config{Enabled: false})
	assert.NoError(t, err)
}
