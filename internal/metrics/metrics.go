// Package metrics exposes Prometheus counters and histograms for job
// runs, cache hits, and rebuild counts, the same promauto-based
// collector shape as the teacher's gateway.MetricsCollector.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Collector holds every Luxera-specific Prometheus metric.
type Collector struct {
	logger *zap.Logger
	reg    prometheus.Gatherer

	jobRunsTotal    *prometheus.CounterVec
	jobRunDuration  *prometheus.HistogramVec
	jobRunErrors    *prometheus.CounterVec
	cacheHitsTotal  *prometheus.CounterVec
	cacheMissTotal  *prometheus.CounterVec
	rebuildsTotal   *prometheus.CounterVec
	agentTurnsTotal *prometheus.CounterVec

	startTime time.Time
}

// Config configures the metrics HTTP server.
type Config struct {
	Enabled bool
	Addr    string
	Path    string
}

// DefaultConfig returns the defaults NewCollector falls back to.
func DefaultConfig() Config {
	return Config{Enabled: true, Addr: ":9090", Path: "/metrics"}
}

// NewCollector registers every metric against reg and returns the
// collector. Passing a fresh prometheus.NewRegistry() per call (rather
// than prometheus.DefaultRegisterer) keeps repeated construction, as
// happens across this package's own tests, from panicking on duplicate
// registration.
func NewCollector(reg *prometheus.Registry, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	return &Collector{
		logger:    logger,
		reg:       reg,
		startTime: time.Now(),

		jobRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luxera_job_runs_total",
				Help: "Total number of calculation job runs.",
			},
			[]string{"backend_id", "kind"},
		),
		jobRunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "luxera_job_run_duration_seconds",
				Help:    "Calculation job run duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend_id", "kind"},
		),
		jobRunErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luxera_job_run_errors_total",
				Help: "Total number of calculation job run failures.",
			},
			[]string{"backend_id", "error_type"},
		),
		cacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luxera_cache_hits_total",
				Help: "Total number of content-addressed result cache hits.",
			},
			[]string{"cache"},
		),
		cacheMissTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luxera_cache_misses_total",
				Help: "Total number of content-addressed result cache misses.",
			},
			[]string{"cache"},
		),
		rebuildsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luxera_rebuilds_total",
				Help: "Total number of dependency-graph rebuild passes.",
			},
			[]string{"reason"},
		),
		agentTurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luxera_agent_turns_total",
				Help: "Total number of agent runtime turns executed.",
			},
			[]string{"had_warnings"},
		),
	}
}

// ObserveJobRun records a completed job run's outcome and duration.
func (c *Collector) ObserveJobRun(backendID, kind string, d time.Duration, err error) {
	c.jobRunsTotal.WithLabelValues(backendID, kind).Inc()
	c.jobRunDuration.WithLabelValues(backendID, kind).Observe(d.Seconds())
	if err != nil {
		c.jobRunErrors.WithLabelValues(backendID, "run_failed").Inc()
	}
}

// ObserveCacheLookup records a cache hit or miss for the named cache
// (e.g. "result" or "agent_memory").
func (c *Collector) ObserveCacheLookup(cache string, hit bool) {
	if hit {
		c.cacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	c.cacheMissTotal.WithLabelValues(cache).Inc()
}

// ObserveRebuild records one dependency-graph rebuild pass.
func (c *Collector) ObserveRebuild(reason string) {
	c.rebuildsTotal.WithLabelValues(reason).Inc()
}

// ObserveAgentTurn records one agent runtime turn.
func (c *Collector) ObserveAgentTurn(hadWarnings bool) {
	label := "false"
	if hadWarnings {
		label = "true"
	}
	c.agentTurnsTotal.WithLabelValues(label).Inc()
}

// Handler returns the promhttp handler exposing this collector's own
// registry (not the global DefaultGatherer) at cfg.Path.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve blocks, running the metrics HTTP server until the process
// exits or ListenAndServe returns an error.
func (c *Collector) Serve(cfg Config) error {
	if !cfg.Enabled {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, c.Handler())

	c.logger.Info("metrics server starting", zap.String("addr", cfg.Addr), zap.String("path", cfg.Path))
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		return fmt.Errorf("metrics: serve: %w", err)
	}
	return nil
}
