// Command luxerad is Luxera's process entry point: it loads
// configuration, wires the metrics and HTTP surfaces, and blocks
// serving requests. Flag parsing beyond urfave/cli's own bootstrap is
// out of scope (spec.md excludes CLI argument parsing); the library is
// still exercised for process entry the way the teacher's go.mod
// carries it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"luxera/internal/cache"
	"luxera/internal/config"
	"luxera/internal/httpapi"
	"luxera/internal/metrics"
	"luxera/internal/store/pgstore"
)

func main() {
	app := &cli.App{
		Name:  "luxerad",
		Usage: "run the Luxera deterministic lighting-design service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Usage: "path to a .env file"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return fmt.Errorf("luxerad: load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("luxerad: build logger: %w", err)
	}
	defer logger.Sync()

	collector := metrics.NewCollector(prometheus.NewRegistry(), logger)
	metricsCfg := metrics.DefaultConfig()
	metricsCfg.Addr = cfg.MetricsAddr
	metricsCfg.Enabled = cfg.MetricsEnabled
	go func() {
		if err := collector.Serve(metricsCfg); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	var store *pgstore.Store
	if cfg.DatabaseURL != "" {
		store, err = pgstore.Open(pgstore.DefaultConfig(cfg.DatabaseURL), logger)
		if err != nil {
			return fmt.Errorf("luxerad: open pgstore: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(context.Background()); err != nil {
			return fmt.Errorf("luxerad: migrate pgstore: %w", err)
		}
		logger.Info("pgstore index enabled", zap.String("database_url_set", "true"))
	}

	var resultCache *cache.Cache
	if cfg.RedisAddr != "" {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.Addr = cfg.RedisAddr
		resultCache = cache.New(cacheCfg)
		defer resultCache.Close()
		logger.Info("redis result cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	server := httpapi.New(httpapi.Config{
		Addr:           cfg.HTTPAddr,
		ProjectRoot:    cfg.ProjectRoot,
		ResultsRoot:    cfg.ResultsRoot,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Store:          store,
		Cache:          resultCache,
	}, logger)

	logger.Info("luxerad starting",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("project_root", cfg.ProjectRoot),
		zap.String("solver_version", cfg.SolverVersion))

	return server.ListenAndServe()
}
