// Package config loads Luxera's runtime configuration from environment
// variables, an optional .env file, and an optional YAML preset, the same
// layered way the teacher's db.Connect reads DATABASE_URL and the
// DB_* pool-tuning variables via viper.AutomaticEnv.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config binds the environment variables every long-lived Luxera
// component reads at startup.
type Config struct {
	ProjectRoot    string        `yaml:"project_root"`
	CacheRoot      string        `yaml:"cache_root"`
	ResultsRoot    string        `yaml:"results_root"`
	SolverVersion  string        `yaml:"solver_version"`
	BackendVersion string        `yaml:"backend_version"`

	DatabaseURL string `yaml:"database_url"`
	RedisAddr   string `yaml:"redis_addr"`

	HTTPAddr        string        `yaml:"http_addr"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`

	SessionSigningKey string `yaml:"session_signing_key"`

	MetricsEnabled bool   `yaml:"metrics_enabled"`
	MetricsAddr    string `yaml:"metrics_addr"`
}

// Default returns the configuration a bare `luxerad` invocation runs
// with when no environment variables or preset are supplied.
func Default() Config {
	return Config{
		ProjectRoot:    "./projects",
		CacheRoot:      "./.luxera-cache",
		ResultsRoot:    "./.luxera-results",
		SolverVersion:  "v1",
		BackendVersion: "v1",
		HTTPAddr:       ":8080",
		RateLimitRPS:   10,
		RateLimitBurst: 20,
		RequestTimeout: 30 * time.Second,
		MetricsEnabled: true,
		MetricsAddr:    ":9090",
	}
}

// Load reads a .env file (if present at envPath; a missing file is not
// an error, mirroring godotenv's use elsewhere in the teacher's stack),
// then overlays environment variables via viper, the same
// AutomaticEnv/GetString pattern db.Connect uses for DATABASE_URL and
// the DB_* pool settings.
func Load(envPath string) (Config, error) {
	cfg := Default()

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !isNotExist(err) {
			return cfg, fmt.Errorf("config: load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("LUXERA")
	v.AutomaticEnv()

	if s := v.GetString("PROJECT_ROOT"); s != "" {
		cfg.ProjectRoot = s
	}
	if s := v.GetString("CACHE_ROOT"); s != "" {
		cfg.CacheRoot = s
	}
	if s := v.GetString("RESULTS_ROOT"); s != "" {
		cfg.ResultsRoot = s
	}
	if s := v.GetString("SOLVER_VERSION"); s != "" {
		cfg.SolverVersion = s
	}
	if s := v.GetString("BACKEND_VERSION"); s != "" {
		cfg.BackendVersion = s
	}
	if s := v.GetString("DATABASE_URL"); s != "" {
		cfg.DatabaseURL = s
	}
	if s := v.GetString("REDIS_ADDR"); s != "" {
		cfg.RedisAddr = s
	}
	if s := v.GetString("HTTP_ADDR"); s != "" {
		cfg.HTTPAddr = s
	}
	if s := v.GetString("SESSION_SIGNING_KEY"); s != "" {
		cfg.SessionSigningKey = s
	}
	if s := v.GetString("METRICS_ADDR"); s != "" {
		cfg.MetricsAddr = s
	}
	if s := v.GetString("METRICS_ENABLED"); s != "" {
		cfg.MetricsEnabled = strings.EqualFold(s, "true")
	}
	if s := v.GetString("RATE_LIMIT_RPS"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			cfg.RateLimitRPS = f
		}
	}
	if s := v.GetString("RATE_LIMIT_BURST"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.RateLimitBurst = n
		}
	}
	if s := v.GetString("REQUEST_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}

	return cfg, nil
}

// LoadYAMLPreset overlays a YAML project preset (the Go home of
// original_source's project/presets feature) onto cfg, returning the
// merged result. Only non-zero fields in the preset override cfg.
func LoadYAMLPreset(cfg Config, data []byte) (Config, error) {
	var preset Config
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return cfg, fmt.Errorf("config: parse yaml preset: %w", err)
	}
	merged := cfg
	mergeNonZero(&merged, preset)
	return merged, nil
}

func mergeNonZero(dst *Config, src Config) {
	if src.ProjectRoot != "" {
		dst.ProjectRoot = src.ProjectRoot
	}
	if src.CacheRoot != "" {
		dst.CacheRoot = src.CacheRoot
	}
	if src.ResultsRoot != "" {
		dst.ResultsRoot = src.ResultsRoot
	}
	if src.SolverVersion != "" {
		dst.SolverVersion = src.SolverVersion
	}
	if src.BackendVersion != "" {
		dst.BackendVersion = src.BackendVersion
	}
	if src.DatabaseURL != "" {
		dst.DatabaseURL = src.DatabaseURL
	}
	if src.RedisAddr != "" {
		dst.RedisAddr = src.RedisAddr
	}
	if src.HTTPAddr != "" {
		dst.HTTPAddr = src.HTTPAddr
	}
	if src.RateLimitRPS != 0 {
		dst.RateLimitRPS = src.RateLimitRPS
	}
	if src.RateLimitBurst != 0 {
		dst.RateLimitBurst = src.RateLimitBurst
	}
	if src.RequestTimeout != 0 {
		dst.RequestTimeout = src.RequestTimeout
	}
	if src.SessionSigningKey != "" {
		dst.SessionSigningKey = src.SessionSigningKey
	}
	if src.MetricsAddr != "" {
		dst.MetricsAddr = src.MetricsAddr
	}
	if src.MetricsEnabled {
		dst.MetricsEnabled = true
	}
}

func isNotExist(err error) bool {
	return strings.Contains(err.Error(), "no such file") || strings.Contains(err.Error(), "cannot find the file")
}
