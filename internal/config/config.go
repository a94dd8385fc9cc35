// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as database paths, logging, audit limits, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nezarts/jewelry-catalog/internal/sysutil"
	"github.com/nezarts/jewelry-catalog/internal/utils"
)

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "jewelry-catalog")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AuditConfig defines audit log behavior.
type AuditConfig struct {
	MaxQueryLimit int     // AUDIT_MAX_QUERY: cap on log query results
	DiagRPS       float64 // AUDIT_DIAG_RPS: diagnostic lines per second on write failure
	DiagBurst     int     // AUDIT_DIAG_BURST: diagnostic burst size
}

// Config holds all configuration values for the application.
type Config struct {
	// Databases. The catalog and log stores are independent schema
	// domains and must live in separate files.
	CatalogDBPath string // CATALOG_DB_PATH (legacy fallback: DB_PATH)
	LogsDBPath    string // LOGS_DB_PATH

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Audit
	Audit AuditConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables (after sourcing an
// optional .env file), applies defaults, normalizes values, and validates
// the result.
func Load() (Config, error) {
	// Missing .env is the common case outside dev; ignore it.
	_ = godotenv.Load()

	cfg := Config{
		CatalogDBPath: sysutil.FirstNonEmpty(os.Getenv("CATALOG_DB_PATH"), os.Getenv("DB_PATH"), "catalog.db"),
		LogsDBPath:    getenv("LOGS_DB_PATH", "logs.db"),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		Audit: AuditConfig{
			MaxQueryLimit: getint("AUDIT_MAX_QUERY", 500),
			DiagRPS:       getfloat("AUDIT_DIAG_RPS", 1.0),
			DiagBurst:     getint("AUDIT_DIAG_BURST", 5),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "jewelry-catalog"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.CatalogDBPath) == "" {
		return cfg, errors.New("CATALOG_DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.LogsDBPath) == "" {
		return cfg, errors.New("LOGS_DB_PATH must not be empty")
	}
	if cfg.CatalogDBPath == cfg.LogsDBPath {
		return cfg, errors.New("CATALOG_DB_PATH and LOGS_DB_PATH must differ")
	}
	if cfg.Audit.MaxQueryLimit < 1 {
		return cfg, errors.New("AUDIT_MAX_QUERY must be >= 1")
	}
	if cfg.Audit.DiagRPS < 0 {
		return cfg, errors.New("AUDIT_DIAG_RPS must be >= 0")
	}
	if cfg.Audit.DiagBurst < 1 {
		return cfg, errors.New("AUDIT_DIAG_BURST must be >= 1")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return utils.AtoiDefault(v, def)
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if sysutil.IsTruthy(v) {
			return true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}
