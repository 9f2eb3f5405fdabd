package server

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds gateway configuration. Values come from the environment,
// optionally seeded from a .env file.
type Config struct {
	Addr          string
	DBPath        string
	AuditLogPath  string
	OverridesPath string
	HTTPLogJSON   bool
}

// Environment variable names.
const (
	EnvAddr      = "DATAFENCE_ADDR"
	EnvDBPath    = "DATAFENCE_DB"
	EnvAuditLog  = "DATAFENCE_AUDIT_LOG"
	EnvOverrides = "DATAFENCE_OVERRIDES"
	EnvLogJSON   = "DATAFENCE_HTTP_LOG_JSON"
)

// LoadEnv loads a .env file into the process environment if one exists.
// A missing file is not an error.
func LoadEnv(log *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment variables")
		return
	}
	log.Info("loaded configuration from .env file")
}

// ConfigFromEnv reads gateway configuration from the environment,
// falling back to local-development defaults.
func ConfigFromEnv() Config {
	return Config{
		Addr:          envOr(EnvAddr, ":8080"),
		DBPath:        envOr(EnvDBPath, "datafence.db"),
		AuditLogPath:  os.Getenv(EnvAuditLog),
		OverridesPath: os.Getenv(EnvOverrides),
		HTTPLogJSON:   os.Getenv(EnvLogJSON) == "true",
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
