// Package bootstrap builds the application graph from configuration: the
// logger, the session record store, the backend and the services on top.
package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Mendozape/PayComMobile/config"
)

// InitLogger initializes the structured logger. Output goes to w, stderr when
// nil, so command output on stdout stays parseable.
func InitLogger(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateConfig rejects combinations that cannot start.
func ValidateConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.Auth.Mode == config.AuthModeAPI && cfg.API.BaseURL == "" {
		return errors.New("API_BASE_URL is required when AUTH_MODE=api")
	}
	if cfg.Auth.Mode == config.AuthModeMock && cfg.Auth.DevBackend.Email == "" {
		return errors.New("DEV_BACKEND_EMAIL is required when AUTH_MODE=mock")
	}
	if cfg.Session.Store == config.StoreRedis && cfg.Redis.UseSentinel && len(cfg.Redis.SentinelNodes) == 0 {
		return errors.New("REDIS_SENTINEL_NODES is required when REDIS_USE_SENTINEL=true")
	}
	if cfg.Auth.Mode == config.AuthModeMock && !cfg.IsDev {
		slog.Default().Warn("AUTH_MODE=mock outside development; sessions are served by the in-process dev backend")
	}
	return nil
}
