package bootstrap

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/Mendozape/PayComMobile/config"
	"github.com/Mendozape/PayComMobile/internal/adapters/api"
	"github.com/Mendozape/PayComMobile/internal/adapters/devbackend"
	"github.com/Mendozape/PayComMobile/internal/adapters/filestore"
	"github.com/Mendozape/PayComMobile/internal/devseed"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// Backends pairs the authentication and resource backends with the origin
// used to build photo URLs.
type Backends struct {
	Auth      ports.Backend
	Resources ports.ResourceBackend
	Origin    string
}

// BuildBackends returns the REST client for AUTH_MODE=api and the in-process
// dev backend for AUTH_MODE=mock.
func BuildBackends(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (Backends, error) {
	if cfg == nil {
		return Backends{}, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Auth.Mode == config.AuthModeMock {
		return buildDevBackends(ctx, cfg, logger)
	}

	var limiter *rate.Limiter
	if cfg.API.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.API.RateLimit), cfg.API.RateBurst)
	}
	client, err := api.New(api.Options{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		CSRFPreflight: cfg.API.CSRFPreflight,
		Limiter:       limiter,
		Logger:        logger,
	})
	if err != nil {
		return Backends{}, err
	}
	origin := cfg.API.StorageURL
	if origin == "" {
		origin = client.Origin()
	}
	return Backends{Auth: client, Resources: client, Origin: origin}, nil
}

func buildDevBackends(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (Backends, error) {
	dev := cfg.Auth.DevBackend
	secret := dev.Secret
	if secret == "" {
		derived, err := deriveDevSecret(cfg)
		if err != nil {
			return Backends{}, err
		}
		secret = derived
		logger.Warn("DEV_BACKEND_SECRET is empty; signing dev tokens with a secret derived from the session settings",
			"store", string(cfg.Session.Store))
	}
	auth, err := devbackend.New(devbackend.Config{
		Name:      dev.Name,
		Email:     dev.Email,
		Password:  dev.Password,
		Roles:     dev.Roles,
		PhotoPath: dev.Photo,
		Secret:    secret,
		TokenTTL:  dev.TokenTTL,
	})
	if err != nil {
		return Backends{}, err
	}
	resources := devbackend.NewResources(auth)
	if dev.Seed {
		if failed := devseed.Run(ctx, resources, logger); failed > 0 {
			logger.Warn("dev seed incomplete", "failures", failed)
		}
	}
	logger.Info("using in-process dev backend", "email", dev.Email, "roles", dev.Roles)
	return Backends{Auth: auth, Resources: resources, Origin: cfg.API.StorageURL}, nil
}

// deriveDevSecret returns a signing secret that is stable for one session
// location, so a token stored by one process verifies in the next.
func deriveDevSecret(cfg *config.AppConfig) (string, error) {
	location := cfg.Session.File
	switch cfg.Session.Store {
	case config.StoreRedis:
		location = cfg.Redis.URI + "|" + cfg.Session.RedisPrefix
	case config.StorePostgres:
		location = postgresDSN(cfg.Postgres)
	default:
		if location == "" {
			path, err := filestore.DefaultPath()
			if err != nil {
				return "", err
			}
			location = path
		}
	}
	sum := sha256.Sum256([]byte(strings.Join([]string{
		"paycom-dev", cfg.Session.EncryptionKey, string(cfg.Session.Store), location, cfg.Session.Profile,
	}, "\x00")))
	return hex.EncodeToString(sum[:]), nil
}
