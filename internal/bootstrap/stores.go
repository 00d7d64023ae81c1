package bootstrap

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Mendozape/PayComMobile/config"
	"github.com/Mendozape/PayComMobile/internal/adapters/filestore"
	redisstore "github.com/Mendozape/PayComMobile/internal/adapters/redis"
	"github.com/Mendozape/PayComMobile/internal/data"
	"github.com/Mendozape/PayComMobile/internal/data/cryptoutil"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// CreateEncryptor creates an AES-GCM encryptor for the session record.
// Hex-encoded 32-byte keys are decoded; anything else is hashed with SHA-256.
// An empty key yields a noop encryptor and a warning.
//
//nolint:ireturn // Returning interface is intentional for encryptor abstraction
func CreateEncryptor(key string, logger *slog.Logger) (cryptoutil.Encryptor, error) {
	if key == "" {
		if logger != nil {
			logger.Warn("session encryption key is empty, storing the record unencrypted")
		}
		return cryptoutil.NoopEncryptor{}, nil
	}

	keyBytes, err := hex.DecodeString(key)
	if err != nil || len(keyBytes) != 32 {
		sum := sha256.Sum256([]byte(key))
		keyBytes = sum[:]
	}
	enc, err := cryptoutil.NewAESGCMEncryptor(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("create session encryptor: %w", err)
	}
	return enc, nil
}

// StoreDeps groups what BuildSessionStore needs.
type StoreDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger
	Clock  data.TimeProvider
}

// SessionStoreHandle is the built store plus whatever it holds open.
type SessionStoreHandle struct {
	Store   ports.SessionStore
	Kind    config.StoreKind
	closers []io.Closer
}

// Close releases connections held by the store.
func (h *SessionStoreHandle) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildSessionStore creates the session record store selected by
// SESSION_STORE, connecting to Redis or Postgres as needed.
func BuildSessionStore(ctx context.Context, deps StoreDeps) (*SessionStoreHandle, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enc, err := CreateEncryptor(cfg.Session.EncryptionKey, logger)
	if err != nil {
		return nil, err
	}

	switch cfg.Session.Store {
	case config.StoreRedis:
		client, err := ConnectRedis(ctx, DatabaseConfig{RedisConfig: cfg.Redis, Logger: logger})
		if err != nil {
			return nil, err
		}
		store := redisstore.NewSessionStore(redisstore.SessionStoreOptions{
			Client:    client,
			Profile:   cfg.Session.Profile,
			Prefix:    cfg.Session.RedisPrefix,
			Encryptor: enc,
		})
		logger.Debug("session store ready", "kind", "redis", "key", store.Key())
		return &SessionStoreHandle{Store: store, Kind: config.StoreRedis, closers: []io.Closer{client}}, nil

	case config.StorePostgres:
		db, err := ConnectDB(ctx, DatabaseConfig{DBConfig: cfg.Postgres, Logger: logger})
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrationsOnStart {
			if err := RunMigrations(ctx, db, logger); err != nil {
				return nil, errors.Join(err, db.Close())
			}
		}
		store := data.NewSessionRepo(data.SessionRepoOptions{
			DB:           db,
			Profile:      cfg.Session.Profile,
			Encryptor:    enc,
			TimeProvider: deps.Clock,
		})
		logger.Debug("session store ready", "kind", "postgres", "profile", cfg.Session.Profile)
		return &SessionStoreHandle{Store: store, Kind: config.StorePostgres, closers: []io.Closer{db}}, nil

	default:
		path := cfg.Session.File
		if path == "" {
			if path, err = filestore.DefaultPath(); err != nil {
				return nil, fmt.Errorf("resolve session file: %w", err)
			}
		}
		store, err := filestore.New(filestore.Options{Path: path, Encryptor: enc})
		if err != nil {
			return nil, err
		}
		logger.Debug("session store ready", "kind", "file", "path", store.Path())
		return &SessionStoreHandle{Store: store, Kind: config.StoreFile}, nil
	}
}
