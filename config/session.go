package config

import (
	"fmt"
	"strings"
)

// StoreKind selects where the session record is kept.
type StoreKind string

const (
	StoreFile     StoreKind = "file"
	StoreRedis    StoreKind = "redis"
	StorePostgres StoreKind = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreKind.
func (k *StoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch StoreKind(v) {
	case StoreFile, StoreRedis, StorePostgres:
		*k = StoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreKind: %q (valid options: file, redis, postgres)", v)
	}
}

// SessionConfig controls persistence of the session record.
type SessionConfig struct {
	Store StoreKind `env:"SESSION_STORE" envDefault:"file"`

	// File is the record path for the file store. Empty means the user config
	// directory.
	File string `env:"SESSION_FILE"`

	// Profile names the record in shared stores, so several devices or
	// accounts can share one Redis or Postgres.
	Profile string `env:"SESSION_PROFILE" envDefault:"default"`

	// EncryptionKey seals the stored record. Hex-encoded 32-byte keys are
	// used as-is; anything else is hashed.
	EncryptionKey string `env:"SESSION_ENCRYPTION_KEY"`

	RedisPrefix string `env:"SESSION_REDIS_PREFIX" envDefault:"paycom:session:"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	s.File = strings.TrimSpace(s.File)
	if s.Profile = strings.TrimSpace(s.Profile); s.Profile == "" {
		s.Profile = "default"
	}
	if s.Store == "" {
		s.Store = StoreFile
	}
}
