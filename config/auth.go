package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeAPI authenticates against the remote backend.
	AuthModeAPI AuthMode = "api"
	// AuthModeMock uses the in-process dev backend (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "api", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: api, mock)", v)
	}
}

// DevBackendConfig controls the account served by the dev backend.
// Used when AUTH_MODE=mock for development and demos.
type DevBackendConfig struct {
	Name     string   `env:"NAME"     envDefault:"Dev Admin"`
	Email    string   `env:"EMAIL"    envDefault:"dev@example.com"`
	Password string   `env:"PASSWORD" envDefault:"password"`
	Roles    []string `env:"ROLES"    envDefault:"Admin"           envSeparator:";"`
	Photo    string   `env:"PHOTO"`
	// Secret signs dev tokens; a random one is used when empty, which
	// invalidates stored tokens on restart.
	Secret   string        `env:"SECRET"`
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	// Seed loads sample collections.
	Seed bool `env:"SEED" envDefault:"true"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which backend handles login.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"api"`

	// DevBackend configuration (used when Mode=mock).
	DevBackend DevBackendConfig `envPrefix:"DEV_BACKEND_"`
}
