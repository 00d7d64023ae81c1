package config

import (
	"strings"
	"time"
)

// APIConfig configures the REST client for the resident-management backend.
type APIConfig struct {
	// BaseURL is the API root; login, user and collections hang off it.
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`

	// StorageURL is the host serving /storage/images. Defaults to the
	// origin of BaseURL when empty.
	StorageURL string `env:"API_STORAGE_URL"`

	// Timeout bounds every request.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	// ProfileTimeout bounds the profile refresh made while resuming a session.
	ProfileTimeout time.Duration `env:"API_PROFILE_TIMEOUT" envDefault:"5s"`

	// CSRFPreflight requests the Sanctum CSRF cookie before login.
	CSRFPreflight bool `env:"API_CSRF_PREFLIGHT" envDefault:"false"`

	// RateLimit is the sustained requests per second; 0 disables pacing.
	RateLimit float64 `env:"API_RATE_LIMIT" envDefault:"10"`
	RateBurst int     `env:"API_RATE_BURST" envDefault:"5"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	a.StorageURL = strings.TrimRight(strings.TrimSpace(a.StorageURL), "/")
	if a.Timeout <= 0 {
		a.Timeout = 15 * time.Second
	}
	if a.ProfileTimeout <= 0 {
		a.ProfileTimeout = 5 * time.Second
	}
	if a.ProfileTimeout > a.Timeout {
		a.ProfileTimeout = a.Timeout
	}
	if a.RateLimit < 0 {
		a.RateLimit = 0
	}
	if a.RateBurst < 1 {
		a.RateBurst = 1
	}
}
