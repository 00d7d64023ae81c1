// Package devbackend is an in-process stand-in for the resident-management
// API, used with AUTH_MODE=mock for local development and demos. It
// authenticates one configured account and serves in-memory collections.
package devbackend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mendozape/PayComMobile/internal/adapters/api"
	"github.com/Mendozape/PayComMobile/internal/adapters/authroles"
	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// Config describes the single development account.
type Config struct {
	Name  string
	Email string
	// Password is hashed at construction; PasswordHash takes precedence when set.
	Password     string
	PasswordHash string
	Roles        []string
	// Permissions are granted directly, in addition to role permissions.
	Permissions []string
	PhotoPath   string
	// Secret signs issued tokens. A random secret is used when empty.
	Secret   string
	TokenTTL time.Duration
	Catalog  authroles.Catalog
	Now      func() time.Time
}

// Backend implements ports.Backend.
type Backend struct {
	user   domainauth.User
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var errInvalidCredentials = &api.StatusError{
	Status:  http.StatusUnprocessableEntity,
	Message: "These credentials do not match our records.",
}

var errUnauthenticated = &api.StatusError{
	Status:  http.StatusUnauthorized,
	Message: "Unauthenticated.",
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// New constructs a Backend from cfg.
func New(cfg Config) (*Backend, error) {
	if strings.TrimSpace(cfg.Email) == "" {
		return nil, errors.New("dev backend: email is required")
	}

	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		if cfg.Password == "" {
			return nil, errors.New("dev backend: password or password hash is required")
		}
		h, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("dev backend: hash password: %w", err)
		}
		hash = h
	}

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = []byte(uuid.NewString())
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = authroles.Default()
	}

	name := cfg.Name
	if name == "" {
		name = "Dev User"
	}
	user := domainauth.User{
		ID:    1,
		Name:  name,
		Email: cfg.Email,
		Roles: catalog.Roles(cfg.Roles...),
	}
	for _, p := range cfg.Permissions {
		user.Permissions = append(user.Permissions, domainauth.Permission(p))
	}
	if cfg.PhotoPath != "" {
		photo := cfg.PhotoPath
		user.ProfilePhotoPath = &photo
	}

	return &Backend{user: user, hash: hash, secret: secret, ttl: ttl, now: now}, nil
}

// Login checks the credentials and issues an HS256 token.
func (b *Backend) Login(_ context.Context, in ports.LoginInput) (ports.LoginResult, error) {
	if !strings.EqualFold(strings.TrimSpace(in.Email), b.user.Email) {
		return ports.LoginResult{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(b.hash, []byte(in.Password)); err != nil {
		return ports.LoginResult{}, errInvalidCredentials
	}

	now := b.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: b.user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   b.user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.ttl)),
		},
	})
	signed, err := tok.SignedString(b.secret)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	return ports.LoginResult{Token: signed}, nil
}

// CurrentUser returns the account for a valid, unexpired token.
func (b *Backend) CurrentUser(_ context.Context, token string) (domainauth.User, error) {
	if err := b.verify(token); err != nil {
		return domainauth.User{}, err
	}
	return b.user, nil
}

func (b *Backend) verify(token string) error {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return b.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(b.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !strings.EqualFold(c.Email, b.user.Email) {
		return errUnauthenticated
	}
	return nil
}
