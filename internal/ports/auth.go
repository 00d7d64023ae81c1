package ports

// Package ports defines the interfaces between session orchestration and the
// outside world. Implementations live in internal/adapters and internal/data;
// orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
)

// ErrNoSession is returned by SessionStore.Load when no record is stored.
var ErrNoSession = errors.New("no session stored")

// SessionStore persists the single on-device session record. Save replaces
// the whole record in one write and Clear removes every session key in one
// write, so readers never observe a partial login or logout.
type SessionStore interface {
	Load(ctx context.Context) (domainauth.Session, error)
	Save(ctx context.Context, sess domainauth.Session) error
	Clear(ctx context.Context) error
}

// LoginInput carries the credentials typed on the login screen.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string
}

// Backend authenticates against the remote API and fetches the current user.
type Backend interface {
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
	CurrentUser(ctx context.Context, token string) (domainauth.User, error)
}
