package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.Backend      = (*StubBackend)(nil)
)

// MemorySessionStore keeps the session record in memory. The *Err fields
// inject failures; Saves and Clears count successful writes.
type MemorySessionStore struct {
	mu      sync.Mutex
	sess    *domainauth.Session
	LoadErr error
	SaveErr error

	Saves  int
	Clears int
	Loads  int
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// WithSession creates a store pre-populated with sess.
func WithSession(sess domainauth.Session) *MemorySessionStore {
	return &MemorySessionStore{sess: &sess}
}

func (m *MemorySessionStore) Load(_ context.Context) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	if m.LoadErr != nil {
		return domainauth.Session{}, m.LoadErr
	}
	if m.sess == nil {
		return domainauth.Session{}, ports.ErrNoSession
	}
	return *m.sess, nil
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.sess = &sess
	m.Saves++
	return nil
}

func (m *MemorySessionStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	m.Clears++
	return nil
}

// Snapshot returns the stored record without counting a load.
func (m *MemorySessionStore) Snapshot() (domainauth.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return domainauth.Session{}, false
	}
	return *m.sess, true
}

// StubBackend answers Login and CurrentUser from fixed values or funcs and
// counts calls.
type StubBackend struct {
	LoginFunc       func(ctx context.Context, in ports.LoginInput) (ports.LoginResult, error)
	CurrentUserFunc func(ctx context.Context, token string) (domainauth.User, error)

	Token string
	User  domainauth.User

	mu           sync.Mutex
	LoginCalls   int
	ProfileCalls int
}

func (s *StubBackend) Login(ctx context.Context, in ports.LoginInput) (ports.LoginResult, error) {
	s.mu.Lock()
	s.LoginCalls++
	s.mu.Unlock()
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, in)
	}
	return ports.LoginResult{Token: s.Token}, nil
}

func (s *StubBackend) CurrentUser(ctx context.Context, token string) (domainauth.User, error) {
	s.mu.Lock()
	s.ProfileCalls++
	s.mu.Unlock()
	if s.CurrentUserFunc != nil {
		return s.CurrentUserFunc(ctx, token)
	}
	return s.User, nil
}

// Calls returns the login and profile call counts.
func (s *StubBackend) Calls() (login, profile int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LoginCalls, s.ProfileCalls
}
