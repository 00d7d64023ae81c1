package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mendozape/PayComMobile/internal/data"
	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	apperrors "github.com/Mendozape/PayComMobile/internal/errors"
	"github.com/Mendozape/PayComMobile/internal/observability/metrics"
	"github.com/Mendozape/PayComMobile/internal/observability/statsd"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// State is a step of the startup decision.
type State string

const (
	StateChecking        State = "checking"
	StateRestoring       State = "restoring"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// DefaultProfileTimeout bounds the profile fetch made while restoring a session.
const DefaultProfileTimeout = 8 * time.Second

const loginFailedMessage = "Login failed. Check your email and password."

// PhotoURLBuilder turns a stored profile photo path into a displayable URL.
type PhotoURLBuilder struct {
	// Origin is the backend host, e.g. "http://192.168.1.16:8000".
	Origin string
}

// URL returns path unchanged when it is already absolute, else the public
// storage URL under Origin. An empty path yields "".
func (b PhotoURLBuilder) URL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(b.Origin, "/") + "/storage/images/" + strings.TrimLeft(path, "/")
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Store          ports.SessionStore
	Backend        ports.Backend
	Photos         PhotoURLBuilder
	ProfileTimeout time.Duration
	Logger         *slog.Logger
	Metrics        statsd.Sink
	Clock          data.TimeProvider
}

// SessionService owns the persisted session: it decides at startup whether a
// stored session can be resumed, and performs login and logout.
type SessionService struct {
	store          ports.SessionStore
	backend        ports.Backend
	photos         PhotoURLBuilder
	profileTimeout time.Duration
	logger         *slog.Logger
	metrics        statsd.Sink
	clock          data.TimeProvider
}

// NewSessionService constructs a SessionService.
func NewSessionService(opts SessionServiceOptions) (*SessionService, error) {
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("backend is required")
	}
	timeout := opts.ProfileTimeout
	if timeout <= 0 {
		timeout = DefaultProfileTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = data.RealTimeProvider{}
	}
	return &SessionService{
		store:          opts.Store,
		backend:        opts.Backend,
		photos:         opts.Photos,
		profileTimeout: timeout,
		logger:         logger.With("component", "session"),
		metrics:        opts.Metrics,
		clock:          clock,
	}, nil
}

// MustNewSessionService panics on invalid options.
func MustNewSessionService(opts SessionServiceOptions) *SessionService {
	s, err := NewSessionService(opts)
	if err != nil {
		panic(err)
	}
	return s
}

// BootstrapResult is the outcome of Bootstrap.
type BootstrapResult struct {
	State State
	// Path lists every state visited, starting with StateChecking.
	Path    []State
	Session domainauth.Session
	// Refreshed is true when the profile fetch succeeded and was persisted.
	Refreshed bool
}

// Bootstrap decides whether the stored session can be resumed. An absent or
// inactive record ends Unauthenticated without any backend call. An active
// record ends Authenticated whether or not the bounded profile refresh
// succeeds; a failed refresh is logged and leaves the record untouched.
func (s *SessionService) Bootstrap(ctx context.Context) (BootstrapResult, error) {
	start := s.clock.Now()
	res := BootstrapResult{State: StateChecking, Path: []State{StateChecking}}
	advance := func(st State) {
		res.State = st
		res.Path = append(res.Path, st)
	}

	sess, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, ports.ErrNoSession):
		advance(StateUnauthenticated)
		s.emit("bootstrap", metrics.ResultSkipped, start, nil)
		return res, nil
	case err != nil:
		advance(StateUnauthenticated)
		s.logger.ErrorContext(ctx, "failed to read session", "error", err)
		s.emit("bootstrap", metrics.ResultError, start, err)
		return res, fmt.Errorf("load session: %w", err)
	}
	if !sess.Active() {
		advance(StateUnauthenticated)
		s.emit("bootstrap", metrics.ResultSkipped, start, nil)
		return res, nil
	}

	advance(StateRestoring)
	res.Session = sess
	if updated, ok := s.refresh(ctx, sess, "bootstrap"); ok {
		res.Session = updated
		res.Refreshed = true
	}
	advance(StateAuthenticated)
	s.emit("bootstrap", metrics.ResultSuccess, start, nil)
	return res, nil
}

// Login exchanges credentials for a token, persists the session record and
// then attempts to cache the user profile before returning. A rejected login
// leaves the stored record unchanged.
func (s *SessionService) Login(ctx context.Context, email, password string) (domainauth.Session, error) {
	start := s.clock.Now()
	if strings.TrimSpace(email) == "" || password == "" {
		err := apperrors.Validation("email and password are required")
		s.emit("login", metrics.ResultError, start, err)
		return domainauth.Session{}, err
	}

	res, err := s.backend.Login(ctx, ports.LoginInput{Email: email, Password: password})
	if err == nil && res.Token == "" {
		err = errors.New("login response has no token")
	}
	if err != nil {
		authErr := apperrors.Auth(loginFailedMessage, err)
		s.logger.WarnContext(ctx, "login rejected", "email", email, "error", err)
		s.emit("login", metrics.ResultError, start, authErr)
		return domainauth.Session{}, authErr
	}

	sess := domainauth.Session{
		ID:        uuid.NewString(),
		Email:     email,
		LoggedIn:  true,
		Token:     res.Token,
		UpdatedAt: s.clock.Now().UTC(),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		s.emit("login", metrics.ResultError, start, err)
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}

	if updated, ok := s.refresh(ctx, sess, "login"); ok {
		sess = updated
	}
	s.logger.InfoContext(ctx, "user logged in", "email", email, "session_id", sess.ID)
	s.emit("login", metrics.ResultSuccess, start, nil)
	return sess, nil
}

// Logout removes the stored session. It is safe to call without a session.
func (s *SessionService) Logout(ctx context.Context) error {
	start := s.clock.Now()
	if err := s.store.Clear(ctx); err != nil {
		s.emit("logout", metrics.ResultError, start, err)
		return fmt.Errorf("clear session: %w", err)
	}
	s.emit("logout", metrics.ResultSuccess, start, nil)
	return nil
}

// Session returns the stored record, or ErrNoSession.
func (s *SessionService) Session(ctx context.Context) (domainauth.Session, error) {
	return s.store.Load(ctx)
}

// Current returns the cached user of the active session, or nil when there is
// none.
func (s *SessionService) Current(ctx context.Context) (*domainauth.User, error) {
	sess, err := s.store.Load(ctx)
	if errors.Is(err, ports.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !sess.Active() {
		return nil, nil
	}
	return sess.User, nil
}

// Token returns the bearer token of the active session.
func (s *SessionService) Token(ctx context.Context) (string, error) {
	sess, err := s.store.Load(ctx)
	if errors.Is(err, ports.ErrNoSession) || (err == nil && !sess.Active()) {
		return "", apperrors.Unauthenticated("not logged in")
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return sess.Token, nil
}

// RefreshProfile refetches the user after a profile edit. On failure the
// cached user is left as it was and a ProfileSync error is returned.
func (s *SessionService) RefreshProfile(ctx context.Context) (*domainauth.User, error) {
	sess, err := s.store.Load(ctx)
	if errors.Is(err, ports.ErrNoSession) || (err == nil && !sess.Active()) {
		return nil, apperrors.Unauthenticated("not logged in")
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	updated, err := s.fetchProfile(ctx, sess)
	if err != nil {
		s.logger.WarnContext(ctx, "profile refresh failed", "stage", "manual", "error", err)
		return nil, err
	}
	return updated.User, nil
}

// refresh is the best-effort profile sync used by Bootstrap and Login.
func (s *SessionService) refresh(ctx context.Context, sess domainauth.Session, stage string) (domainauth.Session, bool) {
	updated, err := s.fetchProfile(ctx, sess)
	if err != nil {
		s.logger.WarnContext(ctx, "profile refresh failed", "stage", stage, "error", err)
		return sess, false
	}
	return updated, true
}

func (s *SessionService) fetchProfile(ctx context.Context, sess domainauth.Session) (domainauth.Session, error) {
	start := s.clock.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, s.profileTimeout)
	defer cancel()

	user, err := s.backend.CurrentUser(fetchCtx, sess.Token)
	if err != nil {
		syncErr := apperrors.ProfileSync(err)
		s.emit("profile_refresh", metrics.ResultError, start, syncErr)
		return sess, syncErr
	}

	photo := ""
	if user.ProfilePhotoPath != nil {
		photo = s.photos.URL(*user.ProfilePhotoPath)
	}
	updated := sess.WithUser(&user, photo)
	updated.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.Save(ctx, updated); err != nil {
		syncErr := apperrors.ProfileSync(fmt.Errorf("save session: %w", err))
		s.emit("profile_refresh", metrics.ResultError, start, syncErr)
		return sess, syncErr
	}
	s.emit("profile_refresh", metrics.ResultSuccess, start, nil)
	return updated, nil
}

func (s *SessionService) emit(op, result string, start time.Time, err error) {
	metrics.EmitSession(s.metrics, metrics.SessionEvent{
		Operation: op,
		Result:    result,
		Duration:  s.clock.Now().Sub(start),
		Err:       err,
	})
}
