package redis

// Package redis keeps the session record in Redis, for shared kiosks and
// tests that run several clients against one profile.

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Mendozape/PayComMobile/internal/data/cryptoutil"
	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// DefaultPrefix is prepended to the profile name to form the record key.
const DefaultPrefix = "paycom:session:"

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Client redis.UniversalClient
	// Profile selects the record; one device profile maps to one key.
	Profile   string
	Prefix    string
	Encryptor cryptoutil.Encryptor
}

// SessionStore stores the sealed session record under a single key, so SET
// and DEL give all-or-nothing login and logout.
type SessionStore struct {
	client redis.UniversalClient
	key    string
	enc    cryptoutil.Encryptor
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	profile := opts.Profile
	if profile == "" {
		profile = "default"
	}
	return &SessionStore{client: opts.Client, key: prefix + profile, enc: opts.Encryptor}
}

// Key returns the Redis key holding the record.
func (s *SessionStore) Key() string { return s.key }

func (s *SessionStore) Load(ctx context.Context) (domainauth.Session, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ports.ErrNoSession
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := cryptoutil.OpenJSON(s.enc, data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("open session: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	sealed, err := cryptoutil.SealJSON(s.enc, sess)
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key, sealed, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
