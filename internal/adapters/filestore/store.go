// Package filestore keeps the session record in a single file in the user's
// config directory. Every write replaces the file through a rename, so
// readers see either the previous record or the new one.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Mendozape/PayComMobile/internal/data/cryptoutil"
	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// Options configures a Store.
type Options struct {
	Path      string
	Encryptor cryptoutil.Encryptor
}

// Store is a ports.SessionStore backed by one file.
type Store struct {
	mu   sync.Mutex
	path string
	enc  cryptoutil.Encryptor
}

// New creates a Store writing to opts.Path.
func New(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("session file path is required")
	}
	return &Store{path: opts.Path, enc: opts.Encryptor}, nil
}

// DefaultPath returns <user config dir>/paycom/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "paycom", "session.json"), nil
}

// Path returns the file holding the record.
func (s *Store) Path() string { return s.path }

// Load reads the stored session. A missing file is ports.ErrNoSession.
func (s *Store) Load(ctx context.Context) (domainauth.Session, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domainauth.Session{}, ports.ErrNoSession
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("read session file: %w", err)
	}

	var sess domainauth.Session
	if err := cryptoutil.OpenJSON(s.enc, string(raw), &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("open session: %w", err)
	}
	return sess, nil
}

// Save seals sess and replaces the file.
func (s *Store) Save(ctx context.Context, sess domainauth.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sealed, err := cryptoutil.SealJSON(s.enc, sess)
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, []byte(sealed))
}

// Clear removes the file. Clearing an absent session is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
