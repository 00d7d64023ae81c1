package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Mendozape/PayComMobile/internal/data/cryptoutil"
	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	apperrors "github.com/Mendozape/PayComMobile/internal/errors"
	"github.com/Mendozape/PayComMobile/internal/ports"
)

// SessionRepoOptions configures a SessionRepo.
type SessionRepoOptions struct {
	DB *sql.DB
	// Profile is the primary key of the row; defaults to "default".
	Profile      string
	Encryptor    cryptoutil.Encryptor
	TimeProvider TimeProvider
}

// SessionRepo stores the session record in the client_sessions table, one row
// per device profile. The record column holds the sealed JSON; email and
// session_id are kept in clear for administration.
type SessionRepo struct {
	db      *sql.DB
	profile string
	enc     cryptoutil.Encryptor
	clock   TimeProvider
}

// NewSessionRepo creates a SessionRepo.
func NewSessionRepo(opts SessionRepoOptions) *SessionRepo {
	profile := strings.TrimSpace(opts.Profile)
	if profile == "" {
		profile = "default"
	}
	clock := opts.TimeProvider
	if clock == nil {
		clock = RealTimeProvider{}
	}
	return &SessionRepo{db: opts.DB, profile: profile, enc: opts.Encryptor, clock: clock}
}

const (
	selectSessionSQL = `SELECT record FROM client_sessions WHERE profile = $1`
	upsertSessionSQL = `
		INSERT INTO client_sessions (profile, session_id, email, record, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (profile) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			email = EXCLUDED.email,
			record = EXCLUDED.record,
			updated_at = EXCLUDED.updated_at`
	deleteSessionSQL = `DELETE FROM client_sessions WHERE profile = $1`
)

// Load reads the record for the configured profile.
func (r *SessionRepo) Load(ctx context.Context) (domainauth.Session, error) {
	var sealed string
	err := r.db.QueryRowContext(ctx, selectSessionSQL, r.profile).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return domainauth.Session{}, ports.ErrNoSession
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("select session: %w", apperrors.MapDBError(err))
	}

	var sess domainauth.Session
	if err := cryptoutil.OpenJSON(r.enc, sealed, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("open session: %w", err)
	}
	return sess, nil
}

// Save upserts the whole record in one statement.
func (r *SessionRepo) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sessionID, err := uuid.Parse(sess.ID)
	if err != nil {
		return apperrors.ValidationField("id", "session id must be a UUID")
	}
	sess.UpdatedAt = r.clock.Now().UTC()

	sealed, err := cryptoutil.SealJSON(r.enc, sess)
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, upsertSessionSQL,
		r.profile, sessionID.String(), sess.Email, sealed, sess.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert session: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Clear deletes the row. Deleting a missing row is not an error.
func (r *SessionRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, deleteSessionSQL, r.profile); err != nil {
		return fmt.Errorf("delete session: %w", apperrors.MapDBError(err))
	}
	return nil
}
