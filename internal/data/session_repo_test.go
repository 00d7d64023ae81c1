package data

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mendozape/PayComMobile/internal/data/cryptoutil"
	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	apperrors "github.com/Mendozape/PayComMobile/internal/errors"
	"github.com/Mendozape/PayComMobile/internal/ports"
	"github.com/Mendozape/PayComMobile/internal/testutil"
)

const sessionUUID = "0b8f3c1e-7a2d-4c1b-9e55-3f0f6f2a9c10"

func newMockRepo(t *testing.T) (*SessionRepo, sqlmock.Sqlmock, *FixedTimeProvider) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := NewFixedTimeProvider(testutil.TestTime())
	repo := NewSessionRepo(SessionRepoOptions{
		DB:           db,
		Profile:      "phone",
		Encryptor:    cryptoutil.NoopEncryptor{},
		TimeProvider: clock,
	})
	return repo, mock, clock
}

func TestSessionRepo_SaveUpserts(t *testing.T) {
	repo, mock, clock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO client_sessions")).
		WithArgs("phone", sessionUUID, "ana@example.com", sqlmock.AnyArg(), clock.Now().UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), domainauth.Session{
		ID:       sessionUUID,
		Email:    "ana@example.com",
		LoggedIn: true,
		Token:    "tok",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_SaveAssignsID(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO client_sessions")).
		WithArgs("phone", sqlmock.AnyArg(), "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), domainauth.Session{LoggedIn: true, Token: "t"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_SaveRejectsBadID(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	err := repo.Save(context.Background(), domainauth.Session{ID: "not-a-uuid"})
	assert.True(t, apperrors.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_SaveMapsDBError(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO client_sessions")).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UndefinedTable})

	err := repo.Save(context.Background(), domainauth.Session{ID: sessionUUID})
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
}

func TestSessionRepo_LoadRoundTrip(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	want := domainauth.Session{
		ID:       sessionUUID,
		Email:    "ana@example.com",
		LoggedIn: true,
		Token:    "tok",
		User:     testutil.Resident(),
	}
	sealed, err := cryptoutil.SealJSON(cryptoutil.NoopEncryptor{}, want)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT record FROM client_sessions")).
		WithArgs("phone").
		WillReturnRows(sqlmock.NewRows([]string{"record"}).AddRow(sealed))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.Token, got.Token)
	require.NotNil(t, got.User)
	assert.Equal(t, want.User.Email, got.User.Email)
}

func TestSessionRepo_LoadMissing(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT record")).
		WithArgs("phone").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoSession)
}

func TestSessionRepo_LoadTimeout(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT record")).
		WillReturnError(context.DeadlineExceeded)

	_, err := repo.Load(context.Background())
	assert.True(t, apperrors.IsTimeout(err))
}

func TestSessionRepo_Clear(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM client_sessions")).
		WithArgs("phone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM client_sessions")).
		WithArgs("phone").
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, repo.Clear(context.Background()))
	assert.ErrorContains(t, repo.Clear(context.Background()), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	key := make([]byte, 32)
	enc, err := cryptoutil.NewAESGCMEncryptor(key)
	require.NoError(t, err)

	repo := NewSessionRepo(SessionRepoOptions{DB: db, Profile: "integration", Encryptor: enc})

	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, ports.ErrNoSession)

	require.NoError(t, repo.Save(ctx, domainauth.Session{ID: sessionUUID, LoggedIn: true, Token: "a"}))
	require.NoError(t, repo.Save(ctx, domainauth.Session{ID: sessionUUID, LoggedIn: true, Token: "b"}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Token, "last write wins")
	assert.WithinDuration(t, time.Now(), got.UpdatedAt, time.Minute)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, ports.ErrNoSession)
}
