package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDBError_Nil(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
}

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  ErrorCode
		wantField string
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{name: "wrapped deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), wantCode: ErrCodeTimeout},
		{name: "canceled", err: context.Canceled, wantCode: ErrCodeCanceled},
		{name: "no rows", err: pgx.ErrNoRows, wantCode: ErrCodeNotFound},
		{
			name:      "unique violation",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "profile"},
			wantCode:  ErrCodeConflict,
			wantField: "profile",
		},
		{
			name:      "not null violation",
			err:       &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "record"},
			wantCode:  ErrCodeValidation,
			wantField: "record",
		},
		{name: "check violation", err: &pgconn.PgError{Code: pgerrcode.CheckViolation}, wantCode: ErrCodeValidation},
		{name: "missing table", err: &pgconn.PgError{Code: pgerrcode.UndefinedTable}, wantCode: ErrCodeInternal},
		{name: "other pg error", err: &pgconn.PgError{Code: pgerrcode.SerializationFailure}, wantCode: ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDBError(tt.err)
			assert.Equal(t, tt.wantCode, GetCode(got))
			assert.Equal(t, tt.wantField, GetField(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapDBError_PassThrough(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, MapDBError(plain))
}
