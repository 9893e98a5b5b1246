package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/booking-api/internal/platform/postgres"
	"github.com/phrazzld/booking-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "users",
		ColumnName:     "role_id",
		ConstraintName: constraint,
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "no rows", err: sql.ErrNoRows, want: store.ErrNotFound},
		{name: "unique violation", err: newPgError("23505", "users_email_key"), want: store.ErrDuplicate},
		{name: "foreign key violation", err: newPgError("23503", "users_role_id_fkey"), want: store.ErrInvalidEntity},
		{name: "check violation", err: newPgError("23514", "services_description_check"), want: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502", ""), want: store.ErrInvalidEntity},
		{name: "wrapped unique violation", err: fmt.Errorf("insert: %w", newPgError("23505", "x")), want: store.ErrDuplicate},
		{name: "unmapped error passes through", err: plain, want: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := postgres.MapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	constraints := map[string]error{
		"users_username_key": store.ErrUsernameExists,
		"users_email_key":    store.ErrEmailExists,
	}

	err := postgres.MapUniqueViolation(newPgError("23505", "users_email_key"), constraints)
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NotErrorIs(t, err, store.ErrUsernameExists)

	err = postgres.MapUniqueViolation(newPgError("23505", "other_key"), constraints)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NotErrorIs(t, err, store.ErrEmailExists)

	err = postgres.MapUniqueViolation(newPgError("23503", "users_role_id_fkey"), constraints)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505", "")))
	assert.False(t, postgres.IsUniqueViolation(errors.New("23505")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrUserNotFound))
	assert.ErrorIs(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrUserNotFound), store.ErrUserNotFound)
	assert.Error(t, postgres.CheckRowsAffected(sqlmock.NewErrorResult(errors.New("boom")), store.ErrUserNotFound))
	assert.Error(t, postgres.CheckRowsAffected(nil, store.ErrUserNotFound))
}
