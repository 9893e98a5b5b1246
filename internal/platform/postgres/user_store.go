package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
)

const userColumns = `id, username, email, first_name, last_name, active, deleted,
	role_id, password_hash, created_at, updated_at, deleted_at`

var userConstraints = map[string]error{
	"users_username_key": store.ErrUsernameExists,
	"users_email_key":    store.ErrEmailExists,
}

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db store.DBTX
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection that should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: password must be hashed before storage", store.ErrInvalidEntity)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Active,
		user.Deleted,
		nullableUUID(user.RoleID),
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
		user.DeletedAt,
	)
	if err != nil {
		return MapUniqueViolation(err, userConstraints)
	}
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUserRow(row)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 AND deleted = FALSE`,
		username)
	return scanUserRow(row)
}

// List implements store.UserStore.List
func (s *PostgresUserStore) List(
	ctx context.Context,
	page domain.PageRequest,
	deleted bool,
) ([]domain.User, int, error) {
	page = page.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE deleted = $1`, deleted).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE deleted = $1
		ORDER BY username
		LIMIT $2 OFFSET $3`,
		deleted, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]domain.User, 0, page.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return users, total, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET username = $2, email = $3, first_name = $4, last_name = $5,
			active = $6, deleted = $7, role_id = $8, password_hash = $9,
			updated_at = $10, deleted_at = $11
		WHERE id = $1`,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Active,
		user.Deleted,
		nullableUUID(user.RoleID),
		user.HashedPassword,
		user.UpdatedAt,
		user.DeletedAt,
	)
	if err != nil {
		return MapUniqueViolation(err, userConstraints)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

func scanUserRow(row *sql.Row) (*domain.User, error) {
	user, err := scanUser(row)
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrUserNotFound
	}
	return user, err
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user      domain.User
		roleID    uuid.NullUUID
		deletedAt sql.NullTime
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Active,
		&user.Deleted,
		&roleID,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, MapError(err)
	}
	if roleID.Valid {
		user.RoleID = roleID.UUID
	}
	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}
	return &user, nil
}

func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
