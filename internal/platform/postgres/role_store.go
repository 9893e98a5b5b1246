package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
)

const roleColumns = `id, name, description, permissions, created_at, updated_at`

// PostgresRoleStore implements store.RoleStore. Permissions are kept as a
// JSONB array in their declared order.
type PostgresRoleStore struct {
	db store.DBTX
}

// NewPostgresRoleStore creates a new PostgresRoleStore.
func NewPostgresRoleStore(db store.DBTX) *PostgresRoleStore {
	return &PostgresRoleStore{db: db}
}

var _ store.RoleStore = (*PostgresRoleStore)(nil)

// Create implements store.RoleStore.Create
func (s *PostgresRoleStore) Create(ctx context.Context, role *domain.Role) error {
	if err := role.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("failed to encode permissions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO roles (`+roleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		role.ID, role.Name, role.Description, string(perms), role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return MapUniqueViolation(err, map[string]error{"roles_name_key": store.ErrRoleNameExists})
	}
	return nil
}

// GetByID implements store.RoleStore.GetByID
func (s *PostgresRoleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	return s.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

// GetByName implements store.RoleStore.GetByName
func (s *PostgresRoleStore) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return s.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name)
}

// List implements store.RoleStore.List
func (s *PostgresRoleStore) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	roles := []domain.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return roles, nil
}

func (s *PostgresRoleStore) getOne(ctx context.Context, query string, arg any) (*domain.Role, error) {
	role, err := scanRole(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrRoleNotFound
	}
	return role, err
}

func scanRole(row rowScanner) (*domain.Role, error) {
	var (
		role  domain.Role
		perms []byte
	)
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &perms, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, MapError(err)
	}
	if err := json.Unmarshal(perms, &role.Permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions of role %s: %w", role.ID, err)
	}
	return &role, nil
}
