package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
)

const serviceColumns = `id, name, description, active, deleted, created_at, updated_at, deleted_at`

var serviceConstraints = map[string]error{"services_name_key": store.ErrServiceNameExists}

// PostgresServiceStore implements store.ServiceStore.
type PostgresServiceStore struct {
	db store.DBTX
}

// NewPostgresServiceStore creates a new PostgresServiceStore.
func NewPostgresServiceStore(db store.DBTX) *PostgresServiceStore {
	return &PostgresServiceStore{db: db}
}

var _ store.ServiceStore = (*PostgresServiceStore)(nil)

// Create implements store.ServiceStore.Create
func (s *PostgresServiceStore) Create(ctx context.Context, svc *domain.Service) error {
	if err := svc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO services (name, description, active, deleted, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		svc.Name, svc.Description, svc.Active, svc.Deleted, svc.CreatedAt, svc.UpdatedAt, svc.DeletedAt,
	).Scan(&svc.ID)
	if err != nil {
		return MapUniqueViolation(err, serviceConstraints)
	}
	return nil
}

// GetByID implements store.ServiceStore.GetByID
func (s *PostgresServiceStore) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := scanService(s.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrServiceNotFound
	}
	return svc, err
}

// List implements store.ServiceStore.List
func (s *PostgresServiceStore) List(
	ctx context.Context,
	page domain.PageRequest,
	deleted bool,
) ([]domain.Service, int, error) {
	page = page.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM services WHERE deleted = $1`, deleted).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}
	if total == 0 {
		return []domain.Service{}, 0, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE deleted = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		deleted, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	services := make([]domain.Service, 0, page.Limit)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		services = append(services, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return services, total, nil
}

// Update implements store.ServiceStore.Update
func (s *PostgresServiceStore) Update(ctx context.Context, svc *domain.Service) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE services
		SET name = $2, description = $3, active = $4, deleted = $5,
			updated_at = $6, deleted_at = $7
		WHERE id = $1`,
		svc.ID, svc.Name, svc.Description, svc.Active, svc.Deleted, svc.UpdatedAt, svc.DeletedAt)
	if err != nil {
		return MapUniqueViolation(err, serviceConstraints)
	}
	return CheckRowsAffected(result, store.ErrServiceNotFound)
}

// Delete implements store.ServiceStore.Delete
func (s *PostgresServiceStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrServiceNotFound)
}

func scanService(row rowScanner) (*domain.Service, error) {
	var (
		svc       domain.Service
		deletedAt sql.NullTime
	)
	err := row.Scan(
		&svc.ID,
		&svc.Name,
		&svc.Description,
		&svc.Active,
		&svc.Deleted,
		&svc.CreatedAt,
		&svc.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, MapError(err)
	}
	if deletedAt.Valid {
		svc.DeletedAt = &deletedAt.Time
	}
	return &svc, nil
}
