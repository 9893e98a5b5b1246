package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
)

// Authorizer decides whether a user's role grants a set of permissions.
// Role permission sets are cached by role ID for a short TTL.
type Authorizer struct {
	users  store.UserStore
	roles  store.RoleStore
	cache  *lru.LRU[uuid.UUID, domain.PermissionSet]
	logger *slog.Logger
}

// NewAuthorizer creates an Authorizer. A cacheSize of zero disables caching.
func NewAuthorizer(
	users store.UserStore,
	roles store.RoleStore,
	cacheSize int,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *Authorizer {
	a := &Authorizer{
		users:  users,
		roles:  roles,
		logger: logger.With("component", "authorizer"),
	}
	if cacheSize > 0 {
		a.cache = lru.NewLRU[uuid.UUID, domain.PermissionSet](cacheSize, nil, cacheTTL)
	}
	return a
}

// Check returns nil if the user's role covers every required permission.
// Any failure, including lookup errors, wraps ErrForbidden.
func (a *Authorizer) Check(ctx context.Context, userID uuid.UUID, required []domain.Permission) error {
	if len(required) == 0 {
		return nil
	}

	held, err := a.Permissions(ctx, userID)
	if err != nil {
		a.logger.Warn("permission lookup failed, denying",
			"error", err,
			"user_id", userID)
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}

	if missing, ok := held.FirstUncovered(required); ok {
		a.logger.Debug("permission denied",
			"user_id", userID,
			"missing", missing.String())
		return fmt.Errorf("%w: missing %s", ErrForbidden, missing)
	}
	return nil
}

// Permissions resolves the permission set of the user's role. A user with
// no role yields store.ErrRoleNotFound rather than an empty set. Deleted and
// inactive users hold nothing, even with an unexpired access token.
func (a *Authorizer) Permissions(ctx context.Context, userID uuid.UUID) (domain.PermissionSet, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Deleted || !user.Active {
		return nil, fmt.Errorf("%w: account disabled", store.ErrUserNotFound)
	}
	if user.RoleID == uuid.Nil {
		return nil, store.ErrRoleNotFound
	}

	if a.cache != nil {
		if perms, ok := a.cache.Get(user.RoleID); ok {
			return perms, nil
		}
	}

	role, err := a.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.Add(role.ID, role.Permissions)
	}
	return role.Permissions, nil
}
