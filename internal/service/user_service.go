package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/service/auth"
	"github.com/phrazzld/booking-api/internal/store"
)

// CreateUserInput carries the fields accepted when creating a user.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleID    uuid.UUID
	Active    bool
}

// UpdateUserInput carries optional changes; nil fields are left untouched.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
	RoleID    *uuid.UUID
	Active    *bool
}

// UserService provides user management operations
type UserService interface {
	// CreateUser validates the input, checks the role exists and stores the
	// user with a bcrypt hash of the password.
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)

	// GetUser returns a user that is not soft-deleted.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ListUsers returns a page of live users, or of soft-deleted users when
	// deleted is true.
	ListUsers(ctx context.Context, page domain.PageRequest, deleted bool) (domain.Page[domain.User], error)

	// UpdateUser applies the non-nil fields of in.
	UpdateUser(ctx context.Context, userID uuid.UUID, in UpdateUserInput) (*domain.User, error)

	// SoftDeleteUser marks a user deleted and inactive.
	SoftDeleteUser(ctx context.Context, userID uuid.UUID) error

	// RestoreUser reverses a soft delete. Returns domain.ErrNotDeleted if the
	// user is not deleted.
	RestoreUser(ctx context.Context, userID uuid.UUID) error

	// DeleteUser permanently removes a user, deleted or not.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	roleStore store.RoleStore
	hasher    auth.PasswordHasher
	db        *sql.DB
	logger    *slog.Logger
	timeFunc  func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	roleStore store.RoleStore,
	hasher auth.PasswordHasher,
	db *sql.DB,
	logger *slog.Logger,
) UserService {
	return &UserServiceImpl{
		userStore: userStore,
		roleStore: roleStore,
		hasher:    hasher,
		db:        db,
		logger:    logger.With("component", "user_service"),
		timeFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser creates a user inside a transaction
func (s *UserServiceImpl) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	user, err := domain.NewUser(in.Username, in.Email, in.Password, in.RoleID)
	if err != nil {
		s.logger.Debug("rejected user input", "error", err, "username", in.Username)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Active = in.Active

	if err := s.ensureRole(ctx, user.RoleID); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.hashPassword(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("attempted to create duplicate user",
				"username", user.Username,
				"error", err)
		} else {
			s.logger.Error("failed to save user to database",
				"error", err,
				"username", user.Username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"role_id", user.RoleID)
	return user, nil
}

// GetUser retrieves a live user by ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user.Deleted {
		return nil, fmt.Errorf("failed to retrieve user: %w", store.ErrUserNotFound)
	}
	return user, nil
}

// ListUsers returns one page of users
func (s *UserServiceImpl) ListUsers(
	ctx context.Context,
	page domain.PageRequest,
	deleted bool,
) (domain.Page[domain.User], error) {
	page = page.Normalize()
	users, total, err := s.userStore.List(ctx, page, deleted)
	if err != nil {
		s.logger.Error("failed to list users", "error", err, "deleted", deleted)
		return domain.Page[domain.User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	return domain.NewPage(users, total, page), nil
}

// UpdateUser applies in to a live user inside a transaction
func (s *UserServiceImpl) UpdateUser(
	ctx context.Context,
	userID uuid.UUID,
	in UpdateUserInput,
) (*domain.User, error) {
	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.Deleted {
			return store.ErrUserNotFound
		}

		if in.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
		}
		if in.FirstName != nil {
			user.FirstName = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			user.LastName = strings.TrimSpace(*in.LastName)
		}
		if in.Active != nil {
			user.Active = *in.Active
		}
		if in.Password != nil {
			user.Password = *in.Password
		}
		if in.RoleID != nil && *in.RoleID != user.RoleID {
			user.RoleID = *in.RoleID
			if err := s.ensureRole(ctx, user.RoleID); err != nil {
				return err
			}
		}

		if err := user.Validate(); err != nil {
			return err
		}
		if user.Password != "" {
			if err := s.hashPassword(user); err != nil {
				return err
			}
		}
		user.UpdatedAt = s.timeFunc()

		if err := txStore.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) && !errors.Is(err, domain.ErrValidation) && !store.IsDuplicateError(err) {
			s.logger.Error("failed to update user", "error", err, "user_id", userID)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user updated", "user_id", userID)
	return updated, nil
}

// SoftDeleteUser marks a live user deleted
func (s *UserServiceImpl) SoftDeleteUser(ctx context.Context, userID uuid.UUID) error {
	err := s.mutate(ctx, userID, func(user *domain.User) error {
		if user.Deleted {
			return store.ErrUserNotFound
		}
		user.MarkDeleted(s.timeFunc())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to soft delete user: %w", err)
	}
	s.logger.Info("user soft deleted", "user_id", userID)
	return nil
}

// RestoreUser reverses a soft delete
func (s *UserServiceImpl) RestoreUser(ctx context.Context, userID uuid.UUID) error {
	err := s.mutate(ctx, userID, func(user *domain.User) error {
		return user.Restore(s.timeFunc())
	})
	if err != nil {
		return fmt.Errorf("failed to restore user: %w", err)
	}
	s.logger.Info("user restored", "user_id", userID)
	return nil
}

// DeleteUser permanently deletes a user
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("attempted to delete non-existent user", "user_id", userID)
		} else {
			s.logger.Error("failed to delete user", "error", err, "user_id", userID)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

// mutate loads a user, applies fn and saves the result in one transaction.
func (s *UserServiceImpl) mutate(ctx context.Context, userID uuid.UUID, fn func(*domain.User) error) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		return txStore.Update(ctx, user)
	})
}

func (s *UserServiceImpl) ensureRole(ctx context.Context, roleID uuid.UUID) error {
	if _, err := s.roleStore.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, store.ErrRoleNotFound) {
			return ErrUnknownRole
		}
		return err
	}
	return nil
}

// hashPassword replaces the plaintext password with its hash.
func (s *UserServiceImpl) hashPassword(user *domain.User) error {
	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""
	return nil
}
