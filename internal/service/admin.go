package service

import (
	"context"
	"fmt"
	"log/slog"

	"studyhub/internal/apperror"
	"studyhub/internal/model"
	"studyhub/internal/repository"
)

// AdminService is the management surface behind the ADMIN-only routes.
type AdminService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	logger *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{users: users, tokens: tokens, logger: logger}
}

// ListUsers pages through all accounts, newest first.
func (s *AdminService) ListUsers(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	users, err := s.users.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing users: %w", err)
	}
	return users, nil
}

// GetUser returns one account by internal ID.
func (s *AdminService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/admin: fetching user %s: %w", id, err)
	}
	return user, nil
}

// UpdateUserInput carries the admin-editable fields. Nil means "leave
// unchanged".
type UpdateUserInput struct {
	Email    *string
	Nickname *string
	Role     *model.Role
}

// UpdateUser applies admin edits to an account. Changing the role also
// revokes the user's session: their outstanding tokens carry the old role
// claim, and forcing a fresh login is how the new role takes effect.
func (s *AdminService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/admin: fetching user %s: %w", id, err)
	}

	roleChanged := false
	if in.Role != nil && *in.Role != user.Role {
		if *in.Role != model.RoleUser && *in.Role != model.RoleAdmin {
			return nil, apperror.ValidationFailed("role", "role must be USER or ADMIN")
		}
		user.Role = *in.Role
		roleChanged = true
	}
	if in.Email != nil && *in.Email != "" && *in.Email != user.Email {
		taken, err := s.users.ExistsByEmail(ctx, *in.Email)
		if err != nil {
			return nil, fmt.Errorf("service/admin: checking email: %w", err)
		}
		if taken {
			return nil, apperror.Conflict("email already in use")
		}
		user.Email = *in.Email
	}
	if in.Nickname != nil {
		user.Nickname = *in.Nickname
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/admin: updating user %s: %w", id, err)
	}

	if roleChanged {
		if err := s.tokens.DeleteForUser(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("service/admin: revoking session for user %s: %w", id, err)
		}
		s.logger.Info("role changed, session revoked",
			slog.String("userID", user.ID),
			slog.String("role", string(user.Role)),
		)
	}

	return user, nil
}

// DeleteUser removes an account and everything it owns.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/admin: deleting user %s: %w", id, err)
	}
	s.logger.Info("user deleted by admin", slog.String("userID", id))
	return nil
}
