package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"studyhub/internal/apperror"
	"studyhub/internal/auth"
	"studyhub/internal/model"
	"studyhub/internal/repository"
)

// UserService covers the self-service account operations: profile,
// updates, and account deletion. Admin-side management lives in
// AdminService.
type UserService struct {
	users     repository.UserRepository
	tokens    repository.RefreshTokenRepository
	rewards   repository.RewardRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	rewards repository.RewardRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		rewards:   rewards,
		passwords: passwords,
		logger:    logger,
	}
}

// Profile is the authenticated user's own view: the account record plus
// activity counts and the reward point total.
type Profile struct {
	User   *model.User   `json:"user"`
	Counts *model.Counts `json:"counts"`
	Points int           `json:"points"`
}

// GetByUsername returns the user record for a username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/user: fetching user %q: %w", username, err)
	}
	return user, nil
}

// Me assembles the profile for the authenticated user.
func (s *UserService) Me(ctx context.Context, username string) (*Profile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/user: fetching user %q: %w", username, err)
	}
	counts, err := s.users.CountsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/user: counting activity for user %s: %w", user.ID, err)
	}
	points, err := s.rewards.TotalForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/user: totalling rewards for user %s: %w", user.ID, err)
	}
	return &Profile{User: user, Counts: counts, Points: points}, nil
}

// UpdateProfileInput carries the self-editable fields. Nil means "leave
// unchanged"; the username and login type are immutable. Password changes
// are restricted to password accounts — OAuth2 accounts have no password.
type UpdateProfileInput struct {
	Email    *string
	Nickname *string
	Password *string
}

// UpdateProfile applies the changes and returns the updated record.
func (s *UserService) UpdateProfile(ctx context.Context, username string, in UpdateProfileInput) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/user: fetching user %q: %w", username, err)
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, apperror.ValidationFailed("email", "email must not be empty")
		}
		if email != user.Email {
			taken, err := s.users.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("service/user: checking email: %w", err)
			}
			if taken {
				return nil, apperror.Conflict("email already in use")
			}
			user.Email = email
		}
	}
	if in.Nickname != nil {
		user.Nickname = *in.Nickname
	}
	if in.Password != nil {
		if user.LoginType != model.LoginGeneral {
			return nil, apperror.Forbidden("OAuth2 accounts have no password to change")
		}
		if *in.Password == "" {
			return nil, apperror.ValidationFailed("password", "password must not be empty")
		}
		hash, err := s.passwords.Hash(*in.Password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", err.Error())
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/user: updating user %s: %w", user.ID, err)
	}
	return user, nil
}

// Delete removes the account. The refresh token and all authored content
// go with it through the storage-level cascades.
func (s *UserService) Delete(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("service/user: fetching user %q: %w", username, err)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("service/user: deleting user %s: %w", user.ID, err)
	}
	s.logger.Info("account deleted", slog.String("userID", user.ID))
	return nil
}

// canModify reports whether user may modify content owned by ownerID.
// Admins may modify anything.
func canModify(user *model.User, ownerID string) bool {
	return user.ID == ownerID || user.Role == model.RoleAdmin
}
