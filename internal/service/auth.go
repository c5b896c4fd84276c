// Package service — authentication and platform business logic.
//
// AuthService is the business logic layer for password authentication and
// session management. It sits between the HTTP handlers and the
// repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT)           → RefreshTokenRepository
//
// KEY RESPONSIBILITIES:
//   - Register new password users (uniqueness checks, bcrypt hashing)
//   - Authenticate username/password logins with a single opaque failure mode
//   - Issue sessions: one access token + one stored refresh token per user
//   - Rotate the pair on reissue, revoke it on logout
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"studyhub/internal/apperror"
	"studyhub/internal/auth"
	"studyhub/internal/model"
	"studyhub/internal/repository"
)

// AuthService handles registration, login, and session lifecycle.
type AuthService struct {
	users      repository.UserRepository
	tokens     repository.RefreshTokenRepository
	codec      *auth.TokenService
	passwords  *auth.PasswordService
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	codec *auth.TokenService,
	passwords *auth.PasswordService,
	accessTTL, refreshTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		codec:      codec,
		passwords:  passwords,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// Session bundles the issued token pair so the handler can write the
// response body and the refresh cookie in one step.
type Session struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
	// RefreshExpiresAt is the refresh token's embedded expiry; the cookie's
	// Max-Age is derived from it so the two can never disagree.
	RefreshExpiresAt time.Time
}

// RegisterInput is the payload for creating a password account.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Nickname string
}

// Register creates a password user. Username and email must be unused;
// the password is stored only as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if in.Password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if in.Email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	taken, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking username: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("username already in use")
	}
	taken, err = s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("email already in use")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password is invalid")
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		Nickname:     in.Nickname,
		Role:         model.RoleUser,
		LoginType:    model.LoginGeneral,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %q: %w", in.Username, err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Login authenticates a username/password pair and issues a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.IssueSession(ctx, user)
}

// Authenticate verifies a username/password pair.
//
// Every authentication failure — unknown username, OAuth-only account,
// wrong password — collapses into the same apperror.ErrUnauthorized so the
// response cannot be used to probe which usernames exist. Missing fields
// are a validation error instead: the request is malformed, not wrong.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Authentication failed")
		}
		return nil, fmt.Errorf("service/auth: fetching user %q: %w", username, err)
	}

	// OAuth accounts have no usable password hash; they must log in
	// through their provider.
	if user.LoginType != model.LoginGeneral {
		return nil, apperror.Unauthorized("Authentication failed")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("Authentication failed")
	}

	return user, nil
}

// IssueSession mints the access/refresh pair for an authenticated user and
// stores the refresh token. Both the password and OAuth login paths end
// here, so the single-session rule applies to both.
//
// A user with a live refresh token is already logged in somewhere; the
// second login is rejected with a conflict instead of silently evicting
// the first session.
func (s *AuthService) IssueSession(ctx context.Context, user *model.User) (*Session, error) {
	active, err := s.tokens.ExistsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking active session for user %s: %w", user.ID, err)
	}
	if active {
		return nil, apperror.Conflict("user is already logged in")
	}

	return s.mintPair(ctx, user)
}

// mintPair creates both tokens and installs the refresh token as the user's
// single stored one. Shared by IssueSession and Reissue; Reissue skips the
// duplicate-session check because rotation replaces the very session that
// would trip it.
func (s *AuthService) mintPair(ctx context.Context, user *model.User) (*Session, error) {
	accessToken, err := s.codec.Mint(auth.CategoryAccess, user.Username, string(user.Role), s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("service/auth: minting access token for user %s: %w", user.ID, err)
	}

	refreshExpiresAt := time.Now().Add(s.refreshTTL)
	refreshToken, err := s.codec.Mint(auth.CategoryRefresh, user.Username, string(user.Role), s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("service/auth: minting refresh token for user %s: %w", user.ID, err)
	}

	if err := s.tokens.Replace(ctx, user.ID, refreshToken, refreshExpiresAt); err != nil {
		return nil, fmt.Errorf("service/auth: storing refresh token for user %s: %w", user.ID, err)
	}

	s.logger.Info("session issued", slog.String("userID", user.ID), slog.String("username", user.Username))

	return &Session{
		User:             user,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// Logout revokes the user's stored refresh token. The access token stays
// valid until it expires on its own — it is short-lived by design and the
// store only tracks refresh tokens.
func (s *AuthService) Logout(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("service/auth: fetching user %q: %w", username, err)
	}
	if err := s.tokens.DeleteForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("service/auth: revoking session for user %s: %w", user.ID, err)
	}
	s.logger.Info("session revoked", slog.String("userID", user.ID))
	return nil
}

// Reissue trades a refresh token for a fresh access/refresh pair.
//
// Three gates, all collapsing to unauthorized:
//  1. the token must verify and carry the "refresh" category — an access
//     token can never be redeemed
//  2. the exact token string must still be stored — a rotated-out or
//     revoked token is dead even though its signature still verifies
//  3. the subject must still resolve to a user
//
// The stored row is then rotated, so each refresh token is redeemable at
// most once.
func (s *AuthService) Reissue(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperror.Unauthorized("refresh token is required")
	}

	claims, err := s.codec.Validate(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperror.Unauthorized("refresh token expired")
		}
		return nil, apperror.Unauthorized("invalid refresh token")
	}
	if claims.Category != auth.CategoryRefresh {
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	stored, err := s.tokens.ExistsByToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking stored refresh token: %w", err)
	}
	if !stored {
		return nil, apperror.Unauthorized("refresh token revoked")
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("service/auth: fetching user %q: %w", claims.Subject, err)
	}

	return s.mintPair(ctx, user)
}
