package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"studyhub/internal/apperror"
	"studyhub/internal/auth"
	"studyhub/internal/model"
	"studyhub/internal/repository"
)

// OAuthService completes social logins. The handler runs the HTTP half of
// the Authorization Code flow (redirect, state cookie, callback); this
// service turns the resulting provider identity into a platform user and
// hands off to AuthService for the session, so the single-session rule
// applies to social logins too.
type OAuthService struct {
	providers auth.Providers
	users     repository.UserRepository
	sessions  *AuthService
	logger    *slog.Logger
}

// NewOAuthService creates an OAuthService.
func NewOAuthService(
	providers auth.Providers,
	users repository.UserRepository,
	sessions *AuthService,
	logger *slog.Logger,
) *OAuthService {
	return &OAuthService{
		providers: providers,
		users:     users,
		sessions:  sessions,
		logger:    logger,
	}
}

// AuthURL returns the provider's authorization redirect URL. Unknown
// provider names fall back to Google.
func (s *OAuthService) AuthURL(providerName, state string) (string, error) {
	p, ok := s.providers.Lookup(providerName)
	if !ok {
		return "", fmt.Errorf("service/oauth: no provider configured for %q", providerName)
	}
	return p.AuthURL(state), nil
}

// Complete finishes an OAuth login: exchanges the callback code, resolves
// or creates the user, and issues a session.
func (s *OAuthService) Complete(ctx context.Context, providerName, code string) (*Session, error) {
	p, ok := s.providers.Lookup(providerName)
	if !ok {
		return nil, fmt.Errorf("service/oauth: no provider configured for %q", providerName)
	}

	identity, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.Unauthorized("Authentication failed")
	}

	user, err := s.ResolveOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.sessions.IssueSession(ctx, user)
}

// ResolveOrCreate maps a provider identity to a platform user.
//
// Repeat logins resolve by the provider's stable user ID, so they are
// idempotent: profile churn on the provider side never creates a second
// account. A first login provisions a user — unless the reported email
// already belongs to an existing account, which is a conflict rather than
// an implicit account link.
func (s *OAuthService) ResolveOrCreate(ctx context.Context, identity *auth.Identity) (*model.User, error) {
	user, err := s.users.GetByProviderID(ctx, identity.ProviderID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/oauth: resolving %s identity: %w", identity.Provider, err)
	}

	if identity.Email == "" {
		return nil, apperror.ValidationFailed("email", "provider did not share an email address")
	}
	taken, err := s.users.ExistsByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("service/oauth: checking email: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("an account with this email already exists")
	}

	username, err := s.uniqueUsername(ctx, identity.Email)
	if err != nil {
		return nil, err
	}

	user = &model.User{
		Username:   username,
		Email:      identity.Email,
		Nickname:   identity.Name,
		Role:       model.RoleUser,
		LoginType:  loginTypeFor(identity.Provider),
		ProviderID: identity.ProviderID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/oauth: provisioning %s user: %w", identity.Provider, err)
	}

	s.logger.Info("user provisioned via OAuth",
		slog.String("userID", user.ID),
		slog.String("provider", identity.Provider),
	)
	return user, nil
}

// uniqueUsername derives a username from the email's local part, appending
// a counter until it is free: "alice", "alice1", "alice2", ...
func (s *OAuthService) uniqueUsername(ctx context.Context, email string) (string, error) {
	base, _, _ := strings.Cut(email, "@")
	base = strings.TrimSpace(base)
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; ; i++ {
		taken, err := s.users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("service/oauth: checking username %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func loginTypeFor(provider string) model.LoginType {
	switch provider {
	case auth.ProviderKakao:
		return model.LoginKakao
	case auth.ProviderNaver:
		return model.LoginNaver
	default:
		return model.LoginGoogle
	}
}
