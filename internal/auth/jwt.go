// Package auth provides the token codec, password hashing, OAuth2 providers,
// and request middleware for the StudyHub API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. POST /users/login (or an OAuth2 callback) authenticates the user
//  2. The server mints two HS256 JWTs: a short-lived "access" token returned
//     in the response body and a long-lived "refresh" token set as an
//     HttpOnly cookie and persisted (one live row per user)
//  3. API calls carry the access token in the Authorization header; the
//     middleware validates it and puts the principal in the request context
//  4. POST /users/token/reissue trades a still-stored refresh token for a
//     fresh pair
//
// Both token categories are signed with the same process-wide HMAC secret.
// No claim is trusted unless the signature verifies; expiry is checked
// against wall-clock time with no skew tolerance.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token categories. The category claim keeps the two token kinds from being
// substituted for each other — a refresh token is never a valid API
// credential and an access token can never be redeemed for a new pair.
const (
	CategoryAccess  = "access"
	CategoryRefresh = "refresh"
)

const issuer = "studyhub"

var (
	// ErrTokenExpired is returned by Validate for a well-formed token whose
	// embedded expiry has passed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid covers every other validation failure: bad signature,
	// wrong algorithm, malformed claims, wrong issuer.
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// Claims is the verified payload of a StudyHub token.
type Claims struct {
	Subject  string // username the token was minted for
	Role     string // role at mint time (USER or ADMIN)
	Category string // "access" or "refresh"
}

// tokenClaims is the on-wire JWT payload. Subject rides in the registered
// "sub" claim; role and category are private claims.
type tokenClaims struct {
	Role     string `json:"role"`
	Category string `json:"category"`
	jwt.RegisteredClaims
}

// TokenService mints and validates JWTs.
//
// It holds the HMAC secret used to sign and verify tokens. The same secret
// must be used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Mint creates and signs a token of the given category for subject with the
// given role, valid for ttl from now.
func (s *TokenService) Mint(category, subject, role string, ttl time.Duration) (string, error) {
	if category != CategoryAccess && category != CategoryRefresh {
		return "", fmt.Errorf("auth: unknown token category %q", category)
	}
	if subject == "" {
		return "", errors.New("auth: token subject must not be empty")
	}

	now := time.Now()
	c := tokenClaims{
		Role:     role,
		Category: category,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing %s token: %w", category, err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns its claims.
//
// Checks performed by the jwt library:
//   - signature is valid (wasn't tampered with)
//   - token is not expired (ExpiresAt is in the future)
//   - issuer matches "studyhub"
//   - algorithm is HS256 (jwt.WithValidMethods pins it, so a token signed
//     with "none" or an asymmetric method is rejected)
//
// Returns ErrTokenExpired or ErrTokenInvalid; callers can branch with
// errors.Is.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrTokenInvalid)
	}
	if c.Category != CategoryAccess && c.Category != CategoryRefresh {
		return nil, fmt.Errorf("%w: unknown category %q", ErrTokenInvalid, c.Category)
	}

	return &Claims{
		Subject:  c.Subject,
		Role:     c.Role,
		Category: c.Category,
	}, nil
}
