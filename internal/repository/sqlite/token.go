package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"studyhub/internal/repository"
)

// TokenStore implements repository.RefreshTokenRepository.
type TokenStore struct {
	conn *sql.DB
}

// compile-time check that *TokenStore implements the interface
var _ repository.RefreshTokenRepository = (*TokenStore)(nil)

// ExistsForUser reports whether the user has a stored refresh token.
// The login orchestrator uses this as its duplicate-session check.
func (s *TokenStore) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	return exists(ctx, s.conn, `SELECT COUNT(*) FROM refresh_tokens WHERE user_id = ?`, userID)
}

// ExistsByToken reports whether this exact token string is still stored.
// Reissue uses it to reject refresh tokens that were rotated or revoked —
// a valid signature alone is not enough to redeem a token.
func (s *TokenStore) ExistsByToken(ctx context.Context, token string) (bool, error) {
	return exists(ctx, s.conn, `SELECT COUNT(*) FROM refresh_tokens WHERE token = ?`, token)
}

// Replace installs token as the user's single refresh token, removing any
// previous row. Delete and insert run in one transaction, and the
// UNIQUE(user_id) constraint backs the at-most-one invariant even if two
// logins race: the second insert fails instead of producing a duplicate.
func (s *TokenStore) Replace(ctx context.Context, userID, token string, expiresAt time.Time) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning refresh-token replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing refresh token for user %s: %w", userID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		xid.New().String(), userID, token, expiresAt, time.Now(),
	); err != nil {
		return fmt.Errorf("sqlite: storing refresh token for user %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing refresh-token replace: %w", err)
	}
	return nil
}

// DeleteForUser removes the user's refresh token. Deleting when none exists
// is not an error — logout and role changes call this unconditionally.
func (s *TokenStore) DeleteForUser(ctx context.Context, userID string) error {
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting refresh token for user %s: %w", userID, err)
	}
	return nil
}
