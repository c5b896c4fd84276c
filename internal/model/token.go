package model

import "time"

// RefreshToken binds one user to their currently valid refresh credential.
//
// At most one row exists per user — enforced by a UNIQUE constraint on
// user_id and by the repository's transactional delete-then-insert. A row is
// created at login, rotated on reissue, and deleted on logout, role change,
// or user deletion (cascade).
type RefreshToken struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Token     string    `json:"-"         db:"token"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
