// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the authorization level attached to a user account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// LoginType records where an account's identity comes from: a locally
// registered password (GENERAL) or one of the supported OAuth2 providers.
type LoginType string

const (
	LoginGeneral LoginType = "GENERAL"
	LoginGoogle  LoginType = "GOOGLE"
	LoginKakao   LoginType = "KAKAO"
	LoginNaver   LoginType = "NAVER"
)

// User represents a registered account.
//
// Exactly one of {PasswordHash set, LoginType != GENERAL} holds: an account
// is either locally authenticated or externally authenticated, never both.
// Username is globally unique and immutable after creation; for OAuth2
// signups it is auto-generated from the email local-part, with a numeric
// suffix appended on collision.
//
// PasswordHash and ProviderID never leave the server — they carry `json:"-"`.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	PasswordHash string    `json:"-"         db:"password_hash"` // empty for OAuth2 accounts
	Email        string    `json:"email"     db:"email"`
	Nickname     string    `json:"nickname"  db:"nickname"`
	Role         Role      `json:"role"      db:"role"`
	LoginType    LoginType `json:"loginType" db:"login_type"`
	ProviderID   string    `json:"-"         db:"provider_id"` // empty for GENERAL accounts
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Counts summarizes a user's activity, shown on the profile endpoint.
type Counts struct {
	Questions int `json:"questions"`
	Answers   int `json:"answers"`
	Comments  int `json:"comments"`
}
