package model

import "time"

// Reward is one entry in a user's point ledger. Points are only ever
// appended; a user's balance is the sum over their entries.
type Reward struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Reason    string    `json:"reason"    db:"reason"`
	Points    int       `json:"points"    db:"points"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
