package model

import "time"

// Question is a top-level post asking for help.
// IsSolved flips to true when the author accepts one of its answers.
type Question struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Title     string    `json:"title"     db:"title"`
	Content   string    `json:"content"   db:"content"`
	IsSolved  bool      `json:"isSolved"  db:"is_solved"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
