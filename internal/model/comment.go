package model

import "time"

// Comment is attached to an answer. ParentID is nil for top-level comments
// and points at another comment for one-level replies.
type Comment struct {
	ID        string    `json:"id"        db:"id"`
	AnswerID  string    `json:"answerId"  db:"answer_id"`
	UserID    string    `json:"userId"    db:"user_id"`
	ParentID  *string   `json:"parentId"  db:"parent_id"`
	Content   string    `json:"content"   db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
