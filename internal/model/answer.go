package model

import "time"

// Answer is a reply to a question. The question's author may accept exactly
// one answer, which marks the question solved and rewards the answer's author.
type Answer struct {
	ID         string    `json:"id"         db:"id"`
	QuestionID string    `json:"questionId" db:"question_id"`
	UserID     string    `json:"userId"     db:"user_id"`
	Content    string    `json:"content"    db:"content"`
	IsAccepted bool      `json:"isAccepted" db:"is_accepted"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"  db:"updated_at"`
}
