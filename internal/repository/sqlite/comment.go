package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"studyhub/internal/apperror"
	"studyhub/internal/model"
	"studyhub/internal/repository"
)

// CommentStore implements repository.CommentRepository.
type CommentStore struct {
	conn *sql.DB
}

// compile-time check that *CommentStore implements the interface
var _ repository.CommentRepository = (*CommentStore)(nil)

const commentColumns = `id, answer_id, user_id, parent_id, content, created_at, updated_at`

// Create inserts a new comment, assigning its ID and timestamps.
func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	now := time.Now()
	comment.ID = xid.New().String()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO comments (`+commentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.AnswerID,
		comment.UserID,
		comment.ParentID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID.
func (s *CommentStore) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id,
	).Scan(
		&c.ID,
		&c.AnswerID,
		&c.UserID,
		&c.ParentID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	return &c, nil
}

// ListForAnswer returns an answer's top-level comments (no parent),
// oldest first. Replies are fetched separately via ListReplies.
func (s *CommentStore) ListForAnswer(ctx context.Context, answerID string) ([]model.Comment, error) {
	return s.list(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE answer_id = ? AND parent_id IS NULL
		 ORDER BY created_at ASC`,
		answerID,
	)
}

// ListReplies returns the direct replies to a comment, oldest first.
func (s *CommentStore) ListReplies(ctx context.Context, parentID string) ([]model.Comment, error) {
	return s.list(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE parent_id = ?
		 ORDER BY created_at ASC`,
		parentID,
	)
}

func (s *CommentStore) list(ctx context.Context, query string, arg any) ([]model.Comment, error) {
	rows, err := s.conn.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID,
			&c.AnswerID,
			&c.UserID,
			&c.ParentID,
			&c.Content,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comment rows: %w", err)
	}

	return comments, nil
}

// Update writes the comment content.
func (s *CommentStore) Update(ctx context.Context, comment *model.Comment) error {
	comment.UpdatedAt = time.Now()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		comment.Content,
		comment.UpdatedAt,
		comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", comment.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", comment.ID)
	}

	return nil
}

// Delete removes a comment; its replies cascade.
func (s *CommentStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}

	return nil
}
