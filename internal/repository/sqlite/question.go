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

// QuestionStore implements repository.QuestionRepository.
type QuestionStore struct {
	conn *sql.DB
}

// compile-time check that *QuestionStore implements the interface
var _ repository.QuestionRepository = (*QuestionStore)(nil)

const questionColumns = `id, user_id, title, content, is_solved, created_at, updated_at`

// Create inserts a new question, assigning its ID and timestamps.
func (s *QuestionStore) Create(ctx context.Context, question *model.Question) error {
	now := time.Now()
	question.ID = xid.New().String()
	question.CreatedAt = now
	question.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO questions (`+questionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		question.ID,
		question.UserID,
		question.Title,
		question.Content,
		question.IsSolved,
		question.CreatedAt,
		question.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting question: %w", err)
	}

	return nil
}

// GetByID retrieves a question by ID.
// Returns apperror.ErrNotFound if it doesn't exist.
func (s *QuestionStore) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id,
	).Scan(
		&q.ID,
		&q.UserID,
		&q.Title,
		&q.Content,
		&q.IsSolved,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("question", id)
		}
		return nil, fmt.Errorf("sqlite: getting question %s: %w", id, err)
	}

	return &q, nil
}

// List returns questions ordered by creation time, newest first.
func (s *QuestionStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Question, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing questions: %w", err)
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID,
			&q.UserID,
			&q.Title,
			&q.Content,
			&q.IsSolved,
			&q.CreatedAt,
			&q.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating question rows: %w", err)
	}

	return questions, nil
}

// Update writes title, content, and the solved flag.
func (s *QuestionStore) Update(ctx context.Context, question *model.Question) error {
	question.UpdatedAt = time.Now()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE questions
		 SET title = ?, content = ?, is_solved = ?, updated_at = ?
		 WHERE id = ?`,
		question.Title,
		question.Content,
		question.IsSolved,
		question.UpdatedAt,
		question.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating question %s: %w", question.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("question", question.ID)
	}

	return nil
}

// Delete removes a question; answers and their comments cascade.
func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting question %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("question", id)
	}

	return nil
}
