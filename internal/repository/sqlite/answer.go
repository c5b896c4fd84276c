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

// AnswerStore implements repository.AnswerRepository.
type AnswerStore struct {
	conn *sql.DB
}

// compile-time check that *AnswerStore implements the interface
var _ repository.AnswerRepository = (*AnswerStore)(nil)

const answerColumns = `id, question_id, user_id, content, is_accepted, created_at, updated_at`

// Create inserts a new answer, assigning its ID and timestamps.
func (s *AnswerStore) Create(ctx context.Context, answer *model.Answer) error {
	now := time.Now()
	answer.ID = xid.New().String()
	answer.CreatedAt = now
	answer.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO answers (`+answerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		answer.ID,
		answer.QuestionID,
		answer.UserID,
		answer.Content,
		answer.IsAccepted,
		answer.CreatedAt,
		answer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting answer: %w", err)
	}

	return nil
}

// GetByID retrieves an answer by ID.
func (s *AnswerStore) GetByID(ctx context.Context, id string) (*model.Answer, error) {
	var a model.Answer
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE id = ?`, id,
	).Scan(
		&a.ID,
		&a.QuestionID,
		&a.UserID,
		&a.Content,
		&a.IsAccepted,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("answer", id)
		}
		return nil, fmt.Errorf("sqlite: getting answer %s: %w", id, err)
	}

	return &a, nil
}

// ListByQuestion returns a question's answers, oldest first.
func (s *AnswerStore) ListByQuestion(ctx context.Context, questionID string) ([]model.Answer, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+answerColumns+` FROM answers
		 WHERE question_id = ?
		 ORDER BY created_at ASC`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing answers for question %s: %w", questionID, err)
	}
	defer rows.Close()

	answers := []model.Answer{}
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(
			&a.ID,
			&a.QuestionID,
			&a.UserID,
			&a.Content,
			&a.IsAccepted,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning answer row: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating answer rows: %w", err)
	}

	return answers, nil
}

// Update writes content and the accepted flag.
func (s *AnswerStore) Update(ctx context.Context, answer *model.Answer) error {
	answer.UpdatedAt = time.Now()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE answers
		 SET content = ?, is_accepted = ?, updated_at = ?
		 WHERE id = ?`,
		answer.Content,
		answer.IsAccepted,
		answer.UpdatedAt,
		answer.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating answer %s: %w", answer.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("answer", answer.ID)
	}

	return nil
}

// Delete removes an answer; its comments cascade.
func (s *AnswerStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM answers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting answer %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("answer", id)
	}

	return nil
}
