package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"studyhub/internal/apperror"
	"studyhub/internal/model"
	"studyhub/internal/moderation"
	"studyhub/internal/repository"
)

// AnswerService owns the answer lifecycle, including acceptance: the
// question author picks one answer, which marks the question solved and
// pays the acceptance reward to the answer's author.
type AnswerService struct {
	answers   repository.AnswerRepository
	questions repository.QuestionRepository
	users     repository.UserRepository
	filter    *moderation.Filter
	rewards   *RewardService
	logger    *slog.Logger
}

// NewAnswerService creates an AnswerService.
func NewAnswerService(
	answers repository.AnswerRepository,
	questions repository.QuestionRepository,
	users repository.UserRepository,
	filter *moderation.Filter,
	rewards *RewardService,
	logger *slog.Logger,
) *AnswerService {
	return &AnswerService{
		answers:   answers,
		questions: questions,
		users:     users,
		filter:    filter,
		rewards:   rewards,
		logger:    logger,
	}
}

// Create posts an answer to an existing question.
func (s *AnswerService) Create(ctx context.Context, username, questionID, content string) (*model.Answer, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if err := s.filter.Validate(content); err != nil {
		return nil, err
	}

	// The question must exist; answering a deleted question is a 404, not
	// an orphan row.
	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		return nil, fmt.Errorf("service/answer: fetching question %s: %w", questionID, err)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/answer: fetching user %q: %w", username, err)
	}

	answer := &model.Answer{QuestionID: questionID, UserID: user.ID, Content: content}
	if err := s.answers.Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("service/answer: creating answer: %w", err)
	}
	return answer, nil
}

// ListByQuestion returns a question's answers, oldest first.
func (s *AnswerService) ListByQuestion(ctx context.Context, questionID string) ([]model.Answer, error) {
	answers, err := s.answers.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("service/answer: listing answers for question %s: %w", questionID, err)
	}
	return answers, nil
}

// Update edits an answer's content. Only the author (or an admin) may
// edit; the accepted flag is controlled exclusively by Accept.
func (s *AnswerService) Update(ctx context.Context, username, id, content string) (*model.Answer, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "content must not be empty")
	}
	if err := s.filter.Validate(content); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/answer: fetching user %q: %w", username, err)
	}
	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/answer: fetching answer %s: %w", id, err)
	}
	if !canModify(user, answer.UserID) {
		return nil, apperror.Forbidden("only the author may edit this answer")
	}

	answer.Content = content
	if err := s.answers.Update(ctx, answer); err != nil {
		return nil, fmt.Errorf("service/answer: updating answer %s: %w", id, err)
	}
	return answer, nil
}

// Accept marks an answer as the accepted one.
//
// Only the question's author may accept, the question may only be solved
// once, and the answer's author is paid the acceptance reward. Accepting
// your own answer is allowed — answering your own question and later
// marking it solved is a normal flow.
func (s *AnswerService) Accept(ctx context.Context, username, answerID string) (*model.Answer, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/answer: fetching user %q: %w", username, err)
	}
	answer, err := s.answers.GetByID(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("service/answer: fetching answer %s: %w", answerID, err)
	}
	question, err := s.questions.GetByID(ctx, answer.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("service/answer: fetching question %s: %w", answer.QuestionID, err)
	}

	if question.UserID != user.ID {
		return nil, apperror.Forbidden("only the question author may accept an answer")
	}
	if question.IsSolved {
		return nil, apperror.Conflict("question already has an accepted answer")
	}

	answer.IsAccepted = true
	if err := s.answers.Update(ctx, answer); err != nil {
		return nil, fmt.Errorf("service/answer: accepting answer %s: %w", answerID, err)
	}
	question.IsSolved = true
	if err := s.questions.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("service/answer: marking question %s solved: %w", question.ID, err)
	}

	if err := s.rewards.Award(ctx, answer.UserID, ReasonAnswerAccepted, PointsAnswerAccepted); err != nil {
		s.logger.Error("awarding acceptance reward", slog.String("userID", answer.UserID), slog.Any("error", err))
	}

	return answer, nil
}

// Delete removes an answer. Only the author (or an admin) may delete.
func (s *AnswerService) Delete(ctx context.Context, username, id string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("service/answer: fetching user %q: %w", username, err)
	}
	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service/answer: fetching answer %s: %w", id, err)
	}
	if !canModify(user, answer.UserID) {
		return apperror.Forbidden("only the author may delete this answer")
	}
	if err := s.answers.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/answer: deleting answer %s: %w", id, err)
	}
	return nil
}
