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

// QuestionService owns the question lifecycle. Posting a question earns
// points; every piece of submitted text passes the moderation filter
// before it is stored.
type QuestionService struct {
	questions repository.QuestionRepository
	users     repository.UserRepository
	filter    *moderation.Filter
	rewards   *RewardService
	logger    *slog.Logger
}

// NewQuestionService creates a QuestionService.
func NewQuestionService(
	questions repository.QuestionRepository,
	users repository.UserRepository,
	filter *moderation.Filter,
	rewards *RewardService,
	logger *slog.Logger,
) *QuestionService {
	return &QuestionService{
		questions: questions,
		users:     users,
		filter:    filter,
		rewards:   rewards,
		logger:    logger,
	}
}

// Create posts a question for the named user and awards the posting
// reward.
func (s *QuestionService) Create(ctx context.Context, username, title, content string) (*model.Question, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if err := s.filter.Validate(title); err != nil {
		return nil, err
	}
	if err := s.filter.Validate(content); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/question: fetching user %q: %w", username, err)
	}

	question := &model.Question{UserID: user.ID, Title: title, Content: content}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("service/question: creating question: %w", err)
	}

	// Posting failed rewards shouldn't fail the post itself; the question
	// is already live.
	if err := s.rewards.Award(ctx, user.ID, ReasonQuestionPosted, PointsQuestionPosted); err != nil {
		s.logger.Error("awarding question reward", slog.String("userID", user.ID), slog.Any("error", err))
	}

	return question, nil
}

// Get returns one question by ID.
func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/question: fetching question %s: %w", id, err)
	}
	return question, nil
}

// List pages through questions, newest first.
func (s *QuestionService) List(ctx context.Context, opts repository.ListOptions) ([]model.Question, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	questions, err := s.questions.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("service/question: listing questions: %w", err)
	}
	return questions, nil
}

// UpdateQuestionInput carries the editable fields; nil leaves a field
// unchanged.
type UpdateQuestionInput struct {
	Title   *string
	Content *string
}

// Update edits a question. Only the author (or an admin) may edit.
func (s *QuestionService) Update(ctx context.Context, username, id string, in UpdateQuestionInput) (*model.Question, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/question: fetching user %q: %w", username, err)
	}
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/question: fetching question %s: %w", id, err)
	}
	if !canModify(user, question.UserID) {
		return nil, apperror.Forbidden("only the author may edit this question")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title must not be empty")
		}
		if err := s.filter.Validate(title); err != nil {
			return nil, err
		}
		question.Title = title
	}
	if in.Content != nil {
		if err := s.filter.Validate(*in.Content); err != nil {
			return nil, err
		}
		question.Content = *in.Content
	}

	if err := s.questions.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("service/question: updating question %s: %w", id, err)
	}
	return question, nil
}

// Delete removes a question. Only the author (or an admin) may delete;
// answers and comments cascade away with it.
func (s *QuestionService) Delete(ctx context.Context, username, id string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("service/question: fetching user %q: %w", username, err)
	}
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service/question: fetching question %s: %w", id, err)
	}
	if !canModify(user, question.UserID) {
		return apperror.Forbidden("only the author may delete this question")
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/question: deleting question %s: %w", id, err)
	}
	return nil
}
