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

// CommentService owns comments on answers. Threading is one level deep: a
// comment either sits directly on an answer or replies to a top-level
// comment on the same answer.
type CommentService struct {
	comments repository.CommentRepository
	answers  repository.AnswerRepository
	users    repository.UserRepository
	filter   *moderation.Filter
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	answers repository.AnswerRepository,
	users repository.UserRepository,
	filter *moderation.Filter,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		answers:  answers,
		users:    users,
		filter:   filter,
		logger:   logger,
	}
}

// Create posts a comment on an answer, optionally as a reply to an
// existing top-level comment on that answer.
func (s *CommentService) Create(ctx context.Context, username, answerID string, parentID *string, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if err := s.filter.Validate(content); err != nil {
		return nil, err
	}

	if _, err := s.answers.GetByID(ctx, answerID); err != nil {
		return nil, fmt.Errorf("service/comment: fetching answer %s: %w", answerID, err)
	}

	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("service/comment: fetching parent comment %s: %w", *parentID, err)
		}
		if parent.AnswerID != answerID {
			return nil, apperror.ValidationFailed("parentId", "parent comment belongs to a different answer")
		}
		if parent.ParentID != nil {
			return nil, apperror.ValidationFailed("parentId", "replies cannot be nested further")
		}
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/comment: fetching user %q: %w", username, err)
	}

	comment := &model.Comment{AnswerID: answerID, UserID: user.ID, ParentID: parentID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/comment: creating comment: %w", err)
	}
	return comment, nil
}

// Thread is a top-level comment with its replies.
type Thread struct {
	Comment model.Comment   `json:"comment"`
	Replies []model.Comment `json:"replies"`
}

// ListForAnswer assembles an answer's comment threads.
func (s *CommentService) ListForAnswer(ctx context.Context, answerID string) ([]Thread, error) {
	if _, err := s.answers.GetByID(ctx, answerID); err != nil {
		return nil, fmt.Errorf("service/comment: fetching answer %s: %w", answerID, err)
	}

	top, err := s.comments.ListForAnswer(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("service/comment: listing comments for answer %s: %w", answerID, err)
	}

	threads := make([]Thread, 0, len(top))
	for _, c := range top {
		replies, err := s.comments.ListReplies(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("service/comment: listing replies for comment %s: %w", c.ID, err)
		}
		threads = append(threads, Thread{Comment: c, Replies: replies})
	}
	return threads, nil
}

// Update edits a comment. Only the author (or an admin) may edit.
func (s *CommentService) Update(ctx context.Context, username, id, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "content must not be empty")
	}
	if err := s.filter.Validate(content); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/comment: fetching user %q: %w", username, err)
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/comment: fetching comment %s: %w", id, err)
	}
	if !canModify(user, comment.UserID) {
		return nil, apperror.Forbidden("only the author may edit this comment")
	}

	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/comment: updating comment %s: %w", id, err)
	}
	return comment, nil
}

// Delete removes a comment and its replies. Only the author (or an admin)
// may delete.
func (s *CommentService) Delete(ctx context.Context, username, id string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("service/comment: fetching user %q: %w", username, err)
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service/comment: fetching comment %s: %w", id, err)
	}
	if !canModify(user, comment.UserID) {
		return apperror.Forbidden("only the author may delete this comment")
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/comment: deleting comment %s: %w", id, err)
	}
	return nil
}
