// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage implements them.
package repository

import (
	"context"
	"time"

	"studyhub/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository is the credential store: user records keyed by id,
// username, email, and OAuth2 provider id.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByProviderID(ctx context.Context, providerID string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	CountsForUser(ctx context.Context, userID string) (*model.Counts, error)
}

// RefreshTokenRepository persists at most one live refresh token per user.
// Replace must atomically remove any previous row for the user before
// inserting the new one.
type RefreshTokenRepository interface {
	ExistsForUser(ctx context.Context, userID string) (bool, error)
	ExistsByToken(ctx context.Context, token string) (bool, error)
	Replace(ctx context.Context, userID, token string, expiresAt time.Time) error
	DeleteForUser(ctx context.Context, userID string) error
}

type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	List(ctx context.Context, opts ListOptions) ([]model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id string) error
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *model.Answer) error
	GetByID(ctx context.Context, id string) (*model.Answer, error)
	ListByQuestion(ctx context.Context, questionID string) ([]model.Answer, error)
	Update(ctx context.Context, answer *model.Answer) error
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListForAnswer(ctx context.Context, answerID string) ([]model.Comment, error)
	ListReplies(ctx context.Context, parentID string) ([]model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id string) error
}

// RewardRepository is an append-only point ledger.
type RewardRepository interface {
	Add(ctx context.Context, reward *model.Reward) error
	ListForUser(ctx context.Context, userID string) ([]model.Reward, error)
	TotalForUser(ctx context.Context, userID string) (int, error)
}
