package service

import (
	"context"
	"fmt"
	"log/slog"

	"studyhub/internal/model"
	"studyhub/internal/repository"
)

// Reward amounts and ledger reasons. The ledger is append-only; a user's
// balance is the sum of their entries.
const (
	PointsQuestionPosted = 5
	PointsAnswerAccepted = 20

	ReasonQuestionPosted = "question posted"
	ReasonAnswerAccepted = "answer accepted"
)

// RewardService maintains the point ledger.
type RewardService struct {
	rewards repository.RewardRepository
	logger  *slog.Logger
}

// NewRewardService creates a RewardService.
func NewRewardService(rewards repository.RewardRepository, logger *slog.Logger) *RewardService {
	return &RewardService{rewards: rewards, logger: logger}
}

// Award appends one ledger entry for the user.
func (s *RewardService) Award(ctx context.Context, userID, reason string, points int) error {
	entry := &model.Reward{UserID: userID, Reason: reason, Points: points}
	if err := s.rewards.Add(ctx, entry); err != nil {
		return fmt.Errorf("service/reward: awarding %d points to user %s: %w", points, userID, err)
	}
	s.logger.Info("points awarded",
		slog.String("userID", userID),
		slog.String("reason", reason),
		slog.Int("points", points),
	)
	return nil
}

// Summary is a user's reward history and balance.
type Summary struct {
	Total   int            `json:"total"`
	Entries []model.Reward `json:"entries"`
}

// SummaryForUser returns the user's full ledger and point total.
func (s *RewardService) SummaryForUser(ctx context.Context, userID string) (*Summary, error) {
	entries, err := s.rewards.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/reward: listing rewards for user %s: %w", userID, err)
	}
	total, err := s.rewards.TotalForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/reward: totalling rewards for user %s: %w", userID, err)
	}
	return &Summary{Total: total, Entries: entries}, nil
}
