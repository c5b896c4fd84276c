package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"studyhub/internal/model"
	"studyhub/internal/repository"
)

// RewardStore implements repository.RewardRepository.
type RewardStore struct {
	conn *sql.DB
}

// compile-time check that *RewardStore implements the interface
var _ repository.RewardRepository = (*RewardStore)(nil)

// Add appends one ledger entry, assigning its ID and timestamp.
func (s *RewardStore) Add(ctx context.Context, reward *model.Reward) error {
	reward.ID = xid.New().String()
	reward.CreatedAt = time.Now()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO rewards (id, user_id, reason, points, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		reward.ID,
		reward.UserID,
		reward.Reason,
		reward.Points,
		reward.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting reward for user %s: %w", reward.UserID, err)
	}

	return nil
}

// ListForUser returns a user's ledger entries, newest first.
func (s *RewardStore) ListForUser(ctx context.Context, userID string) ([]model.Reward, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, user_id, reason, points, created_at
		 FROM rewards
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing rewards for user %s: %w", userID, err)
	}
	defer rows.Close()

	rewards := []model.Reward{}
	for rows.Next() {
		var r model.Reward
		if err := rows.Scan(&r.ID, &r.UserID, &r.Reason, &r.Points, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning reward row: %w", err)
		}
		rewards = append(rewards, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reward rows: %w", err)
	}

	return rewards, nil
}

// TotalForUser sums a user's points. A user with no entries has total 0.
func (s *RewardStore) TotalForUser(ctx context.Context, userID string) (int, error) {
	var total sql.NullInt64
	err := s.conn.QueryRowContext(ctx,
		`SELECT SUM(points) FROM rewards WHERE user_id = ?`, userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: totalling rewards for user %s: %w", userID, err)
	}
	return int(total.Int64), nil
}
