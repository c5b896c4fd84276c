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

// UserStore implements repository.UserRepository.
type UserStore struct {
	conn *sql.DB
}

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

const userColumns = `id, username, password_hash, email, nickname, role, login_type, provider_id, created_at, updated_at`

// Create inserts a new user. The ID and timestamps are assigned here; the
// caller's struct is updated in place. Username and email uniqueness is
// backed by the table's UNIQUE constraints, so a duplicate surfaces as a
// driver error even if the service-level existence checks raced.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.LoginType == "" {
		user.LoginType = model.LoginGeneral
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.Nickname,
		user.Role,
		user.LoginType,
		user.ProviderID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

// GetByUsername retrieves a user by their unique username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx, `username = ?`, username)
}

// GetByEmail retrieves a user by their unique email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `email = ?`, email)
}

// GetByProviderID retrieves an OAuth2 user by the provider's stable user ID.
func (s *UserStore) GetByProviderID(ctx context.Context, providerID string) (*model.User, error) {
	return s.getUser(ctx, `provider_id = ? AND provider_id != ''`, providerID)
}

func (s *UserStore) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&u.Nickname,
		&u.Role,
		&u.LoginType,
		&u.ProviderID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return &u, nil
}

// ExistsByUsername reports whether a user with the given username exists.
func (s *UserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return exists(ctx, s.conn, `SELECT COUNT(*) FROM users WHERE username = ?`, username)
}

// ExistsByEmail reports whether a user with the given email exists.
func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, s.conn, `SELECT COUNT(*) FROM users WHERE email = ?`, email)
}

// List returns users ordered by creation time, newest first.
func (s *UserStore) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.PasswordHash,
			&u.Email,
			&u.Nickname,
			&u.Role,
			&u.LoginType,
			&u.ProviderID,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}

// Update writes the mutable user fields. ID, username, login_type,
// provider_id, and created_at are immutable and never touched here.
func (s *UserStore) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = ?, email = ?, nickname = ?, role = ?, updated_at = ?
		 WHERE id = ?`,
		user.PasswordHash,
		user.Email,
		user.Nickname,
		user.Role,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// Delete removes a user. The refresh token and all authored content go with
// it via the ON DELETE CASCADE constraints.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

// CountsForUser returns how many questions, answers, and comments the user
// has authored.
func (s *UserStore) CountsForUser(ctx context.Context, userID string) (*model.Counts, error) {
	var c model.Counts
	err := s.conn.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM questions WHERE user_id = ?),
			(SELECT COUNT(*) FROM answers WHERE user_id = ?),
			(SELECT COUNT(*) FROM comments WHERE user_id = ?)`,
		userID, userID, userID,
	).Scan(&c.Questions, &c.Answers, &c.Comments)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting activity for user %s: %w", userID, err)
	}
	return &c, nil
}
