package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hpnchanel/usersvc/internal/model"
)

// userColumns is the projection shared by every user query.
const userColumns = `id::text, username, email, first_name, last_name, bio, avatar_url, is_active, created_at, updated_at`

// CreateUser inserts a new user and returns the stored row.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (id, username, email, first_name, last_name, bio, avatar_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.AvatarURL,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	))
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, classify("user already exists", err)
		case isNotNullViolation(err):
			return nil, classify("user is missing a required column", err)
		}
		return nil, classify("failed to create user", err)
	}

	return created, nil
}

// GetActiveUser retrieves an active user by ID.
func (r *Repository) GetActiveUser(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND is_active = true
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, classify("failed to get user by ID", err)
	}

	return user, nil
}

// ListActiveUsers retrieves every active user, newest first.
// The result is never nil.
func (r *Repository) ListActiveUsers(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_active = true
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, classify("failed to list users", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, classify("failed to scan user", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("error iterating users", err)
	}

	return users, nil
}

// UserExists checks for a row with this ID regardless of activity state.
func (r *Repository) UserExists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, classify("failed to check user existence", err)
	}

	return exists, nil
}

// UpdateUser applies a patch in one statement. Nil patch fields keep the stored value.
// updated_at always moves forward, even when two updates share a clock tick.
func (r *Repository) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	query := `
		UPDATE users
		SET username = COALESCE($2, username),
			email = COALESCE($3, email),
			first_name = COALESCE($4, first_name),
			last_name = COALESCE($5, last_name),
			bio = COALESCE($6, bio),
			avatar_url = COALESCE($7, avatar_url),
			is_active = COALESCE($8, is_active),
			updated_at = GREATEST($9, updated_at + INTERVAL '1 microsecond')
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query,
		id,
		patch.Username,
		patch.Email,
		patch.FirstName,
		patch.LastName,
		patch.Bio,
		patch.AvatarURL,
		patch.IsActive,
		patch.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, classify("failed to update user", err)
	}

	return user, nil
}

// SoftDeleteUser marks a user inactive. It does not check the current state,
// so deleting twice succeeds. ErrUserNotFound means the ID never existed.
func (r *Repository) SoftDeleteUser(ctx context.Context, id string) error {
	query := `UPDATE users SET is_active = false WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return classify("failed to delete user", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Bio,
		&user.AvatarURL,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
