package repository

import (
	"context"
	"errors"
	"fmt"

	"ecommerce_api/internal/model"

	"github.com/jackc/pgx/v5"
)

// RefreshTokenRepository persists issued refresh tokens.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByToken(ctx context.Context, token string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

type refreshTokenRepository struct {
	db DBTX
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository
func NewRefreshTokenRepository(db DBTX) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

// Create stores a token. A token string already present yields ErrDuplicate.
func (r *refreshTokenRepository) Create(ctx context.Context, t *model.RefreshToken) error {
	sql := `INSERT INTO refresh_tokens (id, token, user_id, expires_at)
            VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.db.QueryRow(ctx, sql, t.ID, t.Token, t.UserID, t.ExpiresAt).Scan(&t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create refresh token: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// FindByToken looks a token up together with its owner. A missing token is (nil, nil).
func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	sql := `SELECT rt.id, rt.token, rt.user_id, rt.expires_at, rt.created_at,
                   u.id, u.email, u.first_name, u.last_name, u.role, u.is_active
            FROM refresh_tokens rt
            JOIN users u ON u.id = rt.user_id
            WHERE rt.token = $1`
	t := &model.RefreshToken{User: &model.User{}}
	err := r.db.QueryRow(ctx, sql, token).Scan(
		&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt,
		&t.User.ID, &t.User.Email, &t.User.FirstName, &t.User.LastName, &t.User.Role, &t.User.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	return t, nil
}

// DeleteByID removes a single stored token.
func (r *refreshTokenRepository) DeleteByID(ctx context.Context, id string) error {
	sql := `DELETE FROM refresh_tokens WHERE id = $1`
	if _, err := r.db.Exec(ctx, sql, id); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// DeleteByToken removes every row holding the token string. Zero rows is not an error.
func (r *refreshTokenRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	sql := `DELETE FROM refresh_tokens WHERE token = $1`
	cmdTag, err := r.db.Exec(ctx, sql, token)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// DeleteByUserID removes all tokens of a user.
func (r *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	sql := `DELETE FROM refresh_tokens WHERE user_id = $1`
	cmdTag, err := r.db.Exec(ctx, sql, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh tokens by user: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
