package repository

import (
	"context"
	"fmt"

	"ecommerce_api/internal/model"

	"github.com/google/uuid"
)

// CartRepository defines operations for shopping carts
type CartRepository interface {
	Create(ctx context.Context, userID string) (*model.Cart, error)
}

type cartRepository struct {
	db DBTX
}

// NewCartRepository creates a new CartRepository
func NewCartRepository(db DBTX) CartRepository {
	return &cartRepository{db: db}
}

// Create inserts an empty cart owned by userID.
func (r *cartRepository) Create(ctx context.Context, userID string) (*model.Cart, error) {
	cart := &model.Cart{ID: uuid.NewString(), UserID: userID}
	sql := `INSERT INTO carts (id, user_id) VALUES ($1, $2) RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, cart.ID, cart.UserID).Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create cart: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}
