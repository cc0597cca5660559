package repository

import (
	"context"
	"errors"
	"fmt"

	"ecommerce_api/internal/model"

	"github.com/jackc/pgx/v5"
)

// CategoryRepository defines read operations over categories
type CategoryRepository interface {
	FindAllActive(ctx context.Context) ([]model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
}

type categoryRepository struct {
	db DBTX
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepository{db: db}
}

const categorySelect = `SELECT c.id, c.name, c.description, c.slug, c.image,
       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.is_active = TRUE)::int
FROM categories c`

// FindAllActive lists active categories by name with their active product counts.
func (r *categoryRepository) FindAllActive(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, categorySelect+` WHERE c.is_active = TRUE ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.Image, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

// FindBySlug retrieves an active category. Missing or inactive is (nil, nil).
func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	c := &model.Category{}
	err := r.db.QueryRow(ctx, categorySelect+` WHERE c.slug = $1 AND c.is_active = TRUE`, slug).
		Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.Image, &c.ProductCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find category by slug: %w", err)
	}
	return c, nil
}
