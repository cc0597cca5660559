package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecommerce_api/internal/model"

	"github.com/jackc/pgx/v5"
)

// ProductRepository defines read operations over the catalog
type ProductRepository interface {
	FindAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindFeatured(ctx context.Context, limit int) ([]model.Product, error)
	ListReviews(ctx context.Context, productID string) ([]model.Review, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

const productSelect = `SELECT p.id, p.name, p.description, p.brand, p.sku, p.price::float8, p.stock, p.images,
       p.category_id, c.id, c.name, c.slug, p.is_active, p.is_featured,
       COALESCE(ROUND(r.avg_rating, 1), 0)::float8, COALESCE(r.review_count, 0)::int,
       p.created_at, p.updated_at
FROM products p
JOIN categories c ON c.id = p.category_id
LEFT JOIN (
    SELECT product_id, AVG(rating) AS avg_rating, COUNT(*) AS review_count
    FROM reviews GROUP BY product_id
) r ON r.product_id = p.id`

var productSortColumns = map[string]string{
	model.SortByName:      "p.name",
	model.SortByPrice:     "p.price",
	model.SortByCreatedAt: "p.created_at",
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Brand, &p.SKU, &p.Price, &p.Stock, &p.Images,
		&p.CategoryID, &p.Category.ID, &p.Category.Name, &p.Category.Slug, &p.IsActive, &p.IsFeatured,
		&p.AverageRating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// buildProductWhere translates a filter into a WHERE clause and its arguments.
// Only active products are ever listed.
func buildProductWhere(f model.ProductFilter) (string, []any) {
	conditions := []string{"p.is_active = TRUE"}
	args := []any{}
	argCount := 1

	if f.CategoryID != nil && *f.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argCount))
		args = append(args, *f.CategoryID)
		argCount++
	}
	if f.Search != nil && *f.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d OR p.brand ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+escapeLike(*f.Search)+"%")
		argCount++
	}
	if f.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price >= $%d", argCount))
		args = append(args, *f.MinPrice)
		argCount++
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price <= $%d", argCount))
		args = append(args, *f.MaxPrice)
		argCount++
	}
	if f.IsFeatured != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_featured = $%d", argCount))
		args = append(args, *f.IsFeatured)
		argCount++
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// buildProductOrder renders ORDER BY for a normalized filter.
func buildProductOrder(f model.ProductFilter) string {
	column, ok := productSortColumns[f.SortBy]
	if !ok {
		column = productSortColumns[model.SortByCreatedAt]
	}
	direction := "DESC"
	if f.SortOrder == model.SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, p.id ASC", column, direction)
}

// FindAll returns one page of active products matching the filter and the total match count.
func (r *productRepository) FindAll(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	filter.Normalize()
	where, args := buildProductWhere(filter)

	var total int
	countSQL := `SELECT COUNT(*)::int FROM products p` + where
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(productSelect)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(buildProductOrder(filter))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindByID retrieves a product regardless of its active flag. A missing product is (nil, nil).
func (r *productRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return p, nil
}

// FindBySKU retrieves an active product by SKU.
func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, productSelect+` WHERE p.sku = $1 AND p.is_active = TRUE`, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by SKU: %w", err)
	}
	return p, nil
}

// FindFeatured returns the newest active featured products.
func (r *productRepository) FindFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	sql := productSelect + ` WHERE p.is_active = TRUE AND p.is_featured = TRUE ORDER BY p.created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query featured products: %w", err)
	}
	return collectProducts(rows)
}

// ListReviews returns the reviews of a product, newest first.
func (r *productRepository) ListReviews(ctx context.Context, productID string) ([]model.Review, error) {
	sql := `SELECT rv.id, rv.rating, rv.comment, rv.created_at, u.id, u.first_name, u.last_name
            FROM reviews rv
            JOIN users u ON u.id = rv.user_id
            WHERE rv.product_id = $1
            ORDER BY rv.created_at DESC`
	rows, err := r.db.Query(ctx, sql, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.Rating, &rv.Comment, &rv.CreatedAt,
			&rv.User.ID, &rv.User.FirstName, &rv.User.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}
	return reviews, nil
}
