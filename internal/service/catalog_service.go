package service

import (
	"bytes"
	"context"
	"fmt"

	"ecommerce_api/internal/logger"
	"ecommerce_api/internal/model"
	"ecommerce_api/internal/repository"
)

// CatalogService defines read operations over products and categories
type CatalogService interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error)
	GetProductByID(ctx context.Context, id string) (*model.ProductDetail, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.ProductDetail, error)
	GetFeaturedProducts(ctx context.Context, limit int) ([]model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	ExportProducts(ctx context.Context, filter model.ProductFilter, format string) (*bytes.Buffer, error)
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	log        *logger.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository, log *logger.Logger) CatalogService {
	return &catalogService{products: products, categories: categories, log: log}
}

func (s *catalogService) ListProducts(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	filter.Normalize()

	products, total, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.log.DebugContext(ctx, "fetched products", "count", len(products), "total", total)
	return &model.ProductPage{
		Products:   products,
		Pagination: model.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// GetProductByID returns an active product with its reviews.
func (s *catalogService) GetProductByID(ctx context.Context, id string) (*model.ProductDetail, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	return s.withReviews(ctx, product)
}

// GetProductBySlug resolves the slug against the product SKU.
func (s *catalogService) GetProductBySlug(ctx context.Context, slug string) (*model.ProductDetail, error) {
	product, err := s.products.FindBySKU(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return s.withReviews(ctx, product)
}

func (s *catalogService) GetFeaturedProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if limit < 1 {
		limit = model.DefaultFeaturedLimit
	}
	if limit > model.MaxPageLimit {
		limit = model.MaxPageLimit
	}
	products, err := s.products.FindFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured products: %w", err)
	}
	return products, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categories.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *catalogService) withReviews(ctx context.Context, product *model.Product) (*model.ProductDetail, error) {
	reviews, err := s.products.ListReviews(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	return &model.ProductDetail{Product: *product, Reviews: reviews}, nil
}
