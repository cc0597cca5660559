package model

import "time"

const (
	SortByName      = "name"
	SortByPrice     = "price"
	SortByCreatedAt = "createdAt"

	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultPage          = 1
	MaxPage              = 1000000
	DefaultPageLimit     = 20
	MaxPageLimit         = 100
	DefaultFeaturedLimit = 10
)

// Product represents an item in the catalog with its review aggregate
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Brand         *string         `json:"brand"`
	SKU           string          `json:"sku"`
	Price         float64         `json:"price"`
	Stock         int             `json:"stock"`
	Images        []string        `json:"images"`
	CategoryID    string          `json:"categoryId"`
	Category      CategorySummary `json:"category"`
	IsActive      bool            `json:"isActive"`
	IsFeatured    bool            `json:"isFeatured"`
	AverageRating float64         `json:"averageRating"`
	ReviewCount   int             `json:"reviewCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ReviewAuthor is the public part of the reviewing user.
type ReviewAuthor struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Review is a single product rating.
type Review struct {
	ID        string       `json:"id"`
	Rating    int          `json:"rating"`
	Comment   *string      `json:"comment"`
	CreatedAt time.Time    `json:"createdAt"`
	User      ReviewAuthor `json:"user"`
}

// ProductDetail is a product together with its reviews, newest first.
type ProductDetail struct {
	Product
	Reviews []Review `json:"reviews"`
}

// ProductFilter contains filter, sort and paging parameters for catalog queries.
// Nil pointers mean "no constraint".
type ProductFilter struct {
	CategoryID *string
	Search     *string
	MinPrice   *float64
	MaxPrice   *float64
	IsFeatured *bool
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

// Normalize fills in paging and sort defaults.
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	switch f.SortBy {
	case SortByName, SortByPrice, SortByCreatedAt:
	default:
		f.SortBy = SortByCreatedAt
	}
	if f.SortOrder != SortAsc {
		f.SortOrder = SortDesc
	}
}

// Offset is the number of rows skipped before the current page.
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Pagination describes a page of results.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page count for total rows.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// ProductQuery binds the GET /products query string.
type ProductQuery struct {
	CategoryID string   `form:"categoryId" binding:"omitempty,uuid"`
	Search     string   `form:"search" binding:"omitempty,max=100"`
	MinPrice   *float64 `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice   *float64 `form:"maxPrice" binding:"omitempty,min=0"`
	IsFeatured *bool    `form:"isFeatured"`
	Page       *int     `form:"page" binding:"omitempty,min=1,max=1000000"`
	Limit      *int     `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy     string   `form:"sortBy" binding:"omitempty,oneof=name price createdAt"`
	SortOrder  string   `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// ProductIDParam binds the :id path segment.
type ProductIDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}
