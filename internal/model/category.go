package model

// Category is a catalog section with the number of active products in it.
type Category struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Slug         string  `json:"slug"`
	Image        *string `json:"image"`
	ProductCount int     `json:"productCount"`
}

// CategorySummary is embedded in product payloads.
type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SlugParam binds the :slug path segment.
type SlugParam struct {
	Slug string `uri:"slug" binding:"required,max=100,slug"`
}
