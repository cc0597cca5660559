package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ecommerce_api/internal/model"
	"ecommerce_api/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// CatalogHandler serves products and categories
type CatalogHandler struct {
	service service.CatalogService
	resp    *Responder
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(s service.CatalogService, resp *Responder) *CatalogHandler {
	return &CatalogHandler{service: s, resp: resp}
}

// bindFilter reads the product query string into a filter; false means a 400 was written.
func (h *CatalogHandler) bindFilter(c *gin.Context) (model.ProductFilter, bool) {
	var q model.ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.resp.bindError(c, err)
		return model.ProductFilter{}, false
	}

	filter := model.ProductFilter{
		CategoryID: optional(q.CategoryID),
		Search:     optional(q.Search),
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		IsFeatured: q.IsFeatured,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
	}
	if q.Page != nil {
		filter.Page = *q.Page
	}
	if q.Limit != nil {
		filter.Limit = *q.Limit
	}
	filter.Normalize()
	return filter, true
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	page, err := h.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.Page(c, page.Products, page.Pagination)
}

func (h *CatalogHandler) GetFeaturedProducts(c *gin.Context) {
	limit := model.DefaultFeaturedLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > model.MaxPageLimit {
			h.resp.Fail(c, http.StatusBadRequest, msgValidationFailed,
				FieldError{Field: "limit", Message: fieldMessages["limit"]})
			return
		}
		limit = n
	}

	products, err := h.service.GetFeaturedProducts(c.Request.Context(), limit)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, products, "")
}

func (h *CatalogHandler) GetProductByID(c *gin.Context) {
	var p model.ProductIDParam
	if err := c.ShouldBindUri(&p); err != nil {
		h.resp.bindError(c, err)
		return
	}

	product, err := h.service.GetProductByID(c.Request.Context(), p.ID)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, product, "")
}

func (h *CatalogHandler) GetProductBySlug(c *gin.Context) {
	var p model.SlugParam
	if err := c.ShouldBindUri(&p); err != nil {
		h.resp.bindError(c, err)
		return
	}

	product, err := h.service.GetProductBySlug(c.Request.Context(), p.Slug)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, product, "")
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, categories, "")
}

func (h *CatalogHandler) GetCategoryBySlug(c *gin.Context) {
	var p model.SlugParam
	if err := c.ShouldBindUri(&p); err != nil {
		h.resp.bindError(c, err)
		return
	}

	category, err := h.service.GetCategoryBySlug(c.Request.Context(), p.Slug)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, category, "")
}

// ExportProductsAdmin streams the filtered catalog as a CSV or XLSX attachment.
func (h *CatalogHandler) ExportProductsAdmin(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", service.ExportFormatCSV))

	buffer, err := h.service.ExportProducts(c.Request.Context(), filter, format)
	if err != nil {
		h.resp.Error(c, err)
		return
	}

	contentType := contentTypeCSV
	if format == service.ExportFormatXLSX {
		contentType = contentTypeXLSX
	}
	fileName := fmt.Sprintf("products_export_%s.%s", time.Now().Format("20060102_150405"), format)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, contentType, buffer.Bytes())
}

// RegisterCatalogRoutes registers product, category and admin export routes
func (h *CatalogHandler) RegisterCatalogRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	products := rg.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/featured", h.GetFeaturedProducts)
		products.GET("/categories/all", h.ListCategories)
		products.GET("/categories/:slug", h.GetCategoryBySlug)
		products.GET("/slug/:slug", h.GetProductBySlug)
		products.GET("/:id", h.GetProductByID)
	}

	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(authMW)
	adminRoutes.Use(adminMW)
	{
		adminRoutes.GET("/products/export", h.ExportProductsAdmin)
	}
}
