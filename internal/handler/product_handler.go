package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/despensa-app/backend-go/internal/database/models"
	"github.com/despensa-app/backend-go/internal/database/repository"
	"github.com/despensa-app/backend-go/internal/database/service"
	"github.com/despensa-app/backend-go/internal/pagination"
)

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

type CreateProductRequest struct {
	Name       string          `json:"name" binding:"required,min=1,max=100"`
	Aliases    []string        `json:"aliases" binding:"omitempty,dive,min=1,max=100"`
	CategoryID *uint           `json:"category_id"`
	Metadata   models.Metadata `json:"metadata"`
}

type UpdateProductRequest struct {
	Name       *string         `json:"name" binding:"omitempty,min=1,max=100"`
	Aliases    []string        `json:"aliases" binding:"omitempty,dive,min=1,max=100"`
	CategoryID *uint           `json:"category_id"`
	Metadata   models.Metadata `json:"metadata"`
}

// CreateProduct adds a product to the shared catalog
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid create product request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product name required (max 100 chars)"})
		return
	}

	product, err := h.service.CreateProduct(service.CreateProductInput{
		Name:       req.Name,
		Aliases:    req.Aliases,
		CategoryID: req.CategoryID,
		Metadata:   req.Metadata,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// ListProducts returns a page of the catalog
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, perPage := pagination.FromQuery(c)
	filter := repository.ProductFilter{
		Name:   c.Query("name"),
		Search: c.Query("search"),
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	}
	if v := c.Query("category_id"); v != "" {
		categoryID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category filter"})
			return
		}
		id := uint(categoryID)
		filter.CategoryID = &id
	}

	products, total, err := h.service.ListProducts(filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPage(products, total, page, perPage))
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.service.GetProduct(productID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct updates catalog fields
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid update product request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	product, err := h.service.UpdateProduct(productID, service.UpdateProductInput{
		Name:       req.Name,
		Aliases:    req.Aliases,
		CategoryID: req.CategoryID,
		Metadata:   req.Metadata,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := h.service.DeleteProduct(productID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// handleServiceError maps service errors to HTTP responses
func (h *ProductHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, repository.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
