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

// PantryHandler handles HTTP requests for pantries and their stock
type PantryHandler struct {
	service service.PantryService
	logger  *slog.Logger
}

// NewPantryHandler creates a new pantry handler
func NewPantryHandler(service service.PantryService, logger *slog.Logger) *PantryHandler {
	return &PantryHandler{
		service: service,
		logger:  logger,
	}
}

type CreatePantryRequest struct {
	Name     string          `json:"name" binding:"required,min=1,max=100"`
	Metadata models.Metadata `json:"metadata"`
}

type UpdatePantryRequest struct {
	Name     *string         `json:"name" binding:"omitempty,min=1,max=100"`
	Metadata models.Metadata `json:"metadata"`
}

type CreatePantryItemRequest struct {
	ProductID  uint    `json:"product_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	Unit       string  `json:"unit" binding:"omitempty,max=20"`
	CategoryID *uint   `json:"category_id"`
}

type UpdatePantryItemRequest struct {
	Quantity   *float64 `json:"quantity" binding:"omitempty,gt=0"`
	Unit       *string  `json:"unit" binding:"omitempty,max=20"`
	CategoryID *uint    `json:"category_id"`
}

// ==================== Pantry CRUD ====================

// CreatePantry handles pantry creation
func (h *PantryHandler) CreatePantry(c *gin.Context) {
	userID := getUserIDFromContext(c)

	var req CreatePantryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid create pantry request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pantry name required (max 100 chars)"})
		return
	}

	pantry, err := h.service.CreatePantry(c.Request.Context(), userID, service.CreatePantryInput{
		Name:     req.Name,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pantry)
}

// ListPantries returns the pantries the user owns or has access to
func (h *PantryHandler) ListPantries(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	page, perPage := pagination.FromQuery(c)
	filter := repository.PantryFilter{
		Name:   c.Query("name"),
		Search: c.Query("search"),
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	}

	pantries, total, err := h.service.ListPantries(c.Request.Context(), userID, email, filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPage(pantries, total, page, perPage))
}

// GetPantry returns a single pantry
func (h *PantryHandler) GetPantry(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}

	pantry, err := h.service.GetPantry(c.Request.Context(), userID, email, pantryID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pantry)
}

// UpdatePantry updates pantry fields (owner only)
func (h *PantryHandler) UpdatePantry(c *gin.Context) {
	userID := getUserIDFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}

	var req UpdatePantryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid update pantry request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	pantry, err := h.service.UpdatePantry(c.Request.Context(), userID, pantryID, service.UpdatePantryInput{
		Name:     req.Name,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pantry)
}

// DeletePantry removes a pantry (owner only)
func (h *PantryHandler) DeletePantry(c *gin.Context) {
	userID := getUserIDFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}

	if err := h.service.DeletePantry(c.Request.Context(), userID, pantryID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pantry deleted successfully"})
}

// ==================== Sharing ====================

// SharePantry grants access to a user by email (owner only)
func (h *PantryHandler) SharePantry(c *gin.Context) {
	userID := getUserIDFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid share request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email required"})
		return
	}

	share, err := h.service.SharePantry(c.Request.Context(), userID, pantryID, req.Email)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, share)
}

// ListShares returns the shares on a pantry
func (h *PantryHandler) ListShares(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}

	shares, err := h.service.ListShares(c.Request.Context(), userID, email, pantryID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

// RevokeShare removes a user's access (owner only)
func (h *PantryHandler) RevokeShare(c *gin.Context) {
	userID := getUserIDFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}
	targetUserID, ok := parseIDParam(c, "userId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.service.RevokeShare(c.Request.Context(), userID, pantryID, targetUserID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Share revoked successfully"})
}

// ==================== Items ====================

// AddItem adds stock to a pantry
func (h *PantryHandler) AddItem(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}

	var req CreatePantryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid add item request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product and positive quantity required"})
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), userID, email, pantryID, service.CreatePantryItemInput{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ListItems returns the stock of a pantry
func (h *PantryHandler) ListItems(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}

	page, perPage := pagination.FromQuery(c)
	filter := repository.PantryItemFilter{
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

	items, total, err := h.service.ListItems(c.Request.Context(), userID, email, pantryID, filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPage(items, total, page, perPage))
}

// GetItem returns a single pantry item
func (h *PantryHandler) GetItem(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), userID, email, pantryID, itemID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateItem updates quantity, unit or category of stock
func (h *PantryHandler) UpdateItem(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req UpdatePantryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid update item request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), userID, email, pantryID, itemID, service.UpdatePantryItemInput{
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes stock from a pantry
func (h *PantryHandler) DeleteItem(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	pantryID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pantry ID"})
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), userID, email, pantryID, itemID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// handleServiceError maps service errors to HTTP responses
func (h *PantryHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrPantryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Pantry not found"})
	case errors.Is(err, repository.ErrPantryItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, repository.ErrShareNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Share not found"})
	case errors.Is(err, repository.ErrNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "A pantry with this name already exists"})
	case errors.Is(err, repository.ErrDuplicateShare):
		c.JSON(http.StatusConflict, gin.H{"error": "Pantry already shared with this email"})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
