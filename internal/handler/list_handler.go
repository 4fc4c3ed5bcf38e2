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

// ListHandler handles HTTP requests for shopping lists and their items
type ListHandler struct {
	service service.ListService
	logger  *slog.Logger
}

// NewListHandler creates a new shopping-list handler
func NewListHandler(service service.ListService, logger *slog.Logger) *ListHandler {
	return &ListHandler{
		service: service,
		logger:  logger,
	}
}

// Request DTOs
type CreateListRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	Description string          `json:"description" binding:"omitempty,max=500"`
	Recurring   bool            `json:"recurring"`
	Metadata    models.Metadata `json:"metadata"`
}

type UpdateListRequest struct {
	Name        *string         `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string         `json:"description" binding:"omitempty,max=500"`
	Recurring   *bool           `json:"recurring"`
	Metadata    models.Metadata `json:"metadata"`
}

type ShareRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type CreateItemRequest struct {
	ProductID  uint    `json:"product_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	Unit       string  `json:"unit" binding:"omitempty,max=20"`
	CategoryID *uint   `json:"category_id"`
}

type UpdateItemRequest struct {
	Quantity   *float64 `json:"quantity" binding:"omitempty,gt=0"`
	Unit       *string  `json:"unit" binding:"omitempty,max=20"`
	Purchased  *bool    `json:"purchased"`
	CategoryID *uint    `json:"category_id"`
}

type PurchaseRequest struct {
	Metadata models.Metadata `json:"metadata"`
}

type MoveToPantryRequest struct {
	PantryID uint `json:"pantry_id" binding:"required"`
}

// ==================== List CRUD ====================

// CreateList handles list creation
func (h *ListHandler) CreateList(c *gin.Context) {
	userID := getUserIDFromContext(c)

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid create list request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "List name required (max 100 chars)"})
		return
	}

	list, err := h.service.CreateList(c.Request.Context(), userID, service.CreateListInput{
		Name:        req.Name,
		Description: req.Description,
		Recurring:   req.Recurring,
		Metadata:    req.Metadata,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, list)
}

// ListLists returns the lists the user owns or has access to
func (h *ListHandler) ListLists(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	page, perPage := pagination.FromQuery(c)
	filter := repository.ListFilter{
		Name:   c.Query("name"),
		Search: c.Query("search"),
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	}
	if v := c.Query("recurring"); v != "" {
		recurring, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recurring filter"})
			return
		}
		filter.Recurring = &recurring
	}

	lists, total, err := h.service.ListLists(c.Request.Context(), userID, email, filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPage(lists, total, page, perPage))
}

// GetList returns a single list
func (h *ListHandler) GetList(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}

	list, err := h.service.GetList(c.Request.Context(), userID, email, listID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// UpdateList updates list fields (owner only)
func (h *ListHandler) UpdateList(c *gin.Context) {
	userID := getUserIDFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}

	var req UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid update list request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	list, err := h.service.UpdateList(c.Request.Context(), userID, listID, service.UpdateListInput{
		Name:        req.Name,
		Description: req.Description,
		Recurring:   req.Recurring,
		Metadata:    req.Metadata,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// DeleteList removes a list (owner only)
func (h *ListHandler) DeleteList(c *gin.Context) {
	userID := getUserIDFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}

	if err := h.service.DeleteList(c.Request.Context(), userID, listID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "List deleted successfully"})
}

// ==================== Sharing ====================

// ShareList grants access to a user by email (owner only)
func (h *ListHandler) ShareList(c *gin.Context) {
	userID := getUserIDFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid share request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email required"})
		return
	}

	share, err := h.service.ShareList(c.Request.Context(), userID, listID, req.Email)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, share)
}

// ListShares returns the shares on a list
func (h *ListHandler) ListShares(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}

	shares, err := h.service.ListShares(c.Request.Context(), userID, email, listID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

// RevokeShare removes a user's access (owner only)
func (h *ListHandler) RevokeShare(c *gin.Context) {
	userID := getUserIDFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}
	targetUserID, ok := parseIDParam(c, "userId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.service.RevokeShare(c.Request.Context(), userID, listID, targetUserID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Share revoked successfully"})
}

// ==================== Items ====================

// AddItem adds a product to a list
func (h *ListHandler) AddItem(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid add item request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product and positive quantity required"})
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), userID, email, listID, service.CreateItemInput{
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

// ListItems returns the items of a list
func (h *ListHandler) ListItems(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}

	page, perPage := pagination.FromQuery(c)
	filter := repository.ListItemFilter{
		Search: c.Query("search"),
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	}
	if v := c.Query("purchased"); v != "" {
		purchased, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchased filter"})
			return
		}
		filter.Purchased = &purchased
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

	items, total, err := h.service.ListItems(c.Request.Context(), userID, email, listID, filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPage(items, total, page, perPage))
}

// GetItem returns a single list item
func (h *ListHandler) GetItem(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), userID, email, listID, itemID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateItem updates quantity, unit, category or purchased state
func (h *ListHandler) UpdateItem(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid update item request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), userID, email, listID, itemID, service.UpdateItemInput{
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Purchased:  req.Purchased,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item from a list
func (h *ListHandler) DeleteItem(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), userID, email, listID, itemID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// ==================== Purchase lifecycle ====================

// Purchase marks every item purchased and snapshots the list
func (h *ListHandler) Purchase(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}

	// Body is optional; metadata only.
	var req PurchaseRequest
	_ = c.ShouldBindJSON(&req)

	purchase, err := h.service.Purchase(c.Request.Context(), userID, email, listID, req.Metadata)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

// Reset marks every item as pending again
func (h *ListHandler) Reset(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}

	if err := h.service.Reset(c.Request.Context(), userID, email, listID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "List reset successfully"})
}

// MoveToPantry moves purchased items into a pantry
func (h *ListHandler) MoveToPantry(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	listID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return
	}

	var req MoveToPantryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid move request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pantry ID required"})
		return
	}

	moved, err := h.service.MoveToPantry(c.Request.Context(), userID, email, listID, req.PantryID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Items moved successfully", "moved": moved})
}

// handleServiceError maps service errors to HTTP responses
func (h *ListHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrListNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
	case errors.Is(err, repository.ErrListItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, repository.ErrPantryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Pantry not found"})
	case errors.Is(err, repository.ErrShareNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Share not found"})
	case errors.Is(err, repository.ErrNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "A list with this name already exists"})
	case errors.Is(err, repository.ErrDuplicateShare):
		c.JSON(http.StatusConflict, gin.H{"error": "List already shared with this email"})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
