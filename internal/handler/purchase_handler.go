package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/despensa-app/backend-go/internal/database/repository"
	"github.com/despensa-app/backend-go/internal/database/service"
	"github.com/despensa-app/backend-go/internal/pagination"
)

// PurchaseHandler handles HTTP requests for purchase history
type PurchaseHandler struct {
	service service.PurchaseService
	logger  *slog.Logger
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(service service.PurchaseService, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		service: service,
		logger:  logger,
	}
}

// ListPurchases returns the history across every accessible list
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	page, perPage := pagination.FromQuery(c)
	filter := repository.PurchaseFilter{
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	}
	if v := c.Query("list_id"); v != "" {
		listID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list filter"})
			return
		}
		id := uint(listID)
		filter.ListID = &id
	}

	purchases, total, err := h.service.ListPurchases(c.Request.Context(), userID, email, filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPage(purchases, total, page, perPage))
}

// GetPurchase returns a single snapshot with its items
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	purchaseID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase ID"})
		return
	}

	purchase, err := h.service.GetPurchase(c.Request.Context(), userID, email, purchaseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// Restore creates a new list from a snapshot
func (h *PurchaseHandler) Restore(c *gin.Context) {
	userID := getUserIDFromContext(c)
	email := getUserEmailFromContext(c)

	purchaseID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase ID"})
		return
	}

	list, err := h.service.Restore(c.Request.Context(), userID, email, purchaseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, list)
}

// handleServiceError maps service errors to HTTP responses
func (h *PurchaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrPurchaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase not found"})
	case errors.Is(err, repository.ErrListNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
	case errors.Is(err, repository.ErrNameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "A list with this name already exists"})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
