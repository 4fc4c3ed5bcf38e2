package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/despensa-app/backend-go/internal/notification"
)

// NotificationHandler handles HTTP requests for the per-user notification log
type NotificationHandler struct {
	store  notification.Store
	logger *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(store notification.Store, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		store:  store,
		logger: logger,
	}
}

// ListNotifications returns the log, newest first
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := getUserIDFromContext(c)

	records, err := h.store.List(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	unread := 0
	for _, r := range records {
		if !r.Read {
			unread++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": records,
		"unread":        unread,
	})
}

// MarkRead marks a single notification as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := getUserIDFromContext(c)

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := h.store.MarkRead(c.Request.Context(), userID, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead marks every notification as read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := getUserIDFromContext(c)

	if err := h.store.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// DeleteNotification removes one notification
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID := getUserIDFromContext(c)

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := h.store.Remove(c.Request.Context(), userID, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// ClearRead removes every read notification
func (h *NotificationHandler) ClearRead(c *gin.Context) {
	userID := getUserIDFromContext(c)

	if err := h.store.ClearRead(c.Request.Context(), userID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Read notifications cleared"})
}

// Clear empties the log
func (h *NotificationHandler) Clear(c *gin.Context) {
	userID := getUserIDFromContext(c)

	if err := h.store.Clear(c.Request.Context(), userID); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications cleared"})
}

func (h *NotificationHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, notification.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
