package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// getUserIDFromContext reads the authenticated user id set by RequireAuth.
func getUserIDFromContext(c *gin.Context) uint {
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// getUserEmailFromContext reads the authenticated email set by RequireAuth.
func getUserEmailFromContext(c *gin.Context) string {
	if v, exists := c.Get("userEmail"); exists {
		if email, ok := v.(string); ok {
			return email
		}
	}
	return ""
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
