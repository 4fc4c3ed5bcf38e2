package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository errors shared across resources
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenNotFound      = errors.New("refresh token not found")
	ErrListNotFound       = errors.New("shopping list not found")
	ErrListItemNotFound   = errors.New("list item not found")
	ErrPantryNotFound     = errors.New("pantry not found")
	ErrPantryItemNotFound = errors.New("pantry item not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrShareNotFound      = errors.New("share not found")
	ErrNameTaken          = errors.New("name already in use for this owner")
	ErrDuplicateShare     = errors.New("resource already shared with this email")
)

// isUniqueViolation reports whether err is a unique-constraint failure.
// The resolver's check-then-insert is not atomic; a lost race surfaces here
// and is mapped to ErrNameTaken so callers can retry with the next
// candidate instead of persisting a silent duplicate.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	// pgx: "duplicate key value violates unique constraint"
	// sqlite: "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
