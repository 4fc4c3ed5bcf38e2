package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account. A user exclusively owns the lists and pantries
// they create and may hold shared access to resources owned by others.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Email verification / password reset state
	Verified            bool       `gorm:"not null;default:false" json:"verified"`
	VerificationToken   *string    `json:"-"`
	ResetToken          *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	// Relationships
	ShoppingLists []ShoppingList `gorm:"foreignKey:OwnerID" json:"shopping_lists,omitempty"`
	Pantries      []Pantry       `gorm:"foreignKey:OwnerID" json:"pantries,omitempty"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}
