package models

import (
	"time"

	"gorm.io/gorm"
)

// Pantry is a user-owned inventory of products at home. Naming uniqueness
// per owner follows the same rule as shopping lists.
type Pantry struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"not null;uniqueIndex:idx_pantries_owner_name" json:"name"`
	OwnerID   uint           `gorm:"not null;index;uniqueIndex:idx_pantries_owner_name" json:"owner_id"`
	Metadata  Metadata       `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Owner  User          `gorm:"foreignKey:OwnerID" json:"-"`
	Items  []PantryItem  `gorm:"foreignKey:PantryID" json:"items,omitempty"`
	Shares []PantryShare `gorm:"foreignKey:PantryID" json:"shares,omitempty"`
}

// TableName overrides the table name
func (Pantry) TableName() string {
	return "pantries"
}

// PantryItem is stock inside a pantry. Moving purchased list items into a
// pantry increments the matching row (by product) instead of duplicating it.
type PantryItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PantryID   uint      `gorm:"not null;index" json:"pantry_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Quantity   float64   `gorm:"not null" json:"quantity"`
	Unit       string    `json:"unit,omitempty"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Pantry   Pantry    `gorm:"foreignKey:PantryID" json:"-"`
	Product  Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName overrides the table name
func (PantryItem) TableName() string {
	return "pantry_items"
}

// PantryShare mirrors ListShare for pantries.
type PantryShare struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	PantryID  uint      `gorm:"not null;index;uniqueIndex:idx_pantry_shares_pantry_email" json:"pantry_id"`
	Email     string    `gorm:"not null;uniqueIndex:idx_pantry_shares_pantry_email" json:"email"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	GrantedAt time.Time `json:"granted_at"`

	Pantry Pantry `gorm:"foreignKey:PantryID" json:"-"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides the table name
func (PantryShare) TableName() string {
	return "pantry_shares"
}
