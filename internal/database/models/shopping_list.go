package models

import (
	"time"

	"gorm.io/gorm"
)

// ShoppingList is a user-owned list of items to buy. The (owner_id, name)
// pair is unique across ALL rows, soft-deleted included, so a recreated
// list can never silently merge with an archived one; the naming resolver
// in the repository relies on that index as its race backstop.
type ShoppingList struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Name            string         `gorm:"not null;uniqueIndex:idx_lists_owner_name" json:"name"`
	Description     string         `json:"description,omitempty"`
	Recurring       bool           `gorm:"not null;default:false" json:"recurring"`
	Metadata        Metadata       `gorm:"type:text" json:"metadata,omitempty"`
	OwnerID         uint           `gorm:"not null;index;uniqueIndex:idx_lists_owner_name" json:"owner_id"`
	LastPurchasedAt *time.Time     `json:"last_purchased_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Owner  User        `gorm:"foreignKey:OwnerID" json:"-"`
	Items  []ListItem  `gorm:"foreignKey:ListID" json:"items,omitempty"`
	Shares []ListShare `gorm:"foreignKey:ListID" json:"shares,omitempty"`
}

// TableName overrides the table name
func (ShoppingList) TableName() string {
	return "shopping_lists"
}

// ListItem belongs to exactly one shopping list, which owns its lifecycle.
type ListItem struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	ListID          uint       `gorm:"not null;index" json:"list_id"`
	ProductID       uint       `gorm:"not null;index" json:"product_id"`
	Quantity        float64    `gorm:"not null" json:"quantity"`
	Unit            string     `json:"unit,omitempty"`
	Purchased       bool       `gorm:"not null;default:false" json:"purchased"`
	CategoryID      *uint      `gorm:"index" json:"category_id,omitempty"`
	PantryID        *uint      `gorm:"index" json:"pantry_id,omitempty"` // set once moved to a pantry
	LastPurchasedAt *time.Time `json:"last_purchased_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	List     ShoppingList `gorm:"foreignKey:ListID" json:"-"`
	Product  Product      `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Category *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName overrides the table name
func (ListItem) TableName() string {
	return "list_items"
}

// ListShare grants a non-owner read/write access to a list. The grantee is
// recorded by email at grant time; UserID is resolved when the grantee
// already has an account. At most one active share per (list, email).
type ListShare struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ListID    uint      `gorm:"not null;index;uniqueIndex:idx_list_shares_list_email" json:"list_id"`
	Email     string    `gorm:"not null;uniqueIndex:idx_list_shares_list_email" json:"email"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	GrantedAt time.Time `json:"granted_at"`

	List ShoppingList `gorm:"foreignKey:ListID" json:"-"`
	User *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides the table name
func (ListShare) TableName() string {
	return "list_shares"
}
