package models

import "time"

// Purchase is an immutable historical snapshot created when a shopping list
// is marked purchased. It is only ever read or used as a template to
// restore a new list; nothing updates or deletes these rows.
type Purchase struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ListID    uint      `gorm:"not null;index" json:"list_id"`
	ListName  string    `gorm:"not null" json:"list_name"`
	Metadata  Metadata  `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	List  ShoppingList   `gorm:"foreignKey:ListID" json:"-"`
	Items []PurchaseItem `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
}

// TableName overrides the table name
func (Purchase) TableName() string {
	return "purchases"
}

// PurchaseItem captures one list item's identity and quantity at purchase
// time. ProductName is denormalized so history survives catalog edits.
type PurchaseItem struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	PurchaseID  uint    `gorm:"not null;index" json:"purchase_id"`
	ProductID   uint    `gorm:"not null" json:"product_id"`
	ProductName string  `gorm:"not null" json:"product_name"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	CategoryID  *uint   `json:"category_id,omitempty"`

	Purchase Purchase `gorm:"foreignKey:PurchaseID" json:"-"`
}

// TableName overrides the table name
func (PurchaseItem) TableName() string {
	return "purchase_items"
}
