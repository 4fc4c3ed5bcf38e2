package models

import (
	"time"

	"github.com/lib/pq"
)

// Product is a global catalog entry referenced by list and pantry items.
// Products are not owned by any single user.
type Product struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"not null;index" json:"name"`
	CategoryID *uint          `gorm:"index" json:"category_id,omitempty"`
	Aliases    pq.StringArray `gorm:"type:text[]" json:"aliases,omitempty"`
	Metadata   Metadata       `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}
