package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/despensa-app/backend-go/internal/database/models"
)

// PurchaseFilter narrows and orders purchase-history queries.
type PurchaseFilter struct {
	ListID *uint
	SortBy string
	Order  string
	Offset int
	Limit  int
}

// PurchaseRepository reads the append-only purchase history. There is no
// Update or Delete on purpose: snapshots are immutable once created (the
// insert happens inside the list purchase transaction).
type PurchaseRepository interface {
	FindByID(id uint) (*models.Purchase, error)
	ListForLists(listIDs []uint, filter PurchaseFilter) ([]models.Purchase, int64, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository instance
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) FindByID(id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.Preload("Items").First(&purchase, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// ListForLists returns purchases restricted to the given list ids; the
// service supplies only lists the caller can access, so history never
// leaks across users.
func (r *purchaseRepository) ListForLists(listIDs []uint, filter PurchaseFilter) ([]models.Purchase, int64, error) {
	if len(listIDs) == 0 {
		return []models.Purchase{}, 0, nil
	}

	query := r.db.Model(&models.Purchase{}).Where("list_id IN ?", listIDs)

	if filter.ListID != nil {
		query = query.Where("list_id = ?", *filter.ListID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []models.Purchase
	err := query.Preload("Items").
		Order(purchaseOrderClause(filter.SortBy, filter.Order)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&purchases).Error
	return purchases, total, err
}

func purchaseOrderClause(sortBy, order string) string {
	column := map[string]string{
		"createdAt":  "created_at",
		"created_at": "created_at",
		"list":       "list_name",
		"id":         "id",
	}[sortBy]
	if column == "" {
		column = "created_at"
	}
	return column + " " + normalizeOrder(order, "DESC")
}
