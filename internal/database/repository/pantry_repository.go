package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/despensa-app/backend-go/internal/database/models"
)

// PantryFilter narrows and orders pantry queries.
type PantryFilter struct {
	Name   string
	Search string
	SortBy string
	Order  string
	Offset int
	Limit  int
}

// PantryItemFilter narrows and orders pantry-item queries.
type PantryItemFilter struct {
	CategoryID *uint
	Search     string
	SortBy     string
	Order      string
	Offset     int
	Limit      int
}

// PantryRepository defines the interface for pantry data operations
type PantryRepository interface {
	Create(pantry *models.Pantry) error
	FindByID(id uint) (*models.Pantry, error)
	Update(pantry *models.Pantry) error
	Delete(id uint) error
	ListAccessible(userID uint, email string, filter PantryFilter) ([]models.Pantry, int64, error)

	ResolveUniqueName(ownerID uint, baseName string) (string, error)
	HasAccess(pantryID, userID uint, email string) (bool, error)

	CreateItem(item *models.PantryItem) error
	FindItem(pantryID, itemID uint) (*models.PantryItem, error)
	UpdateItem(item *models.PantryItem) error
	DeleteItem(pantryID, itemID uint) error
	ListItems(pantryID uint, filter PantryItemFilter) ([]models.PantryItem, int64, error)

	CreateShare(share *models.PantryShare) error
	FindShareByEmail(pantryID uint, email string) (*models.PantryShare, error)
	DeleteShareByUser(pantryID, userID uint) error
	ListShares(pantryID uint) ([]models.PantryShare, error)
	LinkSharesToUser(email string, userID uint) error
}

type pantryRepository struct {
	db *gorm.DB
}

// NewPantryRepository creates a new pantry repository instance
func NewPantryRepository(db *gorm.DB) PantryRepository {
	return &pantryRepository{db: db}
}

// ==================== Pantry CRUD ====================

func (r *pantryRepository) Create(pantry *models.Pantry) error {
	if err := r.db.Create(pantry).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *pantryRepository) FindByID(id uint) (*models.Pantry, error) {
	var pantry models.Pantry
	err := r.db.Preload("Shares").Preload("Shares.User").First(&pantry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPantryNotFound
		}
		return nil, err
	}
	return &pantry, nil
}

func (r *pantryRepository) Update(pantry *models.Pantry) error {
	result := r.db.Save(pantry)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrNameTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPantryNotFound
	}
	return nil
}

func (r *pantryRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Pantry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPantryNotFound
	}
	return nil
}

func (r *pantryRepository) ListAccessible(userID uint, email string, filter PantryFilter) ([]models.Pantry, int64, error) {
	query := r.db.Model(&models.Pantry{}).
		Joins("LEFT JOIN pantry_shares ON pantry_shares.pantry_id = pantries.id").
		Where("pantries.owner_id = ? OR pantry_shares.user_id = ? OR pantry_shares.email = ?", userID, userID, email).
		Distinct("pantries.id")

	if filter.Name != "" {
		query = query.Where("pantries.name = ?", filter.Name)
	}
	if filter.Search != "" {
		query = query.Where("pantries.name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uint
	err := query.
		Order(pantryOrderClause(filter.SortBy, filter.Order)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Pluck("pantries.id", &ids).Error
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []models.Pantry{}, total, nil
	}

	var pantries []models.Pantry
	err = r.db.Preload("Shares").
		Where("id IN ?", ids).
		Order(pantryOrderClause(filter.SortBy, filter.Order)).
		Find(&pantries).Error
	return pantries, total, err
}

// ==================== Naming ====================

// ResolveUniqueName mirrors the shopping-list resolver for pantries. The
// original frontend never resolved pantry names; the asymmetry was an
// omission, so pantries get the same treatment here.
func (r *pantryRepository) ResolveUniqueName(ownerID uint, baseName string) (string, error) {
	candidate := baseName
	for counter := 1; ; counter++ {
		var count int64
		err := r.db.Unscoped().
			Model(&models.Pantry{}).
			Where("owner_id = ? AND name = ?", ownerID, candidate).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s (%d)", baseName, counter)
	}
}

// ==================== Access ====================

func (r *pantryRepository) HasAccess(pantryID, userID uint, email string) (bool, error) {
	// A soft-deleted pantry is gone for owner and grantees alike, even
	// though its share rows survive.
	var pantry models.Pantry
	err := r.db.Select("owner_id").First(&pantry, pantryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if pantry.OwnerID == userID {
		return true, nil
	}

	var count int64
	err = r.db.Model(&models.PantryShare{}).
		Where("pantry_id = ? AND (user_id = ? OR email = ?)", pantryID, userID, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ==================== Item CRUD ====================

func (r *pantryRepository) CreateItem(item *models.PantryItem) error {
	return r.db.Create(item).Error
}

func (r *pantryRepository) FindItem(pantryID, itemID uint) (*models.PantryItem, error) {
	var item models.PantryItem
	err := r.db.Preload("Product").Preload("Category").
		Where("pantry_id = ?", pantryID).
		First(&item, itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPantryItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *pantryRepository) UpdateItem(item *models.PantryItem) error {
	result := r.db.Save(item)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPantryItemNotFound
	}
	return nil
}

func (r *pantryRepository) DeleteItem(pantryID, itemID uint) error {
	result := r.db.Where("pantry_id = ?", pantryID).Delete(&models.PantryItem{}, itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPantryItemNotFound
	}
	return nil
}

func (r *pantryRepository) ListItems(pantryID uint, filter PantryItemFilter) ([]models.PantryItem, int64, error) {
	query := r.db.Model(&models.PantryItem{}).Where("pantry_items.pantry_id = ?", pantryID)

	if filter.CategoryID != nil {
		query = query.Where("pantry_items.category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		query = query.Joins("JOIN products ON products.id = pantry_items.product_id").
			Where("products.name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.PantryItem
	err := query.Preload("Product").Preload("Category").
		Order(pantryItemOrderClause(filter.SortBy, filter.Order)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	return items, total, err
}

// ==================== Sharing ====================

func (r *pantryRepository) CreateShare(share *models.PantryShare) error {
	share.GrantedAt = time.Now()
	if err := r.db.Create(share).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateShare
		}
		return err
	}
	return nil
}

func (r *pantryRepository) FindShareByEmail(pantryID uint, email string) (*models.PantryShare, error) {
	var share models.PantryShare
	err := r.db.Where("pantry_id = ? AND email = ?", pantryID, email).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	return &share, nil
}

func (r *pantryRepository) DeleteShareByUser(pantryID, userID uint) error {
	result := r.db.Where("pantry_id = ? AND user_id = ?", pantryID, userID).
		Delete(&models.PantryShare{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrShareNotFound
	}
	return nil
}

func (r *pantryRepository) ListShares(pantryID uint) ([]models.PantryShare, error) {
	var shares []models.PantryShare
	err := r.db.Where("pantry_id = ?", pantryID).Preload("User").Find(&shares).Error
	return shares, err
}

// LinkSharesToUser stamps the now-known user id on shares granted to an
// email before that account existed.
func (r *pantryRepository) LinkSharesToUser(email string, userID uint) error {
	return r.db.Model(&models.PantryShare{}).
		Where("email = ? AND user_id IS NULL", email).
		Update("user_id", userID).Error
}

// ==================== Ordering helpers ====================

func pantryOrderClause(sortBy, order string) string {
	column := map[string]string{
		"name":       "pantries.name",
		"createdAt":  "pantries.created_at",
		"created_at": "pantries.created_at",
		"updatedAt":  "pantries.updated_at",
		"updated_at": "pantries.updated_at",
		"id":         "pantries.id",
	}[sortBy]
	if column == "" {
		column = "pantries.updated_at"
	}
	return column + " " + normalizeOrder(order, "DESC")
}

func pantryItemOrderClause(sortBy, order string) string {
	column := map[string]string{
		"createdAt":  "pantry_items.created_at",
		"created_at": "pantry_items.created_at",
		"updatedAt":  "pantry_items.updated_at",
		"updated_at": "pantry_items.updated_at",
		"quantity":   "pantry_items.quantity",
		"id":         "pantry_items.id",
	}[sortBy]
	if column == "" {
		column = "pantry_items.created_at"
	}
	return column + " " + normalizeOrder(order, "ASC")
}
