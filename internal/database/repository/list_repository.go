package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/despensa-app/backend-go/internal/database/models"
)

// ListFilter narrows and orders shopping-list queries.
type ListFilter struct {
	Name      string
	Search    string
	Recurring *bool
	SortBy    string
	Order     string
	Offset    int
	Limit     int
}

// ListItemFilter narrows and orders list-item queries.
type ListItemFilter struct {
	Purchased  *bool
	CategoryID *uint
	PantryID   *uint
	Search     string
	SortBy     string
	Order      string
	Offset     int
	Limit      int
}

// ListRepository defines the interface for shopping-list data operations
type ListRepository interface {
	// List CRUD
	Create(list *models.ShoppingList) error
	CreateWithItems(list *models.ShoppingList, items []models.ListItem) error
	FindByID(id uint) (*models.ShoppingList, error)
	Update(list *models.ShoppingList) error
	Delete(id uint) error
	ListAccessible(userID uint, email string, filter ListFilter) ([]models.ShoppingList, int64, error)
	AccessibleIDs(userID uint, email string) ([]uint, error)

	// Naming
	ResolveUniqueName(ownerID uint, baseName string) (string, error)

	// Access
	HasAccess(listID, userID uint, email string) (bool, error)

	// Item CRUD
	CreateItem(item *models.ListItem) error
	FindItem(listID, itemID uint) (*models.ListItem, error)
	UpdateItem(item *models.ListItem) error
	DeleteItem(listID, itemID uint) error
	ListItems(listID uint, filter ListItemFilter) ([]models.ListItem, int64, error)
	CountPending(listID uint) (int64, error)

	// Sharing
	CreateShare(share *models.ListShare) error
	FindShareByEmail(listID uint, email string) (*models.ListShare, error)
	DeleteShareByUser(listID, userID uint) error
	ListShares(listID uint) ([]models.ListShare, error)
	LinkSharesToUser(email string, userID uint) error

	// Domain actions (transactional)
	PurchaseAll(listID uint, metadata models.Metadata) (*models.Purchase, error)
	ResetAll(listID uint) error
	MoveToPantry(listID, pantryID uint) (int, error)
}

type listRepository struct {
	db *gorm.DB
}

// NewListRepository creates a new shopping-list repository instance
func NewListRepository(db *gorm.DB) ListRepository {
	return &listRepository{db: db}
}

// ==================== List CRUD ====================

func (r *listRepository) Create(list *models.ShoppingList) error {
	if err := r.db.Create(list).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *listRepository) CreateWithItems(list *models.ShoppingList, items []models.ListItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(list).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrNameTaken
			}
			return err
		}
		for i := range items {
			items[i].ListID = list.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		list.Items = items
		return nil
	})
}

func (r *listRepository) FindByID(id uint) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := r.db.Preload("Shares").Preload("Shares.User").First(&list, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return &list, nil
}

func (r *listRepository) Update(list *models.ShoppingList) error {
	result := r.db.Save(list)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrNameTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListNotFound
	}
	return nil
}

func (r *listRepository) Delete(id uint) error {
	result := r.db.Delete(&models.ShoppingList{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListNotFound
	}
	return nil
}

// ListAccessible returns lists the user owns plus lists shared with them,
// filtered and paginated.
func (r *listRepository) ListAccessible(userID uint, email string, filter ListFilter) ([]models.ShoppingList, int64, error) {
	query := r.db.Model(&models.ShoppingList{}).
		Joins("LEFT JOIN list_shares ON list_shares.list_id = shopping_lists.id").
		Where("shopping_lists.owner_id = ? OR list_shares.user_id = ? OR list_shares.email = ?", userID, userID, email).
		Distinct("shopping_lists.id")

	if filter.Name != "" {
		query = query.Where("shopping_lists.name = ?", filter.Name)
	}
	if filter.Search != "" {
		query = query.Where("shopping_lists.name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Recurring != nil {
		query = query.Where("shopping_lists.recurring = ?", *filter.Recurring)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uint
	err := query.
		Order(listOrderClause(filter.SortBy, filter.Order)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Pluck("shopping_lists.id", &ids).Error
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []models.ShoppingList{}, total, nil
	}

	var lists []models.ShoppingList
	err = r.db.Preload("Shares").
		Where("id IN ?", ids).
		Order(listOrderClause(filter.SortBy, filter.Order)).
		Find(&lists).Error
	return lists, total, err
}

// AccessibleIDs returns the ids of every list the user owns or has been
// granted access to, unordered and unpaginated. Used to scope purchase
// history queries.
func (r *listRepository) AccessibleIDs(userID uint, email string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.ShoppingList{}).
		Joins("LEFT JOIN list_shares ON list_shares.list_id = shopping_lists.id").
		Where("shopping_lists.owner_id = ? OR list_shares.user_id = ? OR list_shares.email = ?", userID, userID, email).
		Distinct("shopping_lists.id").
		Pluck("shopping_lists.id", &ids).Error
	return ids, err
}

// ==================== Naming ====================

// ResolveUniqueName probes for a free name for the owner, soft-deleted
// lists included, appending " (n)" until no collision remains. Read-only:
// the caller performs the insert, and the unique index on (owner_id, name)
// catches any race lost between probe and insert.
func (r *listRepository) ResolveUniqueName(ownerID uint, baseName string) (string, error) {
	candidate := baseName
	for counter := 1; ; counter++ {
		var count int64
		err := r.db.Unscoped().
			Model(&models.ShoppingList{}).
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

func (r *listRepository) HasAccess(listID, userID uint, email string) (bool, error) {
	// A soft-deleted list is gone for owner and grantees alike, even though
	// its share rows survive.
	var list models.ShoppingList
	err := r.db.Select("owner_id").First(&list, listID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if list.OwnerID == userID {
		return true, nil
	}

	var count int64
	err = r.db.Model(&models.ListShare{}).
		Where("list_id = ? AND (user_id = ? OR email = ?)", listID, userID, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ==================== Item CRUD ====================

func (r *listRepository) CreateItem(item *models.ListItem) error {
	return r.db.Create(item).Error
}

func (r *listRepository) FindItem(listID, itemID uint) (*models.ListItem, error) {
	var item models.ListItem
	err := r.db.Preload("Product").Preload("Category").
		Where("list_id = ?", listID).
		First(&item, itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *listRepository) UpdateItem(item *models.ListItem) error {
	result := r.db.Save(item)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListItemNotFound
	}
	return nil
}

func (r *listRepository) DeleteItem(listID, itemID uint) error {
	result := r.db.Where("list_id = ?", listID).Delete(&models.ListItem{}, itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListItemNotFound
	}
	return nil
}

func (r *listRepository) ListItems(listID uint, filter ListItemFilter) ([]models.ListItem, int64, error) {
	query := r.db.Model(&models.ListItem{}).Where("list_items.list_id = ?", listID)

	if filter.Purchased != nil {
		query = query.Where("list_items.purchased = ?", *filter.Purchased)
	}
	if filter.CategoryID != nil {
		query = query.Where("list_items.category_id = ?", *filter.CategoryID)
	}
	if filter.PantryID != nil {
		query = query.Where("list_items.pantry_id = ?", *filter.PantryID)
	}
	if filter.Search != "" {
		query = query.Joins("JOIN products ON products.id = list_items.product_id").
			Where("products.name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.ListItem
	err := query.Preload("Product").Preload("Category").
		Order(itemOrderClause(filter.SortBy, filter.Order)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	return items, total, err
}

func (r *listRepository) CountPending(listID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ListItem{}).
		Where("list_id = ? AND purchased = ?", listID, false).
		Count(&count).Error
	return count, err
}

// ==================== Sharing ====================

func (r *listRepository) CreateShare(share *models.ListShare) error {
	share.GrantedAt = time.Now()
	if err := r.db.Create(share).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateShare
		}
		return err
	}
	return nil
}

func (r *listRepository) FindShareByEmail(listID uint, email string) (*models.ListShare, error) {
	var share models.ListShare
	err := r.db.Where("list_id = ? AND email = ?", listID, email).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	return &share, nil
}

func (r *listRepository) DeleteShareByUser(listID, userID uint) error {
	result := r.db.Where("list_id = ? AND user_id = ?", listID, userID).
		Delete(&models.ListShare{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrShareNotFound
	}
	return nil
}

func (r *listRepository) ListShares(listID uint) ([]models.ListShare, error) {
	var shares []models.ListShare
	err := r.db.Where("list_id = ?", listID).Preload("User").Find(&shares).Error
	return shares, err
}

// LinkSharesToUser stamps the now-known user id on shares granted to an
// email before that account existed, so revocation and notification fan-out
// reach late registrants.
func (r *listRepository) LinkSharesToUser(email string, userID uint) error {
	return r.db.Model(&models.ListShare{}).
		Where("email = ? AND user_id IS NULL", email).
		Update("user_id", userID).Error
}

// ==================== Domain actions ====================

// PurchaseAll marks every item purchased, stamps last_purchased_at on list
// and items, and inserts one immutable Purchase snapshot. All-or-nothing:
// a failure in any step rolls the whole action back.
func (r *listRepository) PurchaseAll(listID uint, metadata models.Metadata) (*models.Purchase, error) {
	var purchase *models.Purchase

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var list models.ShoppingList
		if err := tx.First(&list, listID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListNotFound
			}
			return err
		}

		var items []models.ListItem
		if err := tx.Preload("Product").Where("list_id = ?", listID).Find(&items).Error; err != nil {
			return err
		}

		now := time.Now()

		// Snapshot captures pre-purchase identities and quantities
		snapshot := make([]models.PurchaseItem, 0, len(items))
		for _, item := range items {
			snapshot = append(snapshot, models.PurchaseItem{
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
				CategoryID:  item.CategoryID,
			})
		}

		if err := tx.Model(&models.ListItem{}).
			Where("list_id = ?", listID).
			Updates(map[string]interface{}{
				"purchased":         true,
				"last_purchased_at": now,
				"updated_at":        now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ShoppingList{}).
			Where("id = ?", listID).
			Updates(map[string]interface{}{
				"last_purchased_at": now,
				"updated_at":        now,
			}).Error; err != nil {
			return err
		}

		purchase = &models.Purchase{
			ListID:   listID,
			ListName: list.Name,
			Metadata: metadata,
			Items:    snapshot,
		}
		return tx.Create(purchase).Error
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// ResetAll unmarks every item. Purchase history is append-only and stays
// untouched.
func (r *listRepository) ResetAll(listID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ShoppingList{}).Where("id = ?", listID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrListNotFound
		}

		return tx.Model(&models.ListItem{}).
			Where("list_id = ?", listID).
			Updates(map[string]interface{}{
				"purchased":  false,
				"updated_at": time.Now(),
			}).Error
	})
}

// MoveToPantry upserts a pantry item for each purchased list item, matched
// by product, incrementing quantity when the product is already stocked.
// Returns how many list items were moved. Unpurchased items stay in place.
func (r *listRepository) MoveToPantry(listID, pantryID uint) (int, error) {
	moved := 0

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var items []models.ListItem
		if err := tx.Where("list_id = ? AND purchased = ?", listID, true).Find(&items).Error; err != nil {
			return err
		}

		for _, item := range items {
			var existing models.PantryItem
			err := tx.Where("pantry_id = ? AND product_id = ?", pantryID, item.ProductID).
				First(&existing).Error
			switch {
			case err == nil:
				existing.Quantity += item.Quantity
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				pantryItem := models.PantryItem{
					PantryID:   pantryID,
					ProductID:  item.ProductID,
					Quantity:   item.Quantity,
					Unit:       item.Unit,
					CategoryID: item.CategoryID,
				}
				if err := tx.Create(&pantryItem).Error; err != nil {
					return err
				}
			default:
				return err
			}

			if err := tx.Model(&models.ListItem{}).
				Where("id = ?", item.ID).
				Update("pantry_id", pantryID).Error; err != nil {
				return err
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// ==================== Ordering helpers ====================

// listOrderClause whitelists sortable columns; anything else falls back to
// updated_at.
func listOrderClause(sortBy, order string) string {
	column := map[string]string{
		"name":            "shopping_lists.name",
		"createdAt":       "shopping_lists.created_at",
		"created_at":      "shopping_lists.created_at",
		"updatedAt":       "shopping_lists.updated_at",
		"updated_at":      "shopping_lists.updated_at",
		"lastPurchasedAt": "shopping_lists.last_purchased_at",
		"id":              "shopping_lists.id",
	}[sortBy]
	if column == "" {
		column = "shopping_lists.updated_at"
	}
	return column + " " + normalizeOrder(order, "DESC")
}

func itemOrderClause(sortBy, order string) string {
	column := map[string]string{
		"createdAt":  "list_items.created_at",
		"created_at": "list_items.created_at",
		"updatedAt":  "list_items.updated_at",
		"updated_at": "list_items.updated_at",
		"quantity":   "list_items.quantity",
		"id":         "list_items.id",
	}[sortBy]
	if column == "" {
		column = "list_items.created_at"
	}
	return column + " " + normalizeOrder(order, "ASC")
}

func normalizeOrder(order, fallback string) string {
	switch order {
	case "ASC", "asc":
		return "ASC"
	case "DESC", "desc":
		return "DESC"
	default:
		return fallback
	}
}
