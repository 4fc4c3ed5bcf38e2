package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/despensa-app/backend-go/internal/database/models"
)

// ProductFilter narrows and orders product queries.
type ProductFilter struct {
	Name       string
	Search     string
	CategoryID *uint
	SortBy     string
	Order      string
	Offset     int
	Limit      int
}

// ProductRepository defines the interface for product catalog operations
type ProductRepository interface {
	Create(product *models.Product) error
	FindByID(id uint) (*models.Product, error)
	Update(product *models.Product) error
	Delete(id uint) error
	List(filter ProductFilter) ([]models.Product, int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) FindByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Category").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Update(product *models.Product) error {
	result := r.db.Save(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) List(filter ProductFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})

	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.Preload("Category").
		Order(productOrderClause(filter.SortBy, filter.Order)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&products).Error
	return products, total, err
}

func productOrderClause(sortBy, order string) string {
	column := map[string]string{
		"name":       "name",
		"createdAt":  "created_at",
		"created_at": "created_at",
		"id":         "id",
	}[sortBy]
	if column == "" {
		column = "name"
	}
	return column + " " + normalizeOrder(order, "ASC")
}
