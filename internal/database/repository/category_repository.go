package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/despensa-app/backend-go/internal/database/models"
)

// CategoryFilter narrows and orders category queries.
type CategoryFilter struct {
	Name   string
	Search string
	SortBy string
	Order  string
	Offset int
	Limit  int
}

// CategoryRepository defines the interface for category operations
type CategoryRepository interface {
	Create(category *models.Category) error
	FindByID(id uint) (*models.Category, error)
	FindByName(name string) (*models.Category, error)
	Update(category *models.Category) error
	Delete(id uint) error
	List(filter CategoryFilter) ([]models.Category, int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository instance
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *categoryRepository) FindByID(id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindByName matches case-insensitively, mirroring how the client layer
// treats category names as effectively unique.
func (r *categoryRepository) FindByName(name string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Update(category *models.Category) error {
	result := r.db.Save(category)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrNameTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) List(filter CategoryFilter) ([]models.Category, int64, error) {
	query := r.db.Model(&models.Category{})

	if filter.Name != "" {
		query = query.Where("LOWER(name) = ?", strings.ToLower(filter.Name))
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var categories []models.Category
	err := query.
		Order(categoryOrderClause(filter.SortBy, filter.Order)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&categories).Error
	return categories, total, err
}

func categoryOrderClause(sortBy, order string) string {
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
