package service

import (
	"errors"
	"log/slog"

	"github.com/despensa-app/backend-go/internal/database/models"
	"github.com/despensa-app/backend-go/internal/database/repository"
)

// CreateCategoryInput carries the caller-supplied fields for a new category.
type CreateCategoryInput struct {
	Name  string
	Icon  string
	Color string
}

// UpdateCategoryInput uses pointers so absent fields are left untouched.
type UpdateCategoryInput struct {
	Name  *string
	Icon  *string
	Color *string
}

// CategoryService defines the interface for category business logic.
// Categories are global and case-insensitively unique by name.
type CategoryService interface {
	CreateCategory(input CreateCategoryInput) (*models.Category, error)
	GetCategory(id uint) (*models.Category, error)
	UpdateCategory(id uint, input UpdateCategoryInput) (*models.Category, error)
	DeleteCategory(id uint) error
	ListCategories(filter repository.CategoryFilter) ([]models.Category, int64, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       *slog.Logger
}

// NewCategoryService creates a new category service instance
func NewCategoryService(categoryRepo repository.CategoryRepository, logger *slog.Logger) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, logger: logger}
}

func (s *categoryService) CreateCategory(input CreateCategoryInput) (*models.Category, error) {
	existing, err := s.categoryRepo.FindByName(input.Name)
	if err != nil && !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, err
	}
	if existing != nil {
		s.logger.Warn("⚠️ [CategoryService] Category name already exists", "name", input.Name)
		return nil, repository.ErrNameTaken
	}

	category := &models.Category{
		Name:  input.Name,
		Icon:  input.Icon,
		Color: input.Color,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		s.logger.Error("❌ [CategoryService] Failed to create category", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [CategoryService] Category created", "category_id", category.ID, "name", category.Name)
	return category, nil
}

func (s *categoryService) GetCategory(id uint) (*models.Category, error) {
	return s.categoryRepo.FindByID(id)
}

func (s *categoryService) UpdateCategory(id uint, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != category.Name {
		existing, err := s.categoryRepo.FindByName(*input.Name)
		if err != nil && !errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, repository.ErrNameTaken
		}
		category.Name = *input.Name
	}
	if input.Icon != nil {
		category.Icon = *input.Icon
	}
	if input.Color != nil {
		category.Color = *input.Color
	}

	if err := s.categoryRepo.Update(category); err != nil {
		s.logger.Error("❌ [CategoryService] Failed to update category", "error", err, "category_id", id)
		return nil, err
	}

	s.logger.Info("✅ [CategoryService] Category updated", "category_id", id)
	return category, nil
}

func (s *categoryService) DeleteCategory(id uint) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		s.logger.Error("❌ [CategoryService] Failed to delete category", "error", err, "category_id", id)
		return err
	}
	s.logger.Info("✅ [CategoryService] Category deleted", "category_id", id)
	return nil
}

func (s *categoryService) ListCategories(filter repository.CategoryFilter) ([]models.Category, int64, error) {
	return s.categoryRepo.List(filter)
}
