package service

import (
	"log/slog"

	"github.com/lib/pq"

	"github.com/despensa-app/backend-go/internal/database/models"
	"github.com/despensa-app/backend-go/internal/database/repository"
)

// CreateProductInput carries the caller-supplied fields for a new product.
type CreateProductInput struct {
	Name       string
	Aliases    []string
	CategoryID *uint
	Metadata   models.Metadata
}

// UpdateProductInput uses pointers so absent fields are left untouched.
type UpdateProductInput struct {
	Name       *string
	Aliases    []string
	CategoryID *uint
	Metadata   models.Metadata
}

// ProductService defines the interface for product catalog business logic.
// The catalog is global: every authenticated user reads and extends the
// same product set.
type ProductService interface {
	CreateProduct(input CreateProductInput) (*models.Product, error)
	GetProduct(id uint) (*models.Product, error)
	UpdateProduct(id uint, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(id uint) error
	ListProducts(filter repository.ProductFilter) ([]models.Product, int64, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	logger       *slog.Logger
}

// NewProductService creates a new product service instance
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	logger *slog.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

func (s *productService) CreateProduct(input CreateProductInput) (*models.Product, error) {
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(*input.CategoryID); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		Name:       input.Name,
		Aliases:    pq.StringArray(input.Aliases),
		CategoryID: input.CategoryID,
		Metadata:   input.Metadata,
	}
	if err := s.productRepo.Create(product); err != nil {
		s.logger.Error("❌ [ProductService] Failed to create product", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [ProductService] Product created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

func (s *productService) GetProduct(id uint) (*models.Product, error) {
	return s.productRepo.FindByID(id)
}

func (s *productService) UpdateProduct(id uint, input UpdateProductInput) (*models.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Aliases != nil {
		product.Aliases = pq.StringArray(input.Aliases)
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(*input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
	}
	if input.Metadata != nil {
		product.Metadata = input.Metadata
	}

	if err := s.productRepo.Update(product); err != nil {
		s.logger.Error("❌ [ProductService] Failed to update product", "error", err, "product_id", id)
		return nil, err
	}

	s.logger.Info("✅ [ProductService] Product updated", "product_id", id)
	return product, nil
}

func (s *productService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		s.logger.Error("❌ [ProductService] Failed to delete product", "error", err, "product_id", id)
		return err
	}
	s.logger.Info("✅ [ProductService] Product deleted", "product_id", id)
	return nil
}

func (s *productService) ListProducts(filter repository.ProductFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}
