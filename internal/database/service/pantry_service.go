package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/despensa-app/backend-go/internal/database/models"
	"github.com/despensa-app/backend-go/internal/database/repository"
	"github.com/despensa-app/backend-go/internal/notification"
)

// CreatePantryInput carries the caller-supplied fields for a new pantry.
type CreatePantryInput struct {
	Name     string
	Metadata models.Metadata
}

// UpdatePantryInput uses pointers so absent fields are left untouched.
type UpdatePantryInput struct {
	Name     *string
	Metadata models.Metadata
}

// CreatePantryItemInput carries the caller-supplied fields for new stock.
type CreatePantryItemInput struct {
	ProductID  uint
	Quantity   float64
	Unit       string
	CategoryID *uint
}

// UpdatePantryItemInput uses pointers so absent fields are left untouched.
type UpdatePantryItemInput struct {
	Quantity   *float64
	Unit       *string
	CategoryID *uint
}

// PantryService defines the interface for pantry business logic
type PantryService interface {
	CreatePantry(ctx context.Context, userID uint, input CreatePantryInput) (*models.Pantry, error)
	GetPantry(ctx context.Context, userID uint, email string, pantryID uint) (*models.Pantry, error)
	ListPantries(ctx context.Context, userID uint, email string, filter repository.PantryFilter) ([]models.Pantry, int64, error)
	UpdatePantry(ctx context.Context, userID, pantryID uint, input UpdatePantryInput) (*models.Pantry, error)
	DeletePantry(ctx context.Context, userID, pantryID uint) error

	SharePantry(ctx context.Context, userID, pantryID uint, email string) (*models.PantryShare, error)
	RevokeShare(ctx context.Context, userID, pantryID, targetUserID uint) error
	ListShares(ctx context.Context, userID uint, email string, pantryID uint) ([]models.PantryShare, error)

	AddItem(ctx context.Context, userID uint, email string, pantryID uint, input CreatePantryItemInput) (*models.PantryItem, error)
	GetItem(ctx context.Context, userID uint, email string, pantryID, itemID uint) (*models.PantryItem, error)
	UpdateItem(ctx context.Context, userID uint, email string, pantryID, itemID uint, input UpdatePantryItemInput) (*models.PantryItem, error)
	DeleteItem(ctx context.Context, userID uint, email string, pantryID, itemID uint) error
	ListItems(ctx context.Context, userID uint, email string, pantryID uint, filter repository.PantryItemFilter) ([]models.PantryItem, int64, error)
}

type pantryService struct {
	pantryRepo    repository.PantryRepository
	userRepo      repository.UserRepository
	notifications *notification.Service
	logger        *slog.Logger
}

// NewPantryService creates a new pantry service instance
func NewPantryService(
	pantryRepo repository.PantryRepository,
	userRepo repository.UserRepository,
	notifications *notification.Service,
	logger *slog.Logger,
) PantryService {
	return &pantryService{
		pantryRepo:    pantryRepo,
		userRepo:      userRepo,
		notifications: notifications,
		logger:        logger,
	}
}

// ensureAccess mirrors the shopping-list rule: denied access reports
// ErrPantryNotFound so existence never leaks.
func (s *pantryService) ensureAccess(pantryID, userID uint, email string) (*models.Pantry, error) {
	pantry, err := s.pantryRepo.FindByID(pantryID)
	if err != nil {
		return nil, err
	}

	ok, err := s.pantryRepo.HasAccess(pantryID, userID, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("⚠️ [PantryService] Access denied", "pantry_id", pantryID, "user_id", userID)
		return nil, repository.ErrPantryNotFound
	}
	return pantry, nil
}

func (s *pantryService) ensureOwner(pantryID, userID uint) (*models.Pantry, error) {
	pantry, err := s.pantryRepo.FindByID(pantryID)
	if err != nil {
		return nil, err
	}
	if pantry.OwnerID != userID {
		s.logger.Warn("⚠️ [PantryService] Owner-only operation denied", "pantry_id", pantryID, "user_id", userID)
		return nil, repository.ErrPantryNotFound
	}
	return pantry, nil
}

// ==================== Pantry CRUD ====================

func (s *pantryService) CreatePantry(ctx context.Context, userID uint, input CreatePantryInput) (*models.Pantry, error) {
	s.logger.Info("🏠 [PantryService] Creating pantry", "user_id", userID, "name", input.Name)

	name, err := s.pantryRepo.ResolveUniqueName(userID, input.Name)
	if err != nil {
		s.logger.Error("❌ [PantryService] Failed to resolve name", "error", err)
		return nil, err
	}

	pantry := &models.Pantry{
		Name:     name,
		Metadata: input.Metadata,
		OwnerID:  userID,
	}
	if err := s.pantryRepo.Create(pantry); err != nil {
		s.logger.Error("❌ [PantryService] Failed to create pantry", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [PantryService] Pantry created", "pantry_id", pantry.ID, "name", pantry.Name)
	return pantry, nil
}

func (s *pantryService) GetPantry(ctx context.Context, userID uint, email string, pantryID uint) (*models.Pantry, error) {
	return s.ensureAccess(pantryID, userID, email)
}

func (s *pantryService) ListPantries(ctx context.Context, userID uint, email string, filter repository.PantryFilter) ([]models.Pantry, int64, error) {
	return s.pantryRepo.ListAccessible(userID, email, filter)
}

func (s *pantryService) UpdatePantry(ctx context.Context, userID, pantryID uint, input UpdatePantryInput) (*models.Pantry, error) {
	pantry, err := s.ensureOwner(pantryID, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		pantry.Name = *input.Name
	}
	if input.Metadata != nil {
		pantry.Metadata = input.Metadata
	}

	if err := s.pantryRepo.Update(pantry); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			s.logger.Warn("⚠️ [PantryService] Rename collides with existing pantry", "pantry_id", pantryID, "name", pantry.Name)
		} else {
			s.logger.Error("❌ [PantryService] Failed to update pantry", "error", err)
		}
		return nil, err
	}

	s.logger.Info("✅ [PantryService] Pantry updated", "pantry_id", pantryID)
	return pantry, nil
}

func (s *pantryService) DeletePantry(ctx context.Context, userID, pantryID uint) error {
	if _, err := s.ensureOwner(pantryID, userID); err != nil {
		return err
	}

	if err := s.pantryRepo.Delete(pantryID); err != nil {
		s.logger.Error("❌ [PantryService] Failed to delete pantry", "error", err)
		return err
	}

	s.logger.Info("✅ [PantryService] Pantry deleted", "pantry_id", pantryID)
	return nil
}

// ==================== Sharing ====================

func (s *pantryService) SharePantry(ctx context.Context, userID, pantryID uint, email string) (*models.PantryShare, error) {
	pantry, err := s.ensureOwner(pantryID, userID)
	if err != nil {
		return nil, err
	}

	share := &models.PantryShare{
		PantryID: pantryID,
		Email:    email,
	}

	grantee, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if grantee != nil {
		share.UserID = &grantee.ID
	}

	if err := s.pantryRepo.CreateShare(share); err != nil {
		if errors.Is(err, repository.ErrDuplicateShare) {
			s.logger.Warn("⚠️ [PantryService] Pantry already shared with email", "pantry_id", pantryID, "email", email)
		} else {
			s.logger.Error("❌ [PantryService] Failed to create share", "error", err)
		}
		return nil, err
	}

	owner, err := s.userRepo.FindByID(userID)
	if err == nil && grantee != nil {
		s.notifications.PantryShared(ctx, grantee.ID, owner.Username, pantry.Name, pantry.ID)
	}

	s.logger.Info("✅ [PantryService] Pantry shared", "pantry_id", pantryID, "email", email)
	return share, nil
}

func (s *pantryService) RevokeShare(ctx context.Context, userID, pantryID, targetUserID uint) error {
	pantry, err := s.ensureOwner(pantryID, userID)
	if err != nil {
		return err
	}

	if err := s.pantryRepo.DeleteShareByUser(pantryID, targetUserID); err != nil {
		s.logger.Error("❌ [PantryService] Failed to revoke share", "error", err, "pantry_id", pantryID)
		return err
	}

	s.notifications.AccessRevoked(ctx, targetUserID, "pantry", pantry.Name)

	s.logger.Info("✅ [PantryService] Share revoked", "pantry_id", pantryID, "target_user_id", targetUserID)
	return nil
}

func (s *pantryService) ListShares(ctx context.Context, userID uint, email string, pantryID uint) ([]models.PantryShare, error) {
	if _, err := s.ensureAccess(pantryID, userID, email); err != nil {
		return nil, err
	}
	return s.pantryRepo.ListShares(pantryID)
}

// ==================== Items ====================

func (s *pantryService) AddItem(ctx context.Context, userID uint, email string, pantryID uint, input CreatePantryItemInput) (*models.PantryItem, error) {
	if _, err := s.ensureAccess(pantryID, userID, email); err != nil {
		return nil, err
	}

	item := &models.PantryItem{
		PantryID:   pantryID,
		ProductID:  input.ProductID,
		Quantity:   input.Quantity,
		Unit:       input.Unit,
		CategoryID: input.CategoryID,
	}
	if err := s.pantryRepo.CreateItem(item); err != nil {
		s.logger.Error("❌ [PantryService] Failed to add item", "error", err)
		return nil, err
	}

	created, err := s.pantryRepo.FindItem(pantryID, item.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("✅ [PantryService] Item added", "pantry_id", pantryID, "item_id", item.ID)
	return created, nil
}

func (s *pantryService) GetItem(ctx context.Context, userID uint, email string, pantryID, itemID uint) (*models.PantryItem, error) {
	if _, err := s.ensureAccess(pantryID, userID, email); err != nil {
		return nil, err
	}
	return s.pantryRepo.FindItem(pantryID, itemID)
}

func (s *pantryService) UpdateItem(ctx context.Context, userID uint, email string, pantryID, itemID uint, input UpdatePantryItemInput) (*models.PantryItem, error) {
	if _, err := s.ensureAccess(pantryID, userID, email); err != nil {
		return nil, err
	}

	item, err := s.pantryRepo.FindItem(pantryID, itemID)
	if err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.CategoryID != nil {
		item.CategoryID = input.CategoryID
	}

	if err := s.pantryRepo.UpdateItem(item); err != nil {
		s.logger.Error("❌ [PantryService] Failed to update item", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [PantryService] Item updated", "pantry_id", pantryID, "item_id", itemID)
	return item, nil
}

func (s *pantryService) DeleteItem(ctx context.Context, userID uint, email string, pantryID, itemID uint) error {
	if _, err := s.ensureAccess(pantryID, userID, email); err != nil {
		return err
	}
	if err := s.pantryRepo.DeleteItem(pantryID, itemID); err != nil {
		return err
	}
	s.logger.Info("✅ [PantryService] Item deleted", "pantry_id", pantryID, "item_id", itemID)
	return nil
}

func (s *pantryService) ListItems(ctx context.Context, userID uint, email string, pantryID uint, filter repository.PantryItemFilter) ([]models.PantryItem, int64, error) {
	if _, err := s.ensureAccess(pantryID, userID, email); err != nil {
		return nil, 0, err
	}
	return s.pantryRepo.ListItems(pantryID, filter)
}
