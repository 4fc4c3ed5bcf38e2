package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/despensa-app/backend-go/internal/database/models"
	"github.com/despensa-app/backend-go/internal/database/repository"
	"github.com/despensa-app/backend-go/internal/notification"
)

// CreateListInput carries the caller-supplied fields for a new list.
type CreateListInput struct {
	Name        string
	Description string
	Recurring   bool
	Metadata    models.Metadata
}

// UpdateListInput uses pointers so absent fields are left untouched.
type UpdateListInput struct {
	Name        *string
	Description *string
	Recurring   *bool
	Metadata    models.Metadata
}

// CreateItemInput carries the caller-supplied fields for a new list item.
type CreateItemInput struct {
	ProductID  uint
	Quantity   float64
	Unit       string
	CategoryID *uint
}

// UpdateItemInput uses pointers so absent fields are left untouched.
type UpdateItemInput struct {
	Quantity   *float64
	Unit       *string
	Purchased  *bool
	CategoryID *uint
}

// ListService defines the interface for shopping-list business logic
type ListService interface {
	CreateList(ctx context.Context, userID uint, input CreateListInput) (*models.ShoppingList, error)
	GetList(ctx context.Context, userID uint, email string, listID uint) (*models.ShoppingList, error)
	ListLists(ctx context.Context, userID uint, email string, filter repository.ListFilter) ([]models.ShoppingList, int64, error)
	UpdateList(ctx context.Context, userID, listID uint, input UpdateListInput) (*models.ShoppingList, error)
	DeleteList(ctx context.Context, userID, listID uint) error

	ShareList(ctx context.Context, userID, listID uint, email string) (*models.ListShare, error)
	RevokeShare(ctx context.Context, userID, listID, targetUserID uint) error
	ListShares(ctx context.Context, userID uint, email string, listID uint) ([]models.ListShare, error)

	AddItem(ctx context.Context, userID uint, email string, listID uint, input CreateItemInput) (*models.ListItem, error)
	GetItem(ctx context.Context, userID uint, email string, listID, itemID uint) (*models.ListItem, error)
	UpdateItem(ctx context.Context, userID uint, email string, listID, itemID uint, input UpdateItemInput) (*models.ListItem, error)
	DeleteItem(ctx context.Context, userID uint, email string, listID, itemID uint) error
	ListItems(ctx context.Context, userID uint, email string, listID uint, filter repository.ListItemFilter) ([]models.ListItem, int64, error)

	Purchase(ctx context.Context, userID uint, email string, listID uint, metadata models.Metadata) (*models.Purchase, error)
	Reset(ctx context.Context, userID uint, email string, listID uint) error
	MoveToPantry(ctx context.Context, userID uint, email string, listID, pantryID uint) (int, error)
}

type listService struct {
	listRepo      repository.ListRepository
	pantryRepo    repository.PantryRepository
	userRepo      repository.UserRepository
	notifications *notification.Service
	logger        *slog.Logger
}

// NewListService creates a new shopping-list service instance
func NewListService(
	listRepo repository.ListRepository,
	pantryRepo repository.PantryRepository,
	userRepo repository.UserRepository,
	notifications *notification.Service,
	logger *slog.Logger,
) ListService {
	return &listService{
		listRepo:      listRepo,
		pantryRepo:    pantryRepo,
		userRepo:      userRepo,
		notifications: notifications,
		logger:        logger,
	}
}

// ensureAccess loads the list and verifies the caller owns it or holds a
// share. Denied access reports ErrListNotFound so callers cannot probe for
// existence of other users' lists.
func (s *listService) ensureAccess(listID, userID uint, email string) (*models.ShoppingList, error) {
	list, err := s.listRepo.FindByID(listID)
	if err != nil {
		return nil, err
	}

	ok, err := s.listRepo.HasAccess(listID, userID, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("⚠️ [ListService] Access denied", "list_id", listID, "user_id", userID)
		return nil, repository.ErrListNotFound
	}
	return list, nil
}

// ensureOwner is like ensureAccess but only the owner passes.
func (s *listService) ensureOwner(listID, userID uint) (*models.ShoppingList, error) {
	list, err := s.listRepo.FindByID(listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != userID {
		s.logger.Warn("⚠️ [ListService] Owner-only operation denied", "list_id", listID, "user_id", userID)
		return nil, repository.ErrListNotFound
	}
	return list, nil
}

// notifyMembers runs fn for the owner and every resolved share grantee,
// skipping the acting user.
func (s *listService) notifyMembers(list *models.ShoppingList, actorID uint, fn func(recipientID uint)) {
	if list.OwnerID != actorID {
		fn(list.OwnerID)
	}
	for _, share := range list.Shares {
		if share.UserID != nil && *share.UserID != actorID {
			fn(*share.UserID)
		}
	}
}

// ==================== List CRUD ====================

func (s *listService) CreateList(ctx context.Context, userID uint, input CreateListInput) (*models.ShoppingList, error) {
	s.logger.Info("📋 [ListService] Creating list", "user_id", userID, "name", input.Name)

	name, err := s.listRepo.ResolveUniqueName(userID, input.Name)
	if err != nil {
		s.logger.Error("❌ [ListService] Failed to resolve name", "error", err)
		return nil, err
	}

	list := &models.ShoppingList{
		Name:        name,
		Description: input.Description,
		Recurring:   input.Recurring,
		Metadata:    input.Metadata,
		OwnerID:     userID,
	}
	if err := s.listRepo.Create(list); err != nil {
		s.logger.Error("❌ [ListService] Failed to create list", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [ListService] List created", "list_id", list.ID, "name", list.Name)
	return list, nil
}

func (s *listService) GetList(ctx context.Context, userID uint, email string, listID uint) (*models.ShoppingList, error) {
	return s.ensureAccess(listID, userID, email)
}

func (s *listService) ListLists(ctx context.Context, userID uint, email string, filter repository.ListFilter) ([]models.ShoppingList, int64, error) {
	return s.listRepo.ListAccessible(userID, email, filter)
}

func (s *listService) UpdateList(ctx context.Context, userID, listID uint, input UpdateListInput) (*models.ShoppingList, error) {
	list, err := s.ensureOwner(listID, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		list.Name = *input.Name
	}
	if input.Description != nil {
		list.Description = *input.Description
	}
	if input.Recurring != nil {
		list.Recurring = *input.Recurring
	}
	if input.Metadata != nil {
		list.Metadata = input.Metadata
	}

	if err := s.listRepo.Update(list); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			s.logger.Warn("⚠️ [ListService] Rename collides with existing list", "list_id", listID, "name", list.Name)
		} else {
			s.logger.Error("❌ [ListService] Failed to update list", "error", err)
		}
		return nil, err
	}

	s.logger.Info("✅ [ListService] List updated", "list_id", listID)
	return list, nil
}

func (s *listService) DeleteList(ctx context.Context, userID, listID uint) error {
	if _, err := s.ensureOwner(listID, userID); err != nil {
		return err
	}

	if err := s.listRepo.Delete(listID); err != nil {
		s.logger.Error("❌ [ListService] Failed to delete list", "error", err)
		return err
	}

	s.logger.Info("✅ [ListService] List deleted", "list_id", listID)
	return nil
}

// ==================== Sharing ====================

func (s *listService) ShareList(ctx context.Context, userID, listID uint, email string) (*models.ListShare, error) {
	list, err := s.ensureOwner(listID, userID)
	if err != nil {
		return nil, err
	}

	share := &models.ListShare{
		ListID: listID,
		Email:  email,
	}

	// Resolve the grantee if they already have an account; the share still
	// works by email for users who register later.
	grantee, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if grantee != nil {
		share.UserID = &grantee.ID
	}

	if err := s.listRepo.CreateShare(share); err != nil {
		if errors.Is(err, repository.ErrDuplicateShare) {
			s.logger.Warn("⚠️ [ListService] List already shared with email", "list_id", listID, "email", email)
		} else {
			s.logger.Error("❌ [ListService] Failed to create share", "error", err)
		}
		return nil, err
	}

	owner, err := s.userRepo.FindByID(userID)
	if err == nil && grantee != nil {
		s.notifications.ListShared(ctx, grantee.ID, owner.Username, list.Name, list.ID)
	}

	s.logger.Info("✅ [ListService] List shared", "list_id", listID, "email", email)
	return share, nil
}

func (s *listService) RevokeShare(ctx context.Context, userID, listID, targetUserID uint) error {
	list, err := s.ensureOwner(listID, userID)
	if err != nil {
		return err
	}

	if err := s.listRepo.DeleteShareByUser(listID, targetUserID); err != nil {
		s.logger.Error("❌ [ListService] Failed to revoke share", "error", err, "list_id", listID)
		return err
	}

	s.notifications.AccessRevoked(ctx, targetUserID, "list", list.Name)

	s.logger.Info("✅ [ListService] Share revoked", "list_id", listID, "target_user_id", targetUserID)
	return nil
}

func (s *listService) ListShares(ctx context.Context, userID uint, email string, listID uint) ([]models.ListShare, error) {
	if _, err := s.ensureAccess(listID, userID, email); err != nil {
		return nil, err
	}
	return s.listRepo.ListShares(listID)
}

// ==================== Items ====================

func (s *listService) AddItem(ctx context.Context, userID uint, email string, listID uint, input CreateItemInput) (*models.ListItem, error) {
	list, err := s.ensureAccess(listID, userID, email)
	if err != nil {
		return nil, err
	}

	item := &models.ListItem{
		ListID:     listID,
		ProductID:  input.ProductID,
		Quantity:   input.Quantity,
		Unit:       input.Unit,
		CategoryID: input.CategoryID,
	}
	if err := s.listRepo.CreateItem(item); err != nil {
		s.logger.Error("❌ [ListService] Failed to add item", "error", err)
		return nil, err
	}

	// Reload with product preloaded so the response carries the name.
	created, err := s.listRepo.FindItem(listID, item.ID)
	if err != nil {
		return nil, err
	}

	if actor, err := s.userRepo.FindByID(userID); err == nil {
		s.notifyMembers(list, userID, func(recipientID uint) {
			s.notifications.ItemAdded(ctx, recipientID, actor.Username, created.Product.Name, list.Name, list.ID)
		})
	}

	s.logger.Info("✅ [ListService] Item added", "list_id", listID, "item_id", item.ID)
	return created, nil
}

func (s *listService) GetItem(ctx context.Context, userID uint, email string, listID, itemID uint) (*models.ListItem, error) {
	if _, err := s.ensureAccess(listID, userID, email); err != nil {
		return nil, err
	}
	return s.listRepo.FindItem(listID, itemID)
}

func (s *listService) UpdateItem(ctx context.Context, userID uint, email string, listID, itemID uint, input UpdateItemInput) (*models.ListItem, error) {
	list, err := s.ensureAccess(listID, userID, email)
	if err != nil {
		return nil, err
	}

	item, err := s.listRepo.FindItem(listID, itemID)
	if err != nil {
		return nil, err
	}

	wasPurchased := item.Purchased

	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.Purchased != nil {
		item.Purchased = *input.Purchased
	}
	if input.CategoryID != nil {
		item.CategoryID = input.CategoryID
	}

	if err := s.listRepo.UpdateItem(item); err != nil {
		s.logger.Error("❌ [ListService] Failed to update item", "error", err)
		return nil, err
	}

	if !wasPurchased && item.Purchased {
		s.handleItemPurchased(ctx, list, item, userID)
	}

	s.logger.Info("✅ [ListService] Item updated", "list_id", listID, "item_id", itemID)
	return item, nil
}

// handleItemPurchased fires the purchase notification and, when the toggle
// emptied the pending set, announces list completion to every member.
func (s *listService) handleItemPurchased(ctx context.Context, list *models.ShoppingList, item *models.ListItem, actorID uint) {
	actor, err := s.userRepo.FindByID(actorID)
	if err == nil {
		s.notifyMembers(list, actorID, func(recipientID uint) {
			s.notifications.ItemPurchased(ctx, recipientID, actor.Username, item.Product.Name, list.Name, list.ID)
		})
	}

	pending, err := s.listRepo.CountPending(list.ID)
	if err != nil {
		s.logger.Error("❌ [ListService] Failed to count pending items", "error", err, "list_id", list.ID)
		return
	}
	if pending == 0 {
		s.notifications.ListCompleted(ctx, list.OwnerID, list.Name, list.ID)
		for _, share := range list.Shares {
			if share.UserID != nil && *share.UserID != list.OwnerID {
				s.notifications.ListCompleted(ctx, *share.UserID, list.Name, list.ID)
			}
		}
	}
}

func (s *listService) DeleteItem(ctx context.Context, userID uint, email string, listID, itemID uint) error {
	if _, err := s.ensureAccess(listID, userID, email); err != nil {
		return err
	}
	if err := s.listRepo.DeleteItem(listID, itemID); err != nil {
		return err
	}
	s.logger.Info("✅ [ListService] Item deleted", "list_id", listID, "item_id", itemID)
	return nil
}

func (s *listService) ListItems(ctx context.Context, userID uint, email string, listID uint, filter repository.ListItemFilter) ([]models.ListItem, int64, error) {
	if _, err := s.ensureAccess(listID, userID, email); err != nil {
		return nil, 0, err
	}
	return s.listRepo.ListItems(listID, filter)
}

// ==================== Purchase lifecycle ====================

func (s *listService) Purchase(ctx context.Context, userID uint, email string, listID uint, metadata models.Metadata) (*models.Purchase, error) {
	list, err := s.ensureAccess(listID, userID, email)
	if err != nil {
		return nil, err
	}

	purchase, err := s.listRepo.PurchaseAll(listID, metadata)
	if err != nil {
		s.logger.Error("❌ [ListService] Failed to purchase list", "error", err, "list_id", listID)
		return nil, err
	}

	s.notifications.ListCompleted(ctx, list.OwnerID, list.Name, list.ID)
	for _, share := range list.Shares {
		if share.UserID != nil && *share.UserID != list.OwnerID {
			s.notifications.ListCompleted(ctx, *share.UserID, list.Name, list.ID)
		}
	}

	s.logger.Info("✅ [ListService] List purchased", "list_id", listID, "purchase_id", purchase.ID, "items", len(purchase.Items))
	return purchase, nil
}

func (s *listService) Reset(ctx context.Context, userID uint, email string, listID uint) error {
	if _, err := s.ensureAccess(listID, userID, email); err != nil {
		return err
	}
	if err := s.listRepo.ResetAll(listID); err != nil {
		s.logger.Error("❌ [ListService] Failed to reset list", "error", err, "list_id", listID)
		return err
	}
	s.logger.Info("✅ [ListService] List reset", "list_id", listID)
	return nil
}

func (s *listService) MoveToPantry(ctx context.Context, userID uint, email string, listID, pantryID uint) (int, error) {
	if _, err := s.ensureAccess(listID, userID, email); err != nil {
		return 0, err
	}

	// The destination pantry needs its own access check; a list share does
	// not grant pantry rights.
	ok, err := s.pantryRepo.HasAccess(pantryID, userID, email)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, repository.ErrPantryNotFound
	}

	moved, err := s.listRepo.MoveToPantry(listID, pantryID)
	if err != nil {
		s.logger.Error("❌ [ListService] Failed to move items to pantry", "error", err, "list_id", listID, "pantry_id", pantryID)
		return 0, err
	}

	s.logger.Info("✅ [ListService] Items moved to pantry", "list_id", listID, "pantry_id", pantryID, "moved", moved)
	return moved, nil
}
