package service

import (
	"context"
	"log/slog"

	"github.com/despensa-app/backend-go/internal/database/models"
	"github.com/despensa-app/backend-go/internal/database/repository"
)

// PurchaseService reads purchase history and restores snapshots into new
// shopping lists. History is append-only; the snapshots themselves are
// created by the list purchase transaction.
type PurchaseService interface {
	GetPurchase(ctx context.Context, userID uint, email string, purchaseID uint) (*models.Purchase, error)
	ListPurchases(ctx context.Context, userID uint, email string, filter repository.PurchaseFilter) ([]models.Purchase, int64, error)
	Restore(ctx context.Context, userID uint, email string, purchaseID uint) (*models.ShoppingList, error)
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	listRepo     repository.ListRepository
	logger       *slog.Logger
}

// NewPurchaseService creates a new purchase service instance
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	listRepo repository.ListRepository,
	logger *slog.Logger,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		listRepo:     listRepo,
		logger:       logger,
	}
}

// ensureAccess verifies the caller can access the list a purchase came
// from. Denied or unresolvable access reports ErrPurchaseNotFound.
func (s *purchaseService) ensureAccess(purchaseID, userID uint, email string) (*models.Purchase, error) {
	purchase, err := s.purchaseRepo.FindByID(purchaseID)
	if err != nil {
		return nil, err
	}

	ok, err := s.listRepo.HasAccess(purchase.ListID, userID, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("⚠️ [PurchaseService] Access denied", "purchase_id", purchaseID, "user_id", userID)
		return nil, repository.ErrPurchaseNotFound
	}
	return purchase, nil
}

func (s *purchaseService) GetPurchase(ctx context.Context, userID uint, email string, purchaseID uint) (*models.Purchase, error) {
	return s.ensureAccess(purchaseID, userID, email)
}

func (s *purchaseService) ListPurchases(ctx context.Context, userID uint, email string, filter repository.PurchaseFilter) ([]models.Purchase, int64, error) {
	listIDs, err := s.listRepo.AccessibleIDs(userID, email)
	if err != nil {
		return nil, 0, err
	}
	return s.purchaseRepo.ListForLists(listIDs, filter)
}

// Restore builds a brand new list from a snapshot. The new list is owned
// by the caller, gets a collision-free name, and starts with every item
// pending regardless of the snapshot's state.
func (s *purchaseService) Restore(ctx context.Context, userID uint, email string, purchaseID uint) (*models.ShoppingList, error) {
	purchase, err := s.ensureAccess(purchaseID, userID, email)
	if err != nil {
		return nil, err
	}

	name, err := s.listRepo.ResolveUniqueName(userID, purchase.ListName)
	if err != nil {
		s.logger.Error("❌ [PurchaseService] Failed to resolve name", "error", err)
		return nil, err
	}

	list := &models.ShoppingList{
		Name:     name,
		Metadata: purchase.Metadata,
		OwnerID:  userID,
	}
	items := make([]models.ListItem, 0, len(purchase.Items))
	for _, snap := range purchase.Items {
		items = append(items, models.ListItem{
			ProductID:  snap.ProductID,
			Quantity:   snap.Quantity,
			Unit:       snap.Unit,
			CategoryID: snap.CategoryID,
			Purchased:  false,
		})
	}

	if err := s.listRepo.CreateWithItems(list, items); err != nil {
		s.logger.Error("❌ [PurchaseService] Failed to restore purchase", "error", err, "purchase_id", purchaseID)
		return nil, err
	}

	s.logger.Info("✅ [PurchaseService] Purchase restored", "purchase_id", purchaseID, "list_id", list.ID, "items", len(items))
	return list, nil
}
