package notification

import (
	"context"
	"fmt"
	"log/slog"
)

// Service emits typed events into a user's log. Emission is best effort:
// a failed append is logged and swallowed so a notification hiccup never
// fails the business action that triggered it.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a notification service on top of a store.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Store exposes the underlying store for the HTTP handler.
func (s *Service) Store() Store {
	return s.store
}

func (s *Service) emit(ctx context.Context, userID uint, record Record) {
	if userID == 0 {
		// Grantee not registered yet; nothing to deliver to
		return
	}
	if err := s.store.Append(ctx, userID, record); err != nil {
		s.logger.Warn("⚠️ [Notifications] Failed to emit event",
			"user_id", userID,
			"type", record.Type,
			"error", err,
		)
	}
}

func (s *Service) ListShared(ctx context.Context, granteeID uint, sharedBy, listName string, listID uint) {
	s.emit(ctx, granteeID, newRecord(
		TypeListShared,
		fmt.Sprintf("%s shared a list with you", sharedBy),
		fmt.Sprintf("List: %s", listName),
		fmt.Sprintf("You now have access to the list %q", listName),
		map[string]interface{}{"list_id": listID, "shared_by": sharedBy},
	))
}

func (s *Service) PantryShared(ctx context.Context, granteeID uint, sharedBy, pantryName string, pantryID uint) {
	s.emit(ctx, granteeID, newRecord(
		TypePantryShared,
		fmt.Sprintf("%s shared a pantry with you", sharedBy),
		fmt.Sprintf("Pantry: %s", pantryName),
		fmt.Sprintf("You now have access to the pantry %q", pantryName),
		map[string]interface{}{"pantry_id": pantryID, "shared_by": sharedBy},
	))
}

func (s *Service) ItemAdded(ctx context.Context, recipientID uint, addedBy, itemName, listName string, listID uint) {
	s.emit(ctx, recipientID, newRecord(
		TypeItemAdded,
		fmt.Sprintf("%s added a product", addedBy),
		fmt.Sprintf("%s in %s", itemName, listName),
		fmt.Sprintf("%q was added to the shared list", itemName),
		map[string]interface{}{"list_id": listID, "added_by": addedBy},
	))
}

func (s *Service) ItemPurchased(ctx context.Context, recipientID uint, purchasedBy, itemName, listName string, listID uint) {
	s.emit(ctx, recipientID, newRecord(
		TypeItemPurchased,
		fmt.Sprintf("%s checked off a product", purchasedBy),
		fmt.Sprintf("%s in %s", itemName, listName),
		fmt.Sprintf("%q was marked as purchased", itemName),
		map[string]interface{}{"list_id": listID, "purchased_by": purchasedBy},
	))
}

func (s *Service) ListCompleted(ctx context.Context, recipientID uint, listName string, listID uint) {
	s.emit(ctx, recipientID, newRecord(
		TypeListCompleted,
		"List completed",
		listName,
		fmt.Sprintf("Every product in %q has been purchased", listName),
		map[string]interface{}{"list_id": listID},
	))
}

func (s *Service) AccessRevoked(ctx context.Context, revokedID uint, resourceType, resourceName string) {
	s.emit(ctx, revokedID, newRecord(
		TypeAccessRevoked,
		"Access revoked",
		fmt.Sprintf("%s: %s", resourceType, resourceName),
		fmt.Sprintf("You no longer have access to the %s %q", resourceType, resourceName),
		map[string]interface{}{"resource_type": resourceType},
	))
}
