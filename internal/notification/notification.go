// Package notification keeps a per-user, capacity-capped log of user-facing
// events (shares, item activity, revocations). The log is append-only with
// oldest-first eviction beyond capacity, and lives behind the Store
// interface so the backing store (Redis in production, memory in tests) is
// swappable.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity caps the log at the most recent 100 records.
const DefaultCapacity = 100

// Record is one user-facing event.
type Record struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Subtitle  string                 `json:"subtitle,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event types emitted by the resource services.
const (
	TypeListShared    = "list_shared"
	TypePantryShared  = "pantry_shared"
	TypeItemAdded     = "item_added"
	TypeItemPurchased = "item_purchased"
	TypeListCompleted = "list_completed"
	TypeAccessRevoked = "access_revoked"
)

// ErrNotFound is returned when a record id does not exist for the user.
var ErrNotFound = errors.New("notification not found")

// Store persists notification records per user, newest first.
type Store interface {
	// Append adds a record and evicts the oldest beyond capacity.
	Append(ctx context.Context, userID uint, record Record) error
	// List returns all records, newest first.
	List(ctx context.Context, userID uint) ([]Record, error)
	MarkRead(ctx context.Context, userID uint, recordID string) error
	MarkAllRead(ctx context.Context, userID uint) error
	Remove(ctx context.Context, userID uint, recordID string) error
	// ClearRead drops read records, keeping unread ones.
	ClearRead(ctx context.Context, userID uint) error
	Clear(ctx context.Context, userID uint) error
}

// newRecord stamps identity and creation time on an event.
func newRecord(eventType, title, subtitle, message string, metadata map[string]interface{}) Record {
	return Record{
		ID:        uuid.NewString(),
		Type:      eventType,
		Title:     title,
		Subtitle:  subtitle,
		Message:   message,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}
}
