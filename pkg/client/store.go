package client

import (
	"context"
	"sync"
)

// ListStore is a client-side cache of the user's shopping lists and their
// items, with the aggregate counters the frontend dashboard shows. All
// methods are safe for concurrent use.
type ListStore struct {
	client *Client

	mu    sync.RWMutex
	lists []List
	items map[uint][]Item
}

// NewListStore creates an empty store bound to a client.
func NewListStore(client *Client) *ListStore {
	return &ListStore{
		client: client,
		items:  map[uint][]Item{},
	}
}

// Refresh reloads every accessible list and its items, paging through the
// API. The cache is only replaced once everything loaded, so a mid-flight
// failure leaves the previous snapshot intact.
func (s *ListStore) Refresh(ctx context.Context) error {
	lists, err := s.fetchAllLists(ctx)
	if err != nil {
		return err
	}

	items := make(map[uint][]Item, len(lists))
	for _, list := range lists {
		listItems, err := s.fetchAllItems(ctx, list.ID)
		if err != nil {
			return err
		}
		items[list.ID] = listItems
	}

	s.mu.Lock()
	s.lists = lists
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *ListStore) fetchAllLists(ctx context.Context) ([]List, error) {
	var all []List
	for page := 1; ; page++ {
		lists, meta, err := s.client.ListLists(ctx, page, 100)
		if err != nil {
			return nil, err
		}
		all = append(all, lists...)
		if !meta.HasNext {
			return all, nil
		}
	}
}

func (s *ListStore) fetchAllItems(ctx context.Context, listID uint) ([]Item, error) {
	var all []Item
	for page := 1; ; page++ {
		items, meta, err := s.client.ListItems(ctx, listID, page, 100)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if !meta.HasNext {
			return all, nil
		}
	}
}

// Seed replaces the cache contents directly. Intended for tests and for
// callers that already hold fresh data.
func (s *ListStore) Seed(lists []List, items map[uint][]Item) {
	if items == nil {
		items = map[uint][]Item{}
	}
	s.mu.Lock()
	s.lists = lists
	s.items = items
	s.mu.Unlock()
}

// Lists returns a copy of the cached lists.
func (s *ListStore) Lists() []List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]List, len(s.lists))
	copy(out, s.lists)
	return out
}

// Items returns a copy of the cached items of one list.
func (s *ListStore) Items(listID uint) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cached := s.items[listID]
	out := make([]Item, len(cached))
	copy(out, cached)
	return out
}

// ==================== Aggregates ====================

// TotalLists counts cached lists.
func (s *ListStore) TotalLists() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lists)
}

// TotalItems counts items across every cached list.
func (s *ListStore) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, items := range s.items {
		total += len(items)
	}
	return total
}

// PurchasedItems counts items already checked off.
func (s *ListStore) PurchasedItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, items := range s.items {
		for _, item := range items {
			if item.Purchased {
				count++
			}
		}
	}
	return count
}

// PendingItems counts items still to buy.
func (s *ListStore) PendingItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, items := range s.items {
		for _, item := range items {
			if !item.Purchased {
				count++
			}
		}
	}
	return count
}

// CompletedLists counts non-empty lists whose every item is purchased. An
// empty list is never "completed".
func (s *ListStore) CompletedLists() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, list := range s.lists {
		items := s.items[list.ID]
		if len(items) == 0 {
			continue
		}
		completed := true
		for _, item := range items {
			if !item.Purchased {
				completed = false
				break
			}
		}
		if completed {
			count++
		}
	}
	return count
}

// SharedLists counts lists with at least one grantee.
func (s *ListStore) SharedLists() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, list := range s.lists {
		if len(list.Shares) > 0 {
			count++
		}
	}
	return count
}

// ==================== Optimistic mutation ====================

// ToggleItem flips an item's purchased flag. The mutation happens on a
// draft copy first; the cache is only updated once the server acknowledges,
// and an error (network or API) leaves the cache exactly as it was.
func (s *ListStore) ToggleItem(ctx context.Context, listID, itemID uint) (*Item, error) {
	s.mu.RLock()
	var draft *Item
	for _, item := range s.items[listID] {
		if item.ID == itemID {
			copied := item
			draft = &copied
			break
		}
	}
	s.mu.RUnlock()

	if draft == nil {
		return nil, &APIError{StatusCode: 404, Message: "item not in cache"}
	}

	draft.Purchased = !draft.Purchased

	updated, err := s.client.UpdateItem(ctx, listID, itemID, ItemPatch{Purchased: &draft.Purchased})
	if err != nil {
		// Discard the draft; the cache still holds the pre-toggle state.
		return nil, err
	}

	s.mu.Lock()
	items := s.items[listID]
	for i := range items {
		if items[i].ID == itemID {
			items[i] = *updated
			break
		}
	}
	s.mu.Unlock()

	return updated, nil
}
