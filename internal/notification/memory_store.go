package notification

import (
	"context"
	"sync"
)

// MemoryStore keeps the log in process memory. Used when Redis is
// unavailable and in tests.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	records  map[uint][]Record // newest first
}

// NewMemoryStore creates an in-memory store with the given capacity
// (DefaultCapacity when <= 0).
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		records:  make(map[uint][]Record),
	}
}

func (s *MemoryStore) Append(_ context.Context, userID uint, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := append([]Record{record}, s.records[userID]...)
	if len(records) > s.capacity {
		records = records[:s.capacity]
	}
	s.records[userID] = records
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID uint) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records[userID]))
	copy(out, s.records[userID])
	return out, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, userID uint, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records[userID] {
		if s.records[userID][i].ID == recordID {
			s.records[userID][i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) MarkAllRead(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records[userID] {
		s.records[userID][i].Read = true
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, userID uint, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.records[userID]
	for i := range records {
		if records[i].ID == recordID {
			s.records[userID] = append(records[:i], records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ClearRead(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[userID][:0]
	for _, r := range s.records[userID] {
		if !r.Read {
			kept = append(kept, r)
		}
	}
	s.records[userID] = kept
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
	return nil
}
