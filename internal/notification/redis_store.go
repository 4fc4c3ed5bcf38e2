package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists each user's log as a Redis list, newest at the head.
// LPUSH + LTRIM keeps the list capped without a separate eviction pass.
type RedisStore struct {
	client   *redis.Client
	capacity int
	logger   *slog.Logger
}

// NewRedisStore creates a Redis-backed store with the given capacity
// (DefaultCapacity when <= 0).
func NewRedisStore(client *redis.Client, capacity int, logger *slog.Logger) *RedisStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RedisStore{
		client:   client,
		capacity: capacity,
		logger:   logger,
	}
}

func notificationKey(userID uint) string {
	return fmt.Sprintf("notifications:%d", userID)
}

func (s *RedisStore) Append(ctx context.Context, userID uint, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := notificationKey(userID)

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, 0, int64(s.capacity-1))
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("❌ [Notifications] Failed to append record",
			"user_id", userID,
			"error", err,
		)
		return err
	}

	s.logger.Debug("📬 [Notifications] Appended record",
		"user_id", userID,
		"type", record.Type,
	)
	return nil
}

func (s *RedisStore) List(ctx context.Context, userID uint) ([]Record, error) {
	results, err := s.client.LRange(ctx, notificationKey(userID), 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []Record{}, nil
		}
		return nil, err
	}

	records := make([]Record, 0, len(results))
	for _, raw := range results {
		var record Record
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			s.logger.Warn("⚠️ [Notifications] Skipping unreadable record",
				"user_id", userID,
				"error", err,
			)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *RedisStore) MarkRead(ctx context.Context, userID uint, recordID string) error {
	return s.rewrite(ctx, userID, func(records []Record) ([]Record, error) {
		for i := range records {
			if records[i].ID == recordID {
				records[i].Read = true
				return records, nil
			}
		}
		return nil, ErrNotFound
	})
}

func (s *RedisStore) MarkAllRead(ctx context.Context, userID uint) error {
	return s.rewrite(ctx, userID, func(records []Record) ([]Record, error) {
		for i := range records {
			records[i].Read = true
		}
		return records, nil
	})
}

func (s *RedisStore) Remove(ctx context.Context, userID uint, recordID string) error {
	return s.rewrite(ctx, userID, func(records []Record) ([]Record, error) {
		for i := range records {
			if records[i].ID == recordID {
				return append(records[:i], records[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

func (s *RedisStore) ClearRead(ctx context.Context, userID uint) error {
	return s.rewrite(ctx, userID, func(records []Record) ([]Record, error) {
		kept := records[:0]
		for _, r := range records {
			if !r.Read {
				kept = append(kept, r)
			}
		}
		return kept, nil
	})
}

func (s *RedisStore) Clear(ctx context.Context, userID uint) error {
	return s.client.Del(ctx, notificationKey(userID)).Err()
}

// rewrite replaces the whole list after applying fn. The log is small
// (capped) so read-modify-write is fine here.
func (s *RedisStore) rewrite(ctx context.Context, userID uint, fn func([]Record) ([]Record, error)) error {
	records, err := s.List(ctx, userID)
	if err != nil {
		return err
	}

	updated, err := fn(records)
	if err != nil {
		return err
	}

	key := notificationKey(userID)
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	for i := len(updated) - 1; i >= 0; i-- {
		data, err := json.Marshal(updated[i])
		if err != nil {
			return err
		}
		pipe.LPush(ctx, key, string(data))
	}
	_, err = pipe.Exec(ctx)
	return err
}
