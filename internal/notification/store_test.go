package notification

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest runs the same assertions against every backend.
func storeUnderTest(t *testing.T, capacity int) map[string]Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return map[string]Store{
		"memory": NewMemoryStore(capacity),
		"redis":  NewRedisStore(client, capacity, logger),
	}
}

func TestStore_AppendAndList_NewestFirst(t *testing.T) {
	for name, store := range storeUnderTest(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Append(ctx, 1, newRecord(TypeItemAdded, "first", "", "", nil)))
			require.NoError(t, store.Append(ctx, 1, newRecord(TypeItemAdded, "second", "", "", nil)))

			records, err := store.List(ctx, 1)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "second", records[0].Title)
			assert.Equal(t, "first", records[1].Title)

			// Other users see nothing
			records, err = store.List(ctx, 2)
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestStore_CapacityEvictsOldest(t *testing.T) {
	for name, store := range storeUnderTest(t, 5) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i := 0; i < 8; i++ {
				record := newRecord(TypeItemAdded, fmt.Sprintf("event %d", i), "", "", nil)
				require.NoError(t, store.Append(ctx, 1, record))
			}

			records, err := store.List(ctx, 1)
			require.NoError(t, err)
			require.Len(t, records, 5)

			// The newest five survive, oldest three are gone
			assert.Equal(t, "event 7", records[0].Title)
			assert.Equal(t, "event 3", records[4].Title)
		})
	}
}

func TestStore_MarkReadAndClearRead(t *testing.T) {
	for name, store := range storeUnderTest(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := newRecord(TypeListShared, "share", "", "", nil)
			second := newRecord(TypeItemAdded, "item", "", "", nil)
			require.NoError(t, store.Append(ctx, 1, first))
			require.NoError(t, store.Append(ctx, 1, second))

			require.NoError(t, store.MarkRead(ctx, 1, first.ID))

			records, err := store.List(ctx, 1)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.False(t, records[0].Read)
			assert.True(t, records[1].Read)

			require.NoError(t, store.ClearRead(ctx, 1))

			records, err = store.List(ctx, 1)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, second.ID, records[0].ID)
		})
	}
}

func TestStore_MarkRead_Missing(t *testing.T) {
	for name, store := range storeUnderTest(t, 10) {
		t.Run(name, func(t *testing.T) {
			err := store.MarkRead(context.Background(), 1, "no-such-id")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_RemoveAndClear(t *testing.T) {
	for name, store := range storeUnderTest(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := newRecord(TypeListShared, "share", "", "", nil)
			second := newRecord(TypeItemAdded, "item", "", "", nil)
			require.NoError(t, store.Append(ctx, 1, first))
			require.NoError(t, store.Append(ctx, 1, second))

			require.NoError(t, store.Remove(ctx, 1, first.ID))

			records, err := store.List(ctx, 1)
			require.NoError(t, err)
			require.Len(t, records, 1)

			require.NoError(t, store.Clear(ctx, 1))

			records, err = store.List(ctx, 1)
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestService_SkipsUnregisteredGrantee(t *testing.T) {
	store := NewMemoryStore(10)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, logger)
	ctx := context.Background()

	// userID 0 means the grantee has no account yet; nothing is logged
	svc.ListShared(ctx, 0, "alice", "Groceries", 1)

	records, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	svc.ListShared(ctx, 42, "alice", "Groceries", 1)

	records, err = store.List(ctx, 42)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, TypeListShared, records[0].Type)
}
