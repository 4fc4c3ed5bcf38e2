package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(client *Client) *ListStore {
	granteeID := uint(2)
	store := NewListStore(client)
	store.Seed(
		[]List{
			{ID: 1, Name: "Groceries", OwnerID: 1, Shares: []Share{{ID: 1, Email: "bob@example.com", UserID: &granteeID}}},
			{ID: 2, Name: "Hardware", OwnerID: 1},
			{ID: 3, Name: "Empty", OwnerID: 1},
		},
		map[uint][]Item{
			1: {
				{ID: 10, ListID: 1, ProductID: 100, Quantity: 2, Purchased: true},
				{ID: 11, ListID: 1, ProductID: 101, Quantity: 1, Purchased: true},
			},
			2: {
				{ID: 20, ListID: 2, ProductID: 102, Quantity: 1, Purchased: true},
				{ID: 21, ListID: 2, ProductID: 103, Quantity: 3, Purchased: false},
			},
		},
	)
	return store
}

func TestListStore_Aggregates(t *testing.T) {
	store := seededStore(New("http://localhost"))

	assert.Equal(t, 3, store.TotalLists())
	assert.Equal(t, 4, store.TotalItems())
	assert.Equal(t, 3, store.PurchasedItems())
	assert.Equal(t, 1, store.PendingItems())
	// The fully purchased list counts; the empty one never does.
	assert.Equal(t, 1, store.CompletedLists())
	assert.Equal(t, 1, store.SharedLists())
}

func TestListStore_Refresh_PagesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/shopping-lists":
			if r.URL.Query().Get("page") == "1" {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"data":       []List{{ID: 1, Name: "Groceries"}},
					"pagination": map[string]interface{}{"total": 2, "page": 1, "per_page": 1},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data":       []List{{ID: 2, Name: "Hardware"}},
				"pagination": map[string]interface{}{"total": 2, "page": 2, "per_page": 1},
			})
		case "/api/shopping-lists/1/items":
			json.NewEncoder(w).Encode([]Item{{ID: 10, ListID: 1, Purchased: true}})
		case "/api/shopping-lists/2/items":
			json.NewEncoder(w).Encode([]Item{})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	store := NewListStore(New(server.URL))
	require.NoError(t, store.Refresh(context.Background()))

	assert.Equal(t, 2, store.TotalLists())
	assert.Equal(t, 1, store.TotalItems())
	assert.Equal(t, 1, store.CompletedLists())
}

func TestListStore_Refresh_FailureKeepsSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "database unavailable"})
	}))
	defer server.Close()

	store := seededStore(New(server.URL))
	err := store.Refresh(context.Background())
	require.Error(t, err)

	// The previous snapshot survives a failed refresh.
	assert.Equal(t, 3, store.TotalLists())
	assert.Equal(t, 4, store.TotalItems())
}

func TestListStore_ToggleItem_CommitsOnAck(t *testing.T) {
	var gotPatch ItemPatch
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/shopping-lists/2/items/21", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPatch))
		json.NewEncoder(w).Encode(Item{ID: 21, ListID: 2, ProductID: 103, Quantity: 3, Purchased: true})
	}))
	defer server.Close()

	store := seededStore(New(server.URL))
	updated, err := store.ToggleItem(context.Background(), 2, 21)
	require.NoError(t, err)

	require.NotNil(t, gotPatch.Purchased)
	assert.True(t, *gotPatch.Purchased)
	assert.True(t, updated.Purchased)

	items := store.Items(2)
	require.Len(t, items, 2)
	assert.True(t, items[1].Purchased)
	assert.Equal(t, 0, store.PendingItems())
}

func TestListStore_ToggleItem_RollsBackOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "List item not found"})
	}))
	defer server.Close()

	store := seededStore(New(server.URL))
	updated, err := store.ToggleItem(context.Background(), 2, 21)
	require.Error(t, err)
	assert.Nil(t, updated)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "List item not found", apiErr.Message)

	// Cache untouched.
	items := store.Items(2)
	assert.False(t, items[1].Purchased)
	assert.Equal(t, 1, store.PendingItems())
}

func TestListStore_ToggleItem_TransportErrorIsNotAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	store := seededStore(New(server.URL))
	_, err := store.ToggleItem(context.Background(), 2, 21)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))

	items := store.Items(2)
	assert.False(t, items[1].Purchased)
}

func TestListStore_ToggleItem_UnknownItem(t *testing.T) {
	store := seededStore(New("http://localhost"))

	_, err := store.ToggleItem(context.Background(), 2, 999)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
