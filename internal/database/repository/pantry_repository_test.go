package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despensa-app/backend-go/internal/database/models"
)

func TestPantryRepository_ResolveUniqueName(t *testing.T) {
	db := setupListTestDB(t)
	repo := NewPantryRepository(db)
	owner := createTestUser(t, db, "alice", "alice@example.com")

	name, err := repo.ResolveUniqueName(owner.ID, "Kitchen")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", name)

	require.NoError(t, repo.Create(&models.Pantry{Name: "Kitchen", OwnerID: owner.ID}))

	// Pantries follow the same suffix rule as shopping lists
	name, err = repo.ResolveUniqueName(owner.ID, "Kitchen")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen (1)", name)

	// Archived pantries still block their name
	pantry := &models.Pantry{Name: "Garage", OwnerID: owner.ID}
	require.NoError(t, repo.Create(pantry))
	require.NoError(t, repo.Delete(pantry.ID))

	name, err = repo.ResolveUniqueName(owner.ID, "Garage")
	require.NoError(t, err)
	assert.Equal(t, "Garage (1)", name)
}

func TestPantryRepository_Create_UniqueBackstop(t *testing.T) {
	db := setupListTestDB(t)
	repo := NewPantryRepository(db)
	owner := createTestUser(t, db, "alice", "alice@example.com")

	require.NoError(t, repo.Create(&models.Pantry{Name: "Kitchen", OwnerID: owner.ID}))

	err := repo.Create(&models.Pantry{Name: "Kitchen", OwnerID: owner.ID})
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestPantryRepository_Shares(t *testing.T) {
	db := setupListTestDB(t)
	repo := NewPantryRepository(db)
	owner := createTestUser(t, db, "alice", "alice@example.com")
	guest := createTestUser(t, db, "bob", "bob@example.com")

	pantry := &models.Pantry{Name: "Kitchen", OwnerID: owner.ID}
	require.NoError(t, repo.Create(pantry))

	require.NoError(t, repo.CreateShare(&models.PantryShare{
		PantryID: pantry.ID,
		Email:    guest.Email,
		UserID:   &guest.ID,
	}))

	err := repo.CreateShare(&models.PantryShare{PantryID: pantry.ID, Email: guest.Email})
	assert.ErrorIs(t, err, ErrDuplicateShare)

	ok, err := repo.HasAccess(pantry.ID, guest.ID, guest.Email)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.DeleteShareByUser(pantry.ID, guest.ID))

	ok, err = repo.HasAccess(pantry.ID, guest.ID, guest.Email)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPantryRepository_ItemCRUD(t *testing.T) {
	db := setupListTestDB(t)
	repo := NewPantryRepository(db)
	owner := createTestUser(t, db, "alice", "alice@example.com")
	milk := createTestProduct(t, db, "Milk")

	pantry := &models.Pantry{Name: "Kitchen", OwnerID: owner.ID}
	require.NoError(t, repo.Create(pantry))

	item := &models.PantryItem{PantryID: pantry.ID, ProductID: milk.ID, Quantity: 2, Unit: "l"}
	require.NoError(t, repo.CreateItem(item))

	found, err := repo.FindItem(pantry.ID, item.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, found.Quantity)
	assert.Equal(t, "Milk", found.Product.Name)

	found.Quantity = 5
	require.NoError(t, repo.UpdateItem(found))

	items, total, err := repo.ListItems(pantry.ID, PantryItemFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.EqualValues(t, 5, items[0].Quantity)

	require.NoError(t, repo.DeleteItem(pantry.ID, item.ID))

	_, err = repo.FindItem(pantry.ID, item.ID)
	assert.ErrorIs(t, err, ErrPantryItemNotFound)
}
