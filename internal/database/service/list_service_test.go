package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/despensa-app/backend-go/internal/database/models"
	"github.com/despensa-app/backend-go/internal/database/repository"
	"github.com/despensa-app/backend-go/internal/notification"
)

type listServiceFixture struct {
	db            *gorm.DB
	svc           ListService
	listRepo      repository.ListRepository
	pantryRepo    repository.PantryRepository
	notifications notification.Store
}

func setupListService(t *testing.T) *listServiceFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ShoppingList{},
		&models.ListItem{},
		&models.ListShare{},
		&models.Pantry{},
		&models.PantryItem{},
		&models.PantryShare{},
		&models.Purchase{},
		&models.PurchaseItem{},
	)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := notification.NewMemoryStore(notification.DefaultCapacity)

	listRepo := repository.NewListRepository(db)
	pantryRepo := repository.NewPantryRepository(db)
	userRepo := repository.NewUserRepository(db)

	return &listServiceFixture{
		db:            db,
		svc:           NewListService(listRepo, pantryRepo, userRepo, notification.NewService(store, logger), logger),
		listRepo:      listRepo,
		pantryRepo:    pantryRepo,
		notifications: store,
	}
}

func (f *listServiceFixture) user(t *testing.T, username, email string) *models.User {
	user := &models.User{Username: username, Email: email, Password: "hashed"}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *listServiceFixture) product(t *testing.T, name string) *models.Product {
	product := &models.Product{Name: name}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

// ==================== LIST LIFECYCLE TESTS ====================

func TestListService_CreateList_ResolvesName(t *testing.T) {
	f := setupListService(t)
	ctx := context.Background()
	alice := f.user(t, "alice", "alice@example.com")

	first, err := f.svc.CreateList(ctx, alice.ID, CreateListInput{Name: "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", first.Name)

	second, err := f.svc.CreateList(ctx, alice.ID, CreateListInput{Name: "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, "Groceries (1)", second.Name)
}

func TestListService_Purchase_SnapshotsAndMarks(t *testing.T) {
	f := setupListService(t)
	ctx := context.Background()
	alice := f.user(t, "alice", "alice@example.com")
	milk := f.product(t, "Milk")
	bread := f.product(t, "Bread")

	list, err := f.svc.CreateList(ctx, alice.ID, CreateListInput{Name: "Groceries"})
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, alice.ID, alice.Email, list.ID, CreateItemInput{ProductID: milk.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, alice.ID, alice.Email, list.ID, CreateItemInput{ProductID: bread.ID, Quantity: 1})
	require.NoError(t, err)

	purchase, err := f.svc.Purchase(ctx, alice.ID, alice.Email, list.ID, models.Metadata{"store": "market"})
	require.NoError(t, err)
	assert.Len(t, purchase.Items, 2)

	items, _, err := f.svc.ListItems(ctx, alice.ID, alice.Email, list.ID, repository.ListItemFilter{Limit: 10})
	require.NoError(t, err)
	for _, item := range items {
		assert.True(t, item.Purchased)
	}
}

func TestListService_Purchase_TwiceCreatesTwoSnapshots(t *testing.T) {
	f := setupListService(t)
	ctx := context.Background()
	alice := f.user(t, "alice", "alice@example.com")
	milk := f.product(t, "Milk")

	list, err := f.svc.CreateList(ctx, alice.ID, CreateListInput{Name: "Groceries"})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, alice.ID, alice.Email, list.ID, CreateItemInput{ProductID: milk.ID, Quantity: 1})
	require.NoError(t, err)

	first, err := f.svc.Purchase(ctx, alice.ID, alice.Email, list.ID, nil)
	require.NoError(t, err)
	second, err := f.svc.Purchase(ctx, alice.ID, alice.Email, list.ID, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.Purchase{}).Where("list_id = ?", list.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestListService_Reset_PreservesHistory(t *testing.T) {
	f := setupListService(t)
	ctx := context.Background()
	alice := f.user(t, "alice", "alice@example.com")
	milk := f.product(t, "Milk")

	list, err := f.svc.CreateList(ctx, alice.ID, CreateListInput{Name: "Groceries"})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, alice.ID, alice.Email, list.ID, CreateItemInput{ProductID: milk.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.svc.Purchase(ctx, alice.ID, alice.Email, list.ID, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(ctx, alice.ID, alice.Email, list.ID))

	items, _, err := f.svc.ListItems(ctx, alice.ID, alice.Email, list.ID, repository.ListItemFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Purchased)

	var count int64
	require.NoError(t, f.db.Model(&models.Purchase{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// ==================== SHARING TESTS ====================

func TestListService_Share_GranteeGainsAccess(t *testing.T) {
	f := setupListService(t)
	ctx := context.Background()
	alice := f.user(t, "alice", "alice@example.com")
	bob := f.user(t, "bob", "bob@example.com")

	list, err := f.svc.CreateList(ctx, alice.ID, CreateListInput{Name: "Groceries"})
	require.NoError(t, err)

	// Before the share, bob cannot even see the list
	_, err = f.svc.GetList(ctx, bob.ID, bob.Email, list.ID)
	assert.ErrorIs(t, err, repository.ErrListNotFound)

	share, err := f.svc.ShareList(ctx, alice.ID, list.ID, bob.Email)
	require.NoError(t, err)
	require.NotNil(t, share.UserID)
	assert.Equal(t, bob.ID, *share.UserID)

	got, err := f.svc.GetList(ctx, bob.ID, bob.Email, list.ID)
	require.NoError(t, err)
	assert.Equal(t, list.ID, got.ID)

	// The grantee got a notification
	records, err := f.notifications.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, notification.TypeListShared, records[0].Type)
}

func TestListService_Revoke_AccessBecomesNotFound(t *testing.T) {
	f := setupListService(t)
	ctx := context.Background()
	alice := f.user(t, "alice", "alice@example.com")
	bob := f.user(t, "bob", "bob@example.com")

	list, err := f.svc.CreateList(ctx, alice.ID, CreateListInput{Name: "Groceries"})
	require.NoError(t, err)
	_, err = f.svc.ShareList(ctx, alice.ID, list.ID, bob.Email)
	require.NoError(t, err)

	require.NoError(t, f.svc.RevokeShare(ctx, alice.ID, list.ID, bob.ID))

	// Denied access is indistinguishable from a missing list
	_, err = f.svc.GetList(ctx, bob.ID, bob.Email, list.ID)
	assert.ErrorIs(t, err, repository.ErrListNotFound)
}

func TestListService_Share_NonOwnerDenied(t *testing.T) {
	f := setupListService(t)
	ctx := context.Background()
	alice := f.user(t, "alice", "alice@example.com")
	bob := f.user(t, "bob", "bob@example.com")
	carol := f.user(t, "carol", "carol@example.com")

	list, err := f.svc.CreateList(ctx, alice.ID, CreateListInput{Name: "Groceries"})
	require.NoError(t, err)
	_, err = f.svc.ShareList(ctx, alice.ID, list.ID, bob.Email)
	require.NoError(t, err)

	// A grantee cannot grant further access
	_, err = f.svc.ShareList(ctx, bob.ID, list.ID, carol.Email)
	assert.ErrorIs(t, err, repository.ErrListNotFound)
}

// ==================== ITEM TESTS ====================

func TestListService_UpdateItem_LastToggleCompletesList(t *testing.T) {
	f := setupListService(t)
	ctx := context.Background()
	alice := f.user(t, "alice", "alice@example.com")
	milk := f.product(t, "Milk")

	list, err := f.svc.CreateList(ctx, alice.ID, CreateListInput{Name: "Groceries"})
	require.NoError(t, err)
	item, err := f.svc.AddItem(ctx, alice.ID, alice.Email, list.ID, CreateItemInput{ProductID: milk.ID, Quantity: 1})
	require.NoError(t, err)

	purchased := true
	_, err = f.svc.UpdateItem(ctx, alice.ID, alice.Email, list.ID, item.ID, UpdateItemInput{Purchased: &purchased})
	require.NoError(t, err)

	// The owner's log carries a completion entry
	records, err := f.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, notification.TypeListCompleted, records[0].Type)
}

func TestListService_MoveToPantry(t *testing.T) {
	f := setupListService(t)
	ctx := context.Background()
	alice := f.user(t, "alice", "alice@example.com")
	bob := f.user(t, "bob", "bob@example.com")
	milk := f.product(t, "Milk")

	list, err := f.svc.CreateList(ctx, alice.ID, CreateListInput{Name: "Groceries"})
	require.NoError(t, err)
	item, err := f.svc.AddItem(ctx, alice.ID, alice.Email, list.ID, CreateItemInput{ProductID: milk.ID, Quantity: 2})
	require.NoError(t, err)

	purchased := true
	_, err = f.svc.UpdateItem(ctx, alice.ID, alice.Email, list.ID, item.ID, UpdateItemInput{Purchased: &purchased})
	require.NoError(t, err)

	pantry := &models.Pantry{Name: "Kitchen", OwnerID: alice.ID}
	require.NoError(t, f.db.Create(pantry).Error)

	// Someone else's pantry reads as missing
	theirs := &models.Pantry{Name: "Kitchen", OwnerID: bob.ID}
	require.NoError(t, f.db.Create(theirs).Error)
	_, err = f.svc.MoveToPantry(ctx, alice.ID, alice.Email, list.ID, theirs.ID)
	assert.ErrorIs(t, err, repository.ErrPantryNotFound)

	moved, err := f.svc.MoveToPantry(ctx, alice.ID, alice.Email, list.ID, pantry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	var stock models.PantryItem
	require.NoError(t, f.db.Where("pantry_id = ?", pantry.ID).First(&stock).Error)
	assert.EqualValues(t, 2, stock.Quantity)
}
