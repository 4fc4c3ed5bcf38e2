package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/despensa-app/backend-go/internal/config"
	"github.com/despensa-app/backend-go/internal/database/models"
	"github.com/despensa-app/backend-go/internal/database/repository"
)

func setupAuthService(t *testing.T) (AuthService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.RefreshToken{},
		&models.ShoppingList{}, &models.ListShare{},
		&models.Pantry{}, &models.PantryShare{},
	))

	cfg := &config.Config{
		JWTSecret:              "test-secret",
		AccessTokenExpiration:  900,
		RefreshTokenExpiration: 604800,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewRefreshTokenRepository(db),
		repository.NewListRepository(db),
		repository.NewPantryRepository(db),
		cfg,
		logger,
	)
	return svc, db
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := setupAuthService(t)

	user, tokens, err := svc.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	// Token claims round-trip
	userID, email, err := svc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, "alice@example.com", email)

	_, _, err = svc.Login("alice@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login("alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, _, err := svc.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Register("alice2", "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, _, err = svc.Register("alice", "other@example.com", "password123")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, tokens, err := svc.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

	// The old refresh token is revoked after rotation
	_, err = svc.RefreshToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Register_LinksPendingShares(t *testing.T) {
	svc, db := setupAuthService(t)

	owner := &models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(owner).Error)
	list := &models.ShoppingList{Name: "Groceries", OwnerID: owner.ID}
	require.NoError(t, db.Create(list).Error)
	pantry := &models.Pantry{Name: "Kitchen", OwnerID: owner.ID}
	require.NoError(t, db.Create(pantry).Error)

	// Shares granted before the grantee has an account
	require.NoError(t, db.Create(&models.ListShare{ListID: list.ID, Email: "bob@example.com"}).Error)
	require.NoError(t, db.Create(&models.PantryShare{PantryID: pantry.ID, Email: "bob@example.com"}).Error)

	bob, _, err := svc.Register("bob", "bob@example.com", "password123")
	require.NoError(t, err)

	var listShare models.ListShare
	require.NoError(t, db.Where("list_id = ?", list.ID).First(&listShare).Error)
	require.NotNil(t, listShare.UserID)
	assert.Equal(t, bob.ID, *listShare.UserID)

	var pantryShare models.PantryShare
	require.NoError(t, db.Where("pantry_id = ?", pantry.ID).First(&pantryShare).Error)
	require.NotNil(t, pantryShare.UserID)
	assert.Equal(t, bob.ID, *pantryShare.UserID)

	// The owner can now revoke by the resolved user id
	listRepo := repository.NewListRepository(db)
	require.NoError(t, listRepo.DeleteShareByUser(list.ID, bob.ID))
	ok, err := listRepo.HasAccess(list.ID, bob.ID, bob.Email)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_ValidateAccessToken_Garbage(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, _, err := svc.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
