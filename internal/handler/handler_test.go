package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/despensa-app/backend-go/internal/api"
	"github.com/despensa-app/backend-go/internal/config"
	"github.com/despensa-app/backend-go/internal/database/models"
	"github.com/despensa-app/backend-go/internal/database/repository"
	"github.com/despensa-app/backend-go/internal/database/service"
	"github.com/despensa-app/backend-go/internal/handler"
	"github.com/despensa-app/backend-go/internal/middleware"
	"github.com/despensa-app/backend-go/internal/notification"
)

type apiFixture struct {
	db     *gorm.DB
	engine *gin.Engine
}

// setupAPI wires the full HTTP stack against an in-memory database, so tests
// exercise routing, auth middleware and error mapping end to end.
func setupAPI(t *testing.T) *apiFixture {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.RefreshToken{},
		&models.Category{}, &models.Product{},
		&models.ShoppingList{}, &models.ListItem{}, &models.ListShare{},
		&models.Pantry{}, &models.PantryItem{}, &models.PantryShare{},
		&models.Purchase{}, &models.PurchaseItem{},
	))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		JWTSecret:              "test-secret",
		AccessTokenExpiration:  900,
		RefreshTokenExpiration: 604800,
		CORSAllowedOrigins:     []string{"*"},
	}

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	listRepo := repository.NewListRepository(db)
	pantryRepo := repository.NewPantryRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	notificationStore := notification.NewMemoryStore(notification.DefaultCapacity)
	notifications := notification.NewService(notificationStore, logger)

	authService := service.NewAuthService(userRepo, refreshTokenRepo, listRepo, pantryRepo, cfg, logger)
	userService := service.NewUserService(userRepo, refreshTokenRepo, logger)
	listService := service.NewListService(listRepo, pantryRepo, userRepo, notifications, logger)
	pantryService := service.NewPantryService(pantryRepo, userRepo, notifications, logger)
	productService := service.NewProductService(productRepo, categoryRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	purchaseService := service.NewPurchaseService(purchaseRepo, listRepo, logger)

	deps := api.RouterDeps{
		Auth:           handler.NewAuthHandler(authService, logger),
		Users:          handler.NewUserHandler(userService, logger),
		Lists:          handler.NewListHandler(listService, logger),
		Pantries:       handler.NewPantryHandler(pantryService, logger),
		Products:       handler.NewProductHandler(productService, logger),
		Categories:     handler.NewCategoryHandler(categoryService, logger),
		Purchases:      handler.NewPurchaseHandler(purchaseService, logger),
		Notifications:  handler.NewNotificationHandler(notificationStore, logger),
		AuthMiddleware: middleware.NewAuthMiddleware(authService, logger),
		RateLimiter:    middleware.NewNoOpRateLimiter(logger),
		Logger:         logger,
	}

	return &apiFixture{db: db, engine: api.SetupRouter(cfg, deps)}
}

func (f *apiFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its token and id.
func (f *apiFixture) register(t *testing.T, username, email string) (string, uint) {
	w := f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken, resp.User.ID
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func TestAuthRoutes(t *testing.T) {
	f := setupAPI(t)

	f.register(t, "alice", "alice@example.com")

	w := f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice2", "email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "bob", "email": "bob@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Protected routes reject missing and garbage tokens
	w = f.do(http.MethodGet, "/api/shopping-lists", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = f.do(http.MethodGet, "/api/shopping-lists", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShoppingListRoutes(t *testing.T) {
	f := setupAPI(t)
	alice, _ := f.register(t, "alice", "alice@example.com")
	bob, _ := f.register(t, "bob", "bob@example.com")

	w := f.do(http.MethodPost, "/api/shopping-lists", alice, gin.H{"name": "Groceries"})
	require.Equal(t, http.StatusCreated, w.Code)
	var first struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	decodeBody(t, w, &first)
	assert.Equal(t, "Groceries", first.Name)

	// A colliding name gets the next free suffix
	w = f.do(http.MethodPost, "/api/shopping-lists", alice, gin.H{"name": "Groceries"})
	require.Equal(t, http.StatusCreated, w.Code)
	var second struct {
		Name string `json:"name"`
	}
	decodeBody(t, w, &second)
	assert.Equal(t, "Groceries (1)", second.Name)

	w = f.do(http.MethodGet, "/api/shopping-lists", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data       []json.RawMessage `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	decodeBody(t, w, &page)
	assert.Len(t, page.Data, 2)
	assert.EqualValues(t, 2, page.Pagination.Total)

	w = f.do(http.MethodGet, "/api/shopping-lists/9999", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/shopping-lists/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/shopping-lists", alice, gin.H{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Ownership is not leaked: a stranger sees not-found, not forbidden
	w = f.do(http.MethodPut, fmt.Sprintf("/api/shopping-lists/%d", first.ID), bob, gin.H{"recurring": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShareRoutes(t *testing.T) {
	f := setupAPI(t)
	alice, _ := f.register(t, "alice", "alice@example.com")
	bob, bobID := f.register(t, "bob", "bob@example.com")

	w := f.do(http.MethodPost, "/api/shopping-lists", alice, gin.H{"name": "Groceries"})
	require.Equal(t, http.StatusCreated, w.Code)
	var list struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &list)

	sharePath := fmt.Sprintf("/api/shopping-lists/%d/share", list.ID)
	w = f.do(http.MethodPost, sharePath, alice, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodPost, sharePath, alice, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodGet, fmt.Sprintf("/api/shopping-lists/%d/shared-users", list.ID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var shares struct {
		Shares []struct {
			Email string `json:"email"`
		} `json:"shares"`
	}
	decodeBody(t, w, &shares)
	require.Len(t, shares.Shares, 1)
	assert.Equal(t, "bob@example.com", shares.Shares[0].Email)

	// The grantee can read the list
	w = f.do(http.MethodGet, fmt.Sprintf("/api/shopping-lists/%d", list.ID), bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	revokePath := fmt.Sprintf("/api/shopping-lists/%d/share/%d", list.ID, bobID)
	w = f.do(http.MethodDelete, revokePath, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, fmt.Sprintf("/api/shopping-lists/%d", list.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodDelete, revokePath, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemAndPurchaseRoutes(t *testing.T) {
	f := setupAPI(t)
	alice, _ := f.register(t, "alice", "alice@example.com")

	w := f.do(http.MethodPost, "/api/products", alice, gin.H{"name": "Milk"})
	require.Equal(t, http.StatusCreated, w.Code)
	var product struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &product)

	w = f.do(http.MethodPost, "/api/shopping-lists", alice, gin.H{"name": "Groceries"})
	require.Equal(t, http.StatusCreated, w.Code)
	var list struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &list)

	itemsPath := fmt.Sprintf("/api/shopping-lists/%d/items", list.ID)
	w = f.do(http.MethodPost, itemsPath, alice, gin.H{"product_id": product.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	var item struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &item)

	// Zero quantity fails binding
	w = f.do(http.MethodPost, itemsPath, alice, gin.H{"product_id": product.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, fmt.Sprintf("%s/%d", itemsPath, item.ID), alice, gin.H{"purchased": true})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Purchased bool `json:"purchased"`
	}
	decodeBody(t, w, &updated)
	assert.True(t, updated.Purchased)

	w = f.do(http.MethodPost, fmt.Sprintf("/api/shopping-lists/%d/purchase", list.ID), alice, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var purchase struct {
		ID       uint   `json:"id"`
		ListName string `json:"list_name"`
	}
	decodeBody(t, w, &purchase)
	assert.Equal(t, "Groceries", purchase.ListName)

	w = f.do(http.MethodPost, fmt.Sprintf("/api/purchases/%d/restore", purchase.ID), alice, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var restored struct {
		Name string `json:"name"`
	}
	decodeBody(t, w, &restored)
	assert.Equal(t, "Groceries (1)", restored.Name)
}

func TestPantryRoutes(t *testing.T) {
	f := setupAPI(t)
	alice, _ := f.register(t, "alice", "alice@example.com")

	w := f.do(http.MethodPost, "/api/pantries", alice, gin.H{"name": "Kitchen"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodPost, "/api/pantries", alice, gin.H{"name": "Kitchen"})
	require.Equal(t, http.StatusCreated, w.Code)
	var pantry struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	decodeBody(t, w, &pantry)
	assert.Equal(t, "Kitchen (1)", pantry.Name)

	w = f.do(http.MethodPost, fmt.Sprintf("/api/pantries/%d/share", pantry.ID), alice, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodGet, "/api/pantries/9999", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogRoutes(t *testing.T) {
	f := setupAPI(t)
	alice, _ := f.register(t, "alice", "alice@example.com")

	w := f.do(http.MethodPost, "/api/categories", alice, gin.H{"name": "Dairy"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Category names are unique case-insensitively
	w = f.do(http.MethodPost, "/api/categories", alice, gin.H{"name": "dairy"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// A product cannot reference a missing category
	w = f.do(http.MethodPost, "/api/products", alice, gin.H{"name": "Milk", "category_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/products/9999", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserRoutes(t *testing.T) {
	f := setupAPI(t)
	alice, _ := f.register(t, "alice", "alice@example.com")

	w := f.do(http.MethodGet, "/api/me", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email string `json:"email"`
	}
	decodeBody(t, w, &me)
	assert.Equal(t, "alice@example.com", me.Email)

	w = f.do(http.MethodPut, "/api/me/password", alice, gin.H{
		"current_password": "wrong", "new_password": "newpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotificationRoutes(t *testing.T) {
	f := setupAPI(t)
	alice, _ := f.register(t, "alice", "alice@example.com")
	bob, _ := f.register(t, "bob", "bob@example.com")

	w := f.do(http.MethodPost, "/api/shopping-lists", alice, gin.H{"name": "Groceries"})
	require.Equal(t, http.StatusCreated, w.Code)
	var list struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &list)

	w = f.do(http.MethodPost, fmt.Sprintf("/api/shopping-lists/%d/share", list.ID), alice, gin.H{"email": "bob@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodGet, "/api/notifications", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var log struct {
		Notifications []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"notifications"`
		Unread int `json:"unread"`
	}
	decodeBody(t, w, &log)
	require.Len(t, log.Notifications, 1)
	assert.Equal(t, 1, log.Unread)

	w = f.do(http.MethodPost, fmt.Sprintf("/api/notifications/%s/read", log.Notifications[0].ID), bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPost, "/api/notifications/missing/read", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
