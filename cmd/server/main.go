package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/despensa-app/backend-go/internal/api"
	"github.com/despensa-app/backend-go/internal/config"
	"github.com/despensa-app/backend-go/internal/database"
	"github.com/despensa-app/backend-go/internal/database/repository"
	"github.com/despensa-app/backend-go/internal/database/service"
	"github.com/despensa-app/backend-go/internal/handler"
	"github.com/despensa-app/backend-go/internal/logger"
	"github.com/despensa-app/backend-go/internal/middleware"
	"github.com/despensa-app/backend-go/internal/notification"
	"github.com/despensa-app/backend-go/internal/worker"
)

func main() {
	// 1. Config
	cfg := config.LoadConfig()

	// 2. Logger
	appLogger := logger.New(cfg)

	appLogger.Info("🚀 [Go] Starting API server...",
		"environment", cfg.AppEnv,
	)

	// 3. Connect to Database
	if err := database.ConnectDatabase(cfg, appLogger); err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		os.Exit(1)
	}

	db := database.GetDatabase()

	// 4. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	listRepo := repository.NewListRepository(db)
	pantryRepo := repository.NewPantryRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	// 5. Initialize Redis Client
	redisClient, err := database.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis", "error", err)
		appLogger.Info("💡 Notifications will be kept in memory and rate limiting disabled")
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close()
		}
	}()

	// 6. Notification log store
	var notificationStore notification.Store
	if redisClient != nil {
		notificationStore = notification.NewRedisStore(redisClient, int(cfg.NotificationCapacity), appLogger)
	} else {
		notificationStore = notification.NewMemoryStore(int(cfg.NotificationCapacity))
	}
	notifications := notification.NewService(notificationStore, appLogger)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, listRepo, pantryRepo, cfg, appLogger)
	userService := service.NewUserService(userRepo, refreshTokenRepo, appLogger)
	listService := service.NewListService(listRepo, pantryRepo, userRepo, notifications, appLogger)
	pantryService := service.NewPantryService(pantryRepo, userRepo, notifications, appLogger)
	productService := service.NewProductService(productRepo, categoryRepo, appLogger)
	categoryService := service.NewCategoryService(categoryRepo, appLogger)
	purchaseService := service.NewPurchaseService(purchaseRepo, listRepo, appLogger)

	// 8. Initialize Handlers & Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService, appLogger)

	var rateLimiter middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewRateLimiter(redisClient, cfg.RateLimitPerMinute, appLogger)
	} else {
		rateLimiter = middleware.NewNoOpRateLimiter(appLogger)
	}

	deps := api.RouterDeps{
		Auth:           handler.NewAuthHandler(authService, appLogger),
		Users:          handler.NewUserHandler(userService, appLogger),
		Lists:          handler.NewListHandler(listService, appLogger),
		Pantries:       handler.NewPantryHandler(pantryService, appLogger),
		Products:       handler.NewProductHandler(productService, appLogger),
		Categories:     handler.NewCategoryHandler(categoryService, appLogger),
		Purchases:      handler.NewPurchaseHandler(purchaseService, appLogger),
		Notifications:  handler.NewNotificationHandler(notificationStore, appLogger),
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
		Logger:         appLogger,
	}

	// 9. Background maintenance
	pool := worker.NewPool(appLogger)
	pool.Periodic(time.Hour, func(ctx context.Context) {
		if err := refreshTokenRepo.DeleteExpiredTokens(); err != nil {
			appLogger.Error("❌ [Worker] Failed to prune expired tokens", "error", err)
		}
	})
	defer pool.Shutdown(10 * time.Second)

	// 10. Setup Router and start HTTP Server
	r := api.SetupRouter(cfg, deps)

	addr := fmt.Sprintf(":%s", cfg.ApiServicePort)
	appLogger.Info("🌍 [Go] HTTP Server running...", "port", addr)
	if err := r.Run(addr); err != nil {
		appLogger.Error("❌ HTTP Server failed to start", "error", err)
		os.Exit(1)
	}
}
