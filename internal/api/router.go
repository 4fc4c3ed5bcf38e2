package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/despensa-app/backend-go/internal/config"
	"github.com/despensa-app/backend-go/internal/handler"
	"github.com/despensa-app/backend-go/internal/middleware"
)

// RouterDeps bundles everything SetupRouter wires together.
type RouterDeps struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Lists         *handler.ListHandler
	Pantries      *handler.PantryHandler
	Products      *handler.ProductHandler
	Categories    *handler.CategoryHandler
	Purchases     *handler.PurchaseHandler
	Notifications *handler.NotificationHandler

	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    middleware.RateLimiter
	Logger         *slog.Logger
}

func SetupRouter(cfg *config.Config, deps RouterDeps) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies(nil)

	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Metrics())

	// Public routes
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes (Public)
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", deps.Auth.Register)
		authGroup.POST("/login", deps.Auth.Login)
		authGroup.POST("/refresh", deps.Auth.RefreshToken)
		authGroup.POST("/logout", deps.Auth.Logout)
	}

	// Protected API routes
	api := r.Group("/api")
	api.Use(deps.AuthMiddleware.RequireAuth())
	api.Use(middleware.Limit(deps.RateLimiter, deps.Logger))
	{
		// Profile
		api.GET("/me", deps.Users.GetProfile)
		api.PUT("/me", deps.Users.UpdateProfile)
		api.PUT("/me/password", deps.Users.ChangePassword)
		api.DELETE("/me", deps.Users.DeleteAccount)

		// Shopping lists
		api.POST("/shopping-lists", deps.Lists.CreateList)
		api.GET("/shopping-lists", deps.Lists.ListLists)
		api.GET("/shopping-lists/:id", deps.Lists.GetList)
		api.PUT("/shopping-lists/:id", deps.Lists.UpdateList)
		api.DELETE("/shopping-lists/:id", deps.Lists.DeleteList)

		api.POST("/shopping-lists/:id/share", deps.Lists.ShareList)
		api.GET("/shopping-lists/:id/shared-users", deps.Lists.ListShares)
		api.DELETE("/shopping-lists/:id/share/:userId", deps.Lists.RevokeShare)

		api.POST("/shopping-lists/:id/items", deps.Lists.AddItem)
		api.GET("/shopping-lists/:id/items", deps.Lists.ListItems)
		api.GET("/shopping-lists/:id/items/:itemId", deps.Lists.GetItem)
		api.PUT("/shopping-lists/:id/items/:itemId", deps.Lists.UpdateItem)
		api.DELETE("/shopping-lists/:id/items/:itemId", deps.Lists.DeleteItem)

		api.POST("/shopping-lists/:id/purchase", deps.Lists.Purchase)
		api.POST("/shopping-lists/:id/reset", deps.Lists.Reset)
		api.POST("/shopping-lists/:id/move-to-pantry", deps.Lists.MoveToPantry)

		// Pantries
		api.POST("/pantries", deps.Pantries.CreatePantry)
		api.GET("/pantries", deps.Pantries.ListPantries)
		api.GET("/pantries/:id", deps.Pantries.GetPantry)
		api.PUT("/pantries/:id", deps.Pantries.UpdatePantry)
		api.DELETE("/pantries/:id", deps.Pantries.DeletePantry)

		api.POST("/pantries/:id/share", deps.Pantries.SharePantry)
		api.GET("/pantries/:id/shared-users", deps.Pantries.ListShares)
		api.DELETE("/pantries/:id/share/:userId", deps.Pantries.RevokeShare)

		api.POST("/pantries/:id/items", deps.Pantries.AddItem)
		api.GET("/pantries/:id/items", deps.Pantries.ListItems)
		api.GET("/pantries/:id/items/:itemId", deps.Pantries.GetItem)
		api.PUT("/pantries/:id/items/:itemId", deps.Pantries.UpdateItem)
		api.DELETE("/pantries/:id/items/:itemId", deps.Pantries.DeleteItem)

		// Catalog
		api.POST("/products", deps.Products.CreateProduct)
		api.GET("/products", deps.Products.ListProducts)
		api.GET("/products/:id", deps.Products.GetProduct)
		api.PUT("/products/:id", deps.Products.UpdateProduct)
		api.DELETE("/products/:id", deps.Products.DeleteProduct)

		api.POST("/categories", deps.Categories.CreateCategory)
		api.GET("/categories", deps.Categories.ListCategories)
		api.GET("/categories/:id", deps.Categories.GetCategory)
		api.PUT("/categories/:id", deps.Categories.UpdateCategory)
		api.DELETE("/categories/:id", deps.Categories.DeleteCategory)

		// Purchase history
		api.GET("/purchases", deps.Purchases.ListPurchases)
		api.GET("/purchases/:id", deps.Purchases.GetPurchase)
		api.POST("/purchases/:id/restore", deps.Purchases.Restore)

		// Notification log
		api.GET("/notifications", deps.Notifications.ListNotifications)
		api.POST("/notifications/:id/read", deps.Notifications.MarkRead)
		api.POST("/notifications/read-all", deps.Notifications.MarkAllRead)
		api.DELETE("/notifications/read", deps.Notifications.ClearRead)
		api.DELETE("/notifications/:id", deps.Notifications.DeleteNotification)
		api.DELETE("/notifications", deps.Notifications.Clear)
	}

	return r
}
