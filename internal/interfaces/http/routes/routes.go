// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-engine/internal/config"
	"github.com/your-org/storefront-engine/internal/domain/catalog"
	"github.com/your-org/storefront-engine/internal/domain/checkout"
	"github.com/your-org/storefront-engine/internal/domain/coupon"
	"github.com/your-org/storefront-engine/internal/domain/delivery"
	"github.com/your-org/storefront-engine/internal/domain/gating"
	"github.com/your-org/storefront-engine/internal/domain/order"
	"github.com/your-org/storefront-engine/internal/domain/user"
	"github.com/your-org/storefront-engine/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-engine/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires services by explicit construction and registers all
// API routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	snapshots := catalog.NewSnapshotReader(db)
	users := user.NewService(db, cfg)
	coupons := coupon.NewService(db, log)
	deliveries := delivery.NewService(db, cfg, log)
	orders := order.NewService(db, log)
	provider := gating.NewDiscordProvider(cfg)
	gate := gating.NewEvaluator(db, redisClient, provider, cfg, log)
	checkouts := checkout.NewService(db, cfg, log, snapshots, coupons, gate, deliveries, users)

	authHandler := handlers.NewAuthHandler(users, cfg)
	catalogHandler := handlers.NewCatalogHandler(snapshots)
	checkoutHandler := handlers.NewCheckoutHandler(checkouts)
	orderHandler := handlers.NewOrderHandler(orders)
	deliveryHandler := handlers.NewDeliveryHandler(deliveries)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/discord/link", authHandler.LinkDiscord)
			protected.DELETE("/discord/link", authHandler.UnlinkDiscord)
		}
	}

	products := rg.Group("/products")
	{
		products.GET("", catalogHandler.ListProducts)
		products.GET("/:id", catalogHandler.GetProduct)
	}

	protected := rg.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.POST("/checkout", checkoutHandler.Checkout)
		protected.POST("/coupons/validate", checkoutHandler.ValidateCoupon)

		protected.GET("/orders", orderHandler.ListOrders)
		protected.GET("/orders/:id", orderHandler.GetOrder)
		protected.PUT("/orders/:id/cancel", orderHandler.CancelOrder)

		protected.GET("/entitlements", deliveryHandler.ListEntitlements)
		protected.POST("/entitlements/:id/download", deliveryHandler.RequestDownload)
	}

	// Signed URLs authenticate themselves; no JWT required.
	rg.GET("/delivery/*key", deliveryHandler.ServeDelivery)
}
