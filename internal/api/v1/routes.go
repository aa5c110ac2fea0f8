package v1

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/divinecoid/sabkabazaar/internal/service"
	"github.com/divinecoid/sabkabazaar/pkg/middleware"
)

// Deps are the services behind the routes. Payments may be nil, in which
// case the gateway routes are not registered.
type Deps struct {
	Auth     *service.AuthService
	Cart     *service.CartService
	Orders   *service.OrderService
	Payments *service.PaymentService
	Products *service.ProductService
	Reviews  *service.ReviewService
	DB       Pinger
	Logger   *slog.Logger

	CookieSecure bool
}

func RegisterRoutes(rg *gin.RouterGroup, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Initialize handlers
	authHandler := NewAuthHandler(d.Auth, d.CookieSecure, logger)
	cartHandler := NewCartHandler(d.Cart, logger)
	orderHandler := NewOrderHandler(d.Orders, logger)
	productHandler := NewProductHandler(d.Products, logger)
	reviewHandler := NewReviewHandler(d.Reviews, logger)
	healthHandler := NewHealthHandler(d.DB, logger)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(d.Auth, logger, Deny)
	bearer := authMiddleware.BearerAuth()

	rg.GET("/healthz", healthHandler.Health)

	// Auth routes
	rg.POST("/signup", authHandler.Signup)
	rg.POST("/login", authHandler.Login)
	rg.POST("/logout", authMiddleware.SessionAuth(), authHandler.Logout)
	rg.GET("/me", authMiddleware.OptionalAuth(), authHandler.Me)
	me := rg.Group("/me", bearer)
	{
		me.PUT("/address", authHandler.UpdateAddress)
		me.PUT("/password", authHandler.ChangePassword)
	}

	// Catalog routes
	products := rg.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
		products.GET("/:id/reviews", reviewHandler.List)
		products.POST("/:id/reviews", bearer, reviewHandler.Create)
		products.POST("/import", bearer, authMiddleware.RequireAdmin(), productHandler.Import)
	}
	reviews := rg.Group("/reviews", bearer)
	{
		reviews.PUT("/:id", reviewHandler.Update)
		reviews.DELETE("/:id", reviewHandler.Delete)
	}

	cart := rg.Group("/cart", bearer)
	{
		cart.GET("", cartHandler.List)
		cart.POST("", cartHandler.Add)
		cart.DELETE("", cartHandler.Clear)
		cart.PUT("/:id", cartHandler.Update)
		cart.DELETE("/:id", cartHandler.Remove)
	}

	orders := rg.Group("/orders", bearer)
	{
		orders.POST("", orderHandler.Create)
		orders.GET("", orderHandler.ListMine)
		orders.GET("/all", authMiddleware.RequireAdmin(), orderHandler.ListAll)
		orders.GET("/:id", orderHandler.Get)
		orders.PUT("/:id/status", authMiddleware.RequireAdmin(), orderHandler.UpdateStatus)
		orders.POST("/:id/cancel", orderHandler.Cancel)
	}

	if d.Payments != nil {
		paymentHandler := NewPaymentHandler(d.Payments, logger)
		rg.GET("/razorpay-key", paymentHandler.Key)
		rg.POST("/create-razorpay-order", paymentHandler.CreateOrder)
		rg.POST("/razorpay/verify", bearer, paymentHandler.Verify)
	} else {
		logger.Warn("razorpay credentials not configured, payment routes disabled")
	}
}
