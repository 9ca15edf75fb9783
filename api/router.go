package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"go-shop/api/handlers"
	"go-shop/api/middleware"
	"go-shop/internal/auth"
	"go-shop/internal/models"
	"go-shop/internal/services"
)

type Deps struct {
	Users    *services.UserService
	Products *services.ProductService
	Carts    *services.CartService
	Orders   *services.OrderService
	Guard    *auth.Guard
	Log      *zap.Logger

	// Env and Database are reported by the health check.
	Env      string
	Database string
}

func NewRouter(d Deps) *gin.Engine {
	binding.Validator = requestValidator{}

	userHandler := handlers.NewUserHandler(d.Users)
	productHandler := handlers.NewProductHandler(d.Products)
	cartHandler := handlers.NewCartHandler(d.Carts)
	orderHandler := handlers.NewOrderHandler(d.Orders)
	healthHandler := handlers.NewHealthHandler(d.Env, d.Database)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.CORS())

	authed := middleware.RequireAuth(d.Guard)
	adminOnly := middleware.RequireRole(d.Guard, models.RoleAdmin)

	// API Routes
	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.HealthCheck)

		// Account routes
		api.POST("/register", userHandler.Register)
		api.POST("/login", userHandler.Login)
		api.GET("/me", authed, userHandler.Me)

		// Product routes
		products := api.Group("/products")
		{
			products.GET("", productHandler.GetAllProducts)
			products.GET("/:id", productHandler.GetProductByID)
			products.GET("/code/:code", productHandler.GetProductByCode)
			products.POST("", authed, adminOnly, productHandler.CreateProduct)
			products.PUT("/:id", authed, adminOnly, productHandler.UpdateProduct)
			products.DELETE("/:id", authed, adminOnly, productHandler.DeleteProduct)
		}

		// Cart routes
		cart := api.Group("/cart", authed)
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddToCart)
			cart.PUT("/items/:id", cartHandler.UpdateCartItem)
			cart.DELETE("/items/:id", cartHandler.RemoveCartItem)
			cart.POST("/checkout", orderHandler.Checkout)
		}

		// Order routes
		orders := api.Group("/orders", authed)
		{
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/stats", adminOnly, orderHandler.GetStats)
			orders.GET("/:id", orderHandler.GetOrder)
		}
	}

	// Debug endpoints in development
	if gin.Mode() != gin.ReleaseMode {
		router.GET("/debug/metrics", healthHandler.Metrics)
	}

	return router
}
