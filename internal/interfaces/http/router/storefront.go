package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sadsod/storefront/internal/interfaces/http/handler"
	"github.com/sadsod/storefront/internal/interfaces/http/middleware"
)

// Handlers bundles the HTTP handlers served by the storefront
type Handlers struct {
	Catalog       *handler.CatalogHandler
	Cart          *handler.CartHandler
	Checkout      *handler.CheckoutHandler
	Shipping      *handler.ShippingHandler
	Auth          *handler.AuthHandler
	AdminProducts *handler.AdminProductHandler
	AdminOrders   *handler.AdminOrderHandler
	Health        *handler.HealthHandler
}

// Config controls how the storefront routes are protected
type Config struct {
	// JWT guards the admin group; the login path is added to SkipPaths
	JWT middleware.JWTMiddlewareConfig
	// OrderLimiter throttles checkout and order tracking per client; nil disables
	OrderLimiter *middleware.RateLimiter
	// LoginLimiter throttles admin sign-in per client; nil disables
	LoginLimiter *middleware.RateLimiter
}

// Mount registers /health and every /api/v1 route on the engine
func Mount(engine *gin.Engine, h Handlers, cfg Config) *Router {
	if h.Health != nil {
		engine.GET("/health", h.Health.Check)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(StorefrontRoutes(h, cfg)).
		Register(AdminRoutes(h, cfg, r.BasePath()))
	r.Setup()
	return r
}

// StorefrontRoutes builds the public shopper routes
func StorefrontRoutes(h Handlers, cfg Config) *DomainGroup {
	orderLimit := limit(cfg.OrderLimiter)

	shop := NewDomainGroup("storefront", "")
	shop.GET("/home", h.Catalog.Home)
	shop.GET("/products", h.Catalog.List)
	shop.GET("/products/:slug", h.Catalog.GetBySlug)
	shop.GET("/categories", h.Catalog.Categories)

	shop.GET("/cart", h.Cart.View)
	shop.PUT("/cart", h.Cart.Update)
	shop.GET("/cart/count", h.Cart.Count)
	shop.POST("/cart/items", h.Cart.Add)
	shop.DELETE("/cart/items/:id", h.Cart.Remove)

	shop.POST("/checkout", orderLimit, h.Checkout.PlaceOrder)
	shop.POST("/track", orderLimit, h.Checkout.Track)

	shop.GET("/regions", h.Shipping.Regions)
	shop.GET("/regions/sub-regions", h.Shipping.SubRegions)
	shop.GET("/shipping/quote", h.Shipping.Quote)
	return shop
}

// AdminRoutes builds the back-office routes behind JWT authentication
func AdminRoutes(h Handlers, cfg Config, basePath string) *DomainGroup {
	jwtCfg := cfg.JWT
	jwtCfg.SkipPaths = append([]string{basePath + "/admin/login"}, jwtCfg.SkipPaths...)

	admin := NewDomainGroup("admin", "/admin").Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	admin.POST("/login", limit(cfg.LoginLimiter), h.Auth.Login)
	admin.POST("/logout", h.Auth.Logout)
	admin.GET("/me", h.Auth.Me)
	admin.GET("/dashboard", h.AdminOrders.Dashboard)

	products := admin.Group("products", "/products")
	products.GET("", h.AdminProducts.List)
	products.POST("", h.AdminProducts.Create)
	products.POST("/image-upload-url", h.AdminProducts.ImageUploadURL)
	products.GET("/:id", h.AdminProducts.Get)
	products.PUT("/:id", h.AdminProducts.Update)
	products.DELETE("/:id", h.AdminProducts.Delete)

	orders := admin.Group("orders", "/orders")
	orders.GET("", h.AdminOrders.List)
	orders.GET("/statuses", h.AdminOrders.Statuses)
	orders.GET("/:id", h.AdminOrders.Get)
	orders.PUT("/:id/status", h.AdminOrders.UpdateStatus)

	shipping := admin.Group("shipping", "")
	shipping.GET("/shipping-rates", h.Shipping.ListRates)
	shipping.POST("/shipping-rates", h.Shipping.AddRate)
	shipping.DELETE("/shipping-rates/:id", h.Shipping.DeleteRate)
	shipping.GET("/sub-regions", h.Shipping.ListSubRegions)
	shipping.POST("/sub-regions", h.Shipping.AddSubRegion)
	shipping.DELETE("/sub-regions/:id", h.Shipping.DeleteSubRegion)
	return admin
}

func limit(limiter *middleware.RateLimiter) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(limiter)
}
