package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// Handlers bundles the handlers the API routes to
type Handlers struct {
	System        *handler.SystemHandler
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	ProductImport *handler.ProductImportHandler
	Image         *handler.ImageHandler
	Review        *handler.ReviewHandler
	Collection    *handler.CollectionHandler
	Promotion     *handler.PromotionHandler
	Cart          *handler.CartHandler
	Order         *handler.OrderHandler
	Customer      *handler.CustomerHandler
	Tag           *handler.TagHandler
	Report        *handler.ReportHandler
	Outbox        *handler.OutboxHandler
}

// Guards are the per-route access checks. User and Admin must be set;
// AuthLimit is nil when auth rate limiting is disabled.
type Guards struct {
	User      gin.HandlerFunc
	Admin     gin.HandlerFunc
	AuthLimit gin.HandlerFunc
}

func (g Guards) limited(h gin.HandlerFunc) []gin.HandlerFunc {
	if g.AuthLimit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{g.AuthLimit, h}
}

// RegisterStorefront registers every API domain on r
func RegisterStorefront(r *Router, h Handlers, g Guards) *Router {
	return r.
		Register(systemRoutes(h)).
		Register(authRoutes(h, g)).
		Register(storeRoutes(h, g)).
		Register(adminRoutes(h, g))
}

func systemRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("system", "").
		GET("/ping", h.System.Ping)
}

func authRoutes(h Handlers, g Guards) *DomainGroup {
	auth := NewDomainGroup("auth", "/auth")
	auth.Group("users", "/users").
		POST("", g.limited(h.Auth.Register)...).
		GET("/me", g.User, h.Auth.Me).
		PATCH("/me", g.User, h.Auth.UpdateMe).
		POST("/set_password", g.User, h.Auth.ChangePassword)
	auth.Group("jwt", "/jwt").
		POST("/create", g.limited(h.Auth.CreateToken)...).
		POST("/refresh", g.limited(h.Auth.RefreshToken)...)
	auth.POST("/logout", g.User, h.Auth.Logout)
	return auth
}

func storeRoutes(h Handlers, g Guards) *DomainGroup {
	store := NewDomainGroup("store", "/store")

	products := store.Group("products", "/products").
		GET("", h.Product.List).
		POST("", g.Admin, h.Product.Create).
		POST("/clear-inventory", g.Admin, h.Product.ClearInventory).
		POST("/import", g.Admin, h.ProductImport.Import).
		GET("/slug/:slug", h.Product.GetBySlug).
		GET("/:id", h.Product.GetByID).
		PUT("/:id", g.Admin, h.Product.Replace).
		PATCH("/:id", g.Admin, h.Product.Update).
		DELETE("/:id", g.Admin, h.Product.Delete).
		PUT("/:id/promotions", g.Admin, h.Product.SetPromotions)
	products.Group("images", "/:id/images").
		GET("", h.Image.List).
		POST("", g.Admin, h.Image.InitiateUpload).
		POST("/:image_id/confirm", g.Admin, h.Image.ConfirmUpload).
		DELETE("/:image_id", g.Admin, h.Image.Delete)
	products.Group("reviews", "/:id/reviews").
		GET("", h.Review.List).
		POST("", h.Review.Create).
		GET("/:review_id", h.Review.Get).
		PUT("/:review_id", g.User, h.Review.Replace).
		PATCH("/:review_id", g.User, h.Review.Update).
		DELETE("/:review_id", g.User, h.Review.Delete)

	store.Group("collections", "/collections").
		GET("", h.Collection.List).
		POST("", g.Admin, h.Collection.Create).
		GET("/:id", h.Collection.GetByID).
		PUT("/:id", g.Admin, h.Collection.Replace).
		PATCH("/:id", g.Admin, h.Collection.Update).
		DELETE("/:id", g.Admin, h.Collection.Delete)

	store.Group("promotions", "/promotions").
		GET("", h.Promotion.List).
		POST("", g.Admin, h.Promotion.Create).
		GET("/:id", h.Promotion.GetByID).
		PUT("/:id", g.Admin, h.Promotion.Update).
		DELETE("/:id", g.Admin, h.Promotion.Delete)

	store.Group("carts", "/carts").
		POST("", h.Cart.Create).
		GET("/:id", h.Cart.Get).
		DELETE("/:id", h.Cart.Delete).
		POST("/:id/items", h.Cart.AddItem).
		GET("/:id/items/:item_id", h.Cart.GetItem).
		PATCH("/:id/items/:item_id", h.Cart.UpdateItem).
		DELETE("/:id/items/:item_id", h.Cart.RemoveItem)

	store.Group("orders", "/orders").
		Use(g.User).
		GET("", h.Order.List).
		POST("", h.Order.Create).
		POST("/payment-status", g.Admin, h.Order.BulkPaymentStatus).
		GET("/:id", h.Order.Get).
		GET("/:id/invoice", h.Order.Invoice).
		PATCH("/:id", g.Admin, h.Order.Update).
		DELETE("/:id", g.Admin, h.Order.Delete)

	customers := store.Group("customers", "/customers").Use(g.User)
	customers.
		GET("/me", h.Customer.GetMe).
		PATCH("/me", h.Customer.UpdateMe).
		GET("/me/address", h.Customer.GetMyAddress).
		PUT("/me/address", h.Customer.PutMyAddress).
		DELETE("/me/address", h.Customer.DeleteMyAddress).
		GET("", g.Admin, h.Customer.List).
		POST("", g.Admin, h.Customer.Create).
		POST("/membership", g.Admin, h.Customer.SetMembership).
		GET("/:id", g.Admin, h.Customer.GetByID).
		PUT("/:id", g.Admin, h.Customer.Update).
		PATCH("/:id", g.Admin, h.Customer.Update).
		DELETE("/:id", g.Admin, h.Customer.Delete).
		GET("/:id/address", g.Admin, h.Customer.GetAddress).
		PUT("/:id/address", g.Admin, h.Customer.PutAddress).
		DELETE("/:id/address", g.Admin, h.Customer.DeleteAddress)

	store.Group("tags", "/tags").
		GET("", h.Tag.List).
		POST("", g.Admin, h.Tag.Create).
		GET("/:id", h.Tag.GetByID).
		PUT("/:id", g.Admin, h.Tag.Update).
		DELETE("/:id", g.Admin, h.Tag.Delete).
		POST("/:id/items", g.Admin, h.Tag.TagObject).
		DELETE("/:id/items", g.Admin, h.Tag.UntagObject)
	store.GET("/tagged/:object_type/:object_id", h.Tag.ListTagsFor)

	return store
}

func adminRoutes(h Handlers, g Guards) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(g.Admin)

	admin.POST("/reports/monthly", h.Report.MonthlyReport)
	admin.Group("scheduler", "/scheduler").
		GET("/status", h.Report.GetSchedulerStatus).
		POST("/trigger", h.Report.TriggerJob)
	admin.Group("outbox", "/outbox").
		GET("/stats", h.Outbox.GetStats).
		GET("/dead", h.Outbox.GetDeadLetterEntries).
		POST("/dead/retry-all", h.Outbox.RetryAllDeadEntries).
		GET("/:id", h.Outbox.GetEntry).
		POST("/:id/retry", h.Outbox.RetryDeadEntry)

	return admin
}
