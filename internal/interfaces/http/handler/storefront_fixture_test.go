package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	customerapp "github.com/storefront/backend/internal/application/customer"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/printing"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// storefrontFixture serves the cart, order, customer, review and image
// routes over one in-memory database. Requests run as caller when it is set.
type storefrontFixture struct {
	router     *gin.Engine
	users      *persistence.GormUserRepository
	products   *persistence.GormProductRepository
	images     *persistence.GormProductImageRepository
	objects    *storage.StubObjectStorage
	collection *catalog.Collection

	caller uuid.UUID
	staff  bool
}

func newStorefrontFixture(t *testing.T) *storefrontFixture {
	t.Helper()
	database, err := persistence.NewDatabaseWithCustomLogger(&config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: ":memory:",
	}, logger.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB
	log := zap.NewNop()

	f := &storefrontFixture{
		users:    persistence.NewGormUserRepository(db),
		products: persistence.NewGormProductRepository(db),
		images:   persistence.NewGormProductImageRepository(db),
		objects:  storage.NewStubObjectStorage(),
	}
	customerRepo := persistence.NewGormCustomerRepository(db)
	collectionRepo := persistence.NewGormCollectionRepository(db)

	f.collection, err = catalog.NewCollection("Mugs")
	require.NoError(t, err)
	require.NoError(t, collectionRepo.Save(t.Context(), f.collection))

	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	customers := customerapp.NewCustomerService(customerRepo, persistence.NewGormAddressRepository(db), f.users, log)
	orders := orderapp.NewOrderService(
		persistence.NewGormTransactionScope(db, event.NewOutboxPublisher(serializer)),
		persistence.NewGormOrderRepository(db), customerRepo, customers,
		event.NewInMemoryEventBus(log), printing.NewInvoiceRenderer("Storefront", nil, log), log,
	)
	imageCfg := catalogapp.DefaultImageServiceConfig()
	imageCfg.MaxImagesPerProduct = 2

	carts := NewCartHandler(cartapp.NewCartService(persistence.NewGormCartRepository(db), f.products, 0, log))
	orderHandler := NewOrderHandler(orders)
	customerHandler := NewCustomerHandler(customers)
	reviews := NewReviewHandler(catalogapp.NewReviewService(persistence.NewGormReviewRepository(db), f.products))
	images := NewImageHandler(catalogapp.NewImageService(f.images, f.products, f.objects, imageCfg, log))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if f.caller != uuid.Nil {
			c.Set(middleware.JWTUserIDKey, f.caller.String())
			c.Set(middleware.JWTIsStaffKey, f.staff)
		}
		c.Next()
	})
	store := r.Group("/store")

	cg := store.Group("/carts")
	cg.POST("", carts.Create)
	cg.GET("/:id", carts.Get)
	cg.DELETE("/:id", carts.Delete)
	cg.POST("/:id/items", carts.AddItem)
	cg.GET("/:id/items/:item_id", carts.GetItem)
	cg.PATCH("/:id/items/:item_id", carts.UpdateItem)
	cg.DELETE("/:id/items/:item_id", carts.RemoveItem)

	og := store.Group("/orders")
	og.GET("", orderHandler.List)
	og.POST("", orderHandler.Create)
	og.POST("/payment-status", orderHandler.BulkPaymentStatus)
	og.GET("/:id", orderHandler.Get)
	og.PATCH("/:id", orderHandler.Update)
	og.DELETE("/:id", orderHandler.Delete)
	og.GET("/:id/invoice", orderHandler.Invoice)

	me := store.Group("/customers/me")
	me.GET("", customerHandler.GetMe)
	me.PATCH("", customerHandler.UpdateMe)

	pg := store.Group("/products/:id")
	pg.GET("/reviews", reviews.List)
	pg.POST("/reviews", reviews.Create)
	pg.GET("/reviews/:review_id", reviews.Get)
	pg.PATCH("/reviews/:review_id", reviews.Update)
	pg.DELETE("/reviews/:review_id", reviews.Delete)
	pg.GET("/images", images.List)
	pg.POST("/images", images.InitiateUpload)
	pg.POST("/images/:image_id/confirm", images.ConfirmUpload)

	f.router = r
	return f
}

func (f *storefrontFixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *storefrontFixture) product(t *testing.T, title, price string, inventory int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(title, uuid.NewString(), decimal.RequireFromString(price), inventory, f.collection.ID)
	require.NoError(t, err)
	require.NoError(t, f.products.Save(t.Context(), p))
	return p
}

func (f *storefrontFixture) user(t *testing.T, username, email string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, email, "s3cretpass")
	require.NoError(t, err)
	require.NoError(t, f.users.Save(t.Context(), u))
	return u
}

// as makes the following requests run for u
func (f *storefrontFixture) as(u *identity.User) {
	f.caller, f.staff = u.ID, u.IsStaff
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp APIResponse[T]
	decodeInto(t, w, &resp)
	return resp.Data
}

// errorCode returns the code of an error envelope
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}
