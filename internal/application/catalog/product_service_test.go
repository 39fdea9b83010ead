package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type productFixture struct {
	products    *MockProductRepository
	collections *MockCollectionRepository
	promotions  *MockPromotionRepository
	events      *recordingPublisher
	cache       *mapCache
	svc         *ProductService
}

func newProductFixture() *productFixture {
	f := &productFixture{
		products:    new(MockProductRepository),
		collections: new(MockCollectionRepository),
		promotions:  new(MockPromotionRepository),
		events:      &recordingPublisher{},
		cache:       newMapCache(),
	}
	f.svc = NewProductService(f.products, f.collections, f.promotions, stubSlugger{}, f.events, f.cache, zap.NewNop())
	return f
}

func newTestProduct(t *testing.T, title string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(title, stubSlugger{}.Make(title), decimal.NewFromInt(10), 5, uuid.New())
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func priceOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestProductService_Create(t *testing.T) {
	t.Run("uniquifies the slug", func(t *testing.T) {
		f := newProductFixture()
		collectionID := uuid.New()
		f.collections.On("FindByID", mock.Anything, collectionID).Return(&catalog.Collection{}, nil)
		f.products.On("ExistsBySlug", mock.Anything, "blue-shirt").Return(true, nil)
		f.products.On("ExistsBySlug", mock.Anything, "blue-shirt-2").Return(true, nil)
		f.products.On("ExistsBySlug", mock.Anything, "blue-shirt-3").Return(false, nil)
		f.products.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := f.svc.Create(t.Context(), CreateProductRequest{
			Title:        "Blue Shirt",
			Description:  "cotton",
			UnitPrice:    priceOf("19.99"),
			Inventory:    3,
			CollectionID: collectionID,
		})
		require.NoError(t, err)
		assert.Equal(t, "blue-shirt-3", resp.Slug)
		assert.Equal(t, "cotton", resp.Description)
		assert.True(t, decimal.RequireFromString("23.59").Equal(resp.PriceWithTax))
		assert.Equal(t, catalog.InventoryStatusLow, resp.InventoryStatus)
		assert.Contains(t, f.events.types(), catalog.EventTypeProductCreated)
		f.products.AssertExpectations(t)
	})

	t.Run("unknown collection is invalid input", func(t *testing.T) {
		f := newProductFixture()
		f.collections.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Create(t.Context(), CreateProductRequest{
			Title: "Blue Shirt", UnitPrice: priceOf("5"), CollectionID: uuid.New(),
		})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_COLLECTION", de.Code)
	})

	t.Run("unknown promotion is invalid input", func(t *testing.T) {
		f := newProductFixture()
		f.collections.On("FindByID", mock.Anything, mock.Anything).Return(&catalog.Collection{}, nil)
		f.promotions.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Promotion{}, nil)

		_, err := f.svc.Create(t.Context(), CreateProductRequest{
			Title: "Blue Shirt", UnitPrice: priceOf("5"), CollectionID: uuid.New(),
			PromotionIDs: []uuid.UUID{uuid.New()},
		})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_PROMOTION", de.Code)
	})

	t.Run("price below minimum is rejected", func(t *testing.T) {
		f := newProductFixture()
		f.collections.On("FindByID", mock.Anything, mock.Anything).Return(&catalog.Collection{}, nil)
		f.products.On("ExistsBySlug", mock.Anything, mock.Anything).Return(false, nil)

		_, err := f.svc.Create(t.Context(), CreateProductRequest{
			Title: "Blue Shirt", UnitPrice: priceOf("0.50"), CollectionID: uuid.New(),
		})
		require.Error(t, err)
		f.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductService_GetByIDUsesCache(t *testing.T) {
	f := newProductFixture()
	p := newTestProduct(t, "Blue Shirt")
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil).Once()

	first, err := f.svc.GetByID(t.Context(), p.ID)
	require.NoError(t, err)
	second, err := f.svc.GetByID(t.Context(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.UnitPrice.Equal(second.UnitPrice))
	f.products.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestProductService_UpdateInvalidatesCache(t *testing.T) {
	f := newProductFixture()
	p := newTestProduct(t, "Blue Shirt")
	f.cache.Set(t.Context(), ProductCacheKey(p.ID), []byte(`{}`))
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("ExistsBySlug", mock.Anything, "red-shirt").Return(false, nil)
	f.products.On("Save", mock.Anything, p).Return(nil)

	title := "Red Shirt"
	resp, err := f.svc.Update(t.Context(), p.ID, UpdateProductRequest{
		Title:     &title,
		UnitPrice: priceOf("12.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "red-shirt", resp.Slug)
	assert.Equal(t, "12.5", resp.UnitPrice.String())

	_, cached := f.cache.Get(t.Context(), ProductCacheKey(p.ID))
	assert.False(t, cached)
	assert.Contains(t, f.events.types(), catalog.EventTypeProductUpdated)
}

func TestProductService_Delete(t *testing.T) {
	t.Run("refused when ordered", func(t *testing.T) {
		f := newProductFixture()
		p := newTestProduct(t, "Blue Shirt")
		f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.products.On("CountOrderItems", mock.Anything, p.ID).Return(int64(2), nil)

		err := f.svc.Delete(t.Context(), p.ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "PRODUCT_IN_USE", de.Code)
		f.products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes and publishes", func(t *testing.T) {
		f := newProductFixture()
		p := newTestProduct(t, "Blue Shirt")
		f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.products.On("CountOrderItems", mock.Anything, p.ID).Return(int64(0), nil)
		f.products.On("Delete", mock.Anything, p.ID).Return(nil)

		require.NoError(t, f.svc.Delete(t.Context(), p.ID))
		assert.Equal(t, []string{catalog.EventTypeProductDeleted}, f.events.types())
	})

	t.Run("missing product", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
		assert.ErrorIs(t, f.svc.Delete(t.Context(), uuid.New()), shared.ErrNotFound)
	})
}

func TestProductService_List(t *testing.T) {
	f := newProductFixture()
	collectionID := uuid.New()
	p := newTestProduct(t, "Blue Shirt")

	matchFilter := mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.OrderBy == "unit_price" && filter.OrderDir == "desc" &&
			filter.Filters[filterCollectionID] == collectionID &&
			filter.Page == 2 && filter.PageSize == 1
	})
	f.products.On("FindAll", mock.Anything, matchFilter).Return([]catalog.Product{*p}, nil)
	f.products.On("Count", mock.Anything, matchFilter).Return(int64(3), nil)

	page, err := f.svc.List(t.Context(), ProductListFilter{
		CollectionID: &collectionID,
		Ordering:     "-unit_price",
		Page:         2,
		PageSize:     1,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext())
	assert.True(t, page.HasPrevious())
}

func TestProductService_ClearInventory(t *testing.T) {
	f := newProductFixture()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	f.cache.Set(t.Context(), ProductCacheKey(ids[0]), []byte(`{}`))
	f.products.On("ClearInventory", mock.Anything, ids).Return(int64(2), nil)

	n, err := f.svc.ClearInventory(t.Context(), ids)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	_, cached := f.cache.Get(t.Context(), ProductCacheKey(ids[0]))
	assert.False(t, cached)
	assert.Equal(t, []string{catalog.EventTypeInventoryCleared}, f.events.types())
}

func TestProductService_SetPromotions(t *testing.T) {
	f := newProductFixture()
	p := newTestProduct(t, "Blue Shirt")
	promo, err := catalog.NewPromotion("Summer", 0.2)
	require.NoError(t, err)
	ids := []uuid.UUID{promo.ID}

	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.promotions.On("FindByIDs", mock.Anything, ids).Return([]catalog.Promotion{*promo}, nil)
	f.products.On("ReplacePromotions", mock.Anything, p.ID, ids).Return(nil)

	resp, err := f.svc.SetPromotions(t.Context(), p.ID, ids)
	require.NoError(t, err)
	assert.Equal(t, ids, resp.PromotionIDs)
}

func TestParseOrdering(t *testing.T) {
	tests := []struct {
		in, field, dir string
	}{
		{"unit_price", "unit_price", "asc"},
		{"-last_update", "updated_at", "desc"},
		{"title", "title", "asc"},
		{"", "", ""},
		{"-bogus", "", ""},
	}
	for _, tt := range tests {
		field, dir := parseOrdering(tt.in)
		assert.Equal(t, tt.field, field, tt.in)
		assert.Equal(t, tt.dir, dir, tt.in)
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, ...shared.DomainEvent) error {
	return errors.New("bus down")
}

func TestProductService_PublishFailureDoesNotFailRequest(t *testing.T) {
	products := new(MockProductRepository)
	collections := new(MockCollectionRepository)
	svc := NewProductService(products, collections, new(MockPromotionRepository), stubSlugger{}, failingPublisher{}, nil, zap.NewNop())

	collections.On("FindByID", mock.Anything, mock.Anything).Return(&catalog.Collection{}, nil)
	products.On("ExistsBySlug", mock.Anything, mock.Anything).Return(false, nil)
	products.On("Save", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Create(t.Context(), CreateProductRequest{
		Title: "Blue Shirt", UnitPrice: priceOf("5"), CollectionID: uuid.New(),
	})
	assert.NoError(t, err)
}
