package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCollection(t *testing.T, title string) *catalog.Collection {
	t.Helper()
	c, err := catalog.NewCollection(title)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func TestCollectionService_Create(t *testing.T) {
	t.Run("with featured product", func(t *testing.T) {
		collections := new(MockCollectionRepository)
		products := new(MockProductRepository)
		events := &recordingPublisher{}
		svc := NewCollectionService(collections, products, events)

		featured := uuid.New()
		products.On("FindByID", mock.Anything, featured).Return(&catalog.Product{}, nil)
		collections.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Collection")).Return(nil)

		resp, err := svc.Create(t.Context(), CollectionRequest{Title: "Beauty", FeaturedProductID: &featured})
		require.NoError(t, err)
		assert.Equal(t, "Beauty", resp.Title)
		assert.Equal(t, &featured, resp.FeaturedProductID)
		assert.Zero(t, resp.ProductsCount)
		assert.Contains(t, events.types(), catalog.EventTypeCollectionCreated)
	})

	t.Run("unknown featured product", func(t *testing.T) {
		collections := new(MockCollectionRepository)
		products := new(MockProductRepository)
		svc := NewCollectionService(collections, products, nil)

		products.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		featured := uuid.New()
		_, err := svc.Create(t.Context(), CollectionRequest{Title: "Beauty", FeaturedProductID: &featured})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_PRODUCT", de.Code)
		collections.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("blank title", func(t *testing.T) {
		svc := NewCollectionService(new(MockCollectionRepository), new(MockProductRepository), nil)
		_, err := svc.Create(t.Context(), CollectionRequest{Title: "  "})
		assert.Error(t, err)
	})
}

func TestCollectionService_Delete(t *testing.T) {
	t.Run("refused while it has products", func(t *testing.T) {
		collections := new(MockCollectionRepository)
		products := new(MockProductRepository)
		svc := NewCollectionService(collections, products, nil)
		c := newTestCollection(t, "Toys")

		collections.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		products.On("CountByCollection", mock.Anything, c.ID).Return(int64(4), nil)

		err := svc.Delete(t.Context(), c.ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "COLLECTION_NOT_EMPTY", de.Code)
		collections.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("empty collection", func(t *testing.T) {
		collections := new(MockCollectionRepository)
		products := new(MockProductRepository)
		events := &recordingPublisher{}
		svc := NewCollectionService(collections, products, events)
		c := newTestCollection(t, "Toys")

		collections.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		products.On("CountByCollection", mock.Anything, c.ID).Return(int64(0), nil)
		collections.On("Delete", mock.Anything, c.ID).Return(nil)

		require.NoError(t, svc.Delete(t.Context(), c.ID))
		assert.Equal(t, []string{catalog.EventTypeCollectionDeleted}, events.types())
	})
}

func TestCollectionService_UpdateClearsFeatured(t *testing.T) {
	collections := new(MockCollectionRepository)
	products := new(MockProductRepository)
	svc := NewCollectionService(collections, products, nil)

	c := newTestCollection(t, "Toys")
	featured := uuid.New()
	c.FeaturedProductID = &featured

	collections.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	collections.On("Save", mock.Anything, c).Return(nil)
	products.On("CountByCollection", mock.Anything, c.ID).Return(int64(7), nil)

	resp, err := svc.Update(t.Context(), c.ID, CollectionRequest{Title: "Games"})
	require.NoError(t, err)
	assert.Equal(t, "Games", resp.Title)
	assert.Nil(t, resp.FeaturedProductID)
	assert.Equal(t, int64(7), resp.ProductsCount)
}

func TestCollectionService_PatchKeepsFeatured(t *testing.T) {
	collections := new(MockCollectionRepository)
	products := new(MockProductRepository)
	svc := NewCollectionService(collections, products, nil)

	c := newTestCollection(t, "Toys")
	featured := uuid.New()
	c.FeaturedProductID = &featured

	collections.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	collections.On("Save", mock.Anything, c).Return(nil)
	products.On("CountByCollection", mock.Anything, c.ID).Return(int64(1), nil)

	title := "Games"
	resp, err := svc.Patch(t.Context(), c.ID, PatchCollectionRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, &featured, resp.FeaturedProductID)
}

func TestCollectionService_ListIncludesCounts(t *testing.T) {
	collections := new(MockCollectionRepository)
	products := new(MockProductRepository)
	svc := NewCollectionService(collections, products, nil)

	a := newTestCollection(t, "A")
	b := newTestCollection(t, "B")
	collections.On("FindAll", mock.Anything, mock.Anything).Return([]catalog.Collection{*a, *b}, nil)
	collections.On("Count", mock.Anything, mock.Anything).Return(int64(2), nil)
	collections.On("ProductCounts", mock.Anything, []uuid.UUID{a.ID, b.ID}).
		Return(map[uuid.UUID]int64{a.ID: 3}, nil)

	page, err := svc.List(t.Context(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Items[0].ProductsCount)
	assert.Zero(t, page.Items[1].ProductsCount)
	assert.Equal(t, int64(2), page.Total)
}
