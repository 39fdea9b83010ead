package persistence

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/tagging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository_FindByIDAndSlug(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	col := seedCollection(t, db, "Beverages")
	p := seedProduct(t, db, col.ID, "Green Tea", "green-tea", "12.50", 20)

	found, err := repo.FindByID(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green Tea", found.Title)
	assert.Equal(t, "12.5", found.UnitPrice.String())

	bySlug, err := repo.FindBySlug(t.Context(), "green-tea")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySlug.ID)

	_, err = repo.FindByID(t.Context(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	drinks := seedCollection(t, db, "Drinks")
	snacks := seedCollection(t, db, "Snacks")
	seedProduct(t, db, drinks.ID, "Apple Juice", "apple-juice", "3.00", 5)
	seedProduct(t, db, drinks.ID, "Orange Juice", "orange-juice", "4.00", 50)
	seedProduct(t, db, snacks.ID, "Peanuts", "peanuts", "2.00", 15)

	t.Run("search is case insensitive", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "JUICE"
		products, err := repo.FindAll(t.Context(), filter)
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("filters by collection and price range", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters = map[string]any{
			FilterCollectionID: drinks.ID,
			FilterUnitPriceGT:  "3.50",
		}
		products, err := repo.FindAll(t.Context(), filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Orange Juice", products[0].Title)

		count, err := repo.Count(t.Context(), filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("orders by unit price descending", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "unit_price"
		filter.OrderDir = "desc"
		products, err := repo.FindAll(t.Context(), filter)
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "Orange Juice", products[0].Title)
		assert.Equal(t, "Peanuts", products[2].Title)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := shared.Filter{Page: 2, PageSize: 2}
		products, err := repo.FindAll(t.Context(), filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Peanuts", products[0].Title)
	})
}

func TestGormProductRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	col := seedCollection(t, db, "Dairy")
	p := seedProduct(t, db, col.ID, "Milk", "milk", "1.99", 10)

	col.Feature(&p.ID)
	require.NoError(t, NewGormCollectionRepository(db).Save(t.Context(), col))

	c := cart.NewCart()
	cartRepo := NewGormCartRepository(db)
	require.NoError(t, cartRepo.Create(t.Context(), c))
	item, err := c.AddItem(p, 2)
	require.NoError(t, err)
	require.NoError(t, cartRepo.SaveItem(t.Context(), item))

	review, err := catalog.NewReview(p.ID, "Ann", "Fresh")
	require.NoError(t, err)
	require.NoError(t, NewGormReviewRepository(db).Save(t.Context(), review))

	tag, err := tagging.NewTag("organic")
	require.NoError(t, err)
	require.NoError(t, NewGormTagRepository(db).Save(t.Context(), tag))
	link, err := tagging.NewTaggedItem(tag.ID, tagging.ObjectTypeProduct, p.ID)
	require.NoError(t, err)
	require.NoError(t, NewGormTaggedItemRepository(db).Save(t.Context(), link))

	require.NoError(t, repo.Delete(t.Context(), p.ID))

	_, err = repo.FindByID(t.Context(), p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	reloaded, err := cartRepo.FindByID(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items)

	reviews, err := NewGormReviewRepository(db).CountByProduct(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, reviews)

	links, err := NewGormTaggedItemRepository(db).FindByObject(t.Context(), tagging.ObjectTypeProduct, p.ID)
	require.NoError(t, err)
	assert.Empty(t, links)

	featured, err := NewGormCollectionRepository(db).FindByID(t.Context(), col.ID)
	require.NoError(t, err)
	assert.Nil(t, featured.FeaturedProductID)

	assert.ErrorIs(t, repo.Delete(t.Context(), p.ID), shared.ErrNotFound)
}

func TestGormProductRepository_ClearInventory(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	col := seedCollection(t, db, "Bakery")
	a := seedProduct(t, db, col.ID, "Bread", "bread", "2.00", 7)
	b := seedProduct(t, db, col.ID, "Bagel", "bagel", "1.00", 9)
	c := seedProduct(t, db, col.ID, "Croissant", "croissant", "1.50", 4)

	updated, err := repo.ClearInventory(t.Context(), []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	reloaded, err := repo.FindByID(t.Context(), a.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.Inventory)
	assert.Equal(t, a.Version+1, reloaded.Version)

	untouched, err := repo.FindByID(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, untouched.Inventory)

	updated, err = repo.ClearInventory(t.Context(), nil)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestGormProductRepository_ReplacePromotions(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	promoRepo := NewGormPromotionRepository(db)
	col := seedCollection(t, db, "Fruit")
	p := seedProduct(t, db, col.ID, "Banana", "banana", "1.00", 100)

	summer, err := catalog.NewPromotion("Summer sale", 0.1)
	require.NoError(t, err)
	require.NoError(t, promoRepo.Save(t.Context(), summer))
	winter, err := catalog.NewPromotion("Winter sale", 0.2)
	require.NoError(t, err)
	require.NoError(t, promoRepo.Save(t.Context(), winter))

	require.NoError(t, repo.ReplacePromotions(t.Context(), p.ID, []uuid.UUID{summer.ID, winter.ID}))
	found, err := repo.FindByID(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Len(t, found.Promotions, 2)

	require.NoError(t, repo.ReplacePromotions(t.Context(), p.ID, []uuid.UUID{winter.ID}))
	found, err = repo.FindByID(t.Context(), p.ID)
	require.NoError(t, err)
	require.Len(t, found.Promotions, 1)
	assert.Equal(t, winter.ID, found.Promotions[0].ID)

	// deleting a promotion drops its links
	require.NoError(t, promoRepo.Delete(t.Context(), winter.ID))
	found, err = repo.FindByID(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Promotions)
}

func TestGormProductRepository_ExistsBySlugAndCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	col := seedCollection(t, db, "Tools")
	seedProduct(t, db, col.ID, "Hammer", "hammer", "15.00", 3)

	exists, err := repo.ExistsBySlug(t.Context(), "hammer")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsBySlug(t.Context(), "wrench")
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := repo.CountByCollection(t.Context(), col.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	counts, err := NewGormCollectionRepository(db).ProductCounts(t.Context(), []uuid.UUID{col.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[col.ID])
	assert.Len(t, counts, 1)
}

func TestGormProductRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("locks the row on postgres", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB)
		id := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "title", "slug", "unit_price", "inventory"}).
			AddRow(id, "Lamp", "lamp", "20.00", 4)
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		product, err := repo.FindByIDForUpdate(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, 4, product.Inventory)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("plain select on sqlite", func(t *testing.T) {
		db := newTestDB(t)
		col := seedCollection(t, db, "Lights")
		p := seedProduct(t, db, col.ID, "Lamp", "lamp", "20.00", 4)

		product, err := NewGormProductRepository(db).FindByIDForUpdate(t.Context(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, product.ID)
	})
}
