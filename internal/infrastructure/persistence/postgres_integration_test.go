//go:build integration

package persistence

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a postgres container and applies migrations/
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, filepath.Join("..", "..", "..", "migrations"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_OrderItemProtectsProduct(t *testing.T) {
	db := newPostgresDB(t)
	col := seedCollection(t, db, "Shoes")
	p := seedProduct(t, db, col.ID, "Sneaker", "sneaker", "59.00", 3)
	cust := seedCustomer(t, db, "runner", "Ray", "Runner")

	o, err := order.NewOrder(cust.ID)
	require.NoError(t, err)
	_, err = o.AddItem(p, 1)
	require.NoError(t, err)
	require.NoError(t, NewGormOrderRepository(db).Create(t.Context(), o))

	err = NewGormProductRepository(db).Delete(t.Context(), p.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "REFERENCE_CONFLICT", domainErr.Code)

	_, err = NewGormProductRepository(db).FindByID(t.Context(), p.ID)
	assert.NoError(t, err)
}

func TestPostgres_ConcurrentStockDecrease(t *testing.T) {
	db := newPostgresDB(t)
	scope := NewGormTransactionScope(db, nil)
	col := seedCollection(t, db, "Limited")
	p := seedProduct(t, db, col.ID, "Poster", "poster", "10.00", 5)

	const buyers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Execute(context.Background(), func(repos apporder.TransactionalRepositories) error {
				locked, err := repos.ProductRepo().FindByIDForUpdate(context.Background(), p.ID)
				if err != nil {
					return err
				}
				if err := locked.DecreaseInventory(1); err != nil {
					return err
				}
				return repos.ProductRepo().Save(context.Background(), locked)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	reloaded, err := NewGormProductRepository(db).FindByID(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.Inventory)
}

func TestPostgres_SearchUsesILike(t *testing.T) {
	db := newPostgresDB(t)
	col := seedCollection(t, db, "Hats")
	seedProduct(t, db, col.ID, "Straw Hat", "straw-hat", "15.00", 3)

	filter := shared.DefaultFilter()
	filter.Search = "STRAW"
	filter.Filters[FilterUnitPriceLT] = decimal.NewFromInt(20)
	products, err := NewGormProductRepository(db).FindAll(t.Context(), filter)
	require.NoError(t, err)
	require.Len(t, products, 1)

	_, err = NewGormProductRepository(db).FindByID(t.Context(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

