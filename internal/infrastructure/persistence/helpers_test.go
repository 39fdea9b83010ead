package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	identity.BcryptCost = bcrypt.MinCost
}

// newTestDB opens a private in-memory sqlite database with the schema migrated
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := NewDatabaseWithCustomLogger(&config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: ":memory:",
	}, logger.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}

// newMockDB creates a postgres-dialect gorm DB backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func seedCollection(t *testing.T, db *gorm.DB, title string) *catalog.Collection {
	t.Helper()
	c, err := catalog.NewCollection(title)
	require.NoError(t, err)
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, collectionID uuid.UUID, title, slug, price string, inventory int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(title, slug, decimal.RequireFromString(price), inventory, collectionID)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(t.Context(), p))
	return p
}

func seedCustomer(t *testing.T, db *gorm.DB, username, first, last string) *customer.Customer {
	t.Helper()
	user, err := identity.NewUser(username, username+"@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Save(t.Context(), user))

	c, err := customer.NewCustomer(user.ID, first, last, username+"@example.com")
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db).Save(t.Context(), c))
	return c
}
