package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSaver struct {
	calls  int
	events []shared.DomainEvent
}

func (s *recordingSaver) SaveEvents(_ context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if _, ok := txProvider.(*gorm.DB); !ok {
		return errors.New("expected *gorm.DB")
	}
	s.calls++
	s.events = append(s.events, events...)
	return nil
}

func TestGormTransactionScope_Execute(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db := newTestDB(t)
		scope := NewGormTransactionScope(db, nil)
		col := seedCollection(t, db, "Office")
		p := seedProduct(t, db, col.ID, "Stapler", "stapler", "8.00", 5)

		err := scope.Execute(t.Context(), func(repos apporder.TransactionalRepositories) error {
			locked, err := repos.ProductRepo().FindByIDForUpdate(t.Context(), p.ID)
			if err != nil {
				return err
			}
			if err := locked.DecreaseInventory(2); err != nil {
				return err
			}
			return repos.ProductRepo().Save(t.Context(), locked)
		})
		require.NoError(t, err)

		reloaded, err := NewGormProductRepository(db).FindByID(t.Context(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, reloaded.Inventory)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := newTestDB(t)
		scope := NewGormTransactionScope(db, nil)
		c := cart.NewCart()
		boom := errors.New("boom")

		err := scope.Execute(t.Context(), func(repos apporder.TransactionalRepositories) error {
			if err := repos.CartRepo().Create(t.Context(), c); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = NewGormCartRepository(db).FindByID(t.Context(), c.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("passes the transaction to the event saver", func(t *testing.T) {
		db := newTestDB(t)
		saver := &recordingSaver{}
		scope := NewGormTransactionScope(db, saver)
		event := shared.NewBaseDomainEvent("Test", "Test", uuid.New())

		err := scope.Execute(t.Context(), func(repos apporder.TransactionalRepositories) error {
			if err := repos.SaveEvents(t.Context()); err != nil {
				return err
			}
			return repos.SaveEvents(t.Context(), &event)
		})
		require.NoError(t, err)
		assert.Equal(t, 1, saver.calls)
		assert.Len(t, saver.events, 1)
	})
}
