package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, price string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Coffee", "coffee-"+uuid.NewString()[:8], decimal.RequireFromString(price), 50, uuid.New())
	require.NoError(t, err)
	return p
}

func TestCart_AddItemMergesSameProduct(t *testing.T) {
	c := NewCart()
	p := newProduct(t, "2.50")

	first, err := c.AddItem(p, 2)
	require.NoError(t, err)
	second, err := c.AddItem(p, 3)
	require.NoError(t, err)

	assert.Len(t, c.Items, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("12.50").Equal(c.TotalPrice()))
}

func TestCart_Totals(t *testing.T) {
	c := NewCart()
	_, err := c.AddItem(newProduct(t, "10.00"), 2)
	require.NoError(t, err)
	_, err = c.AddItem(newProduct(t, "1.99"), 3)
	require.NoError(t, err)

	assert.Equal(t, 5, c.TotalQuantity())
	assert.True(t, decimal.RequireFromString("25.97").Equal(c.TotalPrice()), c.TotalPrice().String())
}

func TestCart_QuantityBounds(t *testing.T) {
	c := NewCart()
	p := newProduct(t, "1.00")

	_, err := c.AddItem(p, 0)
	assert.Error(t, err)

	_, err = c.AddItem(p, MaxQuantity)
	require.NoError(t, err)
	_, err = c.AddItem(p, 1)
	assert.Error(t, err)
	assert.Equal(t, MaxQuantity, c.Items[0].Quantity)
}

func TestCart_UpdateAndRemove(t *testing.T) {
	c := NewCart()
	item, err := c.AddItem(newProduct(t, "1.00"), 1)
	require.NoError(t, err)
	itemID := item.ID

	updated, err := c.UpdateItem(itemID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)

	_, err = c.UpdateItem(uuid.New(), 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, c.RemoveItem(itemID))
	assert.True(t, c.IsEmpty())
	assert.ErrorIs(t, c.RemoveItem(itemID), shared.ErrNotFound)
}
