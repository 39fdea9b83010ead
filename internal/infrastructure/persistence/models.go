package persistence

import (
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/tagging"
)

// Models returns every persisted type in dependency order
func Models() []any {
	return []any{
		&identity.User{},
		&catalog.Promotion{},
		&catalog.Collection{},
		&catalog.Product{},
		&catalog.ProductImage{},
		&catalog.Review{},
		&customer.Customer{},
		&customer.Address{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
		&tagging.Tag{},
		&tagging.TaggedItem{},
		&shared.OutboxEntry{},
	}
}
