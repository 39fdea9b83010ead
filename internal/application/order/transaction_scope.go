package order

import (
	"context"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// TransactionScope runs a unit of work inside one database transaction.
// If the function returns an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories taking part in
// order placement. All of them share the same underlying transaction.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	CartRepo() cart.CartRepository
	OrderRepo() order.OrderRepository
	CustomerRepo() customer.CustomerRepository
	// SaveEvents writes domain events to the outbox in the same transaction
	SaveEvents(ctx context.Context, events ...shared.DomainEvent) error
}
