package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	// CountOrders returns how many orders reference the customer
	CountOrders(ctx context.Context, id uuid.UUID) (int64, error)
	// OrderCounts returns order counts keyed by customer id
	OrderCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	// SetMembership bulk-updates membership and returns the number of rows changed
	SetMembership(ctx context.Context, ids []uuid.UUID, m Membership) (int64, error)
}

// AddressRepository defines the interface for address persistence
type AddressRepository interface {
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*Address, error)
	Save(ctx context.Context, a *Address) error
	Delete(ctx context.Context, customerID uuid.UUID) error
}
