package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence.
// FindByID preloads items together with their products.
type CartRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	SaveItem(ctx context.Context, item *CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteOlderThan purges carts created before cutoff and returns how many were removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
