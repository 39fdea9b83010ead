package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultAbandonedAfter is how long a cart lives before the cleanup job purges it
const DefaultAbandonedAfter = 30 * 24 * time.Hour

// ErrUnknownProduct is returned when a cart line names a product that does not exist
var ErrUnknownProduct = shared.NewDomainError("INVALID_PRODUCT", "No product with the given ID was found")

// CartService handles anonymous carts
type CartService struct {
	cartRepo       cart.CartRepository
	productRepo    catalog.ProductRepository
	abandonedAfter time.Duration
	logger         *zap.Logger
}

// NewCartService creates a new CartService. A zero abandonedAfter uses DefaultAbandonedAfter.
func NewCartService(
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	abandonedAfter time.Duration,
	logger *zap.Logger,
) *CartService {
	if abandonedAfter <= 0 {
		abandonedAfter = DefaultAbandonedAfter
	}
	return &CartService{
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		abandonedAfter: abandonedAfter,
		logger:         logger,
	}
}

// Create creates an empty cart
func (s *CartService) Create(ctx context.Context) (*CartResponse, error) {
	c := cart.NewCart()
	if err := s.cartRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// Get returns a cart with its items and totals
func (s *CartService) Get(ctx context.Context, id uuid.UUID) (*CartResponse, error) {
	c, err := s.cartRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// AddItem adds a product to the cart, merging with an existing line for the same product
func (s *CartService) AddItem(ctx context.Context, cartID uuid.UUID, req AddItemRequest) (*CartItemResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUnknownProduct
		}
		return nil, err
	}

	item, err := s.addItem(ctx, cartID, product, req.Quantity)
	if errors.Is(err, shared.ErrAlreadyExists) {
		// another request inserted the same product line; reload and merge into it
		item, err = s.addItem(ctx, cartID, product, req.Quantity)
	}
	if err != nil {
		return nil, err
	}
	resp := ToCartItemResponse(item)
	return &resp, nil
}

func (s *CartService) addItem(ctx context.Context, cartID uuid.UUID, product *catalog.Product, quantity int) (*cart.CartItem, error) {
	c, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	item, err := c.AddItem(product, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem returns one line of a cart
func (s *CartService) GetItem(ctx context.Context, cartID, itemID uuid.UUID) (*CartItemResponse, error) {
	c, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	item, ok := c.FindItem(itemID)
	if !ok {
		return nil, shared.ErrNotFound
	}
	resp := ToCartItemResponse(item)
	return &resp, nil
}

// UpdateItem sets the quantity of a cart line
func (s *CartService) UpdateItem(ctx context.Context, cartID, itemID uuid.UUID, req UpdateItemRequest) (*CartItemResponse, error) {
	c, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	item, err := c.UpdateItem(itemID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	resp := ToCartItemResponse(item)
	return &resp, nil
}

// RemoveItem drops a line from the cart
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return s.cartRepo.DeleteItem(ctx, cartID, itemID)
}

// Delete removes a cart and its items
func (s *CartService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.cartRepo.Delete(ctx, id)
}

// CleanupAbandoned purges carts created before now minus the abandonment window
func (s *CartService) CleanupAbandoned(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.abandonedAfter)
	n, err := s.cartRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("abandoned carts purged",
			zap.Int64("count", n),
			zap.Time("cutoff", cutoff))
	}
	return n, nil
}
