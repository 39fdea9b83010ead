package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	CustomerID    *uuid.UUID
	PaymentStatus PaymentStatus
}

// OrderRepository defines the interface for order persistence.
// Find methods preload items and their products.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	// Create inserts the order with its items
	Create(ctx context.Context, o *Order) error
	// UpdatePaymentStatus persists the status with an optimistic version check
	UpdatePaymentStatus(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Summarize aggregates orders placed in [from, to)
	Summarize(ctx context.Context, from, to time.Time) (*PeriodSummary, error)
	// TopProducts returns the best selling products in [from, to) by quantity
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
}

// PeriodSummary holds order aggregates for a reporting period
type PeriodSummary struct {
	OrdersCount     int64
	ItemsSold       int64
	Revenue         decimal.Decimal
	ByPaymentStatus map[PaymentStatus]int64
}

// ProductSales is a product's sales in a period
type ProductSales struct {
	ProductID uuid.UUID
	Title     string
	Quantity  int64
	Revenue   decimal.Decimal
}
