package telemetry

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var attrPaymentStatus = attribute.Key("payment_status")

// OrderMetrics records storefront sales from order events
type OrderMetrics struct {
	ordersPlaced   metric.Int64Counter
	itemsSold      metric.Int64Counter
	orderValue     metric.Float64Histogram
	paymentChanges metric.Int64Counter
}

// NewOrderMetrics creates the order instruments on meter
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	ordersPlaced, err := meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders placed"))
	if err != nil {
		return nil, fmt.Errorf("create orders counter: %w", err)
	}
	itemsSold, err := meter.Int64Counter("storefront.orders.items_sold",
		metric.WithDescription("Units sold across all orders"))
	if err != nil {
		return nil, fmt.Errorf("create items counter: %w", err)
	}
	orderValue, err := meter.Float64Histogram("storefront.orders.value",
		metric.WithDescription("Order totals"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000))
	if err != nil {
		return nil, fmt.Errorf("create order value histogram: %w", err)
	}
	paymentChanges, err := meter.Int64Counter("storefront.orders.payment_status_changes",
		metric.WithDescription("Payment status transitions by target status"))
	if err != nil {
		return nil, fmt.Errorf("create payment counter: %w", err)
	}

	return &OrderMetrics{
		ordersPlaced:   ordersPlaced,
		itemsSold:      itemsSold,
		orderValue:     orderValue,
		paymentChanges: paymentChanges,
	}, nil
}

// EventTypes returns the handled event types
func (m *OrderMetrics) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced, order.EventTypeOrderPaymentStatusChanged}
}

// Handle records the event. Unknown payloads are ignored.
func (m *OrderMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		var units int64
		for _, item := range e.Items {
			units += int64(item.Quantity)
		}
		m.ordersPlaced.Add(ctx, 1)
		m.itemsSold.Add(ctx, units)
		m.orderValue.Record(ctx, e.Total.InexactFloat64())
	case *order.OrderPaymentStatusChangedEvent:
		m.paymentChanges.Add(ctx, 1, metric.WithAttributes(attrPaymentStatus.String(e.To.Label())))
	}
	return nil
}

var _ shared.EventHandler = (*OrderMetrics)(nil)
