package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// Requester identifies who is calling an order operation
type Requester struct {
	UserID  uuid.UUID
	IsStaff bool
}

// PlaceOrderRequest turns a cart into an order
type PlaceOrderRequest struct {
	CartID uuid.UUID `json:"cart_id" binding:"required"`
}

// UpdateOrderRequest changes the payment status of an order
type UpdateOrderRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=P C F" example:"C"`
}

// BulkPaymentStatusRequest sets the payment status of several orders
type BulkPaymentStatusRequest struct {
	IDs           []uuid.UUID `json:"ids" binding:"required,min=1,dive,required"`
	PaymentStatus string      `json:"payment_status" binding:"required,oneof=P C F"`
}

// BulkPaymentStatusResponse reports the outcome of a bulk update
type BulkPaymentStatusResponse struct {
	Updated int         `json:"updated"`
	Skipped []uuid.UUID `json:"skipped"`
}

// OrderListFilter holds the list query parameters. CustomerID is only
// honoured for staff.
type OrderListFilter struct {
	CustomerID    *uuid.UUID `form:"customer_id"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=P C F"`
	Ordering      string     `form:"ordering" binding:"omitempty,oneof=placed_at -placed_at payment_status -payment_status"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToDomain converts the query to a repository filter
func (f OrderListFilter) ToDomain() order.OrderFilter {
	filter := order.OrderFilter{
		Filter:        shared.Filter{Page: f.Page, PageSize: f.PageSize}.Normalize(),
		CustomerID:    f.CustomerID,
		PaymentStatus: order.PaymentStatus(f.PaymentStatus),
	}
	if f.Ordering != "" {
		filter.OrderBy, filter.OrderDir = f.Ordering, "asc"
		if f.Ordering[0] == '-' {
			filter.OrderBy, filter.OrderDir = f.Ordering[1:], "desc"
		}
	}
	return filter
}

// SimpleProduct is the product summary shown inside an order
type SimpleProduct struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// OrderItemResponse represents an order line
type OrderItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	Product    SimpleProduct   `json:"product"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" swaggertype:"string"`
	TotalPrice decimal.Decimal `json:"total_price" swaggertype:"string"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	CustomerID         uuid.UUID           `json:"customer_id"`
	PlacedAt           time.Time           `json:"placed_at"`
	PaymentStatus      string              `json:"payment_status" example:"P"`
	PaymentStatusLabel string              `json:"payment_status_label" example:"Pending"`
	Items              []OrderItemResponse `json:"items"`
	TotalPrice         decimal.Decimal     `json:"total_price" swaggertype:"string"`
}

// ToOrderResponse converts a domain Order
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:         item.ID,
			Product:    SimpleProduct{ID: item.ProductID, Title: item.ProductTitle()},
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice(),
		}
	}
	return OrderResponse{
		ID:                 o.ID,
		CustomerID:         o.CustomerID,
		PlacedAt:           o.PlacedAt,
		PaymentStatus:      string(o.PaymentStatus),
		PaymentStatusLabel: o.PaymentStatus.Label(),
		Items:              items,
		TotalPrice:         o.TotalPrice(),
	}
}
