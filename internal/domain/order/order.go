package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// PaymentStatus is the payment state of an order
type PaymentStatus string

// Payment statuses
const (
	PaymentPending  PaymentStatus = "P"
	PaymentComplete PaymentStatus = "C"
	PaymentFailed   PaymentStatus = "F"
)

// IsValid reports whether s is a known status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentComplete, PaymentFailed:
		return true
	}
	return false
}

// Label returns the human readable status
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentPending:
		return "Pending"
	case PaymentComplete:
		return "Complete"
	case PaymentFailed:
		return "Failed"
	}
	return string(s)
}

// allowed payment transitions; Complete is terminal
var transitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentComplete, PaymentFailed},
	PaymentFailed:  {PaymentPending},
}

// CanTransitionTo reports whether the status may move to next
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a placed order. Items are written once at placement and are
// only removed together with the order.
type Order struct {
	shared.BaseAggregateRoot
	CustomerID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	PlacedAt      time.Time     `gorm:"not null;index"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(1);not null;default:'P'"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a product line with the unit price captured at placement
type OrderItem struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Quantity  int              `gorm:"type:smallint;not null"`
	UnitPrice decimal.Decimal  `gorm:"type:decimal(6,2);not null"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrder creates a pending order without items
func NewOrder(customerID uuid.UUID) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		PaymentStatus:     PaymentPending,
		Items:             make([]OrderItem, 0),
	}
	o.PlacedAt = o.CreatedAt
	return o, nil
}

// AddItem appends a line, capturing the product's current unit price
func (o *Order) AddItem(product *catalog.Product, quantity int) (*OrderItem, error) {
	if product == nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	o.Items = append(o.Items, OrderItem{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.UnitPrice,
		Product:   product,
	})
	return &o.Items[len(o.Items)-1], nil
}

// Place finalizes a freshly built order and records the OrderPlaced event
func (o *Order) Place(customerName, email string) error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("ORDER_EMPTY", "Order must contain at least one item")
	}
	o.AddDomainEvent(NewOrderPlacedEvent(o, customerName, email))
	return nil
}

// SetPaymentStatus moves the order to a new payment status
func (o *Order) SetPaymentStatus(next PaymentStatus) error {
	if !next.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", "Payment status must be one of P, C, F")
	}
	if next == o.PaymentStatus {
		return nil
	}
	if !o.PaymentStatus.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot change payment status from "+o.PaymentStatus.Label()+" to "+next.Label())
	}
	from := o.PaymentStatus
	o.PaymentStatus = next
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderPaymentStatusChangedEvent(o, from, next))
	return nil
}

// TotalPrice is the sum of quantity * unit_price over all items
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

// TotalQuantity is the number of units across all items
func (o *Order) TotalQuantity() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// BelongsTo reports whether the order was placed by the customer
func (o *Order) BelongsTo(customerID uuid.UUID) bool {
	return o.CustomerID == customerID
}

// ShortID is the first block of the order id, used in email subjects and invoices
func (o *Order) ShortID() string {
	return o.ID.String()[:8]
}

// TotalPrice returns quantity * unit_price
func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ProductTitle returns the title of the loaded product, if any
func (i OrderItem) ProductTitle() string {
	if i.Product == nil {
		return ""
	}
	return i.Product.Title
}
