package order

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service errors
var (
	ErrCartEmpty      = shared.NewDomainError("CART_EMPTY", "The cart is empty")
	ErrPDFUnavailable = shared.NewDomainError("PDF_UNAVAILABLE", "PDF invoices are not enabled")
)

// Invoice formats
const (
	InvoiceFormatHTML = "html"
	InvoiceFormatPDF  = "pdf"
)

// RenderedInvoice is a printable invoice document
type RenderedInvoice struct {
	ContentType string
	FileName    string
	Body        []byte
}

// OrderService handles order placement and administration
type OrderService struct {
	txScope      TransactionScope
	orderRepo    order.OrderRepository
	customerRepo customer.CustomerRepository
	customers    CustomerResolver
	events       shared.EventPublisher
	invoices     InvoiceRenderer
	logger       *zap.Logger

	// optional hooks run after a placement commits
	outboxTrigger func()
	stockChanged  func(ctx context.Context, productIDs ...uuid.UUID)
}

// Option configures an OrderService
type Option func(*OrderService)

// WithOutboxTrigger wakes the outbox processor once a placement commits
func WithOutboxTrigger(fn func()) Option {
	return func(s *OrderService) { s.outboxTrigger = fn }
}

// WithStockChangeHook is called with the products whose inventory a placement decreased
func WithStockChangeHook(fn func(ctx context.Context, productIDs ...uuid.UUID)) Option {
	return func(s *OrderService) { s.stockChanged = fn }
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(
	txScope TransactionScope,
	orderRepo order.OrderRepository,
	customerRepo customer.CustomerRepository,
	customers CustomerResolver,
	events shared.EventPublisher,
	invoices InvoiceRenderer,
	logger *zap.Logger,
	opts ...Option,
) *OrderService {
	s := &OrderService{
		txScope:      txScope,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		customers:    customers,
		events:       events,
		invoices:     invoices,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder turns the cart into an order for the requesting user. Stock is
// checked and decreased under row locks, the order is written with its items,
// the cart is deleted and OrderPlaced goes to the outbox, all in one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*OrderResponse, error) {
	// Resolved before the transaction opens. A profile created here on first
	// access is kept when placement fails, as it would be by GET /customers/me.
	cust, err := s.customers.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var placed *order.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.CartRepo().FindByID(ctx, req.CartID)
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return ErrCartEmpty
		}

		o, err := order.NewOrder(cust.ID)
		if err != nil {
			return err
		}
		if err := s.reserveStock(ctx, repos.ProductRepo(), c, o); err != nil {
			return err
		}
		if err := o.Place(cust.FullName(), cust.Email); err != nil {
			return err
		}
		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}
		if err := repos.CartRepo().Delete(ctx, c.ID); err != nil {
			return err
		}
		if err := repos.SaveEvents(ctx, o.GetDomainEvents()...); err != nil {
			return err
		}
		o.ClearDomainEvents()
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("customer_id", cust.ID.String()),
		zap.Int("items", len(placed.Items)),
		zap.String("total", placed.TotalPrice().String()))

	if s.outboxTrigger != nil {
		s.outboxTrigger()
	}
	if s.stockChanged != nil {
		ids := make([]uuid.UUID, len(placed.Items))
		for i, item := range placed.Items {
			ids[i] = item.ProductID
		}
		s.stockChanged(ctx, ids...)
	}

	resp := ToOrderResponse(placed)
	return &resp, nil
}

// reserveStock locks every product of the cart in id order, checks and
// decreases its inventory and copies the line into the order
func (s *OrderService) reserveStock(ctx context.Context, products catalog.ProductRepository, c *cart.Cart, o *order.Order) error {
	items := slices.Clone(c.Items)
	slices.SortFunc(items, func(a, b cart.CartItem) int {
		return slices.Compare(a.ProductID[:], b.ProductID[:])
	})

	for _, item := range items {
		product, err := products.FindByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if !product.HasStock(item.Quantity) {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Not enough stock for %q: requested %d, available %d",
					product.Title, item.Quantity, product.Inventory))
		}
		if err := product.DecreaseInventory(item.Quantity); err != nil {
			return err
		}
		product.ClearDomainEvents()
		if err := products.Save(ctx, product); err != nil {
			return err
		}
		if _, err := o.AddItem(product, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// List returns a page of orders. Staff see every order, other users only their own.
func (s *OrderService) List(ctx context.Context, who Requester, f OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	filter := f.ToDomain()
	if !who.IsStaff {
		cust, err := s.customers.ResolveForUser(ctx, who.UserID)
		if err != nil {
			return nil, err
		}
		filter.CustomerID = &cust.ID
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns an order. Another customer's order is reported as not found.
func (s *OrderService) Get(ctx context.Context, who Requester, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.find(ctx, who, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// UpdatePaymentStatus moves an order to a new payment status
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.setPaymentStatus(ctx, o, order.PaymentStatus(req.PaymentStatus)); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// BulkSetPaymentStatus applies a payment status to several orders. Orders that
// are missing or cannot make the transition are skipped.
func (s *OrderService) BulkSetPaymentStatus(ctx context.Context, req BulkPaymentStatusRequest) (*BulkPaymentStatusResponse, error) {
	status := order.PaymentStatus(req.PaymentStatus)
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_STATUS", "Payment status must be one of P, C, F")
	}

	resp := &BulkPaymentStatusResponse{Skipped: make([]uuid.UUID, 0)}
	for _, id := range req.IDs {
		o, err := s.orderRepo.FindByID(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			resp.Skipped = append(resp.Skipped, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		err = s.setPaymentStatus(ctx, o, status)
		var de *shared.DomainError
		if errors.As(err, &de) {
			resp.Skipped = append(resp.Skipped, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		resp.Updated++
	}
	return resp, nil
}

func (s *OrderService) setPaymentStatus(ctx context.Context, o *order.Order, status order.PaymentStatus) error {
	from := o.PaymentStatus
	if err := o.SetPaymentStatus(status); err != nil {
		return err
	}
	if from == o.PaymentStatus {
		return nil
	}
	if err := s.orderRepo.UpdatePaymentStatus(ctx, o); err != nil {
		return err
	}
	s.logger.Info("payment status changed",
		zap.String("order_id", o.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(status)))
	s.publish(ctx, o.PullDomainEvents()...)
	return nil
}

// Delete removes an order with its items
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, order.NewOrderDeletedEvent(o))
	return nil
}

// RenderInvoice prints the invoice of an order the requester may see
func (s *OrderService) RenderInvoice(ctx context.Context, who Requester, id uuid.UUID, format string) (*RenderedInvoice, error) {
	o, err := s.find(ctx, who, id)
	if err != nil {
		return nil, err
	}
	cust, err := s.customerRepo.FindByID(ctx, o.CustomerID)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		Number:       "INV-" + o.ShortID(),
		IssuedAt:     time.Now(),
		CustomerName: cust.FullName(),
		Email:        cust.Email,
		Order:        ToOrderResponse(o),
	}
	if cust.Address != nil {
		inv.Street, inv.City = cust.Address.Street, cust.Address.City
	}

	switch format {
	case InvoiceFormatPDF:
		body, err := s.invoices.RenderPDF(ctx, inv)
		if err != nil {
			return nil, err
		}
		return &RenderedInvoice{ContentType: "application/pdf", FileName: inv.Number + ".pdf", Body: body}, nil
	default:
		body, err := s.invoices.RenderHTML(ctx, inv)
		if err != nil {
			return nil, err
		}
		return &RenderedInvoice{ContentType: "text/html; charset=utf-8", FileName: inv.Number + ".html", Body: body}, nil
	}
}

func (s *OrderService) find(ctx context.Context, who Requester, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if who.IsStaff {
		return o, nil
	}
	cust, err := s.customers.ResolveForUser(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(cust.ID) {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (s *OrderService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events", zap.Error(err))
	}
}
