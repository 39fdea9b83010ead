package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockProductRepository struct {
	catalog.ProductRepository
	mock.Mock
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

type MockCartRepository struct {
	cart.CartRepository
	mock.Mock
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter order.OrderFilter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter order.OrderFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) UpdatePaymentStatus(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepository) Summarize(ctx context.Context, from, to time.Time) (*order.PeriodSummary, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(*order.PeriodSummary), args.Error(1)
}

func (m *MockOrderRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]order.ProductSales, error) {
	args := m.Called(ctx, from, to, limit)
	return args.Get(0).([]order.ProductSales), args.Error(1)
}

type MockCustomerRepository struct {
	customer.CustomerRepository
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

// fakeScope runs the unit of work directly against the mocked repositories
type fakeScope struct {
	products *MockProductRepository
	carts    *MockCartRepository
	orders   *MockOrderRepository
	saved    []shared.DomainEvent
	saveErr  error
}

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *fakeScope) ProductRepo() catalog.ProductRepository { return s.products }
func (s *fakeScope) CartRepo() cart.CartRepository { return s.carts }
func (s *fakeScope) OrderRepo() order.OrderRepository { return s.orders }
func (s *fakeScope) CustomerRepo() customer.CustomerRepository { return nil }

func (s *fakeScope) SaveEvents(_ context.Context, events ...shared.DomainEvent) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, events...)
	return nil
}

// staticResolver maps users to fixed customers
type staticResolver map[uuid.UUID]*customer.Customer

func (r staticResolver) ResolveForUser(_ context.Context, userID uuid.UUID) (*customer.Customer, error) {
	if c, ok := r[userID]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type stubRenderer struct {
	last *Invoice
}

func (r *stubRenderer) RenderHTML(_ context.Context, inv *Invoice) ([]byte, error) {
	r.last = inv
	return []byte("<html>" + inv.Number + "</html>"), nil
}

func (r *stubRenderer) RenderPDF(context.Context, *Invoice) ([]byte, error) {
	return nil, ErrPDFUnavailable
}

type orderFixture struct {
	scope     *fakeScope
	customers *MockCustomerRepository
	events    *recordingPublisher
	renderer  *stubRenderer
	userID    uuid.UUID
	customer  *customer.Customer
	triggered int
	changed   []uuid.UUID
	svc       *OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	userID := uuid.New()
	cust, err := customer.NewCustomer(userID, "Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)

	f := &orderFixture{
		scope: &fakeScope{
			products: new(MockProductRepository),
			carts:    new(MockCartRepository),
			orders:   new(MockOrderRepository),
		},
		customers: new(MockCustomerRepository),
		events:    &recordingPublisher{},
		renderer:  &stubRenderer{},
		userID:    userID,
		customer:  cust,
	}
	f.svc = NewOrderService(
		f.scope, f.scope.orders, f.customers,
		staticResolver{userID: cust},
		f.events, f.renderer, zap.NewNop(),
		WithOutboxTrigger(func() { f.triggered++ }),
		WithStockChangeHook(func(_ context.Context, ids ...uuid.UUID) { f.changed = append(f.changed, ids...) }),
	)
	return f
}

func newTestProduct(t *testing.T, title, price string, inventory int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(title, uuid.NewString(), decimal.RequireFromString(price), inventory, uuid.New())
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func newTestOrder(t *testing.T, customerID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder(customerID)
	require.NoError(t, err)
	_, err = o.AddItem(newTestProduct(t, "Mug", "5", 10), 2)
	require.NoError(t, err)
	return o
}

func TestOrderService_PlaceOrder(t *testing.T) {
	f := newOrderFixture(t)
	mug := newTestProduct(t, "Mug", "4.50", 10)
	plate := newTestProduct(t, "Plate", "12", 3)
	c := cart.NewCart()
	_, err := c.AddItem(mug, 2)
	require.NoError(t, err)
	_, err = c.AddItem(plate, 3)
	require.NoError(t, err)

	f.scope.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.scope.products.On("FindByIDForUpdate", mock.Anything, mug.ID).Return(mug, nil)
	f.scope.products.On("FindByIDForUpdate", mock.Anything, plate.ID).Return(plate, nil)
	f.scope.products.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.scope.orders.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	f.scope.carts.On("Delete", mock.Anything, c.ID).Return(nil)

	resp, err := f.svc.PlaceOrder(t.Context(), f.userID, PlaceOrderRequest{CartID: c.ID})
	require.NoError(t, err)

	assert.Equal(t, f.customer.ID, resp.CustomerID)
	assert.Equal(t, "P", resp.PaymentStatus)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, "45", resp.TotalPrice.String())
	assert.Equal(t, 8, mug.Inventory)
	assert.Equal(t, 0, plate.Inventory)

	require.Len(t, f.scope.saved, 1)
	placed, ok := f.scope.saved[0].(*order.OrderPlacedEvent)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", placed.Email)
	assert.Equal(t, "Ada Lovelace", placed.CustomerName)
	assert.Equal(t, "45", placed.Total.String())

	assert.Equal(t, 1, f.triggered)
	assert.ElementsMatch(t, []uuid.UUID{mug.ID, plate.ID}, f.changed)
	f.scope.carts.AssertCalled(t, "Delete", mock.Anything, c.ID)
}

func TestOrderService_PlaceOrderCapturesUnitPrice(t *testing.T) {
	f := newOrderFixture(t)
	mug := newTestProduct(t, "Mug", "4.50", 10)
	c := cart.NewCart()
	_, err := c.AddItem(mug, 1)
	require.NoError(t, err)

	f.scope.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.scope.products.On("FindByIDForUpdate", mock.Anything, mug.ID).Return(mug, nil)
	f.scope.products.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.scope.carts.On("Delete", mock.Anything, c.ID).Return(nil)

	var created *order.Order
	f.scope.orders.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = args.Get(1).(*order.Order) }).
		Return(nil)

	_, err = f.svc.PlaceOrder(t.Context(), f.userID, PlaceOrderRequest{CartID: c.ID})
	require.NoError(t, err)

	require.NoError(t, mug.SetUnitPrice(decimal.NewFromInt(99)))
	require.Len(t, created.Items, 1)
	assert.Equal(t, "4.5", created.Items[0].UnitPrice.String())
}

func TestOrderService_PlaceOrderFailures(t *testing.T) {
	t.Run("unknown cart", func(t *testing.T) {
		f := newOrderFixture(t)
		f.scope.carts.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		_, err := f.svc.PlaceOrder(t.Context(), f.userID, PlaceOrderRequest{CartID: uuid.New()})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Zero(t, f.triggered)
	})

	t.Run("customer cannot be resolved", func(t *testing.T) {
		f := newOrderFixture(t)

		_, err := f.svc.PlaceOrder(t.Context(), uuid.New(), PlaceOrderRequest{CartID: uuid.New()})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.scope.carts.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		f.scope.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.scope.saved)
		assert.Zero(t, f.triggered)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newOrderFixture(t)
		c := cart.NewCart()
		f.scope.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)

		_, err := f.svc.PlaceOrder(t.Context(), f.userID, PlaceOrderRequest{CartID: c.ID})
		assert.ErrorIs(t, err, ErrCartEmpty)
		f.scope.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		f := newOrderFixture(t)
		mug := newTestProduct(t, "Mug", "4.50", 1)
		c := cart.NewCart()
		_, err := c.AddItem(mug, 2)
		require.NoError(t, err)

		f.scope.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		f.scope.products.On("FindByIDForUpdate", mock.Anything, mug.ID).Return(mug, nil)

		_, err = f.svc.PlaceOrder(t.Context(), f.userID, PlaceOrderRequest{CartID: c.ID})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INSUFFICIENT_STOCK", de.Code)
		assert.Contains(t, de.Message, "available 1")
		assert.Equal(t, 1, mug.Inventory)
		f.scope.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.scope.carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		assert.Empty(t, f.scope.saved)
	})

	t.Run("outbox write fails", func(t *testing.T) {
		f := newOrderFixture(t)
		f.scope.saveErr = errors.New("disk full")
		mug := newTestProduct(t, "Mug", "4.50", 5)
		c := cart.NewCart()
		_, err := c.AddItem(mug, 1)
		require.NoError(t, err)

		f.scope.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		f.scope.products.On("FindByIDForUpdate", mock.Anything, mug.ID).Return(mug, nil)
		f.scope.products.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.scope.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.scope.carts.On("Delete", mock.Anything, c.ID).Return(nil)

		_, err = f.svc.PlaceOrder(t.Context(), f.userID, PlaceOrderRequest{CartID: c.ID})
		assert.EqualError(t, err, "disk full")
		assert.Zero(t, f.triggered)
	})
}

func TestOrderService_ListScopesNonStaff(t *testing.T) {
	f := newOrderFixture(t)
	other := uuid.New()

	own := mock.MatchedBy(func(filter order.OrderFilter) bool {
		return filter.CustomerID != nil && *filter.CustomerID == f.customer.ID
	})
	f.scope.orders.On("FindAll", mock.Anything, own).Return([]order.Order{*newTestOrder(t, f.customer.ID)}, nil)
	f.scope.orders.On("Count", mock.Anything, own).Return(int64(1), nil)

	page, err := f.svc.List(t.Context(), Requester{UserID: f.userID}, OrderListFilter{CustomerID: &other})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	f.scope.orders.AssertExpectations(t)
}

func TestOrderService_ListStaffFilters(t *testing.T) {
	f := newOrderFixture(t)
	customerID := uuid.New()

	match := mock.MatchedBy(func(filter order.OrderFilter) bool {
		return filter.CustomerID != nil && *filter.CustomerID == customerID &&
			filter.PaymentStatus == order.PaymentComplete
	})
	f.scope.orders.On("FindAll", mock.Anything, match).Return([]order.Order{}, nil)
	f.scope.orders.On("Count", mock.Anything, match).Return(int64(0), nil)

	_, err := f.svc.List(t.Context(), Requester{UserID: uuid.New(), IsStaff: true},
		OrderListFilter{CustomerID: &customerID, PaymentStatus: "C"})
	require.NoError(t, err)
	f.scope.orders.AssertExpectations(t)
}

func TestOrderService_GetHidesOtherCustomersOrders(t *testing.T) {
	f := newOrderFixture(t)
	foreign := newTestOrder(t, uuid.New())
	f.scope.orders.On("FindByID", mock.Anything, foreign.ID).Return(foreign, nil)

	_, err := f.svc.Get(t.Context(), Requester{UserID: f.userID}, foreign.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	resp, err := f.svc.Get(t.Context(), Requester{UserID: uuid.New(), IsStaff: true}, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, foreign.ID, resp.ID)
}

func TestOrderService_UpdatePaymentStatus(t *testing.T) {
	t.Run("pending to complete", func(t *testing.T) {
		f := newOrderFixture(t)
		o := newTestOrder(t, f.customer.ID)
		f.scope.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.scope.orders.On("UpdatePaymentStatus", mock.Anything, o).Return(nil)

		resp, err := f.svc.UpdatePaymentStatus(t.Context(), o.ID, UpdateOrderRequest{PaymentStatus: "C"})
		require.NoError(t, err)
		assert.Equal(t, "C", resp.PaymentStatus)
		require.Len(t, f.events.events, 1)
		assert.Equal(t, order.EventTypeOrderPaymentStatusChanged, f.events.events[0].EventType())
	})

	t.Run("complete is terminal", func(t *testing.T) {
		f := newOrderFixture(t)
		o := newTestOrder(t, f.customer.ID)
		o.PaymentStatus = order.PaymentComplete
		f.scope.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.UpdatePaymentStatus(t.Context(), o.ID, UpdateOrderRequest{PaymentStatus: "P"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.scope.orders.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		f := newOrderFixture(t)
		o := newTestOrder(t, f.customer.ID)
		f.scope.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.UpdatePaymentStatus(t.Context(), o.ID, UpdateOrderRequest{PaymentStatus: "P"})
		require.NoError(t, err)
		f.scope.orders.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything)
	})
}

func TestOrderService_BulkSetPaymentStatus(t *testing.T) {
	f := newOrderFixture(t)
	pending := newTestOrder(t, f.customer.ID)
	complete := newTestOrder(t, f.customer.ID)
	complete.PaymentStatus = order.PaymentComplete
	missing := uuid.New()

	f.scope.orders.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	f.scope.orders.On("FindByID", mock.Anything, complete.ID).Return(complete, nil)
	f.scope.orders.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)
	f.scope.orders.On("UpdatePaymentStatus", mock.Anything, pending).Return(nil)

	resp, err := f.svc.BulkSetPaymentStatus(t.Context(), BulkPaymentStatusRequest{
		IDs:           []uuid.UUID{pending.ID, complete.ID, missing},
		PaymentStatus: "F",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updated)
	assert.ElementsMatch(t, []uuid.UUID{complete.ID, missing}, resp.Skipped)
}

func TestOrderService_Delete(t *testing.T) {
	f := newOrderFixture(t)
	o := newTestOrder(t, f.customer.ID)
	f.scope.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.scope.orders.On("Delete", mock.Anything, o.ID).Return(nil)

	require.NoError(t, f.svc.Delete(t.Context(), o.ID))
	require.Len(t, f.events.events, 1)
	assert.Equal(t, order.EventTypeOrderDeleted, f.events.events[0].EventType())
}

func TestOrderService_RenderInvoice(t *testing.T) {
	f := newOrderFixture(t)
	o := newTestOrder(t, f.customer.ID)
	f.customer.Address = &customer.Address{CustomerID: f.customer.ID, Street: "1 Main St", City: "Lisbon"}
	f.scope.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.customers.On("FindByID", mock.Anything, f.customer.ID).Return(f.customer, nil)

	doc, err := f.svc.RenderInvoice(t.Context(), Requester{UserID: f.userID}, o.ID, InvoiceFormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)
	assert.Equal(t, "INV-"+o.ShortID()+".html", doc.FileName)
	assert.Equal(t, "Lisbon", f.renderer.last.City)
	assert.Equal(t, "10", f.renderer.last.Order.TotalPrice.String())

	_, err = f.svc.RenderInvoice(t.Context(), Requester{UserID: f.userID}, o.ID, InvoiceFormatPDF)
	assert.ErrorIs(t, err, ErrPDFUnavailable)
}
