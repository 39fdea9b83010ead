package customer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCustomerRepository) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) CountOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) OrderCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockCustomerRepository) SetMembership(ctx context.Context, ids []uuid.UUID, membership customer.Membership) (int64, error) {
	args := m.Called(ctx, ids, membership)
	return args.Get(0).(int64), args.Error(1)
}

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*customer.Address, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Address), args.Error(1)
}

func (m *MockAddressRepository) Save(ctx context.Context, a *customer.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, customerID uuid.UUID) error {
	return m.Called(ctx, customerID).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CountStaff(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type customerFixture struct {
	customers *MockCustomerRepository
	addresses *MockAddressRepository
	users     *MockUserRepository
	svc       *CustomerService
}

func newCustomerFixture() *customerFixture {
	f := &customerFixture{
		customers: new(MockCustomerRepository),
		addresses: new(MockAddressRepository),
		users:     new(MockUserRepository),
	}
	f.svc = NewCustomerService(f.customers, f.addresses, f.users, zap.NewNop())
	return f
}

func newTestCustomer(t *testing.T) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(uuid.New(), "Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)
	return c
}

func TestCustomerService_GetMeCreatesBronzeProfile(t *testing.T) {
	f := newCustomerFixture()
	user, err := identity.NewUser("ada", "ada@example.com", "s3cretpass")
	require.NoError(t, err)

	f.customers.On("FindByUserID", mock.Anything, user.ID).Return(nil, shared.ErrNotFound)
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.customers.On("Save", mock.Anything, mock.AnythingOfType("*customer.Customer")).Return(nil)

	resp, err := f.svc.GetMe(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, "B", resp.Membership)
	assert.Equal(t, "Bronze", resp.MembershipLabel)
	assert.Equal(t, "ada", resp.FirstName)
	assert.Equal(t, "ada@example.com", resp.Email)
	assert.Nil(t, resp.OrdersCount)
}

func TestCustomerService_GetMeConcurrentCreate(t *testing.T) {
	f := newCustomerFixture()
	user, err := identity.NewUser("ada", "ada@example.com", "s3cretpass")
	require.NoError(t, err)
	existing := newTestCustomer(t)

	f.customers.On("FindByUserID", mock.Anything, user.ID).Return(nil, shared.ErrNotFound).Once()
	f.customers.On("FindByUserID", mock.Anything, user.ID).Return(existing, nil).Once()
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.customers.On("Save", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

	resp, err := f.svc.GetMe(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID)
}

func TestCustomerService_UpdateMeIgnoresMembership(t *testing.T) {
	f := newCustomerFixture()
	c := newTestCustomer(t)
	f.customers.On("FindByUserID", mock.Anything, c.UserID).Return(c, nil)
	f.customers.On("Save", mock.Anything, c).Return(nil)

	phone, gold, birth := "555-0100", "G", "1990-04-21"
	resp, err := f.svc.UpdateMe(t.Context(), c.UserID, UpdateCustomerRequest{
		Phone: &phone, Membership: &gold, BirthDate: &birth,
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", resp.Phone)
	assert.Equal(t, "B", resp.Membership)
	require.NotNil(t, resp.BirthDate)
	assert.Equal(t, "1990-04-21", *resp.BirthDate)
}

func TestCustomerService_UpdateRejectsTakenEmail(t *testing.T) {
	f := newCustomerFixture()
	c := newTestCustomer(t)
	f.customers.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.customers.On("ExistsByEmail", mock.Anything, "taken@example.com", c.ID).Return(true, nil)

	email := "taken@example.com"
	_, err := f.svc.Update(t.Context(), c.ID, UpdateCustomerRequest{Email: &email})
	assert.ErrorIs(t, err, ErrEmailTaken)
	f.customers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomerService_UpdateMeEmailOfAnotherAccount(t *testing.T) {
	email := "bob@example.com"

	t.Run("rejects email of another user", func(t *testing.T) {
		f := newCustomerFixture()
		c := newTestCustomer(t)
		alice := &identity.User{Email: "ada@example.com"}
		f.customers.On("FindByUserID", mock.Anything, c.UserID).Return(c, nil)
		f.customers.On("ExistsByEmail", mock.Anything, email, c.ID).Return(false, nil)
		f.users.On("ExistsByEmail", mock.Anything, email).Return(true, nil)
		f.users.On("FindByID", mock.Anything, c.UserID).Return(alice, nil)

		_, err := f.svc.UpdateMe(t.Context(), c.UserID, UpdateCustomerRequest{Email: &email})
		assert.ErrorIs(t, err, ErrEmailOwnedByOther)
		assert.Equal(t, "ada@example.com", c.Email)
		f.customers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("accepts the account's own email", func(t *testing.T) {
		f := newCustomerFixture()
		c := newTestCustomer(t)
		owner := &identity.User{Email: "Bob@Example.com"}
		f.customers.On("FindByUserID", mock.Anything, c.UserID).Return(c, nil)
		f.customers.On("ExistsByEmail", mock.Anything, email, c.ID).Return(false, nil)
		f.users.On("ExistsByEmail", mock.Anything, email).Return(true, nil)
		f.users.On("FindByID", mock.Anything, c.UserID).Return(owner, nil)
		f.customers.On("Save", mock.Anything, c).Return(nil)

		resp, err := f.svc.UpdateMe(t.Context(), c.UserID, UpdateCustomerRequest{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, email, resp.Email)
	})
}

func TestCustomerService_GetMeEmailCollision(t *testing.T) {
	f := newCustomerFixture()
	bob, err := identity.NewUser("bob", "bob@example.com", "s3cretpass")
	require.NoError(t, err)

	f.customers.On("FindByUserID", mock.Anything, bob.ID).Return(nil, shared.ErrNotFound)
	f.users.On("FindByID", mock.Anything, bob.ID).Return(bob, nil)
	f.customers.On("Save", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

	_, err = f.svc.GetMe(t.Context(), bob.ID)
	require.ErrorIs(t, err, ErrEmailTaken)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
}

func TestCustomerService_Delete(t *testing.T) {
	t.Run("refused with orders", func(t *testing.T) {
		f := newCustomerFixture()
		c := newTestCustomer(t)
		f.customers.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		f.customers.On("CountOrders", mock.Anything, c.ID).Return(int64(1), nil)

		err := f.svc.Delete(t.Context(), c.ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CUSTOMER_HAS_ORDERS", de.Code)
		f.customers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("without orders", func(t *testing.T) {
		f := newCustomerFixture()
		c := newTestCustomer(t)
		f.customers.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		f.customers.On("CountOrders", mock.Anything, c.ID).Return(int64(0), nil)
		f.customers.On("Delete", mock.Anything, c.ID).Return(nil)

		assert.NoError(t, f.svc.Delete(t.Context(), c.ID))
	})
}

func TestCustomerService_Create(t *testing.T) {
	f := newCustomerFixture()
	userID := uuid.New()
	f.users.On("FindByID", mock.Anything, userID).Return(&identity.User{}, nil)
	f.customers.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	f.customers.On("ExistsByEmail", mock.Anything, "grace@example.com", uuid.Nil).Return(false, nil)
	f.users.On("ExistsByEmail", mock.Anything, "grace@example.com").Return(false, nil)
	f.customers.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.Create(t.Context(), CreateCustomerRequest{
		UserID: userID, FirstName: "Grace", LastName: "Hopper",
		Email: "grace@example.com", Membership: "S",
	})
	require.NoError(t, err)
	assert.Equal(t, "S", resp.Membership)
	require.NotNil(t, resp.OrdersCount)
	assert.Zero(t, *resp.OrdersCount)
}

func TestCustomerService_CreateForUserWithProfile(t *testing.T) {
	f := newCustomerFixture()
	existing := newTestCustomer(t)
	f.users.On("FindByID", mock.Anything, existing.UserID).Return(&identity.User{}, nil)
	f.customers.On("FindByUserID", mock.Anything, existing.UserID).Return(existing, nil)

	_, err := f.svc.Create(t.Context(), CreateCustomerRequest{
		UserID: existing.UserID, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestCustomerService_ListWithOrderCounts(t *testing.T) {
	f := newCustomerFixture()
	a, b := newTestCustomer(t), newTestCustomer(t)

	matchFilter := mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Search == "lo" && filter.Filters[filterMembership] == "G" &&
			filter.OrderBy == "last_name" && filter.OrderDir == "desc"
	})
	f.customers.On("FindAll", mock.Anything, matchFilter).Return([]customer.Customer{*a, *b}, nil)
	f.customers.On("Count", mock.Anything, matchFilter).Return(int64(2), nil)
	f.customers.On("OrderCounts", mock.Anything, []uuid.UUID{a.ID, b.ID}).
		Return(map[uuid.UUID]int64{b.ID: 5}, nil)

	page, err := f.svc.List(t.Context(), CustomerListFilter{Search: "lo", Membership: "G", Ordering: "-last_name"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(0), *page.Items[0].OrdersCount)
	assert.Equal(t, int64(5), *page.Items[1].OrdersCount)
}

func TestCustomerService_SetMembership(t *testing.T) {
	f := newCustomerFixture()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	f.customers.On("SetMembership", mock.Anything, ids, customer.MembershipGold).Return(int64(2), nil)

	resp, err := f.svc.SetMembership(t.Context(), SetMembershipRequest{IDs: ids, Membership: "G"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Updated)

	_, err = f.svc.SetMembership(t.Context(), SetMembershipRequest{IDs: ids, Membership: "X"})
	assert.Error(t, err)
}

func TestCustomerService_UpsertAddress(t *testing.T) {
	t.Run("creates", func(t *testing.T) {
		f := newCustomerFixture()
		c := newTestCustomer(t)
		f.customers.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		f.addresses.On("FindByCustomer", mock.Anything, c.ID).Return(nil, shared.ErrNotFound)
		f.addresses.On("Save", mock.Anything, mock.AnythingOfType("*customer.Address")).Return(nil)

		resp, err := f.svc.UpsertAddress(t.Context(), c.ID, AddressRequest{Street: "1 Main St", City: "Lisbon"})
		require.NoError(t, err)
		assert.Equal(t, c.ID, resp.CustomerID)
		assert.Equal(t, "Lisbon", resp.City)
	})

	t.Run("replaces", func(t *testing.T) {
		f := newCustomerFixture()
		c := newTestCustomer(t)
		existing, err := customer.NewAddress(c.ID, "Old St", "Porto")
		require.NoError(t, err)
		f.customers.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		f.addresses.On("FindByCustomer", mock.Anything, c.ID).Return(existing, nil)
		f.addresses.On("Save", mock.Anything, existing).Return(nil)

		resp, err := f.svc.UpsertAddress(t.Context(), c.ID, AddressRequest{Street: "New St", City: "Faro"})
		require.NoError(t, err)
		assert.Equal(t, "New St", resp.Street)
		assert.Equal(t, "New St", existing.Street)
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newCustomerFixture()
		f.customers.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		_, err := f.svc.UpsertAddress(t.Context(), uuid.New(), AddressRequest{Street: "x", City: "y"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCustomerService_DeleteMissingAddress(t *testing.T) {
	f := newCustomerFixture()
	id := uuid.New()
	f.addresses.On("FindByCustomer", mock.Anything, id).Return(nil, shared.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteAddress(t.Context(), id), shared.ErrNotFound)
	f.addresses.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
