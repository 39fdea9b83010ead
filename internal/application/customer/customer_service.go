package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service errors
var (
	ErrCustomerHasOrders = shared.NewDomainError("CUSTOMER_HAS_ORDERS",
		"Customer cannot be deleted because it has orders")
	ErrEmailTaken        = shared.NewDomainError("ALREADY_EXISTS", "A customer with this email already exists")
	ErrEmailOwnedByOther = shared.NewDomainError("ALREADY_EXISTS",
		"The email belongs to another account")
)

// CustomerService handles customer profiles and addresses
type CustomerService struct {
	customerRepo customer.CustomerRepository
	addressRepo  customer.AddressRepository
	userRepo     identity.UserRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo customer.CustomerRepository,
	addressRepo customer.AddressRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		addressRepo:  addressRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// Create creates a customer profile for an existing user
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_USER", "User does not exist")
		}
		return nil, err
	}
	if _, err := s.customerRepo.FindByUserID(ctx, req.UserID); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "User already has a customer profile")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, req.Email, uuid.Nil, req.UserID); err != nil {
		return nil, err
	}

	c, err := customer.NewCustomer(req.UserID, req.FirstName, req.LastName, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.applyOptional(c, &req.Phone, &req.BirthDate); err != nil {
		return nil, err
	}
	if req.Membership != "" {
		if err := c.SetMembership(customer.Membership(req.Membership)); err != nil {
			return nil, err
		}
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := withOrdersCount(ToCustomerResponse(c), 0)
	return &resp, nil
}

// GetByID returns a customer with its order count
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.customerRepo.CountOrders(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := withOrdersCount(ToCustomerResponse(c), n)
	return &resp, nil
}

// List returns a page of customers with their order counts
func (s *CustomerService) List(ctx context.Context, f CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
	filter := f.ToDomain()
	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	counts, err := s.customerRepo.OrderCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = withOrdersCount(ToCustomerResponse(&customers[i]), counts[customers[i].ID])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update applies the fields present in req
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.patch(ctx, c, req); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a customer without orders. The address goes with it.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := s.customerRepo.CountOrders(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCustomerHasOrders
	}
	return s.customerRepo.Delete(ctx, id)
}

// SetMembership changes the membership of every listed customer
func (s *CustomerService) SetMembership(ctx context.Context, req SetMembershipRequest) (*SetMembershipResponse, error) {
	m := customer.Membership(req.Membership)
	if !m.IsValid() {
		return nil, shared.NewDomainError("INVALID_MEMBERSHIP", "Membership must be one of B, S, G")
	}
	updated, err := s.customerRepo.SetMembership(ctx, req.IDs, m)
	if err != nil {
		return nil, err
	}
	s.logger.Info("membership updated",
		zap.String("membership", req.Membership),
		zap.Int64("updated", updated))
	return &SetMembershipResponse{Updated: updated}, nil
}

// GetMe returns the profile of the authenticated user, creating it on first access
func (s *CustomerService) GetMe(ctx context.Context, userID uuid.UUID) (*CustomerResponse, error) {
	c, err := s.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// UpdateMe updates the profile of the authenticated user. Membership is ignored.
func (s *CustomerService) UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	c, err := s.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	req.Membership = nil
	if err := s.patch(ctx, c, req); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// ResolveForUser returns the customer of a user. A Bronze profile is created
// from the user record when none exists yet.
func (s *CustomerService) ResolveForUser(ctx context.Context, userID uuid.UUID) (*customer.Customer, error) {
	c, err := s.customerRepo.FindByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	firstName, lastName := user.FirstName, user.LastName
	if firstName == "" {
		firstName = user.Username
	}
	if lastName == "" {
		lastName = user.Username
	}
	c, err = customer.NewCustomer(user.ID, firstName, lastName, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		// either a concurrent request created it first or another
		// profile already holds the account email
		existing, findErr := s.customerRepo.FindByUserID(ctx, userID)
		if errors.Is(findErr, shared.ErrNotFound) {
			s.logger.Warn("customer profile blocked by email collision",
				zap.String("user_id", userID.String()))
			return nil, ErrEmailTaken
		}
		return existing, findErr
	}
	s.logger.Info("customer profile created", zap.String("user_id", userID.String()))
	return c, nil
}

// GetAddress returns the address of a customer
func (s *CustomerService) GetAddress(ctx context.Context, customerID uuid.UUID) (*AddressResponse, error) {
	a, err := s.addressRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}

// UpsertAddress creates or replaces the address of a customer
func (s *CustomerService) UpsertAddress(ctx context.Context, customerID uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	a, err := s.addressRepo.FindByCustomer(ctx, customerID)
	switch {
	case err == nil:
		if err := a.Update(req.Street, req.City); err != nil {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		if a, err = customer.NewAddress(customerID, req.Street, req.City); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	if err := s.addressRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}

// DeleteAddress removes the address of a customer
func (s *CustomerService) DeleteAddress(ctx context.Context, customerID uuid.UUID) error {
	if _, err := s.addressRepo.FindByCustomer(ctx, customerID); err != nil {
		return err
	}
	return s.addressRepo.Delete(ctx, customerID)
}

// GetMyAddress returns the address of the authenticated user
func (s *CustomerService) GetMyAddress(ctx context.Context, userID uuid.UUID) (*AddressResponse, error) {
	c, err := s.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.GetAddress(ctx, c.ID)
}

// UpsertMyAddress creates or replaces the address of the authenticated user
func (s *CustomerService) UpsertMyAddress(ctx context.Context, userID uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	c, err := s.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.UpsertAddress(ctx, c.ID, req)
}

// DeleteMyAddress removes the address of the authenticated user
func (s *CustomerService) DeleteMyAddress(ctx context.Context, userID uuid.UUID) error {
	c, err := s.ResolveForUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.DeleteAddress(ctx, c.ID)
}

func (s *CustomerService) patch(ctx context.Context, c *customer.Customer, req UpdateCustomerRequest) error {
	if req.FirstName != nil || req.LastName != nil || req.Email != nil {
		firstName, lastName, email := c.FirstName, c.LastName, c.Email
		if req.FirstName != nil {
			firstName = *req.FirstName
		}
		if req.LastName != nil {
			lastName = *req.LastName
		}
		if req.Email != nil {
			email = *req.Email
			if err := s.ensureEmailFree(ctx, email, c.ID, c.UserID); err != nil {
				return err
			}
		}
		if err := c.UpdateProfile(firstName, lastName, email); err != nil {
			return err
		}
	}
	if err := s.applyOptional(c, req.Phone, req.BirthDate); err != nil {
		return err
	}
	if req.Membership != nil {
		if err := c.SetMembership(customer.Membership(*req.Membership)); err != nil {
			return err
		}
	}
	return s.customerRepo.Save(ctx, c)
}

func (s *CustomerService) applyOptional(c *customer.Customer, phone, birthDate *string) error {
	if phone != nil && *phone != c.Phone {
		if err := c.SetPhone(*phone); err != nil {
			return err
		}
	}
	if birthDate != nil {
		date, err := customer.ParseBirthDate(*birthDate)
		if err != nil {
			return err
		}
		if err := c.SetBirthDate(date); err != nil {
			return err
		}
	}
	return nil
}

// ensureEmailFree rejects an email held by another customer profile or by
// the account of a user other than userID.
func (s *CustomerService) ensureEmailFree(ctx context.Context, email string, excludeID, userID uuid.UUID) error {
	email = strings.ToLower(strings.TrimSpace(email))
	exists, err := s.customerRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailTaken
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil || !exists {
		return err
	}
	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if strings.EqualFold(owner.Email, email) {
		return nil
	}
	return ErrEmailOwnedByOther
}
