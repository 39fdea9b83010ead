package customer

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
)

// Customer list filter keys understood by the repository
const filterMembership = "membership"

// CreateCustomerRequest creates a customer profile for an existing user
type CreateCustomerRequest struct {
	UserID     uuid.UUID `json:"user_id" binding:"required"`
	FirstName  string    `json:"first_name" binding:"required,min=1,max=255"`
	LastName   string    `json:"last_name" binding:"required,min=1,max=255"`
	Email      string    `json:"email" binding:"required,email,max=254"`
	Phone      string    `json:"phone" binding:"max=255"`
	BirthDate  string    `json:"birth_date" binding:"omitempty,datetime=2006-01-02" example:"1990-04-21"`
	Membership string    `json:"membership" binding:"omitempty,oneof=B S G"`
}

// UpdateCustomerRequest partially updates a customer. Only admins may change membership.
type UpdateCustomerRequest struct {
	FirstName  *string `json:"first_name" binding:"omitempty,min=1,max=255"`
	LastName   *string `json:"last_name" binding:"omitempty,min=1,max=255"`
	Email      *string `json:"email" binding:"omitempty,email,max=254"`
	Phone      *string `json:"phone" binding:"omitempty,max=255"`
	BirthDate  *string `json:"birth_date" binding:"omitempty" example:"1990-04-21"`
	Membership *string `json:"membership" binding:"omitempty,oneof=B S G"`
}

// AddressRequest creates or replaces an address
type AddressRequest struct {
	Street string `json:"street" binding:"required,min=1,max=255"`
	City   string `json:"city" binding:"required,min=1,max=255"`
}

// SetMembershipRequest bulk-updates membership
type SetMembershipRequest struct {
	IDs        []uuid.UUID `json:"ids" binding:"required,min=1,dive,required"`
	Membership string      `json:"membership" binding:"required,oneof=B S G"`
}

// SetMembershipResponse reports how many customers changed
type SetMembershipResponse struct {
	Updated int64 `json:"updated"`
}

// CustomerListFilter holds the list query parameters
type CustomerListFilter struct {
	Search     string `form:"search"`
	Membership string `form:"membership" binding:"omitempty,oneof=B S G"`
	Ordering   string `form:"ordering" binding:"omitempty,oneof=first_name -first_name last_name -last_name"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToDomain converts the query to a repository filter
func (f CustomerListFilter) ToDomain() shared.Filter {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, Search: f.Search}.Normalize()
	if f.Membership != "" {
		filter.Filters[filterMembership] = f.Membership
	}
	if f.Ordering != "" {
		filter.OrderBy, filter.OrderDir = f.Ordering, "asc"
		if f.Ordering[0] == '-' {
			filter.OrderBy, filter.OrderDir = f.Ordering[1:], "desc"
		}
	}
	return filter
}

// AddressResponse represents an address in API responses
type AddressResponse struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
}

// ToAddressResponse converts a domain Address
func ToAddressResponse(a *customer.Address) AddressResponse {
	return AddressResponse{CustomerID: a.CustomerID, Street: a.Street, City: a.City}
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	FirstName       string           `json:"first_name"`
	LastName        string           `json:"last_name"`
	Email           string           `json:"email"`
	Phone           string           `json:"phone"`
	BirthDate       *string          `json:"birth_date" example:"1990-04-21"`
	Membership      string           `json:"membership" example:"B"`
	MembershipLabel string           `json:"membership_label" example:"Bronze"`
	Address         *AddressResponse `json:"address,omitempty"`
	OrdersCount     *int64           `json:"orders_count,omitempty"`
}

// ToCustomerResponse converts a domain Customer
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:              c.ID,
		UserID:          c.UserID,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Email:           c.Email,
		Phone:           c.Phone,
		Membership:      string(c.Membership),
		MembershipLabel: c.Membership.Label(),
	}
	if c.BirthDate != nil {
		s := c.BirthDate.Format(customer.BirthDateLayout)
		resp.BirthDate = &s
	}
	if c.Address != nil {
		a := ToAddressResponse(c.Address)
		resp.Address = &a
	}
	return resp
}

func withOrdersCount(resp CustomerResponse, n int64) CustomerResponse {
	resp.OrdersCount = &n
	return resp
}
