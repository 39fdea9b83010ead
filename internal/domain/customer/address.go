package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Address is the single postal address of a customer, keyed by the customer
type Address struct {
	CustomerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Street     string    `gorm:"type:varchar(255);not null"`
	City       string    `gorm:"type:varchar(255);not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// NewAddress creates an address for a customer
func NewAddress(customerID uuid.UUID, street, city string) (*Address, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	now := time.Now()
	a := &Address{CustomerID: customerID, CreatedAt: now}
	if err := a.Update(street, city); err != nil {
		return nil, err
	}
	a.UpdatedAt = now
	return a, nil
}

// Update replaces street and city
func (a *Address) Update(street, city string) error {
	street = strings.TrimSpace(street)
	city = strings.TrimSpace(city)
	if street == "" || city == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Street and city are required")
	}
	if len(street) > 255 || len(city) > 255 {
		return shared.NewDomainError("INVALID_ADDRESS", "Street and city cannot exceed 255 characters")
	}
	a.Street = street
	a.City = city
	a.UpdatedAt = time.Now()
	return nil
}
