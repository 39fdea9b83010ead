package customer

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Membership is the loyalty tier of a customer
type Membership string

// Membership tiers
const (
	MembershipBronze Membership = "B"
	MembershipSilver Membership = "S"
	MembershipGold   Membership = "G"
)

// IsValid reports whether m is a known tier
func (m Membership) IsValid() bool {
	switch m {
	case MembershipBronze, MembershipSilver, MembershipGold:
		return true
	}
	return false
}

// Label returns the human readable tier name
func (m Membership) Label() string {
	switch m {
	case MembershipBronze:
		return "Bronze"
	case MembershipSilver:
		return "Silver"
	case MembershipGold:
		return "Gold"
	}
	return string(m)
}

// BirthDateLayout is the wire format of birth dates
const BirthDateLayout = "2006-01-02"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Customer is the shopping profile attached one-to-one to a user account
type Customer struct {
	shared.BaseAggregateRoot
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	FirstName  string     `gorm:"type:varchar(255);not null"`
	LastName   string     `gorm:"type:varchar(255);not null"`
	Email      string     `gorm:"type:varchar(254);not null;uniqueIndex"`
	Phone      string     `gorm:"type:varchar(255)"`
	BirthDate  *time.Time `gorm:"type:date"`
	Membership Membership `gorm:"type:varchar(1);not null;default:'B'"`
	Address    *Address   `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a Bronze customer for the given user
func NewCustomer(userID uuid.UUID, firstName, lastName, email string) (*Customer, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required")
	}
	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Membership:        MembershipBronze,
	}
	if err := c.applyProfile(firstName, lastName, email); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateProfile replaces the name and email
func (c *Customer) UpdateProfile(firstName, lastName, email string) error {
	if err := c.applyProfile(firstName, lastName, email); err != nil {
		return err
	}
	c.touch()
	return nil
}

// SetPhone sets the phone number
func (c *Customer) SetPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if len(phone) > 255 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 255 characters")
	}
	c.Phone = phone
	c.touch()
	return nil
}

// SetBirthDate sets or clears the birth date. Dates in the future are rejected.
func (c *Customer) SetBirthDate(date *time.Time) error {
	if date != nil {
		d := date.UTC().Truncate(24 * time.Hour)
		if d.After(time.Now()) {
			return shared.NewDomainError("INVALID_BIRTH_DATE", "Birth date cannot be in the future")
		}
		date = &d
	}
	c.BirthDate = date
	c.touch()
	return nil
}

// SetMembership changes the loyalty tier
func (c *Customer) SetMembership(m Membership) error {
	if !m.IsValid() {
		return shared.NewDomainError("INVALID_MEMBERSHIP", "Membership must be one of B, S, G")
	}
	c.Membership = m
	c.touch()
	return nil
}

// FullName returns "first last"
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c *Customer) applyProfile(firstName, lastName, email string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.ToLower(strings.TrimSpace(email))
	if firstName == "" || lastName == "" {
		return shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}
	if len(firstName) > 255 || len(lastName) > 255 {
		return shared.NewDomainError("INVALID_NAME", "Names cannot exceed 255 characters")
	}
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	c.FirstName = firstName
	c.LastName = lastName
	c.Email = email
	return nil
}

func (c *Customer) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// ParseBirthDate parses a YYYY-MM-DD date; empty input yields nil
func ParseBirthDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(BirthDateLayout, s)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_BIRTH_DATE", "Birth date must use YYYY-MM-DD")
	}
	return &t, nil
}
