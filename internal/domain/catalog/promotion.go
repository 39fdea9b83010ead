package catalog

import (
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// Promotion is a discount campaign that products can be linked to
type Promotion struct {
	shared.BaseEntity
	Description string  `gorm:"type:varchar(255);not null"`
	Discount    float64 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Promotion) TableName() string {
	return "promotions"
}

// NewPromotion creates a new promotion
func NewPromotion(description string, discount float64) (*Promotion, error) {
	p := &Promotion{BaseEntity: shared.NewBaseEntity()}
	if err := p.Update(description, discount); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces description and discount
func (p *Promotion) Update(description string, discount float64) error {
	description = strings.TrimSpace(description)
	if description == "" || len(description) > 255 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description must be 1-255 characters")
	}
	if discount < 0 {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	p.Description = description
	p.Discount = discount
	p.UpdatedAt = time.Now()
	return nil
}
