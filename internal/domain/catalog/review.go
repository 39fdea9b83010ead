package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Review is a customer's free-text opinion of a product
type Review struct {
	shared.BaseEntity
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text;not null"`
	ReviewDate  time.Time `gorm:"type:date;not null"`
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// NewReview creates a review dated today
func NewReview(productID uuid.UUID, name, description string) (*Review, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID cannot be empty")
	}
	r := &Review{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
	}
	if err := r.Update(name, description); err != nil {
		return nil, err
	}
	r.ReviewDate = truncateToDate(r.CreatedAt)
	return r, nil
}

// Update replaces the reviewer name and text
func (r *Review) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 255 {
		return shared.NewDomainError("INVALID_NAME", "Name must be 1-255 characters")
	}
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	r.Name = name
	r.Description = description
	r.UpdatedAt = time.Now()
	return nil
}

// BelongsTo reports whether the review is attached to the product
func (r *Review) BelongsTo(productID uuid.UUID) bool {
	return r.ProductID == productID
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
