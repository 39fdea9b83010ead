package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Collection groups products for browsing. It may feature one product.
type Collection struct {
	shared.BaseAggregateRoot
	Title             string     `gorm:"type:varchar(255);not null;index"`
	FeaturedProductID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Collection) TableName() string {
	return "collections"
}

// NewCollection creates a new collection
func NewCollection(title string) (*Collection, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	c := &Collection{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
	}
	c.AddDomainEvent(NewCollectionChangedEvent(EventTypeCollectionCreated, c))
	return c, nil
}

// Rename changes the collection title
func (c *Collection) Rename(title string) error {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return err
	}
	c.Title = title
	c.touch()
	return nil
}

// Feature marks a product as the collection's featured product. nil clears it.
func (c *Collection) Feature(productID *uuid.UUID) {
	if productID != nil && *productID == uuid.Nil {
		productID = nil
	}
	c.FeaturedProductID = productID
	c.touch()
}

func (c *Collection) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCollectionChangedEvent(EventTypeCollectionUpdated, c))
}

func validateTitle(title string) error {
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 255 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 255 characters")
	}
	return nil
}
