package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product pricing and stock bounds. Prices are stored as decimal(6,2).
var (
	MinUnitPrice = decimal.NewFromInt(1)
	MaxUnitPrice = decimal.RequireFromString("9999.99")
	// TaxRate is applied on top of the unit price for display
	TaxRate = decimal.RequireFromString("1.18")
)

// LowInventoryThreshold is the stock level under which inventory is reported as low
const LowInventoryThreshold = 10

// Inventory status labels
const (
	InventoryStatusLow = "Low"
	InventoryStatusOK  = "OK"
)

// Product is a sellable item. It is the aggregate root for its images,
// reviews and promotion links.
type Product struct {
	shared.BaseAggregateRoot
	Title        string          `gorm:"type:varchar(255);not null"`
	Slug         string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description  string          `gorm:"type:text"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	Inventory    int             `gorm:"not null;default:0"`
	CollectionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Promotions   []Promotion     `gorm:"many2many:product_promotions;"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(title, slug string, unitPrice decimal.Decimal, inventory int, collectionID uuid.UUID) (*Product, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if err := validateUnitPrice(unitPrice); err != nil {
		return nil, err
	}
	if err := validateInventory(inventory); err != nil {
		return nil, err
	}
	if collectionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COLLECTION", "Collection is required")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		Slug:              slug,
		UnitPrice:         unitPrice.Round(2),
		Inventory:         inventory,
		CollectionID:      collectionID,
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Rename changes the title together with the slug derived from it
func (p *Product) Rename(title, slug string) error {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return err
	}
	if err := validateSlug(slug); err != nil {
		return err
	}
	p.Title = title
	p.Slug = slug
	p.touch()
	return nil
}

// SetDescription replaces the description
func (p *Product) SetDescription(description string) {
	p.Description = description
	p.touch()
}

// SetUnitPrice changes the unit price
func (p *Product) SetUnitPrice(price decimal.Decimal) error {
	if err := validateUnitPrice(price); err != nil {
		return err
	}
	p.UnitPrice = price.Round(2)
	p.touch()
	return nil
}

// SetInventory sets the stock level
func (p *Product) SetInventory(inventory int) error {
	if err := validateInventory(inventory); err != nil {
		return err
	}
	p.Inventory = inventory
	p.touch()
	return nil
}

// MoveToCollection reassigns the product to another collection
func (p *Product) MoveToCollection(collectionID uuid.UUID) error {
	if collectionID == uuid.Nil {
		return shared.NewDomainError("INVALID_COLLECTION", "Collection is required")
	}
	p.CollectionID = collectionID
	p.touch()
	return nil
}

// DecreaseInventory takes quantity units out of stock
func (p *Product) DecreaseInventory(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Inventory < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			"Insufficient stock for product "+p.Title)
	}
	p.Inventory -= quantity
	p.touch()
	return nil
}

// HasStock reports whether quantity units are available
func (p *Product) HasStock(quantity int) bool {
	return p.Inventory >= quantity
}

// PriceWithTax returns the unit price including tax, rounded to cents
func (p *Product) PriceWithTax() decimal.Decimal {
	return p.UnitPrice.Mul(TaxRate).Round(2)
}

// InventoryStatus returns "Low" under the low stock threshold, "OK" otherwise
func (p *Product) InventoryStatus() string {
	if p.Inventory < LowInventoryThreshold {
		return InventoryStatusLow
	}
	return InventoryStatusOK
}

// LastUpdate is the last modification time of the product
func (p *Product) LastUpdate() time.Time {
	return p.UpdatedAt
}

// PromotionIDs returns the IDs of the linked promotions
func (p *Product) PromotionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Promotions))
	for i, promo := range p.Promotions {
		ids[i] = promo.ID
	}
	return ids
}

// MarkDeleted records the deletion event before the row is removed
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

func validateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot be empty")
	}
	if len(slug) > 255 {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot exceed 255 characters")
	}
	return nil
}

func validateUnitPrice(price decimal.Decimal) error {
	if price.LessThan(MinUnitPrice) {
		return shared.NewDomainError("INVALID_PRICE", "Unit price must be at least 1")
	}
	if price.GreaterThan(MaxUnitPrice) {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot exceed 9999.99")
	}
	return nil
}

func validateInventory(inventory int) error {
	if inventory < 0 {
		return shared.NewDomainError("INVALID_INVENTORY", "Inventory cannot be negative")
	}
	return nil
}
