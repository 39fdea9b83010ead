package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeProduct    = "Product"
	AggregateTypeCollection = "Collection"
)

// Event type constants
const (
	EventTypeProductCreated    = "ProductCreated"
	EventTypeProductUpdated    = "ProductUpdated"
	EventTypeProductDeleted    = "ProductDeleted"
	EventTypeInventoryCleared  = "InventoryCleared"
	EventTypeCollectionCreated = "CollectionCreated"
	EventTypeCollectionUpdated = "CollectionUpdated"
	EventTypeCollectionDeleted = "CollectionDeleted"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID       `json:"product_id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CollectionID uuid.UUID       `json:"collection_id"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		UnitPrice:       p.UnitPrice,
		CollectionID:    p.CollectionID,
	}
}

// ProductUpdatedEvent is published when a product changes
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Slug      string    `json:"slug"`
	Inventory int       `json:"inventory"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(p *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Slug:            p.Slug,
		Inventory:       p.Inventory,
	}
}

// ProductDeletedEvent is published when a product is removed
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Slug      string    `json:"slug"`
}

// NewProductDeletedEvent creates a new ProductDeletedEvent
func NewProductDeletedEvent(p *Product) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Slug:            p.Slug,
	}
}

// InventoryClearedEvent is published after a bulk inventory reset
type InventoryClearedEvent struct {
	shared.BaseDomainEvent
	ProductIDs []uuid.UUID `json:"product_ids"`
	Updated    int64       `json:"updated"`
}

// NewInventoryClearedEvent creates a new InventoryClearedEvent
func NewInventoryClearedEvent(ids []uuid.UUID, updated int64) *InventoryClearedEvent {
	return &InventoryClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInventoryCleared, AggregateTypeProduct, uuid.Nil),
		ProductIDs:      ids,
		Updated:         updated,
	}
}

// CollectionChangedEvent covers collection creation, update and deletion
type CollectionChangedEvent struct {
	shared.BaseDomainEvent
	CollectionID uuid.UUID `json:"collection_id"`
	Title        string    `json:"title"`
}

// NewCollectionChangedEvent creates a collection event of the given type
func NewCollectionChangedEvent(eventType string, c *Collection) *CollectionChangedEvent {
	return &CollectionChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCollection, c.ID),
		CollectionID:    c.ID,
		Title:           c.Title,
	}
}
