package event

import (
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
)

// RegisterAllEvents registers every domain event that can pass through the
// outbox, so the processor can decode stored payloads.
func RegisterAllEvents(serializer *EventSerializer) {
	// catalog
	serializer.Register(catalog.EventTypeProductCreated, &catalog.ProductCreatedEvent{})
	serializer.Register(catalog.EventTypeProductUpdated, &catalog.ProductUpdatedEvent{})
	serializer.Register(catalog.EventTypeProductDeleted, &catalog.ProductDeletedEvent{})
	serializer.Register(catalog.EventTypeInventoryCleared, &catalog.InventoryClearedEvent{})
	serializer.Register(catalog.EventTypeCollectionCreated, &catalog.CollectionChangedEvent{})
	serializer.Register(catalog.EventTypeCollectionUpdated, &catalog.CollectionChangedEvent{})
	serializer.Register(catalog.EventTypeCollectionDeleted, &catalog.CollectionChangedEvent{})

	// order
	serializer.Register(order.EventTypeOrderPlaced, &order.OrderPlacedEvent{})
	serializer.Register(order.EventTypeOrderPaymentStatusChanged, &order.OrderPaymentStatusChangedEvent{})
	serializer.Register(order.EventTypeOrderDeleted, &order.OrderDeletedEvent{})

	// identity
	serializer.Register(identity.EventTypeUserRegistered, &identity.UserRegisteredEvent{})
}
