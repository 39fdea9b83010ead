package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderConfirmationHandler sends the confirmation email for OrderPlaced
// events delivered by the outbox. Wrap it in an idempotent handler so a
// redelivered event does not email twice.
type OrderConfirmationHandler struct {
	notifications *NotificationService
}

// NewOrderConfirmationHandler creates a new OrderConfirmationHandler
func NewOrderConfirmationHandler(notifications *NotificationService) *OrderConfirmationHandler {
	return &OrderConfirmationHandler{notifications: notifications}
}

// EventTypes returns the handled event types
func (h *OrderConfirmationHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced}
}

// Handle sends the email. Returning an error makes the outbox retry.
func (h *OrderConfirmationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*order.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}
	err := h.notifications.SendOrderConfirmation(ctx, placed)
	if errors.Is(err, ErrNoRecipient) {
		// retrying cannot help
		return nil
	}
	return err
}

var _ shared.EventHandler = (*OrderConfirmationHandler)(nil)
