package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
)

// CustomerResolver returns the customer profile of a user, creating it when missing
type CustomerResolver interface {
	ResolveForUser(ctx context.Context, userID uuid.UUID) (*customer.Customer, error)
}

// Invoice is the data printed on an order invoice
type Invoice struct {
	Number       string
	IssuedAt     time.Time
	CustomerName string
	Email        string
	Street       string
	City         string
	Order        OrderResponse
}

// InvoiceRenderer turns an invoice into a printable document
type InvoiceRenderer interface {
	RenderHTML(ctx context.Context, inv *Invoice) ([]byte, error)
	// RenderPDF returns ErrPDFUnavailable when PDF output is disabled
	RenderPDF(ctx context.Context, inv *Invoice) ([]byte, error)
}
