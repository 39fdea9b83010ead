package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrNoRecipient is returned when a message would have nobody to go to
var ErrNoRecipient = shared.NewDomainError("NO_RECIPIENT", "Message has no recipient")

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<p>Hi {{.CustomerName}},</p>
<p>Thank you for your order #{{.ShortID}}.</p>
<table>
<tr><th align="left">Product</th><th>Qty</th><th align="right">Price</th></tr>
{{range .Items}}<tr><td>{{.Title}}</td><td align="center">{{.Quantity}}</td><td align="right">{{.UnitPrice.StringFixed 2}}</td></tr>
{{end}}</table>
<p><strong>Total: {{.Total.StringFixed 2}}</strong></p>`))

// NotificationService composes and sends store emails
type NotificationService struct {
	mailer Mailer
	admins []string
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(mailer Mailer, admins []string, logger *zap.Logger) *NotificationService {
	return &NotificationService{mailer: mailer, admins: admins, logger: logger}
}

// ConfirmationSubject is the subject of the order confirmation email
func ConfirmationSubject(shortID string) string {
	return "Order confirmation #" + shortID
}

// SendOrderConfirmation emails the customer the items and total of a placed order
func (s *NotificationService) SendOrderConfirmation(ctx context.Context, e *order.OrderPlacedEvent) error {
	if e.Email == "" {
		s.logger.Warn("order confirmation has no recipient", zap.String("order_id", e.OrderID.String()))
		return ErrNoRecipient
	}
	shortID := e.OrderID.String()[:8]

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nThank you for your order #%s.\n\n", e.CustomerName, shortID)
	for _, item := range e.Items {
		fmt.Fprintf(&text, "  %s x%d  %s\n", item.Title, item.Quantity, item.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&text, "\nTotal: %s\n", e.Total.StringFixed(2))

	var html bytes.Buffer
	err := confirmationHTML.Execute(&html, struct {
		*order.OrderPlacedEvent
		ShortID string
	}{e, shortID})
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	msg := Message{
		To:      []string{e.Email},
		Subject: ConfirmationSubject(shortID),
		Text:    text.String(),
		HTML:    html.String(),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}
	s.logger.Info("order confirmation sent",
		zap.String("order_id", e.OrderID.String()),
		zap.String("to", e.Email))
	return nil
}

// MailAdmins sends a plain text message to the configured administrators
func (s *NotificationService) MailAdmins(ctx context.Context, subject, body string) error {
	if len(s.admins) == 0 {
		s.logger.Warn("no admin recipients configured, dropping message", zap.String("subject", subject))
		return nil
	}
	return s.mailer.Send(ctx, Message{To: s.admins, Subject: subject, Text: body})
}
