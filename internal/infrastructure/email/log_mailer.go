package email

import (
	"context"
	"sync"

	"github.com/storefront/backend/internal/application/notification"
	"go.uber.org/zap"
)

// LogMailer writes messages to the log instead of sending them. It keeps
// the last messages for inspection in development.
type LogMailer struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []notification.Message
}

const logMailerKeep = 50

// NewLogMailer creates a new LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(_ context.Context, msg notification.Message) error {
	if len(msg.To) == 0 {
		return notification.ErrNoRecipient
	}
	m.logger.Info("email (not sent)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if len(m.sent) > logMailerKeep {
		m.sent = m.sent[len(m.sent)-logMailerKeep:]
	}
	return nil
}

// Sent returns a copy of the retained messages, oldest first
func (m *LogMailer) Sent() []notification.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notification.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

var _ notification.Mailer = (*LogMailer)(nil)
