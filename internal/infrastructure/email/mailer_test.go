package email

import (
	"fmt"
	"testing"

	"github.com/storefront/backend/internal/application/notification"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildMessage(t *testing.T) {
	gm, err := buildMessage("from@storefront.com", notification.Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Order confirmation #1234abcd",
		Text:    "hello",
		HTML:    "<p>hello</p>",
	})
	require.NoError(t, err)

	rcpts, err := gm.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, rcpts)
	assert.Equal(t, []string{"Order confirmation #1234abcd"}, gm.GetGenHeader(mail.HeaderSubject))
}

func TestBuildMessage_Errors(t *testing.T) {
	_, err := buildMessage("from@storefront.com", notification.Message{Subject: "x"})
	assert.ErrorIs(t, err, notification.ErrNoRecipient)

	_, err = buildMessage("not an address", notification.Message{To: []string{"a@example.com"}})
	assert.Error(t, err)
}

func TestTLSPolicy(t *testing.T) {
	assert.Equal(t, mail.TLSMandatory, tlsPolicy("Mandatory"))
	assert.Equal(t, mail.NoTLS, tlsPolicy("none"))
	assert.Equal(t, mail.TLSOpportunistic, tlsPolicy(""))
}

func TestNew_DisabledUsesLogMailer(t *testing.T) {
	mailer := New(config.EmailConfig{Enabled: false}, zap.NewNop())
	assert.IsType(t, &LogMailer{}, mailer)

	mailer = New(config.EmailConfig{Enabled: true, Host: "localhost", Port: 8025}, zap.NewNop())
	assert.IsType(t, &SMTPMailer{}, mailer)
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	for i := range logMailerKeep + 2 {
		require.NoError(t, m.Send(t.Context(), notification.Message{
			To:      []string{"ops@example.com"},
			Subject: fmt.Sprintf("msg %d", i),
		}))
	}

	sent := m.Sent()
	require.Len(t, sent, logMailerKeep)
	assert.Equal(t, "msg 2", sent[0].Subject)
	assert.Equal(t, logMailerKeep+2, logs.FilterMessage("email (not sent)").Len())

	assert.ErrorIs(t, m.Send(t.Context(), notification.Message{}), notification.ErrNoRecipient)
}
