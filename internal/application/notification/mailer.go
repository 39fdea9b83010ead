package notification

import "context"

// Message is an outgoing email. HTML is optional.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers email messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
