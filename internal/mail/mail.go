package mail

import (
	"context"
	"errors"
	"log"
)

var ErrNotConfigured = errors.New("mail_not_configured")

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an outbound email. When only HTML is set, a text part is derived from it.
type Message struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Mailer delivers messages. Implementations are safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, m Message) error
	Enabled() bool
}

// Config describes the SMTP relay.
type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (c Config) complete() bool { return c.Host != "" && c.User != "" && c.Pass != "" }

// New returns an SMTP mailer when the relay is fully configured, Disabled otherwise.
func New(c Config) Mailer {
	if !c.complete() {
		log.Printf("mail: SMTP not configured, outbound mail disabled")
		return Disabled{}
	}
	return NewSMTP(c)
}

// Disabled rejects every message with ErrNotConfigured.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) error { return ErrNotConfigured }
func (Disabled) Enabled() bool                       { return false }
