// Package email delivers outbound mail through SMTP, SendGrid or the log.
package email

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

func (m *Message) validate() error {
	if m == nil || m.To == "" {
		return fmt.Errorf("email: recipient is required")
	}
	if m.Subject == "" {
		return fmt.Errorf("email: subject is required")
	}
	return nil
}

// NewSender picks the sender named by cfg.Notification.Driver.
func NewSender(cfg *config.Config, log *logger.Logger) (Sender, error) {
	from := Address{Email: cfg.Notification.From, Name: cfg.Notification.FromName}

	switch cfg.Notification.Driver {
	case "smtp":
		if cfg.SMTP.Host == "" {
			return nil, fmt.Errorf("email: smtp host is required")
		}
		return NewSMTPSender(cfg.SMTP, from), nil
	case "sendgrid":
		if cfg.SendGrid.APIKey == "" {
			return nil, fmt.Errorf("email: sendgrid api key is required")
		}
		return NewSendGridSender(cfg.SendGrid.APIKey, from, log), nil
	case "log", "":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("email: unsupported driver %q", cfg.Notification.Driver)
	}
}

// Address is the sender identity used on every outgoing message.
type Address struct {
	Email string
	Name  string
}
