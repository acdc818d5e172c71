package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type SendGridSender struct {
	client *sendgrid.Client
	from   Address
	log    *logger.Logger
}

func NewSendGridSender(apiKey string, from Address, log *logger.Logger) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		log:    log,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg *Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	response, err := s.client.SendWithContext(ctx, s.build(msg))
	if err != nil {
		return fmt.Errorf("email: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.log.Warn("sendgrid returned error status", "status", response.StatusCode, "to", msg.To)
		return fmt.Errorf("email: sendgrid returned status %d", response.StatusCode)
	}

	s.log.Debug("email sent via sendgrid", "to", msg.To, "status", response.StatusCode)
	return nil
}

func (s *SendGridSender) build(msg *Message) *mail.SGMailV3 {
	text := msg.Text
	if text == "" {
		text = msg.Subject
	}
	return mail.NewSingleEmail(
		mail.NewEmail(s.from.Name, s.from.Email),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		text,
		msg.HTML,
	)
}
