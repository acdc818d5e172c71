package email

import (
	"context"

	"github.com/jwalitptl/clinic-api/pkg/logger"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	s.log.Info("email not delivered (log driver)", "to", msg.To, "subject", msg.Subject)
	return nil
}
