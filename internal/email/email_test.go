package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

func testConfig(driver string) *config.Config {
	cfg := &config.Config{}
	cfg.Notification.Driver = driver
	cfg.Notification.From = "no-reply@example.com"
	cfg.Notification.FromName = "Doctors Portal"
	return cfg
}

func TestNewSender(t *testing.T) {
	sender, err := NewSender(testConfig("log"), logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, sender)

	_, err = NewSender(testConfig("smtp"), logger.Nop())
	assert.Error(t, err, "smtp host missing")

	cfg := testConfig("smtp")
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.Port = 587
	sender, err = NewSender(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, sender)

	_, err = NewSender(testConfig("sendgrid"), logger.Nop())
	assert.Error(t, err, "api key missing")

	cfg = testConfig("sendgrid")
	cfg.SendGrid.APIKey = "SG.test"
	sender, err = NewSender(cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SendGridSender{}, sender)

	_, err = NewSender(testConfig("pigeon"), logger.Nop())
	assert.Error(t, err)
}

func TestSMTPBuild(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, Address{Email: "no-reply@example.com", Name: "Clinic"})

	m := s.build(&Message{To: "ann@example.com", Subject: "Confirmed", HTML: "<p>hi</p>"})
	assert.Equal(t, []string{"Confirmed"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"ann@example.com"}, m.GetHeader("To"))
	require.Len(t, m.GetHeader("From"), 1)
	assert.Contains(t, m.GetHeader("From")[0], "no-reply@example.com")
}

func TestSendGridBuild(t *testing.T) {
	s := NewSendGridSender("SG.test", Address{Email: "no-reply@example.com", Name: "Clinic"}, logger.Nop())

	m := s.build(&Message{To: "ann@example.com", ToName: "Ann", Subject: "Confirmed", HTML: "<p>hi</p>"})
	assert.Equal(t, "Confirmed", m.Subject)
	assert.Equal(t, "no-reply@example.com", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "ann@example.com", m.Personalizations[0].To[0].Address)
}

func TestSendRejectsMissingRecipient(t *testing.T) {
	err := NewLogSender(logger.Nop()).Send(context.Background(), &Message{Subject: "x"})
	assert.Error(t, err)

	err = NewLogSender(logger.Nop()).Send(context.Background(), &Message{To: "ann@example.com", Subject: "x"})
	assert.NoError(t, err)
}
