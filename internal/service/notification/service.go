// Package notification tells patients about their bookings. Delivery is
// best-effort: callers log failures and carry on.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
)

type Notifier interface {
	BookingConfirmed(ctx context.Context, booking *model.Booking) error
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<div>
<p>Hello {{.PatientName}}</p>
<p>Your appointment for {{.TreatmentName}} is confirmed</p>

<h3>Our Address</h3>
<p>Dhaka</p>
<p>12/Mirpur</p>
</div>
`))

// EmailNotifier sends confirmations straight through an email.Sender.
type EmailNotifier struct {
	sender email.Sender
}

func NewEmailNotifier(sender email.Sender) *EmailNotifier {
	return &EmailNotifier{sender: sender}
}

func (n *EmailNotifier) BookingConfirmed(ctx context.Context, booking *model.Booking) error {
	msg, err := ConfirmationMessage(booking)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send booking confirmation: %w", err)
	}
	return nil
}

// ConfirmationMessage renders the confirmation e-mail for booking.
func ConfirmationMessage(booking *model.Booking) (*email.Message, error) {
	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, booking); err != nil {
		return nil, fmt.Errorf("failed to render confirmation: %w", err)
	}

	return &email.Message{
		To:      booking.Email,
		ToName:  booking.PatientName,
		Subject: fmt.Sprintf("Your appointment for %s is on %s at %s is confirmed", booking.TreatmentName, booking.Date, booking.Slot),
		Text:    "Your appointment is confirmed",
		HTML:    body.String(),
	}, nil
}
