package event

import "context"

// Emitter records domain events for later publication.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

// Payloads of the events written to the outbox.
type (
	BookingCreated struct {
		BookingID     string `json:"bookingId"`
		TreatmentName string `json:"treatmentName"`
		Email         string `json:"email"`
		Date          string `json:"date"`
		Slot          string `json:"slot"`
	}

	PaymentReconciled struct {
		BookingID     string `json:"bookingId"`
		TransactionID string `json:"transactionId"`
		Amount        int64  `json:"amount"`
		Currency      string `json:"currency"`
	}

	UserPromoted struct {
		Email       string `json:"email"`
		PromotedBy  string `json:"promotedBy"`
		WasInserted bool   `json:"wasInserted"`
	}

	DoctorDeleted struct {
		DoctorID  string `json:"doctorId"`
		DeletedBy string `json:"deletedBy"`
	}
)
