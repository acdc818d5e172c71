package model

import "time"

// NaturalKey identifies a booking for idempotency purposes. Two bookings
// with the same key are the same booking, regardless of date or slot.
type NaturalKey struct {
	PatientName   string
	TreatmentName string
	Email         string
}

type Booking struct {
	ID            string  `json:"_id" db:"id" bson:"_id"`
	PatientName   string  `json:"patientName" db:"patient_name" bson:"patientName"`
	TreatmentName string  `json:"treatmentName" db:"treatment_name" bson:"treatmentName"`
	TreatmentID   string  `json:"treatmentId,omitempty" db:"treatment_id" bson:"treatmentId,omitempty"`
	Email         string  `json:"email" db:"email" bson:"email"`
	Phone         string  `json:"phone,omitempty" db:"phone" bson:"phone,omitempty"`
	Date          string  `json:"date" db:"date" bson:"date"`
	Slot          string  `json:"slot" db:"slot" bson:"slot"`
	Price         float64 `json:"price" db:"price" bson:"price"`
	Paid          bool    `json:"paid" db:"paid" bson:"paid"`
	TransactionID *string `json:"transactionId,omitempty" db:"transaction_id" bson:"transactionId,omitempty"`
	Timestamps    `bson:",inline"`
}

func (b *Booking) Key() NaturalKey {
	return NaturalKey{
		PatientName:   b.PatientName,
		TreatmentName: b.TreatmentName,
		Email:         b.Email,
	}
}

// CreateBookingRequest is the body accepted by POST /book.
type CreateBookingRequest struct {
	PatientName   string  `json:"patientName" binding:"required,notblank"`
	TreatmentName string  `json:"treatmentName" binding:"required,notblank"`
	TreatmentID   string  `json:"treatmentId"`
	Email         string  `json:"email" binding:"required,email"`
	Phone         string  `json:"phone"`
	Date          string  `json:"date" binding:"required,notblank"`
	Slot          string  `json:"slot" binding:"required,notblank"`
	Price         float64 `json:"price" binding:"omitempty,gte=0"`
}

func (r *CreateBookingRequest) ToBooking(now time.Time) *Booking {
	b := &Booking{
		PatientName:   r.PatientName,
		TreatmentName: r.TreatmentName,
		TreatmentID:   r.TreatmentID,
		Email:         r.Email,
		Phone:         r.Phone,
		Date:          r.Date,
		Slot:          r.Slot,
		Price:         r.Price,
	}
	b.Touch(now)
	return b
}
