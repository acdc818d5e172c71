package model

import (
	"math"
	"time"
)

// Payment is the audit record written when a booking is reconciled.
type Payment struct {
	ID            string    `json:"_id" db:"id" bson:"_id"`
	BookingID     string    `json:"bookingId" db:"booking_id" bson:"bookingId"`
	TransactionID string    `json:"transactionId" db:"transaction_id" bson:"transactionId"`
	Amount        int64     `json:"amount" db:"amount" bson:"amount"`
	Currency      string    `json:"currency" db:"currency" bson:"currency"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
}

// ReconcileRequest is the body of PATCH /update-user/:id.
type ReconcileRequest struct {
	TransactionID string  `json:"transactionId" binding:"required,notblank"`
	Price         float64 `json:"price" binding:"omitempty,gte=0"`
}

type PaymentIntentRequest struct {
	Price float64 `json:"price" binding:"required,gt=0"`
}

type PaymentIntent struct {
	ClientSecret string `json:"clientSecret"`
}

// MinorUnits converts a price to the smallest currency unit, rounding to the
// nearest cent.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
