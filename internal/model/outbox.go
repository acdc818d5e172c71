package model

import (
	"encoding/json"
	"time"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessed  OutboxStatus = "PROCESSED"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusFailed     OutboxStatus = "FAILED"
)

// Event types written to the outbox.
const (
	EventBookingCreated    = "booking.created"
	EventPaymentReconciled = "payment.reconciled"
	EventUserPromoted      = "user.promoted"
	EventDoctorDeleted     = "doctor.deleted"
)

type OutboxEvent struct {
	ID           string          `db:"id" json:"id" bson:"_id"`
	EventType    string          `db:"event_type" json:"event_type" bson:"eventType"`
	Payload      json.RawMessage `db:"payload" json:"payload" bson:"payload"`
	Status       OutboxStatus    `db:"status" json:"status" bson:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty" bson:"errorMessage,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count" bson:"retryCount"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at" bson:"createdAt"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty" bson:"processedAt,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at" bson:"updatedAt"`
}
