package model

import "time"

// Timestamps holds the audit columns shared by persisted entities.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// Touch sets UpdatedAt, and CreatedAt when it has not been set yet.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}
