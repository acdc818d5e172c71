package model

import "time"

// Identity is the verified caller of a request. It only lives for the
// duration of that request.
type Identity struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}
