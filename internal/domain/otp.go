package domain

import "time"

// OTP is a one-time code proving control of an email address.
// PK: email. ExpiresAt is a Unix timestamp used as the store TTL.
type OTP struct {
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"-" dynamodbav:"code"`
	IssuedAt  time.Time `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
}

// Expired reports whether the record is past its TTL at now.
func (o *OTP) Expired(now time.Time) bool {
	return o.ExpiresAt <= now.Unix()
}
