package model

import "time"

// API key status values. A key starts active and can only move to inactive;
// there is no reactivation path.
const (
	KeyStatusActive   = "active"
	KeyStatusInactive = "inactive"
)

// APIKey represents an issued registration key. The key string is the full
// opaque credential (prefix + random token) handed to the caller at issue
// time; it gates user self-registration until it expires or is revoked.
type APIKey struct {
	ID        int64     `json:"id" db:"id"`
	Key       string    `json:"api_key" db:"api_key"`
	Status    string    `json:"status" db:"status"`
	UserID    *int64    `json:"user_id" db:"user_id"` // reserved back-reference, not written by registration
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the key's validity window has passed at t.
func (k *APIKey) Expired(t time.Time) bool {
	return k.ExpiresAt.Before(t)
}
