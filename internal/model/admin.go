package model

import "time"

// Admin is a privileged account that can list users and manage API keys.
// Passwords are stored as bcrypt hashes.
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // bcrypt hash, never expose
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
