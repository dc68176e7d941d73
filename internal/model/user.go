package model

import "time"

// User is an end user created through key-gated registration. Users are
// written once and never updated or deleted by this service.
type User struct {
	ID        int64      `json:"id" db:"id"`
	FirstName string     `json:"firstname" db:"firstname"`
	LastName  string     `json:"lastname" db:"lastname"`
	Email     string     `json:"email" db:"email"`
	StartDate time.Time  `json:"start_date" db:"start_date"`
	LastDate  *time.Time `json:"last_date" db:"last_date"`
	APIKeyID  int64      `json:"apikey_id" db:"apikey_id"` // the key that authorized this registration
}
