package models

import "time"

// UserContact is the delivery address book entry for a saved-search
// owner. Accounts themselves live in the external auth system; we only
// mirror what notification delivery needs.
type UserContact struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
