package accounts

import "time"

type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ResetToken is a single-use password reset credential.
type ResetToken struct {
	Token     string
	AccountID string
	ExpiresAt time.Time
}
