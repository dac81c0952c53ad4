package domain

import "time"

// User represents a registered Bookdam account.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Nickname     string    `json:"nickname"`
	Provider     string    `json:"provider"` // Registration provider, "email" for now
	PasswordHash string    `json:"-"`        // Argon2id encoded hash, never serialized
}
