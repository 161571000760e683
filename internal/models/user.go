package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthSession binds an opaque bearer token to a user until ExpiresAt.
type AuthSession struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
