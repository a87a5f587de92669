package identity

import "time"

// User represents a registered account owner.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// RegisterInput carries the fields submitted on sign up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Credentials request structure.
type Credentials struct {
	Email    string
	Password string
}
