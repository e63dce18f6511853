package models

import "time"

// User is an account able to log in and be assigned work. PasswordHash never
// leaves the process.
type User struct {
	ID           int64     `json:"id"`
	Nom          string    `json:"nom"`
	Prenom       string    `json:"prenom"`
	Telephone    string    `json:"telephone"`
	Mail         string    `json:"mail"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser is the validated input for account creation. Password is plaintext
// and is hashed before it reaches the store.
type NewUser struct {
	Nom       string
	Prenom    string
	Telephone string
	Mail      string
	Password  string
	Role      string
}

// PasswordChange replaces a user's password after checking the current one.
type PasswordChange struct {
	UserID      int64
	OldPassword string
	NewPassword string
}
