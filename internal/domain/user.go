package domain

import "time"

// User is an agent who signs in and works tickets.
type User struct {
	ID           int64
	Name         string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserDraft is a validated registration payload.
type UserDraft struct {
	Name     string
	Username string
	Email    string
	Password string
}
