package domain

import "time"

// Token represents issued access token metadata.
type Token struct {
	ID        string
	UserID    int64
	Value     string
	ExpiresAt time.Time
	IssuedAt  time.Time
}
