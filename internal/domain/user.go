package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ResetCode is a one-time password-reset token.
type ResetCode struct {
	Code      uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
}

func (c *ResetCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
