package domain

import (
	"errors"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrTokenInvalid    = errors.New("token is invalid or expired")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Profile is one player account. ExternalAlias is the identifier the push
// provider uses to address every device registered for the account at once;
// it defaults to the profile ID.
type Profile struct {
	ID            string
	Email         string
	ExternalAlias string

	Ticket1ActivatedAt *time.Time
	Ticket2ActivatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type MagicToken struct {
	ID        string
	ProfileID string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
