package repository

import (
	"context"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
)

type ProfileRepository interface {
	FindOrCreate(ctx context.Context, email string) (*domain.Profile, error)
	FindByID(ctx context.Context, id string) (*domain.Profile, error)

	// Upsert guarantees a profiles row exists for id so tap/ticket writes
	// never hit a missing FK. Called by the EnsureProfile middleware.
	Upsert(ctx context.Context, id string) error

	CreateMagicToken(ctx context.Context, profileID, tokenHash string, expiresAt time.Time) error
	ClaimMagicToken(ctx context.Context, tokenHash string) (*domain.MagicToken, error)
}
