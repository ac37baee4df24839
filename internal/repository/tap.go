package repository

import (
	"context"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
)

// TapRepository persists tap history and ticket slots. Taps are append-only;
// the dedup rule only ever reads the latest one. No locking here: two
// concurrent writes for the same profile race at the storage layer and the
// last writer wins, which is the accepted consistency model.
type TapRepository interface {
	// LatestTap returns the most recent tap for the profile, or
	// domain.ErrNoTapHistory when none has been recorded.
	LatestTap(ctx context.Context, profileID string) (*domain.TapEvent, error)

	RecordTap(ctx context.Context, profileID string, tappedAt time.Time) error

	// ListTaps returns the profile's taps at or after since, oldest first.
	// A zero since returns the full history. Empty history is not an error.
	ListTaps(ctx context.Context, profileID string, since time.Time) ([]domain.TapEvent, error)

	// SetTicket overwrites a ticket slot's activation instant. A nil
	// activatedAt clears the slot.
	SetTicket(ctx context.Context, profileID string, slot domain.TicketSlot, activatedAt *time.Time) error

	// ListActiveSince returns profiles that recorded a tap after the cutoff,
	// newest activity first. Used by the subscription sweeper.
	ListActiveSince(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Profile, error)
}
