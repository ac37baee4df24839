package domain

import (
	"errors"
	"time"
)

var (
	ErrDuplicateTap  = errors.New("tap already recorded for this window")
	ErrNoTapHistory  = errors.New("no tap history for profile")
	ErrInvalidTicket = errors.New("invalid ticket slot")
)

// TicketCooldown is how long an invitation ticket slot stays on cooldown
// after activation.
const TicketCooldown = 20 * time.Hour

// TapEvent is one recorded cafe visit. Events are append-only; only the
// most recent one per profile drives the session window.
type TapEvent struct {
	ProfileID string
	TappedAt  time.Time
}

type TicketSlot int

const (
	TicketSlot1 TicketSlot = 1
	TicketSlot2 TicketSlot = 2
)

// Ticket is one of the two invitation ticket slots. Activation overwrites
// the previous value; there is no history.
type Ticket struct {
	ProfileID   string
	Slot        TicketSlot
	ActivatedAt time.Time
}

// ReadyAt is when the slot comes off cooldown.
func (t Ticket) ReadyAt() time.Time {
	return t.ActivatedAt.Add(TicketCooldown)
}
