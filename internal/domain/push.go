package domain

import "time"

type SubscriptionKind string

const (
	SubscriptionKindPush  SubscriptionKind = "push"
	SubscriptionKindOther SubscriptionKind = "other"
)

// PushSubscription is a single device/browser registration held by the push
// provider. The backend only reads and deletes these; the provider creates
// them when a device opts in.
type PushSubscription struct {
	ID         string
	Kind       SubscriptionKind
	CreatedAt  time.Time
	LastActive *time.Time
}

// RecencyKey orders subscriptions newest-first for the eviction policy.
// LastActive wins when the provider reports it; CreatedAt otherwise.
func (s PushSubscription) RecencyKey() time.Time {
	if s.LastActive != nil && !s.LastActive.IsZero() {
		return *s.LastActive
	}
	return s.CreatedAt
}

// ScheduledNotification is a one-shot deferred push addressed to every
// device registered under an external alias. It is handed to the provider
// and not persisted.
type ScheduledNotification struct {
	ExternalAlias string
	FireAt        time.Time
	Title         string
	Body          string
}
