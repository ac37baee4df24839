package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
	"github.com/Sunny-JP/hw-ba-cafe/internal/metrics"
	"github.com/Sunny-JP/hw-ba-cafe/internal/push"
)

// maxPushSubscriptions caps active push endpoints per profile to protect
// the shared provider quota.
const maxPushSubscriptions = 2

type SubscriptionUsecase struct {
	provider push.Provider
	logger   *slog.Logger
}

func NewSubscriptionUsecase(provider push.Provider, logger *slog.Logger) *SubscriptionUsecase {
	return &SubscriptionUsecase{
		provider: provider,
		logger:   logger.With("component", "subscription_usecase"),
	}
}

// Cleanup applies the retention policy for one profile: keep the current
// subscription (the device making the request, never deleted) plus the
// most recently active others up to the cap, delete the rest. currentID
// may be empty — the sweeper has no requesting device — in which case the
// cap is filled entirely by recency. Idempotent: a second pass over the
// surviving set deletes nothing.
//
// Returns how many subscriptions were deleted. Individual delete failures
// are logged and skipped; only the initial listing can fail the call.
func (u *SubscriptionUsecase) Cleanup(ctx context.Context, externalAlias, currentID string) (int, error) {
	subs, err := u.provider.ListSubscriptions(ctx, externalAlias)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	var current *domain.PushSubscription
	var others []domain.PushSubscription
	total := 0
	for _, s := range subs {
		if s.Kind != domain.SubscriptionKindPush {
			continue
		}
		total++
		if currentID != "" && s.ID == currentID {
			c := s
			current = &c
			continue
		}
		others = append(others, s)
	}

	if total <= maxPushSubscriptions {
		return 0, nil
	}

	sort.Slice(others, func(i, j int) bool {
		return others[i].RecencyKey().After(others[j].RecencyKey())
	})

	keepOthers := maxPushSubscriptions
	if current != nil {
		keepOthers--
	}

	deleted := 0
	for _, s := range others[keepOthers:] {
		if err := u.provider.DeleteSubscription(ctx, s.ID); err != nil {
			metrics.SubscriptionCleanupErrorsTotal.Inc()
			u.logger.WarnContext(ctx, "delete subscription",
				"subscription_id", s.ID, "external_alias", externalAlias, "error", err)
			continue
		}
		metrics.SubscriptionsPrunedTotal.Inc()
		deleted++
	}

	if deleted > 0 {
		u.logger.InfoContext(ctx, "pruned subscriptions",
			"external_alias", externalAlias, "deleted", deleted, "kept", total-deleted)
	}
	return deleted, nil
}
