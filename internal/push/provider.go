// Package push talks to the external push provider: listing and deleting a
// profile's device subscriptions and creating deferred notifications. All
// calls here are best-effort from the caller's point of view.
package push

import (
	"context"
	"log/slog"

	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
)

type Provider interface {
	// ListSubscriptions returns every subscription registered under the
	// profile's external alias, any channel kind.
	ListSubscriptions(ctx context.Context, externalAlias string) ([]domain.PushSubscription, error)

	DeleteSubscription(ctx context.Context, subscriptionID string) error

	// ScheduleNotification creates a one-shot deferred push. The provider
	// owns delivery from here; nothing is persisted on our side.
	ScheduleNotification(ctx context.Context, n domain.ScheduledNotification) error
}

// LogProvider logs provider calls instead of making them — used in ENV=local.
type LogProvider struct {
	logger *slog.Logger
}

func NewLogProvider(logger *slog.Logger) *LogProvider {
	return &LogProvider{logger: logger.With("component", "push_provider")}
}

func (p *LogProvider) ListSubscriptions(_ context.Context, externalAlias string) ([]domain.PushSubscription, error) {
	p.logger.Info("list subscriptions (local dev)", "external_alias", externalAlias)
	return nil, nil
}

func (p *LogProvider) DeleteSubscription(_ context.Context, subscriptionID string) error {
	p.logger.Info("delete subscription (local dev)", "subscription_id", subscriptionID)
	return nil
}

func (p *LogProvider) ScheduleNotification(_ context.Context, n domain.ScheduledNotification) error {
	p.logger.Info("schedule notification (local dev)",
		"external_alias", n.ExternalAlias, "fire_at", n.FireAt, "title", n.Title)
	return nil
}
