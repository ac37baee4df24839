package push

import (
	"context"
	"log/slog"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
	"github.com/Sunny-JP/hw-ba-cafe/internal/metrics"
	"github.com/Sunny-JP/hw-ba-cafe/internal/session"
)

// Scheduler composes deferred session-end reminders and hands them to the
// provider. Delivery is best-effort: a provider failure is logged and
// swallowed, never surfaced to the request that triggered it.
type Scheduler struct {
	provider Provider
	logger   *slog.Logger
}

func NewScheduler(provider Provider, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		provider: provider,
		logger:   logger.With("component", "notification_scheduler"),
	}
}

// ScheduleTapReminder requests one deferred push for the session started at
// tappedAt, addressed to every device under externalAlias. The fire instant
// is the full session end, truncated to the minute.
func (s *Scheduler) ScheduleTapReminder(ctx context.Context, externalAlias string, tappedAt time.Time) {
	msg := randomMessage()
	n := domain.ScheduledNotification{
		ExternalAlias: externalAlias,
		FireAt:        tappedAt.Add(session.Length).Truncate(time.Minute),
		Title:         msg.Title,
		Body:          msg.Body,
	}

	if err := s.provider.ScheduleNotification(ctx, n); err != nil {
		metrics.NotificationsScheduledTotal.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "schedule notification",
			"external_alias", externalAlias, "fire_at", n.FireAt, "error", err)
		return
	}

	metrics.NotificationsScheduledTotal.WithLabelValues("ok").Inc()
	s.logger.InfoContext(ctx, "notification scheduled",
		"external_alias", externalAlias, "fire_at", n.FireAt)
}
