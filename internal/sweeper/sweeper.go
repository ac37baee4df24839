// Package sweeper runs the nightly subscription cleanup: every profile
// active in the recent window gets the retention policy applied, so stale
// devices stop counting against the provider quota even when their owner
// never submits another tap.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/clock"
	"github.com/Sunny-JP/hw-ba-cafe/internal/metrics"
	"github.com/Sunny-JP/hw-ba-cafe/internal/repository"
	"github.com/robfig/cron/v3"
)

const batchSize = 500

// Cleaner is the slice of SubscriptionUsecase the sweeper needs.
type Cleaner interface {
	Cleanup(ctx context.Context, externalAlias, currentID string) (int, error)
}

type Sweeper struct {
	taps         repository.TapRepository
	cleaner      Cleaner
	logger       *slog.Logger
	schedule     cron.Schedule
	activeWindow time.Duration
	clock        clock.Clock
}

func New(taps repository.TapRepository, cleaner Cleaner, logger *slog.Logger, cronExpr string, activeWindow time.Duration, clk clock.Clock) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse sweep cron %q: %w", cronExpr, err)
	}
	return &Sweeper{
		taps:         taps,
		cleaner:      cleaner,
		logger:       logger.With("component", "sweeper"),
		schedule:     schedule,
		activeWindow: activeWindow,
		clock:        clk,
	}, nil
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("sweeper started", "active_window", s.activeWindow)

	for {
		next := s.schedule.Next(s.clock.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("sweeper shut down")
			return
		case <-timer.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup cycle. Per-profile failures are logged and
// skipped; the cycle always visits every listed profile.
func (s *Sweeper) Sweep(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.SweepCycleDuration.Observe(time.Since(start).Seconds())
	}()

	cutoff := s.clock.Now().Add(-s.activeWindow)
	profiles, err := s.taps.ListActiveSince(ctx, cutoff, batchSize)
	if err != nil {
		s.logger.Error("sweep list profiles", "error", err)
		return
	}

	pruned := 0
	for _, p := range profiles {
		// No requesting device here, so nothing is protected by identity;
		// the cap is filled purely by recency.
		deleted, err := s.cleaner.Cleanup(ctx, p.ExternalAlias, "")
		if err != nil {
			metrics.SweepProfilesTotal.WithLabelValues("error").Inc()
			s.logger.Warn("sweep cleanup", "profile_id", p.ID, "error", err)
			continue
		}
		metrics.SweepProfilesTotal.WithLabelValues("ok").Inc()
		pruned += deleted
	}

	s.logger.Info("sweep complete", "profiles", len(profiles), "pruned", pruned)
}
