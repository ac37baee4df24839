package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/clock"
	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
	"github.com/Sunny-JP/hw-ba-cafe/internal/metrics"
	"github.com/Sunny-JP/hw-ba-cafe/internal/repository"
	"github.com/Sunny-JP/hw-ba-cafe/internal/session"
)

// dedupWindow: two taps closer together than this that resolve to the same
// eligibility bucket are treated as one accidental double submission.
const dedupWindow = time.Hour

// reminderScheduler is the slice of the push scheduler the tap flow needs.
type reminderScheduler interface {
	ScheduleTapReminder(ctx context.Context, externalAlias string, tappedAt time.Time)
}

// subscriptionCleaner runs the endpoint retention policy.
type subscriptionCleaner interface {
	Cleanup(ctx context.Context, externalAlias, currentID string) (int, error)
}

type TapUsecase struct {
	taps      repository.TapRepository
	profiles  repository.ProfileRepository
	scheduler reminderScheduler
	cleaner   subscriptionCleaner
	clock     clock.Clock
	logger    *slog.Logger
}

func NewTapUsecase(
	taps repository.TapRepository,
	profiles repository.ProfileRepository,
	scheduler reminderScheduler,
	cleaner subscriptionCleaner,
	clk clock.Clock,
	logger *slog.Logger,
) *TapUsecase {
	return &TapUsecase{
		taps:      taps,
		profiles:  profiles,
		scheduler: scheduler,
		cleaner:   cleaner,
		clock:     clk,
		logger:    logger.With("component", "tap_usecase"),
	}
}

// TicketUpdate overwrites one ticket slot. A nil ActivatedAt clears it.
type TicketUpdate struct {
	ActivatedAt *time.Time
}

type SubmitInput struct {
	ProfileID      string
	TapTime        *time.Time
	Ticket1        *TicketUpdate
	Ticket2        *TicketUpdate
	SubscriptionID string
}

type SubmitResult struct {
	// TapRecorded is false for ticket-only submissions.
	TapRecorded bool
	TappedAt    time.Time
	SessionEnd  time.Time
	Notify      bool
}

// Submit is the primary write path. Order matters: dedup reads the previous
// tap before anything is written, the record write must succeed before any
// side effect runs, and side-effect failures never surface to the caller.
func (u *TapUsecase) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	result := &SubmitResult{}

	if input.TapTime != nil {
		cur := *input.TapTime
		if err := u.checkDuplicate(ctx, input.ProfileID, cur); err != nil {
			if errors.Is(err, domain.ErrDuplicateTap) {
				metrics.TapsRecordedTotal.WithLabelValues("duplicate").Inc()
			}
			return nil, err
		}

		if err := u.taps.RecordTap(ctx, input.ProfileID, cur); err != nil {
			metrics.TapsRecordedTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("record tap: %w", err)
		}
		metrics.TapsRecordedTotal.WithLabelValues("recorded").Inc()

		result.TapRecorded = true
		result.TappedAt = cur
		result.SessionEnd = session.End(cur)
		result.Notify = session.ShouldNotify(cur)
	}

	if input.Ticket1 != nil {
		if err := u.taps.SetTicket(ctx, input.ProfileID, domain.TicketSlot1, input.Ticket1.ActivatedAt); err != nil {
			return nil, fmt.Errorf("set ticket 1: %w", err)
		}
	}
	if input.Ticket2 != nil {
		if err := u.taps.SetTicket(ctx, input.ProfileID, domain.TicketSlot2, input.Ticket2.ActivatedAt); err != nil {
			return nil, fmt.Errorf("set ticket 2: %w", err)
		}
	}

	u.postProcess(ctx, input, result)
	return result, nil
}

// checkDuplicate applies the dedup rule: reject when the previous tap is
// less than an hour away and both taps land in the same eligibility bucket.
// Two genuinely new cycles an hour or more apart always pass.
func (u *TapUsecase) checkDuplicate(ctx context.Context, profileID string, cur time.Time) error {
	prev, err := u.taps.LatestTap(ctx, profileID)
	if err != nil {
		if errors.Is(err, domain.ErrNoTapHistory) {
			return nil
		}
		return fmt.Errorf("read latest tap: %w", err)
	}

	delta := cur.Sub(prev.TappedAt)
	if delta < 0 {
		delta = -delta
	}
	if delta < dedupWindow && session.ShouldNotify(prev.TappedAt) == session.ShouldNotify(cur) {
		return domain.ErrDuplicateTap
	}
	return nil
}

// postProcess runs the best-effort side effects after the primary write:
// scheduling the session-end reminder and pruning excess subscriptions.
// Neither can change the outcome the caller sees.
func (u *TapUsecase) postProcess(ctx context.Context, input SubmitInput, result *SubmitResult) {
	needsAlias := (result.TapRecorded && result.Notify) || input.SubscriptionID != ""
	if !needsAlias {
		return
	}

	profile, err := u.profiles.FindByID(ctx, input.ProfileID)
	if err != nil {
		u.logger.ErrorContext(ctx, "load profile for post-processing",
			"profile_id", input.ProfileID, "error", err)
		return
	}

	if result.TapRecorded && result.Notify {
		u.scheduler.ScheduleTapReminder(ctx, profile.ExternalAlias, result.TappedAt)
	}

	if input.SubscriptionID != "" {
		if _, err := u.cleaner.Cleanup(ctx, profile.ExternalAlias, input.SubscriptionID); err != nil {
			u.logger.ErrorContext(ctx, "subscription cleanup",
				"profile_id", input.ProfileID, "error", err)
		}
	}
}

// SessionView is what the countdown UI renders.
type SessionView struct {
	LastTap      *time.Time
	SessionEnd   *time.Time
	Notify       bool
	NextBoundary time.Time

	Ticket1ReadyAt *time.Time
	Ticket2ReadyAt *time.Time
}

// HistoryEntry is one past tap with its resolved window.
type HistoryEntry struct {
	TappedAt   time.Time
	SessionEnd time.Time
	Notify     bool
}

// History returns the profile's taps at or after since, oldest first, each
// with the window it produced. The calendar and stats views are built from
// this; the window fields are recomputed, not stored, so the history always
// reflects the current boundary rules.
func (u *TapUsecase) History(ctx context.Context, profileID string, since time.Time) ([]HistoryEntry, error) {
	taps, err := u.taps.ListTaps(ctx, profileID, since)
	if err != nil {
		return nil, fmt.Errorf("list taps: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(taps))
	for _, tap := range taps {
		entries = append(entries, HistoryEntry{
			TappedAt:   tap.TappedAt,
			SessionEnd: session.End(tap.TappedAt),
			Notify:     session.ShouldNotify(tap.TappedAt),
		})
	}
	return entries, nil
}

// Session reports the profile's current window state as of the injected
// clock's now.
func (u *TapUsecase) Session(ctx context.Context, profileID string) (*SessionView, error) {
	view := &SessionView{
		NextBoundary: session.NextBoundary(u.clock.Now()),
	}

	last, err := u.taps.LatestTap(ctx, profileID)
	if err != nil && !errors.Is(err, domain.ErrNoTapHistory) {
		return nil, fmt.Errorf("read latest tap: %w", err)
	}
	if last != nil {
		end := session.End(last.TappedAt)
		view.LastTap = &last.TappedAt
		view.SessionEnd = &end
		view.Notify = session.ShouldNotify(last.TappedAt)
	}

	profile, err := u.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile.Ticket1ActivatedAt != nil {
		ready := profile.Ticket1ActivatedAt.Add(domain.TicketCooldown)
		view.Ticket1ReadyAt = &ready
	}
	if profile.Ticket2ActivatedAt != nil {
		ready := profile.Ticket2ActivatedAt.Add(domain.TicketCooldown)
		view.Ticket2ReadyAt = &ready
	}

	return view, nil
}
