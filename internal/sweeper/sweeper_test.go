package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/clock"
	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
)

type fakeTapRepo struct {
	listActiveSinceFn func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Profile, error)
}

func (f *fakeTapRepo) LatestTap(ctx context.Context, profileID string) (*domain.TapEvent, error) {
	panic("not used")
}

func (f *fakeTapRepo) RecordTap(ctx context.Context, profileID string, tappedAt time.Time) error {
	panic("not used")
}

func (f *fakeTapRepo) ListTaps(ctx context.Context, profileID string, since time.Time) ([]domain.TapEvent, error) {
	panic("not used")
}

func (f *fakeTapRepo) SetTicket(ctx context.Context, profileID string, slot domain.TicketSlot, activatedAt *time.Time) error {
	panic("not used")
}

func (f *fakeTapRepo) ListActiveSince(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Profile, error) {
	return f.listActiveSinceFn(ctx, cutoff, limit)
}

type fakeCleaner struct {
	calls     []string
	cleanupFn func(alias string) (int, error)
}

func (f *fakeCleaner) Cleanup(ctx context.Context, externalAlias, currentID string) (int, error) {
	f.calls = append(f.calls, externalAlias)
	if f.cleanupFn != nil {
		return f.cleanupFn(externalAlias)
	}
	return 0, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InvalidCron(t *testing.T) {
	_, err := New(&fakeTapRepo{}, &fakeCleaner{}, testLogger(), "not a cron", 30*24*time.Hour, clock.Real())
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestSweep_CutoffFromActiveWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 4, 30, 0, 0, time.UTC)
	var gotCutoff time.Time
	taps := &fakeTapRepo{
		listActiveSinceFn: func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Profile, error) {
			gotCutoff = cutoff
			return nil, nil
		},
	}

	s, err := New(taps, &fakeCleaner{}, testLogger(), "30 4 * * *", 30*24*time.Hour, clock.Fixed(now))
	if err != nil {
		t.Fatal(err)
	}
	s.Sweep(context.Background())

	want := now.Add(-30 * 24 * time.Hour)
	if !gotCutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", gotCutoff, want)
	}
}

func TestSweep_CleansEveryActiveProfile(t *testing.T) {
	taps := &fakeTapRepo{
		listActiveSinceFn: func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Profile, error) {
			return []*domain.Profile{
				{ID: "p1", ExternalAlias: "alias-1"},
				{ID: "p2", ExternalAlias: "alias-2"},
			}, nil
		},
	}
	cleaner := &fakeCleaner{}

	s, err := New(taps, cleaner, testLogger(), "30 4 * * *", 30*24*time.Hour, clock.Real())
	if err != nil {
		t.Fatal(err)
	}
	s.Sweep(context.Background())

	if len(cleaner.calls) != 2 {
		t.Fatalf("cleanup calls = %d, want 2", len(cleaner.calls))
	}
	if cleaner.calls[0] != "alias-1" || cleaner.calls[1] != "alias-2" {
		t.Errorf("cleanup aliases = %v", cleaner.calls)
	}
}

func TestSweep_ContinuesPastCleanupFailure(t *testing.T) {
	taps := &fakeTapRepo{
		listActiveSinceFn: func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Profile, error) {
			return []*domain.Profile{
				{ID: "p1", ExternalAlias: "alias-1"},
				{ID: "p2", ExternalAlias: "alias-2"},
			}, nil
		},
	}
	cleaner := &fakeCleaner{
		cleanupFn: func(alias string) (int, error) {
			if alias == "alias-1" {
				return 0, errors.New("provider down")
			}
			return 1, nil
		},
	}

	s, err := New(taps, cleaner, testLogger(), "30 4 * * *", 30*24*time.Hour, clock.Real())
	if err != nil {
		t.Fatal(err)
	}
	s.Sweep(context.Background())

	if len(cleaner.calls) != 2 {
		t.Fatalf("cleanup calls = %d, want 2 even after failure", len(cleaner.calls))
	}
}

func TestSweep_ListFailureAborts(t *testing.T) {
	taps := &fakeTapRepo{
		listActiveSinceFn: func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Profile, error) {
			return nil, errors.New("db down")
		},
	}
	cleaner := &fakeCleaner{}

	s, err := New(taps, cleaner, testLogger(), "30 4 * * *", 30*24*time.Hour, clock.Real())
	if err != nil {
		t.Fatal(err)
	}
	s.Sweep(context.Background())

	if len(cleaner.calls) != 0 {
		t.Errorf("cleanup calls = %d, want 0 when listing fails", len(cleaner.calls))
	}
}
