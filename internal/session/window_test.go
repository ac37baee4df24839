package session

import (
	"testing"
	"time"
)

// jst builds an instant in the reference timezone.
func jst(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, JST)
}

func TestNextBoundary_BeforeMorningReset(t *testing.T) {
	got := NextBoundary(jst(2025, time.March, 1, 2, 0))
	want := jst(2025, time.March, 1, 4, 0)
	if !got.Equal(want) {
		t.Errorf("NextBoundary = %v, want %v", got, want)
	}
}

func TestNextBoundary_Midday(t *testing.T) {
	got := NextBoundary(jst(2025, time.March, 1, 10, 0))
	want := jst(2025, time.March, 1, 16, 0)
	if !got.Equal(want) {
		t.Errorf("NextBoundary = %v, want %v", got, want)
	}
}

func TestNextBoundary_Evening_WrapsToNextDay(t *testing.T) {
	got := NextBoundary(jst(2025, time.March, 1, 23, 30))
	want := jst(2025, time.March, 2, 4, 0)
	if !got.Equal(want) {
		t.Errorf("NextBoundary = %v, want %v", got, want)
	}
}

func TestNextBoundary_ExactlyOnReset_ResolvesToNext(t *testing.T) {
	got := NextBoundary(jst(2025, time.March, 1, 4, 0))
	want := jst(2025, time.March, 1, 16, 0)
	if !got.Equal(want) {
		t.Errorf("NextBoundary = %v, want %v", got, want)
	}

	got = NextBoundary(jst(2025, time.March, 1, 16, 0))
	want = jst(2025, time.March, 2, 4, 0)
	if !got.Equal(want) {
		t.Errorf("NextBoundary = %v, want %v", got, want)
	}
}

func TestNextBoundary_CallerTimezoneIrrelevant(t *testing.T) {
	// 02:00 JST expressed as 17:00 UTC the previous day.
	utc := time.Date(2025, time.February, 28, 17, 0, 0, 0, time.UTC)
	got := NextBoundary(utc)
	want := jst(2025, time.March, 1, 4, 0)
	if !got.Equal(want) {
		t.Errorf("NextBoundary = %v, want %v", got, want)
	}
}

func TestNextBoundary_StrictlyLaterAndStableFromLeft(t *testing.T) {
	instants := []time.Time{
		jst(2025, time.March, 1, 0, 0),
		jst(2025, time.March, 1, 3, 59),
		jst(2025, time.March, 1, 4, 1),
		jst(2025, time.March, 1, 15, 59),
		jst(2025, time.March, 1, 16, 1),
		jst(2025, time.March, 1, 23, 59),
	}
	for _, in := range instants {
		b := NextBoundary(in)
		if !b.After(in) {
			t.Errorf("NextBoundary(%v) = %v is not strictly later", in, b)
		}
		h := b.In(JST).Hour()
		if h != morningResetHour && h != eveningResetHour {
			t.Errorf("NextBoundary(%v) = %v is not a reset instant", in, b)
		}
		// Approaching a boundary from the left must not change it.
		if again := NextBoundary(b.Add(-time.Second)); !again.Equal(b) {
			t.Errorf("NextBoundary(%v - 1s) = %v, want %v", b, again, b)
		}
	}
}

func TestEnd_NormalWindow(t *testing.T) {
	tap := jst(2025, time.March, 1, 10, 0)
	got := End(tap)
	want := jst(2025, time.March, 1, 13, 0)
	if !got.Equal(want) {
		t.Errorf("End = %v, want %v", got, want)
	}
}

func TestEnd_TruncatedAtMorningReset(t *testing.T) {
	tap := jst(2025, time.March, 1, 3, 50)
	got := End(tap)
	want := jst(2025, time.March, 1, 4, 0)
	if !got.Equal(want) {
		t.Errorf("End = %v, want %v", got, want)
	}
}

func TestEnd_NeverExceedsThreeHours(t *testing.T) {
	for hh := 0; hh < 24; hh++ {
		for _, mm := range []int{0, 17, 30, 59} {
			tap := jst(2025, time.March, 1, hh, mm)
			end := End(tap)
			if end.After(tap.Add(Length)) {
				t.Errorf("End(%v) = %v exceeds tap+3h", tap, end)
			}
			truncated := tap.Add(Length).After(NextBoundary(tap))
			if !truncated && !end.Equal(tap.Add(Length)) {
				t.Errorf("End(%v) = %v, want full window %v", tap, end, tap.Add(Length))
			}
		}
	}
}

func TestShouldNotify_TrueIffUntruncated(t *testing.T) {
	for hh := 0; hh < 24; hh++ {
		tap := jst(2025, time.March, 1, hh, 30)
		untruncated := End(tap).Equal(tap.Add(Length))
		if got := ShouldNotify(tap); got != untruncated {
			t.Errorf("ShouldNotify(%v) = %v, untruncated = %v", tap, got, untruncated)
		}
	}
}

func TestShouldNotify_Cases(t *testing.T) {
	cases := []struct {
		name string
		tap  time.Time
		want bool
	}{
		{"window fits before evening reset", jst(2025, time.March, 1, 10, 0), true},
		{"would cross morning reset", jst(2025, time.March, 1, 2, 0), false},
		{"ten minutes before reset", jst(2025, time.March, 1, 3, 50), false},
		{"ends exactly on reset", jst(2025, time.March, 1, 1, 0), true},
		{"just after morning reset", jst(2025, time.March, 1, 4, 1), true},
		{"overnight window still fits before 04:00", jst(2025, time.March, 1, 23, 0), true},
		{"afternoon, crosses evening reset", jst(2025, time.March, 1, 14, 30), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldNotify(tc.tap); got != tc.want {
				t.Errorf("ShouldNotify(%v) = %v, want %v", tc.tap, got, tc.want)
			}
		})
	}
}
