// Package session holds the pure window math for cafe sessions: when the
// next daily reset happens, when a session ends, and whether a tap should
// produce a deferred reminder. Everything here is a pure function of the
// instant passed in; callers inject "now" themselves.
package session

import "time"

// JST is the reference timezone. Both daily resets are fixed in JST no
// matter where the caller is. JST has no DST, so a fixed offset is exact.
var JST = time.FixedZone("JST", 9*60*60)

// Length is the nominal duration of one cafe session.
const Length = 3 * time.Hour

// Resets happen at 04:00 and 16:00 JST.
const (
	morningResetHour = 4
	eveningResetHour = 16
)

// NextBoundary returns the first daily reset strictly after t. An instant
// exactly on a reset resolves to the following one.
func NextBoundary(t time.Time) time.Time {
	jt := t.In(JST)
	y, m, d := jt.Date()

	switch {
	case jt.Hour() < morningResetHour:
		return time.Date(y, m, d, morningResetHour, 0, 0, 0, JST)
	case jt.Hour() < eveningResetHour:
		return time.Date(y, m, d, eveningResetHour, 0, 0, 0, JST)
	default:
		return time.Date(y, m, d+1, morningResetHour, 0, 0, 0, JST)
	}
}

// End returns when the session started by lastTap finishes: three hours
// after the tap, truncated at the next reset so a session never straddles
// a boundary.
func End(lastTap time.Time) time.Time {
	end := lastTap.Add(Length)
	if b := NextBoundary(lastTap); end.After(b) {
		return b
	}
	return end
}

// ShouldNotify reports whether a tap at t earns a deferred reminder.
//
// Canonical rule: notify iff the full three-hour window fits before the
// next reset. A truncated session gets no reminder — the reset is a fixed,
// globally known instant and a personalized ping for it is redundant. This
// subsumes any extra pre-boundary quiet period, since everything within
// three hours of a reset is already suppressed.
func ShouldNotify(t time.Time) bool {
	return !t.Add(Length).After(NextBoundary(t))
}
