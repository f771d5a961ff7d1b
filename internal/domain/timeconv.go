package domain

import (
	"fmt"
	"time"
)

// NextLocalOccurrence converts a local wall-clock time in the named IANA
// timezone into the next UTC instant at which that wall clock is reached,
// at or after now. If today's occurrence already passed, it advances one
// local calendar day. Real timezone rules are used, so a DST transition
// between now and the occurrence shifts the UTC instant accordingly.
func NextLocalOccurrence(hhmm, tz string, now time.Time) (time.Time, error) {
	h, m, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTimezone, tz)
	}

	localNow := now.In(loc)
	candidate := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), h, m, 0, 0, loc)
	if !candidate.After(now) {
		// time.Date normalizes Day()+1 across month and DST boundaries.
		candidate = time.Date(localNow.Year(), localNow.Month(), localNow.Day()+1, h, m, 0, 0, loc)
	}
	return candidate.UTC(), nil
}

// NextLocalWindow converts a local (start, end) wall-clock range into a UTC
// window. Start is the next occurrence of startHHMM; end is the same local
// calendar day's endHHMM, pushed one day forward when it would not come
// after start (e.g. a 22:00–01:00 window wraps past midnight). The returned
// end is always strictly after start.
func NextLocalWindow(startHHMM, endHHMM, tz string, now time.Time) (time.Time, time.Time, error) {
	start, err := NextLocalOccurrence(startHHMM, tz, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := ParseClock(endHHMM)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTimezone, tz)
	}

	localStart := start.In(loc)
	end := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), eh, em, 0, 0, loc)
	if !end.After(localStart) {
		end = time.Date(localStart.Year(), localStart.Month(), localStart.Day()+1, eh, em, 0, 0, loc)
	}
	return start, end.UTC(), nil
}

// DateKey formats t as the YYYY-MM-DD key used by daily logs.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// LocalDateKey formats t in the named timezone as a YYYY-MM-DD key,
// falling back to UTC when tz does not resolve.
func LocalDateKey(t time.Time, tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return DateKey(t.UTC())
	}
	return DateKey(t.In(loc))
}
