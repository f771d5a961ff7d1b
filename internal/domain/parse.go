package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidTimeFormat, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidTimeFormat, s)
	}
	return h, m, nil
}

// ParseWindow parses "HH:MM–HH:MM" (en dash or hyphen) into the two local
// time strings. Both sides are validated.
func ParseWindow(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	sep := "–"
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: expected HH:MM–HH:MM, got %q", ErrInvalidTimeFormat, s)
	}
	start := strings.TrimSpace(parts[0])
	end := strings.TrimSpace(parts[1])
	if _, _, err := ParseClock(start); err != nil {
		return "", "", err
	}
	if _, _, err := ParseClock(end); err != nil {
		return "", "", err
	}
	return start, end, nil
}

// ValidateTZ checks that tz is a valid IANA location and returns its
// canonical name.
func ValidateTZ(tz string) (string, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownTimezone, tz)
	}
	return loc.String(), nil
}

// LocalClock formats t in the user's timezone as HH:MM.
func LocalClock(t time.Time, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownTimezone, tz)
	}
	return t.In(loc).Format("15:04"), nil
}

// UTCClock returns the current UTC wall clock as HH:MM. Used as the default
// notification time on first contact.
func UTCClock(now time.Time) string {
	return now.UTC().Format("15:04")
}
