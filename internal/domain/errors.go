package domain

import "errors"

// Sentinel errors shared across the bot. Handlers re-prompt on the two
// validation errors; the scheduler swallows ErrRecipientUnreachable.
var (
	ErrInvalidTimeFormat    = errors.New("invalid time format, expected HH:MM")
	ErrUnknownTimezone      = errors.New("unknown timezone")
	ErrRecipientUnreachable = errors.New("recipient unreachable")
	ErrPlanUnavailable      = errors.New("no plan configured")
	ErrSessionCompleted     = errors.New("session already completed")
)
