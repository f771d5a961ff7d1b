package domain

import "time"

// NotifyMode selects how the daily reminder is scheduled.
type NotifyMode string

const (
	ModeFixed NotifyMode = "fixed" // once a day at a fixed local time
	ModeRange NotifyMode = "range" // once a day at a random instant within a local window
)

// Plan types a user can configure. The last configured one wins.
const (
	PlanWeekly = "weekly"
	PlanCycle  = "cycle"
)

// User represents per-chat profile, notification preferences and schedule.
// The local HH:MM strings are kept next to the derived UTC instants so the
// scheduler can re-arm after a restart without recomputation drift.
type User struct {
	ChatID   int64
	Nickname string
	TZ       string

	Mode            NotifyMode
	NotifyTimeLocal string     // HH:MM in TZ, fixed mode
	NotifyTimeUTC   *time.Time // derived next fire instant, nullable
	RangeStartLocal string     // HH:MM in TZ, range mode
	RangeEndLocal   string
	RangeStartUTC   *time.Time // derived window boundaries, nullable
	RangeEndUTC     *time.Time

	AdditionalTasks int    // size of the supplemental random draw, 0 = off
	PlanType        string // weekly|cycle, empty until a plan is saved
	CycleAnchor     string // YYYY-MM-DD start of the rotating cycle

	Weight   int
	Height   int
	Age      int
	Level    string
	Injuries string

	CreatedAt time.Time // UTC
}
