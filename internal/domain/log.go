package domain

// Terminal outcome tags stored in daily_logs.difficulty_rate. Any other
// non-empty value is freeform difficulty feedback from the user.
const (
	OutcomeCompleted = "completed"
	OutcomeSkipped   = "skipped"
)

// DailyLog is the per-(chat, date) record of workout state. Sessions maps
// session name to the ordered exercise list; once populated it is the
// authoritative content for that day and overrides the plan.
type DailyLog struct {
	ChatID         int64
	Date           string // YYYY-MM-DD
	Sessions       map[Session][]Exercise
	DifficultyRate string
	Points         int
}

// Closed reports whether the day reached a terminal state: completed or
// skipped, or points already awarded. Carry-forward closure skips closed
// days, which makes it idempotent.
func (l *DailyLog) Closed() bool {
	if l == nil {
		return true
	}
	return l.DifficultyRate == OutcomeCompleted ||
		l.DifficultyRate == OutcomeSkipped ||
		l.Points > 0
}
