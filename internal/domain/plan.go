package domain

// DayAssignment is one day's workout content resolved from a plan.
// Rest days carry no exercises; cyclic plans may title each day.
type DayAssignment struct {
	Title     string     `json:"title,omitempty"`
	Rest      bool       `json:"rest"`
	Exercises []Exercise `json:"exercises,omitempty"`
}

// Weekdays in storage order, lowercase English day names used as
// weekly_plans keys.
var Weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}
