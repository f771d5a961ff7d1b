package domain

// Dimension is the single quantity axis of an exercise entry.
type Dimension string

const (
	DimReps    Dimension = "reps"
	DimSeconds Dimension = "seconds"
	DimMinutes Dimension = "minutes"
	DimMeters  Dimension = "meters"
)

// Session names an independent workout track within one day.
type Session string

const (
	SessionMain       Session = "main"
	SessionAdditional Session = "additional"
)

// Exercise is one entry of a session's list. Exactly one quantity
// dimension applies, tagged by Dimension.
type Exercise struct {
	Name      string    `json:"name"`
	Dimension Dimension `json:"dimension"`
	Amount    int       `json:"amount"`
	Points    int       `json:"points,omitempty"`
	Done      bool      `json:"done"`
}

// Weight returns the scoring weight of the entry. Entries without an
// explicit points value score 1.
func (e Exercise) Weight() int {
	if e.Points <= 0 {
		return 1
	}
	return e.Points
}

// AllDone reports whether every entry of a non-empty list is completed.
func AllDone(list []Exercise) bool {
	if len(list) == 0 {
		return false
	}
	for _, e := range list {
		if !e.Done {
			return false
		}
	}
	return true
}

// ScoreDone sums the weights of completed entries.
func ScoreDone(list []Exercise) int {
	total := 0
	for _, e := range list {
		if e.Done {
			total += e.Weight()
		}
	}
	return total
}
