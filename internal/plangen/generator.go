package plangen

import (
	"fmt"
	"strings"

	"github.com/ryoooty/real-gachi-master/internal/domain"
)

// Profile is the input the plan generator conditions on.
type Profile struct {
	Weight              int
	Height              int
	Age                 int
	Level               string
	Injuries            string
	CompletionRate      int
	PerceivedDifficulty string
}

// Prompt renders the profile as the request the external generation service
// would receive. Kept for parity with the real integration.
func (p Profile) Prompt() string {
	injuries := p.Injuries
	if injuries == "" {
		injuries = "none"
	}
	return fmt.Sprintf(
		"User weighs %dkg, height %dcm, age %d. Level: %s. Restrictions: %s. "+
			"Closed last week at %d%%. It felt %s.",
		p.Weight, p.Height, p.Age, p.Level, injuries, p.CompletionRate, p.PerceivedDifficulty,
	)
}

// Pull-up entries weigh 3 points. This is generator policy: scoring itself
// only reads the per-entry weight.
const pullUpWeight = 3

// Generator stands in for the external content-generation service and
// returns deterministic plans so the bot runs without credentials.
type Generator struct{}

// WeeklyPlan produces a 7-day assignment keyed by lowercase weekday name,
// with two rest days.
func (Generator) WeeklyPlan(p Profile) map[string]domain.DayAssignment {
	return map[string]domain.DayAssignment{
		"monday": {Exercises: []domain.Exercise{
			{Name: "Pushups", Dimension: domain.DimReps, Amount: 20},
			{Name: "Squats", Dimension: domain.DimReps, Amount: 30},
		}},
		"tuesday": {Exercises: []domain.Exercise{
			{Name: "Plank", Dimension: domain.DimSeconds, Amount: 60},
		}},
		"wednesday": {Rest: true},
		"thursday": {Exercises: []domain.Exercise{
			{Name: "Lunges", Dimension: domain.DimReps, Amount: 15},
		}},
		"friday": {Exercises: []domain.Exercise{
			{Name: "Pullups", Dimension: domain.DimReps, Amount: 5, Points: pullUpWeight},
		}},
		"saturday": {Rest: true},
		"sunday": {Exercises: []domain.Exercise{
			{Name: "Stretching", Dimension: domain.DimMinutes, Amount: 10},
		}},
	}
}

// CyclePlan produces a rotating push/pull/legs cycle with a trailing rest
// day. Titles label each slot since cycle days are not tied to weekdays.
func (Generator) CyclePlan(p Profile) []domain.DayAssignment {
	return []domain.DayAssignment{
		{Title: "Push day", Exercises: []domain.Exercise{
			{Name: "Pushups", Dimension: domain.DimReps, Amount: 25},
			{Name: "Dips", Dimension: domain.DimReps, Amount: 10},
		}},
		{Title: "Pull day", Exercises: []domain.Exercise{
			{Name: "Pullups", Dimension: domain.DimReps, Amount: 5, Points: pullUpWeight},
			{Name: "Rows", Dimension: domain.DimReps, Amount: 15},
		}},
		{Title: "Legs day", Exercises: []domain.Exercise{
			{Name: "Squats", Dimension: domain.DimReps, Amount: 40},
			{Name: "Wall Sit", Dimension: domain.DimSeconds, Amount: 60},
		}},
		{Title: "Rest", Rest: true},
	}
}

// Adjust scales quantities up 5% when the last week felt easy; any other
// feedback leaves the plan untouched.
func Adjust(plan map[string]domain.DayAssignment, feedback string) map[string]domain.DayAssignment {
	if !strings.EqualFold(strings.TrimSpace(feedback), "easy") {
		return plan
	}
	out := make(map[string]domain.DayAssignment, len(plan))
	for day, a := range plan {
		if a.Rest {
			out[day] = a
			continue
		}
		boosted := make([]domain.Exercise, len(a.Exercises))
		copy(boosted, a.Exercises)
		for i := range boosted {
			boosted[i].Amount = int(float64(boosted[i].Amount) * 1.05)
		}
		out[day] = domain.DayAssignment{Title: a.Title, Exercises: boosted}
	}
	return out
}
