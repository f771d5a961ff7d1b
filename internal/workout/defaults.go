package workout

import "github.com/ryoooty/real-gachi-master/internal/domain"

// DefaultWorkout is the built-in fallback set pushed when no plan covers
// the date.
func DefaultWorkout() []domain.Exercise {
	return []domain.Exercise{
		{Name: "Pushups", Dimension: domain.DimReps, Amount: 20},
		{Name: "Squats", Dimension: domain.DimReps, Amount: 30},
		{Name: "Plank", Dimension: domain.DimSeconds, Amount: 60},
	}
}

// DefaultPool is the supplemental pool the additional session samples from.
func DefaultPool() []domain.Exercise {
	return []domain.Exercise{
		{Name: "Jumping Jacks", Dimension: domain.DimReps, Amount: 40},
		{Name: "Wall Sit", Dimension: domain.DimSeconds, Amount: 45},
		{Name: "Burpees", Dimension: domain.DimReps, Amount: 10},
		{Name: "Jog In Place", Dimension: domain.DimMinutes, Amount: 3},
		{Name: "Walking Lunges", Dimension: domain.DimMeters, Amount: 20},
	}
}
