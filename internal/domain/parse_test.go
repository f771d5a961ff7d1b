package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	h, m, err = ParseClock(" 23:59 ")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 59, m)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:34:56"} {
		_, _, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, "input %q", bad)
	}
}

func TestParseWindow(t *testing.T) {
	start, end, err := ParseWindow("22:00–23:00")
	require.NoError(t, err)
	assert.Equal(t, "22:00", start)
	assert.Equal(t, "23:00", end)

	start, end, err = ParseWindow("09:30 - 10:45")
	require.NoError(t, err)
	assert.Equal(t, "09:30", start)
	assert.Equal(t, "10:45", end)

	_, _, err = ParseWindow("22:00")
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)

	_, _, err = ParseWindow("22:00–25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}

func TestValidateTZ(t *testing.T) {
	tz, err := ValidateTZ("Europe/Moscow")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", tz)

	_, err = ValidateTZ("Nowhere/Special")
	assert.ErrorIs(t, err, ErrUnknownTimezone)
}

func TestExerciseScoring(t *testing.T) {
	list := []Exercise{
		{Name: "Pushups", Dimension: DimReps, Amount: 20, Done: true},
		{Name: "Pullups", Dimension: DimReps, Amount: 5, Points: 3, Done: true},
		{Name: "Plank", Dimension: DimSeconds, Amount: 60, Done: false},
	}
	assert.False(t, AllDone(list))
	assert.Equal(t, 4, ScoreDone(list))

	list[2].Done = true
	assert.True(t, AllDone(list))
	assert.Equal(t, 5, ScoreDone(list))

	assert.False(t, AllDone(nil))
}
