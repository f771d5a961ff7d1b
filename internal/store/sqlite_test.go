package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ryoooty/real-gachi-master/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	next := time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)
	u := &domain.User{
		ChatID:          7,
		Nickname:        "alice",
		TZ:              "Europe/Moscow",
		Mode:            domain.ModeFixed,
		NotifyTimeLocal: "09:00",
		NotifyTimeUTC:   &next,
		AdditionalTasks: 2,
		Weight:          70,
		Height:          175,
		Age:             30,
		Level:           "pro",
		CreatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.UpsertUser(ctx, u))

	got, err := repo.GetUser(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "alice", got.Nickname)
	require.Equal(t, domain.ModeFixed, got.Mode)
	require.Equal(t, "09:00", got.NotifyTimeLocal)
	require.NotNil(t, got.NotifyTimeUTC)
	require.True(t, got.NotifyTimeUTC.Equal(next))
	require.Equal(t, 2, got.AdditionalTasks)
	require.Equal(t, "pro", got.Level)

	// Unknown chat reads as absent, not as error.
	missing, err := repo.GetUser(ctx, 999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestUpsertUserReplacesSchedule(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	next := time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)
	u := &domain.User{ChatID: 7, TZ: "UTC", Mode: domain.ModeFixed, NotifyTimeLocal: "09:00", NotifyTimeUTC: &next}
	require.NoError(t, repo.UpsertUser(ctx, u))

	start := time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)
	u.Mode = domain.ModeRange
	u.RangeStartLocal, u.RangeEndLocal = "18:00", "21:00"
	u.RangeStartUTC, u.RangeEndUTC = &start, &end
	u.NotifyTimeUTC = nil
	require.NoError(t, repo.UpsertUser(ctx, u))

	got, err := repo.GetUser(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, domain.ModeRange, got.Mode)
	require.Nil(t, got.NotifyTimeUTC)
	require.NotNil(t, got.RangeStartUTC)
	require.True(t, got.RangeStartUTC.Equal(start))
	require.True(t, got.RangeEndUTC.Equal(end))
}

func TestUpsertLogPartialUpdates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sessions := map[domain.Session][]domain.Exercise{
		domain.SessionMain: {{Name: "Pushups", Dimension: domain.DimReps, Amount: 20}},
	}
	require.NoError(t, repo.UpsertLog(ctx, LogUpdate{ChatID: 1, Date: "2024-06-10", Sessions: sessions}))

	// A rate-only update must leave the exercises untouched.
	rate := domain.OutcomeCompleted
	require.NoError(t, repo.UpsertLog(ctx, LogUpdate{ChatID: 1, Date: "2024-06-10", DifficultyRate: &rate}))

	dayLog, err := repo.LoadLog(ctx, 1, "2024-06-10")
	require.NoError(t, err)
	require.Len(t, dayLog.Sessions[domain.SessionMain], 1)
	require.Equal(t, domain.OutcomeCompleted, dayLog.DifficultyRate)
	require.Equal(t, 0, dayLog.Points)

	// A points-only update must leave the rate untouched.
	points := 5
	require.NoError(t, repo.UpsertLog(ctx, LogUpdate{ChatID: 1, Date: "2024-06-10", Points: &points}))

	dayLog, err = repo.LoadLog(ctx, 1, "2024-06-10")
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCompleted, dayLog.DifficultyRate)
	require.Equal(t, 5, dayLog.Points)
}

func TestAddPoints(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	points := 3
	require.NoError(t, repo.UpsertLog(ctx, LogUpdate{ChatID: 1, Date: "2024-06-10", Points: &points}))
	require.NoError(t, repo.AddPoints(ctx, 1, "2024-06-10", 2))

	dayLog, err := repo.LoadLog(ctx, 1, "2024-06-10")
	require.NoError(t, err)
	require.Equal(t, 5, dayLog.Points)

	total, err := repo.TotalPoints(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 5, total)
}

func TestGetAssignmentWeekly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := &domain.User{ChatID: 1, TZ: "UTC"}
	require.NoError(t, repo.UpsertUser(ctx, u))
	require.NoError(t, repo.SaveWeeklyPlan(ctx, 1, map[string]domain.DayAssignment{
		"monday":  {Exercises: []domain.Exercise{{Name: "Pushups", Dimension: domain.DimReps, Amount: 20}}},
		"tuesday": {Rest: true},
	}))

	u, err := repo.GetUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.PlanWeekly, u.PlanType)

	monday := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	a, err := repo.GetAssignment(ctx, u, monday)
	require.NoError(t, err)
	require.NotNil(t, a)
	require.False(t, a.Rest)
	require.Equal(t, "Pushups", a.Exercises[0].Name)

	a, err = repo.GetAssignment(ctx, u, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.NotNil(t, a)
	require.True(t, a.Rest)

	// Wednesday has no row: no plan covers the date.
	a, err = repo.GetAssignment(ctx, u, monday.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Nil(t, a)
}

func TestGetAssignmentCycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := &domain.User{ChatID: 1, TZ: "UTC"}
	require.NoError(t, repo.UpsertUser(ctx, u))
	require.NoError(t, repo.SaveCyclePlan(ctx, 1, "2024-06-10", []domain.DayAssignment{
		{Title: "Push day", Exercises: []domain.Exercise{{Name: "Pushups", Dimension: domain.DimReps, Amount: 25}}},
		{Title: "Pull day", Exercises: []domain.Exercise{{Name: "Pullups", Dimension: domain.DimReps, Amount: 5, Points: 3}}},
		{Title: "Rest", Rest: true},
	}))

	u, err := repo.GetUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.PlanCycle, u.PlanType)
	require.Equal(t, "2024-06-10", u.CycleAnchor)

	anchor := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	a, err := repo.GetAssignment(ctx, u, anchor)
	require.NoError(t, err)
	require.Equal(t, "Push day", a.Title)

	// Day four wraps around to the second slot.
	a, err = repo.GetAssignment(ctx, u, anchor.AddDate(0, 0, 4))
	require.NoError(t, err)
	require.Equal(t, "Pull day", a.Title)
	require.Equal(t, 3, a.Exercises[0].Weight())

	a, err = repo.GetAssignment(ctx, u, anchor.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.True(t, a.Rest)

	// Dates before the anchor are not covered.
	a, err = repo.GetAssignment(ctx, u, anchor.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Nil(t, a)
}

func TestCompletionDatesAndLeaderboard(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ChatID: 1, Nickname: "alice", TZ: "UTC"}))
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ChatID: 2, Nickname: "bob", TZ: "UTC"}))

	five, zero, three := 5, 0, 3
	require.NoError(t, repo.UpsertLog(ctx, LogUpdate{ChatID: 1, Date: "2024-06-10", Points: &five}))
	require.NoError(t, repo.UpsertLog(ctx, LogUpdate{ChatID: 1, Date: "2024-06-11", Points: &zero}))
	require.NoError(t, repo.UpsertLog(ctx, LogUpdate{ChatID: 1, Date: "2024-06-12", Points: &three}))
	require.NoError(t, repo.UpsertLog(ctx, LogUpdate{ChatID: 2, Date: "2024-06-10", Points: &three}))

	dates, err := repo.CompletionDates(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"2024-06-12", "2024-06-10"}, dates)

	rows, err := repo.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "alice", rows[0].Nickname)
	require.Equal(t, 8, rows[0].Points)
	require.Equal(t, "bob", rows[1].Nickname)
	require.Equal(t, 3, rows[1].Points)
}
