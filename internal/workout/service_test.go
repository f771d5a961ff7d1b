package workout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ryoooty/real-gachi-master/internal/domain"
	"github.com/ryoooty/real-gachi-master/internal/store"
)

// monday is a fixed reference date so weekly-plan lookups are stable.
var monday = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, store.Repo) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	svc := New(repo, zap.NewNop())
	svc.now = func() time.Time { return monday }
	svc.perm = func(n int) []int {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	return svc, repo
}

func seedUser(t *testing.T, repo store.Repo, additional int) *domain.User {
	t.Helper()
	u := &domain.User{
		ChatID:          42,
		Nickname:        "tester",
		TZ:              "UTC",
		Mode:            domain.ModeFixed,
		NotifyTimeLocal: "09:00",
		AdditionalTasks: additional,
		CreatedAt:       monday,
	}
	require.NoError(t, repo.UpsertUser(context.Background(), u))
	return u
}

func seedWeeklyPlan(t *testing.T, repo store.Repo, chatID int64) {
	t.Helper()
	require.NoError(t, repo.SaveWeeklyPlan(context.Background(), chatID, map[string]domain.DayAssignment{
		"monday": {Exercises: []domain.Exercise{
			{Name: "Pushups", Dimension: domain.DimReps, Amount: 20},
			{Name: "Pullups", Dimension: domain.DimReps, Amount: 5, Points: 3},
		}},
		"tuesday": {Rest: true},
	}))
}

func TestResolveTodayDrawsFromPlan(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)

	content, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)
	require.False(t, content.Rest)
	require.Len(t, content.Exercises, 2)
	require.Equal(t, "Pushups", content.Exercises[0].Name)

	// The draw is persisted immediately.
	dayLog, err := repo.LoadLog(context.Background(), u.ChatID, domain.DateKey(monday))
	require.NoError(t, err)
	require.NotNil(t, dayLog)
	require.Len(t, dayLog.Sessions[domain.SessionMain], 2)
}

func TestResolveTodayRestDayNotPersisted(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)

	tuesday := monday.AddDate(0, 0, 1)
	content, err := svc.ResolveToday(context.Background(), u, tuesday, domain.SessionMain)
	require.NoError(t, err)
	require.True(t, content.Rest)

	dayLog, err := repo.LoadLog(context.Background(), u.ChatID, domain.DateKey(tuesday))
	require.NoError(t, err)
	require.Nil(t, dayLog)
}

func TestResolveTodayNoPlan(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)

	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.ErrorIs(t, err, domain.ErrPlanUnavailable)
}

func TestStoredLogWinsOverPlan(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)
	dateKey := domain.DateKey(monday)

	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)

	allDone, err := svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 0, true)
	require.NoError(t, err)
	require.False(t, allDone)

	// Replacing the plan must not affect the already materialized day.
	require.NoError(t, repo.SaveWeeklyPlan(context.Background(), u.ChatID, map[string]domain.DayAssignment{
		"monday": {Exercises: []domain.Exercise{
			{Name: "Burpees", Dimension: domain.DimReps, Amount: 10},
		}},
	}))

	content, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)
	require.Len(t, content.Exercises, 2)
	require.Equal(t, "Pushups", content.Exercises[0].Name)
	require.True(t, content.Exercises[0].Done)
}

func TestCompleteAwardsWeightedPoints(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)
	dateKey := domain.DateKey(monday)

	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)

	allDone, err := svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 0, true)
	require.NoError(t, err)
	require.False(t, allDone)
	allDone, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 1, true)
	require.NoError(t, err)
	require.True(t, allDone)

	// Pushups weigh 1, Pullups weigh 3.
	points, err := svc.Complete(context.Background(), u.ChatID, dateKey, domain.SessionMain)
	require.NoError(t, err)
	require.Equal(t, 4, points)

	dayLog, err := repo.LoadLog(context.Background(), u.ChatID, dateKey)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCompleted, dayLog.DifficultyRate)
	require.Equal(t, 4, dayLog.Points)
}

func TestUntoggleReopensSession(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)
	dateKey := domain.DateKey(monday)

	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 0, true)
	require.NoError(t, err)
	allDone, err := svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 1, true)
	require.NoError(t, err)
	require.True(t, allDone)

	allDone, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 0, false)
	require.NoError(t, err)
	require.False(t, allDone)
}

func TestSkipAfterCompleteKeepsPoints(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)
	dateKey := domain.DateKey(monday)

	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 0, true)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 1, true)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), u.ChatID, dateKey, domain.SessionMain)
	require.NoError(t, err)

	err = svc.Skip(context.Background(), u.ChatID, dateKey, domain.SessionMain)
	require.ErrorIs(t, err, domain.ErrSessionCompleted)

	dayLog, err := repo.LoadLog(context.Background(), u.ChatID, dateKey)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCompleted, dayLog.DifficultyRate)
	require.Equal(t, 4, dayLog.Points)
}

func TestSkipAfterRatingKeepsPoints(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)
	dateKey := domain.DateKey(monday)

	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 0, true)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 1, true)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), u.ChatID, dateKey, domain.SessionMain)
	require.NoError(t, err)

	// Rating replaces the outcome tag with freeform feedback; the day must
	// still count as completed for any later skip attempt.
	require.NoError(t, svc.Rate(context.Background(), u.ChatID, dateKey, "hard"))

	err = svc.Skip(context.Background(), u.ChatID, dateKey, domain.SessionMain)
	require.ErrorIs(t, err, domain.ErrSessionCompleted)

	dayLog, err := repo.LoadLog(context.Background(), u.ChatID, dateKey)
	require.NoError(t, err)
	require.Equal(t, "hard", dayLog.DifficultyRate)
	require.Equal(t, 4, dayLog.Points)
}

func TestSkipMainZeroesPoints(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)
	dateKey := domain.DateKey(monday)

	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)

	require.NoError(t, svc.Skip(context.Background(), u.ChatID, dateKey, domain.SessionMain))

	dayLog, err := repo.LoadLog(context.Background(), u.ChatID, dateKey)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeSkipped, dayLog.DifficultyRate)
	require.Equal(t, 0, dayLog.Points)
}

func TestCarryForwardClosesYesterday(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)

	yesterdayKey := domain.DateKey(monday.AddDate(0, 0, -1))
	require.NoError(t, repo.UpsertLog(context.Background(), store.LogUpdate{
		ChatID: u.ChatID,
		Date:   yesterdayKey,
		Sessions: map[domain.Session][]domain.Exercise{
			domain.SessionMain: {{Name: "Pushups", Dimension: domain.DimReps, Amount: 20, Done: true}},
		},
	}))

	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)

	prev, err := repo.LoadLog(context.Background(), u.ChatID, yesterdayKey)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeSkipped, prev.DifficultyRate)
	require.Equal(t, 0, prev.Points)
	// Checkmarks survive the closure for later inspection.
	require.True(t, prev.Sessions[domain.SessionMain][0].Done)
}

func TestCarryForwardSkipsClosedDays(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)

	yesterdayKey := domain.DateKey(monday.AddDate(0, 0, -1))
	rate := domain.OutcomeCompleted
	points := 7
	require.NoError(t, repo.UpsertLog(context.Background(), store.LogUpdate{
		ChatID:         u.ChatID,
		Date:           yesterdayKey,
		DifficultyRate: &rate,
		Points:         &points,
	}))

	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)

	prev, err := repo.LoadLog(context.Background(), u.ChatID, yesterdayKey)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCompleted, prev.DifficultyRate)
	require.Equal(t, 7, prev.Points)
}

func TestAdditionalDrawAndCompletion(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 2)
	seedWeeklyPlan(t, repo, u.ChatID)
	dateKey := domain.DateKey(monday)

	// Materialize and finish the main session first.
	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 0, true)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 1, true)
	require.NoError(t, err)
	mainPoints, err := svc.Complete(context.Background(), u.ChatID, dateKey, domain.SessionMain)
	require.NoError(t, err)

	extra, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionAdditional)
	require.NoError(t, err)
	require.Len(t, extra.Exercises, 2)
	require.NotEqual(t, extra.Exercises[0].Name, extra.Exercises[1].Name)

	// The extra draw must not clobber the main session.
	dayLog, err := repo.LoadLog(context.Background(), u.ChatID, dateKey)
	require.NoError(t, err)
	require.Len(t, dayLog.Sessions[domain.SessionMain], 2)

	for i := range extra.Exercises {
		_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionAdditional, i, true)
		require.NoError(t, err)
	}
	bonus, err := svc.Complete(context.Background(), u.ChatID, dateKey, domain.SessionAdditional)
	require.NoError(t, err)
	require.Positive(t, bonus)

	dayLog, err = repo.LoadLog(context.Background(), u.ChatID, dateKey)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCompleted, dayLog.DifficultyRate)
	require.Equal(t, mainPoints+bonus, dayLog.Points)
}

func TestSkipAdditionalAfterAllDone(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 1)
	dateKey := domain.DateKey(monday)

	extra, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionAdditional)
	require.NoError(t, err)
	require.Len(t, extra.Exercises, 1)

	_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionAdditional, 0, true)
	require.NoError(t, err)

	err = svc.Skip(context.Background(), u.ChatID, dateKey, domain.SessionAdditional)
	require.ErrorIs(t, err, domain.ErrSessionCompleted)
}

func TestRatePreservesPoints(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	seedWeeklyPlan(t, repo, u.ChatID)
	dateKey := domain.DateKey(monday)

	_, err := svc.ResolveToday(context.Background(), u, monday, domain.SessionMain)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 0, true)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), u.ChatID, dateKey, domain.SessionMain, 1, true)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), u.ChatID, dateKey, domain.SessionMain)
	require.NoError(t, err)

	require.NoError(t, svc.Rate(context.Background(), u.ChatID, dateKey, "hard"))

	dayLog, err := repo.LoadLog(context.Background(), u.ChatID, dateKey)
	require.NoError(t, err)
	require.Equal(t, "hard", dayLog.DifficultyRate)
	require.Equal(t, 4, dayLog.Points)
}

func TestAdoptContentResetsDone(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, 0)
	dateKey := domain.DateKey(monday)

	list := []domain.Exercise{{Name: "Pushups", Dimension: domain.DimReps, Amount: 20, Done: true}}
	require.NoError(t, svc.AdoptContent(context.Background(), u.ChatID, dateKey, domain.SessionMain, list))

	dayLog, err := repo.LoadLog(context.Background(), u.ChatID, dateKey)
	require.NoError(t, err)
	require.False(t, dayLog.Sessions[domain.SessionMain][0].Done)
}
