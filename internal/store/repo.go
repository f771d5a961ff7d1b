package store

import (
	"context"
	"time"

	"github.com/ryoooty/real-gachi-master/internal/domain"
)

// LeaderboardRow is one user's accumulated score.
type LeaderboardRow struct {
	ChatID   int64
	Nickname string
	Points   int
}

// Repo defines storage operations for users, plans and daily logs.
// Lookups return (nil, nil) when the record does not exist.
type Repo interface {
	UpsertUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	SaveWeeklyPlan(ctx context.Context, chatID int64, days map[string]domain.DayAssignment) error
	SaveCyclePlan(ctx context.Context, chatID int64, anchor string, days []domain.DayAssignment) error
	GetAssignment(ctx context.Context, u *domain.User, date time.Time) (*domain.DayAssignment, error)

	LoadLog(ctx context.Context, chatID int64, date string) (*domain.DailyLog, error)
	UpsertLog(ctx context.Context, upd LogUpdate) error
	AddPoints(ctx context.Context, chatID int64, date string, delta int) error
	TotalPoints(ctx context.Context, chatID int64) (int, error)
	CompletionDates(ctx context.Context, chatID int64) ([]string, error)
	Leaderboard(ctx context.Context) ([]LeaderboardRow, error)

	Close() error
}
