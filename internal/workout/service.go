package workout

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ryoooty/real-gachi-master/internal/domain"
	"github.com/ryoooty/real-gachi-master/internal/store"
)

// TodayContent is a session's resolved content for one calendar date.
type TodayContent struct {
	Title     string
	Rest      bool
	Exercises []domain.Exercise
}

// Service applies the daily-log transition rules on top of the store:
// NotStarted -> InProgress -> Completed | Skipped per (user, date, session).
type Service struct {
	repo store.Repo
	log  *zap.Logger

	now  func() time.Time
	perm func(n int) []int // injectable randomness for supplemental draws
	pool []domain.Exercise
}

// New creates a workout service using the built-in supplemental pool.
func New(repo store.Repo, log *zap.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
		perm: rand.Perm,
		pool: DefaultPool(),
	}
}

// ResolveToday returns the session's content for the date, with documented
// precedence: a non-empty stored log wins (it carries the in-progress
// checkmarks), otherwise content is drawn fresh — from the plan for the
// main session, or a random supplemental sample for the additional one —
// and persisted immediately. Carry-forward closure of yesterday runs first,
// before any of today's state is computed.
func (s *Service) ResolveToday(ctx context.Context, u *domain.User, date time.Time, session domain.Session) (*TodayContent, error) {
	dateKey := domain.DateKey(date)

	if err := s.closeStale(ctx, u.ChatID, date); err != nil {
		return nil, fmt.Errorf("carry-forward closure: %w", err)
	}

	dayLog, err := s.repo.LoadLog(ctx, u.ChatID, dateKey)
	if err != nil {
		return nil, err
	}
	if dayLog != nil {
		if list := dayLog.Sessions[session]; len(list) > 0 {
			return &TodayContent{Exercises: list}, nil
		}
	}

	var content *TodayContent
	switch session {
	case domain.SessionMain:
		a, err := s.repo.GetAssignment(ctx, u, date)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, domain.ErrPlanUnavailable
		}
		if a.Rest {
			// Rest days are not logged; nothing to complete or skip.
			return &TodayContent{Title: a.Title, Rest: true}, nil
		}
		content = &TodayContent{Title: a.Title, Exercises: resetDone(a.Exercises)}
	case domain.SessionAdditional:
		if u.AdditionalTasks <= 0 {
			return &TodayContent{}, nil
		}
		content = &TodayContent{Exercises: s.draw(u.AdditionalTasks)}
	default:
		return nil, fmt.Errorf("unknown session %q", session)
	}

	// Persist the freshly drawn content, preserving the other session.
	sessions := map[domain.Session][]domain.Exercise{}
	if dayLog != nil {
		for k, v := range dayLog.Sessions {
			sessions[k] = v
		}
	}
	sessions[session] = content.Exercises
	if err := s.repo.UpsertLog(ctx, store.LogUpdate{
		ChatID:   u.ChatID,
		Date:     dateKey,
		Sessions: sessions,
	}); err != nil {
		return nil, err
	}
	return content, nil
}

// closeStale force-transitions yesterday's log to Skipped with 0 points if
// it never reached a terminal state. No-op on closed or absent days.
func (s *Service) closeStale(ctx context.Context, chatID int64, today time.Time) error {
	yesterday := domain.DateKey(today.AddDate(0, 0, -1))
	prev, err := s.repo.LoadLog(ctx, chatID, yesterday)
	if err != nil {
		return err
	}
	if prev.Closed() {
		return nil
	}

	rate := domain.OutcomeSkipped
	zero := 0
	s.log.Info("closing unfinished previous day as skipped",
		zap.Int64("chatID", chatID), zap.String("date", yesterday))
	return s.repo.UpsertLog(ctx, store.LogUpdate{
		ChatID:         chatID,
		Date:           yesterday,
		DifficultyRate: &rate,
		Points:         &zero,
	})
}

// Toggle flips one exercise's completion flag, persists the whole session
// and reports whether every entry is now done.
func (s *Service) Toggle(ctx context.Context, chatID int64, date string, session domain.Session, index int, done bool) (bool, error) {
	dayLog, err := s.repo.LoadLog(ctx, chatID, date)
	if err != nil {
		return false, err
	}
	if dayLog == nil {
		return false, domain.ErrPlanUnavailable
	}
	list := dayLog.Sessions[session]
	if index < 0 || index >= len(list) {
		return false, fmt.Errorf("exercise index %d out of range for session %s", index, session)
	}

	list[index].Done = done
	dayLog.Sessions[session] = list
	if err := s.repo.UpsertLog(ctx, store.LogUpdate{
		ChatID:   chatID,
		Date:     date,
		Sessions: dayLog.Sessions,
	}); err != nil {
		return false, err
	}
	return domain.AllDone(list), nil
}

// Complete awards points for the session: the sum of completed entries'
// weights. The main session sets the day's terminal outcome and overwrites
// points; the additional session only merge-adds points and never touches
// the outcome tag.
func (s *Service) Complete(ctx context.Context, chatID int64, date string, session domain.Session) (int, error) {
	dayLog, err := s.repo.LoadLog(ctx, chatID, date)
	if err != nil {
		return 0, err
	}
	if dayLog == nil {
		return 0, domain.ErrPlanUnavailable
	}

	points := domain.ScoreDone(dayLog.Sessions[session])
	if session == domain.SessionMain {
		rate := domain.OutcomeCompleted
		if err := s.repo.UpsertLog(ctx, store.LogUpdate{
			ChatID:         chatID,
			Date:           date,
			DifficultyRate: &rate,
			Points:         &points,
		}); err != nil {
			return 0, err
		}
		return points, nil
	}
	if err := s.repo.AddPoints(ctx, chatID, date, points); err != nil {
		return 0, err
	}
	return points, nil
}

// Skip marks the session as skipped. Rejected once the session completed.
// A main skip sets the day outcome and zeroes points; an additional skip
// only drops that day's drawn sample.
func (s *Service) Skip(ctx context.Context, chatID int64, date string, session domain.Session) error {
	dayLog, err := s.repo.LoadLog(ctx, chatID, date)
	if err != nil {
		return err
	}

	if session == domain.SessionMain {
		// The outcome tag alone is not enough: rating difficulty replaces it
		// with the freeform feedback, so an all-done list also counts.
		if dayLog != nil && (dayLog.DifficultyRate == domain.OutcomeCompleted ||
			domain.AllDone(dayLog.Sessions[session])) {
			return domain.ErrSessionCompleted
		}
		rate := domain.OutcomeSkipped
		zero := 0
		return s.repo.UpsertLog(ctx, store.LogUpdate{
			ChatID:         chatID,
			Date:           date,
			DifficultyRate: &rate,
			Points:         &zero,
		})
	}

	if dayLog == nil {
		return nil
	}
	if domain.AllDone(dayLog.Sessions[session]) {
		return domain.ErrSessionCompleted
	}
	delete(dayLog.Sessions, session)
	return s.repo.UpsertLog(ctx, store.LogUpdate{
		ChatID:   chatID,
		Date:     date,
		Sessions: dayLog.Sessions,
	})
}

// Rate stores freeform difficulty feedback for the day, preserving points.
func (s *Service) Rate(ctx context.Context, chatID int64, date, feedback string) error {
	return s.repo.UpsertLog(ctx, store.LogUpdate{
		ChatID:         chatID,
		Date:           date,
		DifficultyRate: &feedback,
	})
}

// AdoptContent stores an externally supplied exercise list as the session's
// content for the date, preserving other sessions. Used for the built-in
// fallback set when no plan covers the date.
func (s *Service) AdoptContent(ctx context.Context, chatID int64, date string, session domain.Session, list []domain.Exercise) error {
	dayLog, err := s.repo.LoadLog(ctx, chatID, date)
	if err != nil {
		return err
	}
	sessions := map[domain.Session][]domain.Exercise{}
	if dayLog != nil {
		for k, v := range dayLog.Sessions {
			sessions[k] = v
		}
	}
	sessions[session] = resetDone(list)
	return s.repo.UpsertLog(ctx, store.LogUpdate{
		ChatID:   chatID,
		Date:     date,
		Sessions: sessions,
	})
}

// draw samples n supplemental exercises without replacement. Each call is a
// fresh draw; subsequent days may differ.
func (s *Service) draw(n int) []domain.Exercise {
	if n > len(s.pool) {
		n = len(s.pool)
	}
	idx := s.perm(len(s.pool))
	out := make([]domain.Exercise, 0, n)
	for _, i := range idx[:n] {
		e := s.pool[i]
		e.Done = false
		out = append(out, e)
	}
	return out
}

func resetDone(list []domain.Exercise) []domain.Exercise {
	out := make([]domain.Exercise, len(list))
	copy(out, list)
	for i := range out {
		out[i].Done = false
	}
	return out
}
