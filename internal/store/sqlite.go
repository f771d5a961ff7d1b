package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ryoooty/real-gachi-master/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, ":memory:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine; one connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- users ---

// UpsertUser inserts or updates a user's profile, preferences and derived
// schedule instants.
func (r *SQLiteRepo) UpsertUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}

	created := u.CreatedAt.UTC().Unix()
	if u.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			chat_id, created_at, nickname, tz, notify_mode,
			notify_time_local, notify_time_utc,
			range_start_local, range_end_local, range_start_utc, range_end_utc,
			additional_tasks, plan_type, cycle_anchor,
			weight, height, age, level, injuries
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			nickname          = excluded.nickname,
			tz                = excluded.tz,
			notify_mode       = excluded.notify_mode,
			notify_time_local = excluded.notify_time_local,
			notify_time_utc   = excluded.notify_time_utc,
			range_start_local = excluded.range_start_local,
			range_end_local   = excluded.range_end_local,
			range_start_utc   = excluded.range_start_utc,
			range_end_utc     = excluded.range_end_utc,
			additional_tasks  = excluded.additional_tasks,
			plan_type         = excluded.plan_type,
			cycle_anchor      = excluded.cycle_anchor,
			weight            = excluded.weight,
			height            = excluded.height,
			age               = excluded.age,
			level             = excluded.level,
			injuries          = excluded.injuries`,
		u.ChatID, created, u.Nickname, u.TZ, string(u.Mode),
		u.NotifyTimeLocal, toNullInt64(u.NotifyTimeUTC),
		u.RangeStartLocal, u.RangeEndLocal, toNullInt64(u.RangeStartUTC), toNullInt64(u.RangeEndUTC),
		u.AdditionalTasks, u.PlanType, u.CycleAnchor,
		u.Weight, u.Height, u.Age, u.Level, u.Injuries,
	)
	return err
}

const userColumns = `chat_id, created_at, nickname, tz, notify_mode,
	notify_time_local, notify_time_utc,
	range_start_local, range_end_local, range_start_utc, range_end_utc,
	additional_tasks, plan_type, cycle_anchor,
	weight, height, age, level, injuries`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var (
		u         domain.User
		createdAt int64
		mode      string
		notifyNS  sql.NullInt64
		startNS   sql.NullInt64
		endNS     sql.NullInt64
	)
	if err := row.Scan(
		&u.ChatID, &createdAt, &u.Nickname, &u.TZ, &mode,
		&u.NotifyTimeLocal, &notifyNS,
		&u.RangeStartLocal, &u.RangeEndLocal, &startNS, &endNS,
		&u.AdditionalTasks, &u.PlanType, &u.CycleAnchor,
		&u.Weight, &u.Height, &u.Age, &u.Level, &u.Injuries,
	); err != nil {
		return nil, err
	}
	u.Mode = domain.NotifyMode(mode)
	u.NotifyTimeUTC = fromNullInt64(notifyNS)
	u.RangeStartUTC = fromNullInt64(startNS)
	u.RangeEndUTC = fromNullInt64(endNS)
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}

// GetUser returns a user by chatID, or (nil, nil) when not registered.
func (r *SQLiteRepo) GetUser(ctx context.Context, chatID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE chat_id = ?`, chatID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// ListUsers returns all registered users ordered by creation time. Used on
// startup to re-arm notification jobs.
func (r *SQLiteRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}

// --- plans ---

// SaveWeeklyPlan replaces the user's weekly assignment and marks the weekly
// plan as the active one.
func (r *SQLiteRepo) SaveWeeklyPlan(ctx context.Context, chatID int64, days map[string]domain.DayAssignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for day, a := range days {
		exercises, err := marshalExercises(a.Exercises)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO weekly_plans (chat_id, day_of_week, is_rest, exercises)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(chat_id, day_of_week) DO UPDATE SET
				is_rest   = excluded.is_rest,
				exercises = excluded.exercises`,
			chatID, strings.ToLower(day), boolToInt(a.Rest), exercises,
		); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET plan_type = ? WHERE chat_id = ?`,
		domain.PlanWeekly, chatID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveCyclePlan replaces the user's rotating cycle: existing rows are
// dropped because the cycle length may change.
func (r *SQLiteRepo) SaveCyclePlan(ctx context.Context, chatID int64, anchor string, days []domain.DayAssignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cycle_plans WHERE chat_id = ?`, chatID); err != nil {
		return err
	}
	for i, a := range days {
		exercises, err := marshalExercises(a.Exercises)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cycle_plans (chat_id, day_index, title, is_rest, exercises)
			VALUES (?, ?, ?, ?, ?)`,
			chatID, i, a.Title, boolToInt(a.Rest), exercises,
		); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET plan_type = ?, cycle_anchor = ? WHERE chat_id = ?`,
		domain.PlanCycle, anchor, chatID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// GetAssignment resolves the user's plan content for a calendar date,
// consulting the cycle plan when it is the active one and the weekly plan
// otherwise. Returns (nil, nil) when no plan covers the date.
func (r *SQLiteRepo) GetAssignment(ctx context.Context, u *domain.User, date time.Time) (*domain.DayAssignment, error) {
	if u == nil {
		return nil, errors.New("nil user")
	}

	if u.PlanType == domain.PlanCycle && u.CycleAnchor != "" {
		return r.cycleAssignment(ctx, u, date)
	}

	day := strings.ToLower(date.Weekday().String())
	row := r.db.QueryRowContext(ctx, `
		SELECT '', is_rest, exercises FROM weekly_plans
		WHERE chat_id = ? AND day_of_week = ?`,
		u.ChatID, day,
	)
	return scanAssignment(row)
}

func (r *SQLiteRepo) cycleAssignment(ctx context.Context, u *domain.User, date time.Time) (*domain.DayAssignment, error) {
	anchor, err := time.Parse("2006-01-02", u.CycleAnchor)
	if err != nil {
		return nil, fmt.Errorf("bad cycle anchor %q: %w", u.CycleAnchor, err)
	}

	var length int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cycle_plans WHERE chat_id = ?`, u.ChatID,
	).Scan(&length); err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(anchor).Hours() / 24)
	if days < 0 {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT title, is_rest, exercises FROM cycle_plans
		WHERE chat_id = ? AND day_index = ?`,
		u.ChatID, days%length,
	)
	return scanAssignment(row)
}

func scanAssignment(row *sql.Row) (*domain.DayAssignment, error) {
	var (
		title     string
		isRest    int
		exercises string
	)
	if err := row.Scan(&title, &isRest, &exercises); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	list, err := unmarshalExercises(exercises)
	if err != nil {
		return nil, err
	}
	return &domain.DayAssignment{Title: title, Rest: isRest != 0, Exercises: list}, nil
}

// --- daily logs ---

// LoadLog returns the daily log for (chatID, date), or (nil, nil) when the
// day has not been touched yet.
func (r *SQLiteRepo) LoadLog(ctx context.Context, chatID int64, date string) (*domain.DailyLog, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT exercises, difficulty_rate, points FROM daily_logs
		WHERE chat_id = ? AND date = ?`,
		chatID, date,
	)

	var (
		exercises string
		rate      sql.NullString
		points    int
	)
	if err := row.Scan(&exercises, &rate, &points); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	sessions, err := unmarshalSessions(exercises)
	if err != nil {
		return nil, err
	}
	return &domain.DailyLog{
		ChatID:         chatID,
		Date:           date,
		Sessions:       sessions,
		DifficultyRate: rate.String,
		Points:         points,
	}, nil
}

// UpsertLog applies a partial update to (chatID, date). The COALESCE binds
// make the read-modify-write atomic inside the engine, so concurrent
// writers cannot corrupt the exercises structure.
func (r *SQLiteRepo) UpsertLog(ctx context.Context, upd LogUpdate) error {
	var sessions sql.NullString
	if upd.Sessions != nil {
		s, err := marshalSessions(upd.Sessions)
		if err != nil {
			return err
		}
		sessions = sql.NullString{String: s, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_logs (chat_id, date, exercises, difficulty_rate, points)
		VALUES (?1, ?2, COALESCE(?3, '{}'), ?4, COALESCE(?5, 0))
		ON CONFLICT(chat_id, date) DO UPDATE SET
			exercises       = COALESCE(?3, daily_logs.exercises),
			difficulty_rate = COALESCE(?4, daily_logs.difficulty_rate),
			points          = COALESCE(?5, daily_logs.points)`,
		upd.ChatID, upd.Date, sessions,
		toNullString(upd.DifficultyRate), toNullInt(upd.Points),
	)
	return err
}

// AddPoints merge-adds delta to an existing log row.
func (r *SQLiteRepo) AddPoints(ctx context.Context, chatID int64, date string, delta int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE daily_logs SET points = COALESCE(points, 0) + ?
		WHERE chat_id = ? AND date = ?`,
		delta, chatID, date,
	)
	return err
}

// TotalPoints sums all points the user ever earned.
func (r *SQLiteRepo) TotalPoints(ctx context.Context, chatID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points), 0) FROM daily_logs WHERE chat_id = ?`,
		chatID,
	).Scan(&total)
	return total, err
}

// CompletionDates lists dates with points earned, most recent first.
func (r *SQLiteRepo) CompletionDates(ctx context.Context, chatID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date FROM daily_logs
		WHERE chat_id = ? AND COALESCE(points, 0) > 0
		ORDER BY date DESC`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Leaderboard sums points per user across all daily logs.
func (r *SQLiteRepo) Leaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.chat_id, u.nickname, COALESCE(SUM(l.points), 0) AS pts
		FROM users u
		LEFT JOIN daily_logs l ON l.chat_id = u.chat_id
		GROUP BY u.chat_id, u.nickname
		ORDER BY pts DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []LeaderboardRow
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.ChatID, &row.Nickname, &row.Points); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
