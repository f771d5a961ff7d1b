package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ryoooty/real-gachi-master/internal/domain"
)

// LogUpdate is a partial daily_logs upsert. Nil fields preserve the stored
// values (COALESCE semantics); a non-nil Points always overwrites. Merge-add
// of points goes through Repo.AddPoints instead.
type LogUpdate struct {
	ChatID         int64
	Date           string // YYYY-MM-DD
	Sessions       map[domain.Session][]domain.Exercise
	DifficultyRate *string
	Points         *int
}

func marshalSessions(m map[domain.Session][]domain.Exercise) (string, error) {
	if m == nil {
		m = map[domain.Session][]domain.Exercise{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalSessions(s string) (map[domain.Session][]domain.Exercise, error) {
	m := map[domain.Session][]domain.Exercise{}
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func marshalExercises(list []domain.Exercise) (string, error) {
	if list == nil {
		list = []domain.Exercise{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalExercises(s string) ([]domain.Exercise, error) {
	var list []domain.Exercise
	if s == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func toNullInt64(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().Unix(), Valid: true}
}

func fromNullInt64(ns sql.NullInt64) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := time.Unix(ns.Int64, 0).UTC()
	return &t
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toNullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
