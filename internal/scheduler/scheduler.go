package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ryoooty/real-gachi-master/internal/domain"
)

// Notifier is the minimal dispatch interface the scheduler fires against.
// telegram.Router implements it (method: Notify).
type Notifier interface {
	Notify(ctx context.Context, chatID int64) error
}

type mode int

const (
	modeFixed mode = iota // recurring daily at a local wall-clock time
	modeRange             // one random instant per day within a local window
)

// job is one armed per-chat notification. Mutable fields are guarded by
// Scheduler.mu; stop is closed exactly once, by the registry that owns it.
type job struct {
	chatID int64
	mode   mode

	localTime string // fixed mode, HH:MM in tz
	tz        string

	windowStart time.Time // range mode, current UTC window
	windowEnd   time.Time

	next    time.Time // next fire instant, UTC
	stop    chan struct{}
	spawned bool
}

// Scheduler owns at most one armed job per chat id. Arming a chat that
// already has a job replaces it atomically: the old job's stop channel is
// closed under the same lock that registers the new one, so a swap can
// neither double-fire nor leave a gap.
type Scheduler struct {
	notifier Notifier
	log      *zap.Logger

	now func() time.Time    // injectable clock
	rnd func(n int64) int64 // injectable randomness, [0, n)

	mu      sync.Mutex
	jobs    map[int64]*job
	running bool
	wg      sync.WaitGroup
}

// New creates a stopped scheduler; call Start to begin firing.
func New(notifier Notifier, log *zap.Logger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		rnd:      rand.Int63n,
		jobs:     make(map[int64]*job),
	}
}

// Start launches every armed job. Idempotent: calling it on a running
// scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	for _, j := range s.jobs {
		s.spawnLocked(j)
	}
	s.log.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Shutdown cancels all pending fires without invoking callbacks and waits
// for job goroutines to exit. Idempotent.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	for id, j := range s.jobs {
		close(j.stop)
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// ScheduleFixed arms (or replaces) a daily job firing at the local
// wall-clock time in tz. The returned instant is the next fire in UTC; the
// caller persists it. After each firing the next instant is re-derived from
// the local wall clock, so DST moves the UTC fire time with the user.
func (s *Scheduler) ScheduleFixed(chatID int64, localTime, tz string) (time.Time, error) {
	next, err := domain.NextLocalOccurrence(localTime, tz, s.now())
	if err != nil {
		return time.Time{}, err
	}
	s.arm(&job{
		chatID:    chatID,
		mode:      modeFixed,
		localTime: localTime,
		tz:        tz,
		next:      next,
		stop:      make(chan struct{}),
	})
	return next, nil
}

// ResumeFixed re-arms a fixed job from a persisted instant when it is still
// in the future, recomputing from the local time otherwise. Used at process
// start so restarts do not drift the schedule.
func (s *Scheduler) ResumeFixed(chatID int64, localTime, tz string, at *time.Time) (time.Time, error) {
	if at != nil && at.After(s.now()) {
		s.arm(&job{
			chatID:    chatID,
			mode:      modeFixed,
			localTime: localTime,
			tz:        tz,
			next:      at.UTC(),
			stop:      make(chan struct{}),
		})
		return at.UTC(), nil
	}
	return s.ScheduleFixed(chatID, localTime, tz)
}

// ScheduleRange arms (or replaces) a job firing once per day at a uniformly
// random instant within the local window. Returns the computed UTC window
// and the chosen fire instant for persistence.
func (s *Scheduler) ScheduleRange(chatID int64, startLocal, endLocal, tz string) (time.Time, time.Time, time.Time, error) {
	start, end, err := domain.NextLocalWindow(startLocal, endLocal, tz, s.now())
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, err
	}
	fire := s.pick(start, end)
	s.arm(&job{
		chatID:      chatID,
		mode:        modeRange,
		localTime:   startLocal,
		tz:          tz,
		windowStart: start,
		windowEnd:   end,
		next:        fire,
		stop:        make(chan struct{}),
	})
	return start, end, fire, nil
}

// ResumeRange re-arms a range job from a persisted window when available.
// A stale window is rolled forward by whole days so the originally
// configured boundaries are kept; with no usable window the schedule is
// recomputed from the local strings.
func (s *Scheduler) ResumeRange(chatID int64, startLocal, endLocal, tz string, storedStart, storedEnd *time.Time) (time.Time, time.Time, time.Time, error) {
	if storedStart == nil || storedEnd == nil || !storedEnd.After(*storedStart) {
		return s.ScheduleRange(chatID, startLocal, endLocal, tz)
	}

	now := s.now()
	start, end := storedStart.UTC(), storedEnd.UTC()
	for !end.After(now) {
		start, end = nextWindow(start, end)
	}

	lo := start
	if now.After(lo) {
		lo = now
	}
	fire := s.pick(lo, end)
	s.arm(&job{
		chatID:      chatID,
		mode:        modeRange,
		localTime:   startLocal,
		tz:          tz,
		windowStart: start,
		windowEnd:   end,
		next:        fire,
		stop:        make(chan struct{}),
	})
	return start, end, fire, nil
}

// Cancel disarms the chat's job, if any.
func (s *Scheduler) Cancel(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[chatID]; ok {
		close(j.stop)
		delete(s.jobs, chatID)
	}
}

// NextFire reports the chat's next fire instant.
func (s *Scheduler) NextFire(chatID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[chatID]
	if !ok {
		return time.Time{}, false
	}
	return j.next, true
}

// arm registers j, replacing any previous job for the same chat.
func (s *Scheduler) arm(j *job) {
	s.mu.Lock()
	if old, ok := s.jobs[j.chatID]; ok {
		close(old.stop)
	}
	s.jobs[j.chatID] = j
	if s.running {
		s.spawnLocked(j)
	}
	s.mu.Unlock()
}

func (s *Scheduler) spawnLocked(j *job) {
	if j.spawned {
		return
	}
	j.spawned = true
	s.wg.Add(1)
	go s.run(j)
}

// run is the per-job loop: wait for the fire instant, dispatch, re-arm.
// Each job has its own goroutine, so one chat's slow delivery never blocks
// another chat's timer.
func (s *Scheduler) run(j *job) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		next := j.next
		s.mu.Unlock()

		wait := next.Sub(s.now())
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)

		select {
		case <-j.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		s.dispatch(j.chatID)

		// Re-arm synchronously in the fire handler so "callback finished"
		// and "next job armed" cannot race with a replacement.
		s.mu.Lock()
		select {
		case <-j.stop:
			s.mu.Unlock()
			return
		default:
		}
		switch j.mode {
		case modeFixed:
			next, err := domain.NextLocalOccurrence(j.localTime, j.tz, s.now())
			if err != nil {
				// tz and time were validated when the job was armed. Drop the
				// dead job so NextFire does not report a stale instant.
				if s.jobs[j.chatID] == j {
					delete(s.jobs, j.chatID)
				}
				s.mu.Unlock()
				s.log.Error("fixed job re-arm failed", zap.Error(err), zap.Int64("chatID", j.chatID))
				return
			}
			j.next = next
		case modeRange:
			j.windowStart, j.windowEnd = nextWindow(j.windowStart, j.windowEnd)
			j.next = s.pick(j.windowStart, j.windowEnd)
		}
		s.mu.Unlock()
	}
}

// dispatch invokes the callback for one firing. An unreachable recipient is
// skipped silently; any other failure is logged and the firing is consumed.
// Neither cancels the job.
func (s *Scheduler) dispatch(chatID int64) {
	err := s.notifier.Notify(context.Background(), chatID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRecipientUnreachable):
		s.log.Info("recipient unreachable, delivery skipped", zap.Int64("chatID", chatID))
	default:
		s.log.Error("notify failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// pick returns a uniformly random instant in [start, end].
func (s *Scheduler) pick(start, end time.Time) time.Time {
	span := int64(end.Sub(start))
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(s.rnd(span + 1)))
}

// nextWindow shifts a fired window forward by exactly one day. The shift is
// a flat 24h of absolute time, not a local-calendar recomputation, so the
// boundaries never drift from the originally configured window.
func nextWindow(start, end time.Time) (time.Time, time.Time) {
	return start.Add(24 * time.Hour), end.Add(24 * time.Hour)
}
