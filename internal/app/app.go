package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ryoooty/real-gachi-master/internal/config"
	"github.com/ryoooty/real-gachi-master/internal/domain"
	"github.com/ryoooty/real-gachi-master/internal/scheduler"
	"github.com/ryoooty/real-gachi-master/internal/store"
	"github.com/ryoooty/real-gachi-master/internal/telegram"
	"github.com/ryoooty/real-gachi-master/internal/workout"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sched   *scheduler.Scheduler
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting workout bot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("default_tz", a.cfg.DefaultTZ),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	svc := workout.New(a.repo, a.log)
	a.router = telegram.NewRouter(a.bot, a.log, a.repo, svc, a.cfg.DefaultTZ, a.cfg.AdditionalTasks)
	a.sched = scheduler.New(a.router, a.log)
	a.router.AttachScheduler(a.sched)

	if err := a.rearmAll(ctx); err != nil {
		a.log.Error("re-arm on startup failed", zap.Error(err))
		return err
	}
	a.sched.Start()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			a.sched.Shutdown()

			// Create a short-lived shutdown context and cancel it immediately after use.
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// rearmAll restores every user's notification job after a restart, preferring
// persisted fire instants over recomputation so the schedule does not drift.
// Recomputed instants are written back.
func (a *App) rearmAll(ctx context.Context) error {
	users, err := a.repo.ListUsers(ctx)
	if err != nil {
		return err
	}

	armed := 0
	for i := range users {
		u := &users[i]
		changed := false

		switch {
		case u.Mode == domain.ModeRange && u.RangeStartLocal != "":
			start, end, _, err := a.sched.ResumeRange(u.ChatID, u.RangeStartLocal, u.RangeEndLocal, u.TZ, u.RangeStartUTC, u.RangeEndUTC)
			if err != nil {
				a.log.Warn("re-arm range failed", zap.Error(err), zap.Int64("chatID", u.ChatID))
				continue
			}
			if u.RangeStartUTC == nil || !u.RangeStartUTC.Equal(start) {
				u.RangeStartUTC, u.RangeEndUTC = &start, &end
				changed = true
			}

		case u.NotifyTimeLocal != "":
			next, err := a.sched.ResumeFixed(u.ChatID, u.NotifyTimeLocal, u.TZ, u.NotifyTimeUTC)
			if err != nil {
				a.log.Warn("re-arm fixed failed", zap.Error(err), zap.Int64("chatID", u.ChatID))
				continue
			}
			if u.NotifyTimeUTC == nil || !u.NotifyTimeUTC.Equal(next) {
				u.NotifyTimeUTC = &next
				changed = true
			}

		default:
			continue
		}

		armed++
		if changed {
			if err := a.repo.UpsertUser(ctx, u); err != nil {
				a.log.Warn("persist re-armed schedule failed", zap.Error(err), zap.Int64("chatID", u.ChatID))
			}
		}
	}
	a.log.Info("schedules restored", zap.Int("armed", armed), zap.Int("users", len(users)))
	return nil
}
