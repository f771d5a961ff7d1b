package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ryoooty/real-gachi-master/internal/plangen"
	"github.com/ryoooty/real-gachi-master/internal/scheduler"
	"github.com/ryoooty/real-gachi-master/internal/store"
	"github.com/ryoooty/real-gachi-master/internal/workout"
)

// Pending state keys used in conversational flows.
const (
	pendingFixedTime = "await_fixed_time"
	pendingRange     = "await_range"
	pendingTZ        = "await_tz"
	pendingWeight    = "await_weight"
	pendingHeight    = "await_height"
	pendingAge       = "await_age"
	pendingLevel     = "await_level"
	pendingInjuries  = "await_injuries"
)

// profileDraft accumulates the profile dialog answers.
type profileDraft struct {
	weight int
	height int
	age    int
	level  string
}

// Router wires Telegram updates to handlers and holds minimal in-memory
// conversational state.
type Router struct {
	bot   *tgbotapi.BotAPI
	log   *zap.Logger
	repo  store.Repo
	svc   *workout.Service
	sched *scheduler.Scheduler
	gen   plangen.Generator

	defaultTZ         string
	defaultAdditional int

	mu      sync.RWMutex
	state   map[int64]string // chatID -> pending state
	profile map[int64]*profileDraft
}

// NewRouter creates a new Telegram router. The scheduler is attached
// afterwards because it dispatches through the router itself.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, svc *workout.Service, defaultTZ string, defaultAdditional int) *Router {
	return &Router{
		bot:               bot,
		log:               log,
		repo:              repo,
		svc:               svc,
		defaultTZ:         defaultTZ,
		defaultAdditional: defaultAdditional,
		state:             make(map[int64]string),
		profile:           make(map[int64]*profileDraft),
	}
}

// AttachScheduler injects the scheduler once it exists; it cannot be a
// constructor argument since the scheduler's notifier is this router.
func (r *Router) AttachScheduler(s *scheduler.Scheduler) { r.sched = s }

func (r *Router) setPending(chatID int64, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = s
}

func (r *Router) getPending(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
	delete(r.profile, chatID)
}

func (r *Router) draft(chatID int64) *profileDraft {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.profile[chatID]
	if !ok {
		d = &profileDraft{}
		r.profile[chatID] = d
	}
	return d
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID, msg.From)
		case text == btnToday || strings.HasPrefix(text, "/today"):
			r.handleToday(ctx, chatID)
		case text == btnStats || strings.HasPrefix(text, "/stats"):
			r.handleStats(ctx, chatID)
		case text == btnLeaderboard || strings.HasPrefix(text, "/leaderboard"):
			r.handleLeaderboard(ctx, chatID)
		case text == btnProfile || strings.HasPrefix(text, "/profile"):
			r.handleProfileStart(ctx, chatID)
		case text == btnSettings || strings.HasPrefix(text, "/settings"):
			r.handleSettings(ctx, chatID)
		default:
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		data := cb.Data
		chatID := cb.Message.Chat.ID
		msgID := cb.Message.MessageID

		switch {
		case strings.HasPrefix(data, "ex:"):
			r.handleExerciseCallback(ctx, chatID, msgID, data, cb.ID)
		case strings.HasPrefix(data, "rate:"):
			r.handleRateCallback(ctx, chatID, msgID, data, cb.ID)
		case data == "set_fixed":
			r.askFixedTime(chatID, cb.ID)
		case data == "set_range":
			r.askRange(chatID, cb.ID)
		case data == "set_tz":
			r.askTZ(chatID, cb.ID)
		case strings.HasPrefix(data, "tz:"):
			r.handleTZCallback(ctx, chatID, data, cb.ID)
		case data == "set_add":
			r.askAdditional(chatID, cb.ID)
		case strings.HasPrefix(data, "add:"):
			r.handleAdditionalCallback(ctx, chatID, data, cb.ID)
		case data == "gen_weekly":
			r.handleGenerateWeekly(ctx, chatID, cb.ID)
		case data == "gen_cycle":
			r.handleGenerateCycle(ctx, chatID, cb.ID)
		default:
			// Unknown callback — ignore silently
		}
		return
	}
}

// SendMessage sends a plain text message to the given chat.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
