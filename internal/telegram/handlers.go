package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ryoooty/real-gachi-master/internal/domain"
	"github.com/ryoooty/real-gachi-master/internal/plangen"
	"github.com/ryoooty/real-gachi-master/internal/workout"
)

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	if err := r.SendMessage(chatID, text); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) answerCallback(id, text string) {
	if _, err := r.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		r.log.Warn("answer callback failed", zap.Error(err))
	}
}

func (r *Router) editText(chatID int64, msgID int, text string) {
	if _, err := r.bot.Send(tgbotapi.NewEditMessageText(chatID, msgID, text)); err != nil {
		r.log.Warn("edit failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) editWithKeyboard(chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if _, err := r.bot.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb)); err != nil {
		r.log.Warn("edit failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// localToday returns "now" and the YYYY-MM-DD key in the user's timezone.
func localToday(u *domain.User) (time.Time, string) {
	now := time.Now().UTC()
	loc, err := time.LoadLocation(u.TZ)
	if err != nil {
		return now, domain.DateKey(now)
	}
	local := now.In(loc)
	return local, domain.DateKey(local)
}

// ensureUser makes sure a user row exists; if not, creates it with defaults
// and arms the default fixed schedule at the current wall-clock minute.
func (r *Router) ensureUser(ctx context.Context, chatID int64, nickname string) (*domain.User, error) {
	u, err := r.repo.GetUser(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	now := time.Now().UTC()
	localTime, err := domain.LocalClock(now, r.defaultTZ)
	if err != nil {
		localTime = domain.UTCClock(now)
	}
	u = &domain.User{
		ChatID:          chatID,
		Nickname:        nickname,
		TZ:              r.defaultTZ,
		Mode:            domain.ModeFixed,
		NotifyTimeLocal: localTime,
		AdditionalTasks: r.defaultAdditional,
		CreatedAt:       now,
	}
	if next, err := r.sched.ScheduleFixed(chatID, localTime, u.TZ); err == nil {
		u.NotifyTimeUTC = &next
	} else {
		r.log.Warn("default schedule failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
	if err := r.repo.UpsertUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64, from *tgbotapi.User) {
	nickname := ""
	if from != nil {
		nickname = from.UserName
	}
	if _, err := r.ensureUser(ctx, chatID, nickname); err != nil {
		r.log.Error("ensureUser failed", zap.Error(err))
		r.sendText(chatID, "Profile initialization error. Please try again later.")
		return
	}
	r.clearPending(chatID)
	msg := tgbotapi.NewMessage(chatID, startText)
	msg.ReplyMarkup = mainMenuKeyboard()
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Error(err))
	}
}

func (r *Router) handleToday(ctx context.Context, chatID int64) {
	u, err := r.ensureUser(ctx, chatID, "")
	if err != nil {
		r.log.Error("ensureUser failed", zap.Error(err))
		r.sendText(chatID, "Error reading your profile.")
		return
	}
	if err := r.pushToday(ctx, u); err != nil {
		r.log.Error("today push failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// Notify implements scheduler.Notifier: the dispatch callback for one
// firing. A chat that blocked the bot surfaces as ErrRecipientUnreachable.
func (r *Router) Notify(ctx context.Context, chatID int64) error {
	u, err := r.repo.GetUser(ctx, chatID)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	if err := r.pushToday(ctx, u); err != nil {
		if isUnreachable(err) {
			return fmt.Errorf("%w: %v", domain.ErrRecipientUnreachable, err)
		}
		return err
	}
	return nil
}

// pushToday resolves today's content and delivers it: main session first,
// then the supplemental draw when the user enabled extra tasks.
func (r *Router) pushToday(ctx context.Context, u *domain.User) error {
	local, dateKey := localToday(u)

	content, err := r.svc.ResolveToday(ctx, u, local, domain.SessionMain)
	switch {
	case errors.Is(err, domain.ErrPlanUnavailable):
		// Informational notice plus the built-in set; the day stays playable.
		if err := r.SendMessage(u.ChatID, planMissingText); err != nil {
			return err
		}
		fallback := workout.DefaultWorkout()
		if err := r.svc.AdoptContent(ctx, u.ChatID, dateKey, domain.SessionMain, fallback); err != nil {
			return err
		}
		content = &workout.TodayContent{Exercises: fallback}
	case err != nil:
		return err
	}

	if content.Rest {
		return r.SendMessage(u.ChatID, restText)
	}

	msg := tgbotapi.NewMessage(u.ChatID, composeWorkoutText(content.Title, local.Format("02.01.2006"), content.Exercises))
	msg.ReplyMarkup = exercisesKeyboard(domain.SessionMain, content.Exercises)
	if _, err := r.bot.Send(msg); err != nil {
		return err
	}

	if u.AdditionalTasks <= 0 {
		return nil
	}
	extra, err := r.svc.ResolveToday(ctx, u, local, domain.SessionAdditional)
	if err != nil {
		return err
	}
	if len(extra.Exercises) == 0 {
		return nil
	}
	extraMsg := tgbotapi.NewMessage(u.ChatID, "Extra tasks for bonus points:")
	extraMsg.ReplyMarkup = exercisesKeyboard(domain.SessionAdditional, extra.Exercises)
	_, err = r.bot.Send(extraMsg)
	return err
}

// isUnreachable classifies Telegram send failures that mean the user can
// no longer be messaged at all.
func isUnreachable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "blocked by the user") ||
		strings.Contains(msg, "user is deactivated") ||
		strings.Contains(msg, "chat not found")
}

// --- Exercise callbacks ---

func (r *Router) handleExerciseCallback(ctx context.Context, chatID int64, msgID int, data, cbID string) {
	// ex:<session>:<index>:<0|1>
	parts := strings.Split(data, ":")
	if len(parts) != 4 {
		r.answerCallback(cbID, "")
		return
	}
	session := domain.Session(parts[1])
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		r.answerCallback(cbID, "")
		return
	}
	done := parts[3] == "1"

	u, err := r.ensureUser(ctx, chatID, "")
	if err != nil {
		r.log.Error("ensureUser failed", zap.Error(err))
		r.answerCallback(cbID, "Try again later")
		return
	}
	_, dateKey := localToday(u)

	if index == -1 {
		r.handleSkip(ctx, u, dateKey, session, msgID, cbID)
		return
	}

	allDone, err := r.svc.Toggle(ctx, chatID, dateKey, session, index, done)
	if errors.Is(err, domain.ErrPlanUnavailable) {
		r.answerCallback(cbID, "No workout found for today")
		return
	}
	if err != nil {
		r.log.Error("toggle failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.answerCallback(cbID, "Could not save, try again")
		return
	}

	if allDone {
		points, err := r.svc.Complete(ctx, chatID, dateKey, session)
		if err != nil {
			r.log.Error("complete failed", zap.Error(err), zap.Int64("chatID", chatID))
			r.answerCallback(cbID, "Could not save, try again")
			return
		}
		if session == domain.SessionMain {
			r.editWithKeyboard(chatID, msgID, fmt.Sprintf(completedFmt, points), difficultyKeyboard())
			r.answerCallback(cbID, "Well done!")
		} else {
			r.editText(chatID, msgID, fmt.Sprintf(additionalFmt, points))
			r.answerCallback(cbID, "Bonus!")
		}
		return
	}

	// Still in progress: re-render the checklist.
	dayLog, err := r.repo.LoadLog(ctx, chatID, dateKey)
	if err != nil || dayLog == nil {
		r.answerCallback(cbID, "Updated")
		return
	}
	list := dayLog.Sessions[session]
	local, _ := localToday(u)
	text := composeWorkoutText("", local.Format("02.01.2006"), list)
	if session == domain.SessionAdditional {
		text = "Extra tasks for bonus points:"
	}
	r.editWithKeyboard(chatID, msgID, text, exercisesKeyboard(session, list))
	r.answerCallback(cbID, "Updated")
}

func (r *Router) handleSkip(ctx context.Context, u *domain.User, dateKey string, session domain.Session, msgID int, cbID string) {
	err := r.svc.Skip(ctx, u.ChatID, dateKey, session)
	if errors.Is(err, domain.ErrSessionCompleted) {
		r.answerCallback(cbID, "Already completed — your points are safe!")
		return
	}
	if err != nil {
		r.log.Error("skip failed", zap.Error(err), zap.Int64("chatID", u.ChatID))
		r.answerCallback(cbID, "Could not save, try again")
		return
	}
	if session == domain.SessionMain {
		r.editText(u.ChatID, msgID, skippedText)
	} else {
		r.editText(u.ChatID, msgID, "Extras skipped for today.")
	}
	r.answerCallback(cbID, "")
}

func (r *Router) handleRateCallback(ctx context.Context, chatID int64, msgID int, data, cbID string) {
	feedback := strings.TrimPrefix(data, "rate:")
	u, err := r.ensureUser(ctx, chatID, "")
	if err != nil {
		r.answerCallback(cbID, "Try again later")
		return
	}
	_, dateKey := localToday(u)
	if err := r.svc.Rate(ctx, chatID, dateKey, feedback); err != nil {
		r.log.Error("rate failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.answerCallback(cbID, "Could not save, try again")
		return
	}
	r.editText(chatID, msgID, "Difficulty saved, points awarded!")
	r.answerCallback(cbID, "Thanks for the feedback")
}

// --- Stats ---

func (r *Router) handleStats(ctx context.Context, chatID int64) {
	if _, err := r.ensureUser(ctx, chatID, ""); err != nil {
		r.sendText(chatID, "Error reading your profile.")
		return
	}
	total, err := r.repo.TotalPoints(ctx, chatID)
	if err != nil {
		r.log.Error("total points failed", zap.Error(err))
		r.sendText(chatID, "Error reading your stats.")
		return
	}
	dates, err := r.repo.CompletionDates(ctx, chatID)
	if err != nil {
		r.log.Error("completion dates failed", zap.Error(err))
		r.sendText(chatID, "Error reading your stats.")
		return
	}

	text := fmt.Sprintf("🏅 Total points: %d\n📆 Days with points: %d", total, len(dates))
	if len(dates) > 0 {
		recent := dates
		if len(recent) > 5 {
			recent = recent[:5]
		}
		text += "\nRecent: " + strings.Join(recent, ", ")
	}
	r.sendText(chatID, text)
}

func (r *Router) handleLeaderboard(ctx context.Context, chatID int64) {
	rows, err := r.repo.Leaderboard(ctx)
	if err != nil {
		r.log.Error("leaderboard failed", zap.Error(err))
		r.sendText(chatID, "Error reading the leaderboard.")
		return
	}
	if len(rows) == 0 {
		r.sendText(chatID, "Nobody scored yet. Be the first!")
		return
	}
	var b strings.Builder
	b.WriteString("🏆 Leaderboard:\n")
	for i, row := range rows {
		if i == 10 {
			break
		}
		name := row.Nickname
		if name == "" {
			name = fmt.Sprintf("athlete %d", row.ChatID)
		}
		fmt.Fprintf(&b, "%d. %s — %d\n", i+1, name, row.Points)
	}
	r.sendText(chatID, b.String())
}

// --- Profile flow ---

func (r *Router) handleProfileStart(ctx context.Context, chatID int64) {
	if _, err := r.ensureUser(ctx, chatID, ""); err != nil {
		r.sendText(chatID, "Error reading your profile.")
		return
	}
	r.clearPending(chatID)
	r.setPending(chatID, pendingWeight)
	r.sendText(chatID, "Your weight (kg)?")
}

// --- Settings ---

func (r *Router) handleSettings(ctx context.Context, chatID int64) {
	u, err := r.ensureUser(ctx, chatID, "")
	if err != nil {
		r.sendText(chatID, "Error opening settings.")
		return
	}
	summary := fmt.Sprintf("⚙️ Notifications: %s\nTZ: %s", describeSchedule(u), u.TZ)
	msg := tgbotapi.NewMessage(chatID, summary)
	msg.ReplyMarkup = settingsInlineKeyboard(u.Mode)
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Error(err))
	}
}

func describeSchedule(u *domain.User) string {
	if u.Mode == domain.ModeRange && u.RangeStartLocal != "" {
		return fmt.Sprintf("random between %s and %s", u.RangeStartLocal, u.RangeEndLocal)
	}
	return "daily at " + u.NotifyTimeLocal
}

func (r *Router) askFixedTime(chatID int64, cbID string) {
	r.answerCallback(cbID, "")
	r.setPending(chatID, pendingFixedTime)
	r.sendText(chatID, "At what local time should I ping you? (HH:MM, e.g. 09:00)")
}

func (r *Router) askRange(chatID int64, cbID string) {
	r.answerCallback(cbID, "")
	r.setPending(chatID, pendingRange)
	r.sendText(chatID, "Send the window as HH:MM–HH:MM (e.g. 18:00–21:00). I will pick a random moment inside it every day.")
}

func (r *Router) askTZ(chatID int64, cbID string) {
	r.answerCallback(cbID, "")
	msg := tgbotapi.NewMessage(chatID, "Choose a timezone or enter your own (Region/City):")
	msg.ReplyMarkup = tzPresetsKeyboard()
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Error(err))
	}
}

func (r *Router) askAdditional(chatID int64, cbID string) {
	r.answerCallback(cbID, "")
	msg := tgbotapi.NewMessage(chatID, "How many extra tasks per day?")
	msg.ReplyMarkup = addCountKeyboard()
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Error(err))
	}
}

func (r *Router) handleTZCallback(ctx context.Context, chatID int64, data, cbID string) {
	r.answerCallback(cbID, "")
	if data == "tz:custom" {
		r.setPending(chatID, pendingTZ)
		r.sendText(chatID, "Enter timezone (e.g. Europe/Moscow):")
		return
	}
	r.applyTZ(ctx, chatID, strings.TrimPrefix(data, "tz:"))
}

func (r *Router) handleAdditionalCallback(ctx context.Context, chatID int64, data, cbID string) {
	r.answerCallback(cbID, "")
	n, err := strconv.Atoi(strings.TrimPrefix(data, "add:"))
	if err != nil || n < 0 {
		return
	}
	u, err := r.ensureUser(ctx, chatID, "")
	if err != nil {
		r.sendText(chatID, "Could not save.")
		return
	}
	u.AdditionalTasks = n
	if err := r.repo.UpsertUser(ctx, u); err != nil {
		r.log.Error("save additional failed", zap.Error(err))
		r.sendText(chatID, "Could not save.")
		return
	}
	r.sendText(chatID, fmt.Sprintf("Extra tasks per day: %d", n))
}

// applyFixed validates and arms the fixed daily schedule, persisting both
// the local string and the derived UTC instant.
func (r *Router) applyFixed(ctx context.Context, chatID int64, localTime string) bool {
	u, err := r.ensureUser(ctx, chatID, "")
	if err != nil {
		r.sendText(chatID, "Could not save notification time.")
		return true
	}
	next, err := r.sched.ScheduleFixed(chatID, localTime, u.TZ)
	if errors.Is(err, domain.ErrInvalidTimeFormat) {
		r.sendText(chatID, "That doesn't look like HH:MM. Try again, e.g. 09:00")
		return false // keep the pending step, re-prompt
	}
	if err != nil {
		r.log.Error("schedule fixed failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Could not save notification time.")
		return true
	}

	u.Mode = domain.ModeFixed
	u.NotifyTimeLocal = localTime
	u.NotifyTimeUTC = &next
	u.RangeStartUTC, u.RangeEndUTC = nil, nil
	if err := r.repo.UpsertUser(ctx, u); err != nil {
		r.log.Error("save user failed", zap.Error(err))
		r.sendText(chatID, "Could not save notification time.")
		return true
	}
	r.sendText(chatID, fmt.Sprintf("Daily reminder set to %s (%s).", localTime, u.TZ))
	return true
}

func (r *Router) applyRange(ctx context.Context, chatID int64, text string) bool {
	startLocal, endLocal, err := domain.ParseWindow(text)
	if err != nil {
		r.sendText(chatID, "Format is HH:MM–HH:MM, e.g. 18:00–21:00. Try again.")
		return false
	}
	u, err := r.ensureUser(ctx, chatID, "")
	if err != nil {
		r.sendText(chatID, "Could not save notification window.")
		return true
	}
	start, end, _, err := r.sched.ScheduleRange(chatID, startLocal, endLocal, u.TZ)
	if err != nil {
		r.log.Error("schedule range failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Could not save notification window.")
		return true
	}

	u.Mode = domain.ModeRange
	u.RangeStartLocal, u.RangeEndLocal = startLocal, endLocal
	u.RangeStartUTC, u.RangeEndUTC = &start, &end
	u.NotifyTimeUTC = nil
	if err := r.repo.UpsertUser(ctx, u); err != nil {
		r.log.Error("save user failed", zap.Error(err))
		r.sendText(chatID, "Could not save notification window.")
		return true
	}
	r.sendText(chatID, fmt.Sprintf("Got it — a surprise ping between %s and %s (%s) every day.", startLocal, endLocal, u.TZ))
	return true
}

func (r *Router) applyTZ(ctx context.Context, chatID int64, raw string) bool {
	tz, err := domain.ValidateTZ(raw)
	if err != nil {
		r.sendText(chatID, "Invalid timezone. Example: Europe/Moscow. Try again.")
		return false
	}
	u, err := r.ensureUser(ctx, chatID, "")
	if err != nil {
		r.sendText(chatID, "Could not save timezone.")
		return true
	}
	u.TZ = tz

	// Re-arm the active schedule in the new timezone.
	switch {
	case u.Mode == domain.ModeRange && u.RangeStartLocal != "":
		start, end, _, err := r.sched.ScheduleRange(chatID, u.RangeStartLocal, u.RangeEndLocal, tz)
		if err == nil {
			u.RangeStartUTC, u.RangeEndUTC = &start, &end
		}
	case u.NotifyTimeLocal != "":
		if next, err := r.sched.ScheduleFixed(chatID, u.NotifyTimeLocal, tz); err == nil {
			u.NotifyTimeUTC = &next
		}
	}

	if err := r.repo.UpsertUser(ctx, u); err != nil {
		r.log.Error("save user failed", zap.Error(err))
		r.sendText(chatID, "Could not save timezone.")
		return true
	}
	r.sendText(chatID, "Timezone updated: "+tz)
	return true
}

// --- Plan generation ---

func (r *Router) profileOf(u *domain.User) plangen.Profile {
	p := plangen.Profile{
		Weight:              u.Weight,
		Height:              u.Height,
		Age:                 u.Age,
		Level:               u.Level,
		Injuries:            u.Injuries,
		CompletionRate:      90,
		PerceivedDifficulty: "easy",
	}
	if p.Weight == 0 {
		p.Weight = 80
	}
	if p.Height == 0 {
		p.Height = 180
	}
	if p.Age == 0 {
		p.Age = 25
	}
	if p.Level == "" {
		p.Level = "beginner"
	}
	return p
}

func (r *Router) handleGenerateWeekly(ctx context.Context, chatID int64, cbID string) {
	r.answerCallback(cbID, "")
	u, err := r.ensureUser(ctx, chatID, "")
	if err != nil {
		r.sendText(chatID, "Could not generate a plan.")
		return
	}
	profile := r.profileOf(u)
	plan := plangen.Adjust(r.gen.WeeklyPlan(profile), profile.PerceivedDifficulty)
	if err := r.repo.SaveWeeklyPlan(ctx, chatID, plan); err != nil {
		r.log.Error("save weekly plan failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Could not save the plan.")
		return
	}
	r.sendText(chatID, "🗓 Weekly plan is ready! Check it with "+btnToday+".")
}

func (r *Router) handleGenerateCycle(ctx context.Context, chatID int64, cbID string) {
	r.answerCallback(cbID, "")
	u, err := r.ensureUser(ctx, chatID, "")
	if err != nil {
		r.sendText(chatID, "Could not generate a plan.")
		return
	}
	_, anchor := localToday(u)
	days := r.gen.CyclePlan(r.profileOf(u))
	if err := r.repo.SaveCyclePlan(ctx, chatID, anchor, days); err != nil {
		r.log.Error("save cycle plan failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Could not save the plan.")
		return
	}
	r.sendText(chatID, fmt.Sprintf("🔄 %d-day rotating cycle starts today!", len(days)))
}

// --- Free-form dispatcher (pending conversational steps) ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	switch r.getPending(chatID) {
	case pendingFixedTime:
		if r.applyFixed(ctx, chatID, text) {
			r.clearPending(chatID)
		}

	case pendingRange:
		if r.applyRange(ctx, chatID, text) {
			r.clearPending(chatID)
		}

	case pendingTZ:
		if r.applyTZ(ctx, chatID, text) {
			r.clearPending(chatID)
		}

	case pendingWeight:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || n <= 0 {
			r.sendText(chatID, "A number, please. Your weight (kg)?")
			return
		}
		r.draft(chatID).weight = n
		r.setPending(chatID, pendingHeight)
		r.sendText(chatID, "Your height (cm)?")

	case pendingHeight:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || n <= 0 {
			r.sendText(chatID, "A number, please. Your height (cm)?")
			return
		}
		r.draft(chatID).height = n
		r.setPending(chatID, pendingAge)
		r.sendText(chatID, "Your age?")

	case pendingAge:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || n <= 0 {
			r.sendText(chatID, "A number, please. Your age?")
			return
		}
		r.draft(chatID).age = n
		r.setPending(chatID, pendingLevel)
		r.sendText(chatID, "Your level? (beginner/pro)")

	case pendingLevel:
		r.draft(chatID).level = strings.TrimSpace(text)
		r.setPending(chatID, pendingInjuries)
		r.sendText(chatID, "Any injuries or restrictions?")

	case pendingInjuries:
		d := r.draft(chatID)
		u, err := r.ensureUser(ctx, chatID, "")
		if err != nil {
			r.clearPending(chatID)
			r.sendText(chatID, "Could not save the profile.")
			return
		}
		u.Weight, u.Height, u.Age = d.weight, d.height, d.age
		u.Level = d.level
		u.Injuries = strings.TrimSpace(text)
		r.clearPending(chatID)
		if err := r.repo.UpsertUser(ctx, u); err != nil {
			r.log.Error("save profile failed", zap.Error(err))
			r.sendText(chatID, "Could not save the profile.")
			return
		}
		msg := tgbotapi.NewMessage(chatID, "Profile updated! 💪")
		msg.ReplyMarkup = mainMenuKeyboard()
		if _, err := r.bot.Send(msg); err != nil {
			r.log.Warn("send failed", zap.Error(err))
		}

	default:
		// No pending flow: ignore free-form message
	}
}
