package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ryoooty/real-gachi-master/internal/domain"
)

// UI texts in English
const (
	startText = "👋 I am your workout coach.\n\n" +
		"I keep your plan, ping you every day at your time (or a random moment " +
		"within your window) and count your points.\n\n" +
		"Use the menu below to get today's workout or tune the settings."
	restText        = "Rest day today — recover and come back stronger! 💤"
	skippedText     = "Day skipped. Don't forget to come back tomorrow!"
	planMissingText = "No plan covers today, so here is the built-in set instead. " +
		"Generate a plan in ⚙️ Settings."
	completedFmt  = "🎉 Workout complete, +%d points!\nHow did it feel?"
	additionalFmt = "💪 Extra tasks done, +%d bonus points!"
)

// Menu button labels double as message routes.
const (
	btnToday       = "📅 Today"
	btnStats       = "📈 Stats"
	btnLeaderboard = "🏆 Leaderboard"
	btnProfile     = "👤 Profile"
	btnSettings    = "⚙️ Settings"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnToday),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnStats),
			tgbotapi.NewKeyboardButton(btnLeaderboard),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnProfile),
			tgbotapi.NewKeyboardButton(btnSettings),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func settingsInlineKeyboard(mode domain.NotifyMode) tgbotapi.InlineKeyboardMarkup {
	fixedLabel := "⏰ Fixed time"
	rangeLabel := "🔁 Random in range"
	if mode == domain.ModeFixed {
		fixedLabel = "✅ " + fixedLabel
	} else {
		rangeLabel = "✅ " + rangeLabel
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fixedLabel, "set_fixed"),
			tgbotapi.NewInlineKeyboardButtonData(rangeLabel, "set_range"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌍 Timezone", "set_tz"),
			tgbotapi.NewInlineKeyboardButtonData("➕ Extra tasks", "set_add"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓 Generate weekly plan", "gen_weekly"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Generate rotating cycle", "gen_cycle"),
		),
	)
}

func tzPresetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Europe/Moscow", "tz:Europe/Moscow"),
			tgbotapi.NewInlineKeyboardButtonData("Europe/Berlin", "tz:Europe/Berlin"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Asia/Almaty", "tz:Asia/Almaty"),
			tgbotapi.NewInlineKeyboardButtonData("UTC", "tz:UTC"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Custom…", "tz:custom"),
		),
	)
}

func addCountKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := tgbotapi.NewInlineKeyboardRow()
	for n := 0; n <= 3; n++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strconv.Itoa(n), "add:"+strconv.Itoa(n)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func difficultyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("😌 Easy", "rate:easy"),
			tgbotapi.NewInlineKeyboardButtonData("🙂 Fine", "rate:fine"),
			tgbotapi.NewInlineKeyboardButtonData("🥵 Hard", "rate:hard"),
		),
	)
}

// exercisesKeyboard renders one toggle button per entry plus a skip row.
// Callback data: "ex:<session>:<index>:<1|0>" where the flag is the value
// to set; index -1 is the skip action.
func exercisesKeyboard(session domain.Session, list []domain.Exercise) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, e := range list {
		status := "[ ]"
		next := "1"
		if e.Done {
			status = "✅"
			next = "0"
		}
		data := fmt.Sprintf("ex:%s:%d:%s", session, i, next)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(status+" "+e.Name, data),
		))
	}
	skipLabel := "🚫 Skip day"
	if session == domain.SessionAdditional {
		skipLabel = "🚫 Skip extras"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(skipLabel, fmt.Sprintf("ex:%s:-1:0", session)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatExercise(e domain.Exercise) string {
	switch e.Dimension {
	case domain.DimReps:
		return fmt.Sprintf("%s: %d reps", e.Name, e.Amount)
	case domain.DimSeconds:
		return fmt.Sprintf("%s: %d sec", e.Name, e.Amount)
	case domain.DimMinutes:
		return fmt.Sprintf("%s: %d min", e.Name, e.Amount)
	case domain.DimMeters:
		return fmt.Sprintf("%s: %d m", e.Name, e.Amount)
	default:
		return e.Name
	}
}

func composeWorkoutText(title, date string, list []domain.Exercise) string {
	head := "Workout for " + date
	if title != "" {
		head += " — " + title
	}
	text := head + "\n"
	for _, e := range list {
		text += "\n" + formatExercise(e)
	}
	return text
}
