package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

// Reply keyboards used during text-input steps.

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkip)),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func genderKeyboard() tgbotapi.ReplyKeyboardMarkup {
	row := make([]tgbotapi.KeyboardButton, 0, len(domain.Genders))
	for _, g := range domain.Genders {
		row = append(row, tgbotapi.NewKeyboardButton(g))
	}
	kb := tgbotapi.NewReplyKeyboard(row)
	kb.OneTimeKeyboard = true
	return kb
}

func activityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	row := make([]tgbotapi.KeyboardButton, 0, len(domain.ActivityLevels))
	for _, a := range domain.ActivityLevels {
		row = append(row, tgbotapi.NewKeyboardButton(a))
	}
	kb := tgbotapi.NewReplyKeyboard(row)
	kb.OneTimeKeyboard = true
	return kb
}

func removeKeyboard() tgbotapi.ReplyKeyboardRemove {
	return tgbotapi.NewRemoveKeyboard(false)
}

// Inline keyboards.

// ratingKeyboard renders one row of 1..5 buttons.
func ratingKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for i := 1; i <= 5; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", i), fmt.Sprintf("rate:%d", i)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func wakeupKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ On time", "wakeup:ontime"),
			tgbotapi.NewInlineKeyboardButtonData("⏰ Late", "wakeup:late"),
		),
	)
}

func timezoneConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Correct", "tz:correct"),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Change", "tz:change"),
		),
	)
}

// habitsKeyboard shows a toggle button per habit with a checkmark on the
// selected ones.
func habitsKeyboard(selected map[string]bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, habit := range domain.Habits {
		label := habit
		if selected[habit] {
			label = "✅ " + habit
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "habit:"+habit)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➡️ Continue", "habits:done")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func notificationsChoiceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Default (Auto)", "notify:default"),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Custom setup", "notify:custom"),
		),
	)
}

func finalConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Save Profile", "profile:save"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Start over", "profile:restart"),
		),
	)
}

func deleteConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ YES, delete all", "delete:confirm")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ No, keep my data", "delete:cancel")),
	)
}

// editProfileKeyboard lists editable fields; schedule-affecting ones trigger
// a reschedule after saving.
func editProfileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎂 Age", "edit:age"),
			tgbotapi.NewInlineKeyboardButtonData("📏 Height", "edit:height"),
			tgbotapi.NewInlineKeyboardButtonData("⚖️ Weight", "edit:weight"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏃 Activity", "edit:activity"),
			tgbotapi.NewInlineKeyboardButtonData("🛠 Habits", "edit:habits"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("😴 Bedtime", "edit:bedtime"),
			tgbotapi.NewInlineKeyboardButtonData("🌅 Wake-up", "edit:wakeup"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌍 Timezone", "edit:timezone"),
			tgbotapi.NewInlineKeyboardButtonData("📲 Notifications", "edit:notifications"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Finish Editing", "edit:done"),
		),
	)
}

// checkinKeyboard is the entry point sent with every reminder. The
// remind-later button disappears once the snooze budget is spent.
func checkinKeyboard(period domain.Period, snoozeCount, maxSnoozes int, delay time.Duration) tgbotapi.InlineKeyboardMarkup {
	var start tgbotapi.InlineKeyboardButton
	switch period {
	case domain.PeriodMorning:
		start = tgbotapi.NewInlineKeyboardButtonData("🌅 Start Morning Check-in", "start:morning")
	case domain.PeriodDay:
		start = tgbotapi.NewInlineKeyboardButtonData("☀️ Start Day Check-in", "start:day")
	default:
		start = tgbotapi.NewInlineKeyboardButtonData("🌙 Start Evening Check-in", "start:evening")
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(start),
	}
	if snoozeCount < maxSnoozes {
		label := fmt.Sprintf("⏰ Remind me later (%d min)", int(delay.Round(time.Minute).Minutes()))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "snooze:"+string(period))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏭ Skip this check-in", "skip:"+string(period))))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
