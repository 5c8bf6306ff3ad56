package sched

import (
	"go.uber.org/zap"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

// Sender delivers a check-in prompt to the user. telegram.Router implements
// this; the scheduler never sees the transport directly.
type Sender interface {
	SendCheckinPrompt(userID int64, text string, period domain.Period, snoozeCount int) error
}

// Per-period reminder templates. HTML, matching the transport's parse mode.
var reminderTexts = map[domain.Period]string{
	domain.PeriodMorning: "🌅 <b>Good morning!</b>\n\n" +
		"Time for your morning check-in. " +
		"It only takes 2 minutes to track your sleep and set your day's intentions.",
	domain.PeriodDay: "☀️ <b>Midday check!</b>\n\n" +
		"How's your day going? " +
		"Quick check-in to track your mood and energy levels.",
	domain.PeriodEvening: "🌙 <b>Evening reflection time!</b>\n\n" +
		"Let's wrap up your day. " +
		"Reflect on what went well and what you learned today.",
}

const fallbackReminderText = "⏰ Time for your check-in!"

// Dispatcher formats and sends reminders and keeps the delivery counters.
type Dispatcher struct {
	sender Sender
	stats  *Stats
	log    *zap.Logger
}

func NewDispatcher(sender Sender, stats *Stats, log *zap.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, stats: stats, log: log}
}

// Send delivers the reminder for one (user, period) firing. Delivery failure
// is counted and logged, never returned: a blocked bot for one user must not
// disturb the scheduler or anyone else's jobs.
func (d *Dispatcher) Send(userID int64, period domain.Period, snoozeCount int) {
	text := ReminderText(period, snoozeCount)

	if err := d.sender.SendCheckinPrompt(userID, text, period, snoozeCount); err != nil {
		d.stats.addFailed()
		d.log.Error("reminder delivery failed",
			zap.Int64("user", userID),
			zap.String("period", string(period)),
			zap.Error(err),
		)
		return
	}

	d.stats.addSent()
	d.log.Info("reminder sent",
		zap.Int64("user", userID),
		zap.String("period", string(period)),
		zap.Int("snooze_count", snoozeCount),
	)
}

// ReminderText returns the message body for a period, with an urgency suffix
// once the user has snoozed: a gentle nudge after one snooze, a final notice
// at the limit.
func ReminderText(period domain.Period, snoozeCount int) string {
	text, ok := reminderTexts[period]
	if !ok {
		text = fallbackReminderText
	}
	switch {
	case snoozeCount == 1:
		text += "\n\n⏰ <i>Friendly reminder!</i>"
	case snoozeCount >= 2:
		text += "\n\n⚠️ <b>Last chance!</b> This is your final reminder."
	}
	return text
}
