package telegram

import (
	"fmt"
	"time"
)

// UI texts in English. Messages are sent with HTML parse mode.
const (
	welcomeNewUser = "🤖 <b>AI Daily Life Tracker</b> — your personal analyst.\n\n" +
		"🎯 <b>Our goal:</b> Eliminate chaos and reveal how sleep, stress, mood " +
		"and habits affect your well-being.\n\n" +
		"🚀 <b>Key Features:</b>\n" +
		"✅ <b>Deep Analytics:</b> AI patterns recognition.\n" +
		"✅ <b>Personal Insights:</b> Conclusions based on your data.\n" +
		"✅ <b>Easy Tracking:</b> Log mood and habits in under 2 min.\n\n" +
		"🔐 <b>Privacy:</b> Data is encrypted and NOT used for training global models.\n\n" +
		"To begin, let's set up your profile!"

	welcomeExistingUser = "👋 Welcome back, <b>%s</b>! I'm tracking your data.\n" +
		"Ready for another insightful day? 😊\n" +
		"Use the /help command to see what I can do."

	helpText = "🤖 <b>AI Tracker Help</b>\n\n" +
		"• /start — Restart or register\n" +
		"• /my_profile — Show my data\n" +
		"• /weekly_report — This week's progress + AI insights\n" +
		"• /history — View past summaries\n" +
		"• /jobs — Check my schedule\n" +
		"• /reload_schedule — Refresh timers\n" +
		"• /edit_profile — Edit my profile\n" +
		"• /delete_profile — Delete all data\n" +
		"• /help — Show this message\n\n" +
		"Need more help? Contact support."

	deleteConfirmText = "⚠️ <b>WARNING!</b>\n\n" +
		"This action cannot be undone. All your data will be <b>completely deleted</b>.\n\n" +
		"Are you sure?"

	msgNoProfile       = "❌ No profile found! Use /start to create one."
	msgProfileDeleted  = "🧹 <b>All your data has been deleted.</b> Goodbye!"
	msgDeleteCancelled = "Happy to see you stay! 😊"
	msgScheduleUpdated = "🔄 <b>Schedule updated successfully!</b>"
	msgNoJobs          = "📅 <b>No scheduled jobs found!</b>"
	msgGenericError    = "❌ Something went wrong. Please try again in a moment."
	msgUseButtons      = "⚠️ Please use the buttons!"
	msgInvalidTime     = "⚠️ Use format HH:MM (e.g., 23:30):"
)

// Registration prompts.
const (
	promptGender   = "Select your gender:"
	promptAge      = "How old are you? (e.g., 25)"
	promptHeight   = "Your height (e.g., 175 cm):"
	promptWeight   = "Your weight (e.g., 70 kg):"
	promptActivity = "Select your daily activity level:\n" +
		"Low - mostly sitting,\nMedium - some walking,\nHigh - physical workouts"
	promptBedtime  = "What is your usual bedtime? (HH:MM)"
	promptWakeup   = "What is your usual wake-up time? (HH:MM)"
	promptTZManual = "Enter your timezone (e.g., <code>Europe/Kyiv</code>):"
	promptHabits   = "🛠 <b>Select habits to track:</b>\n(Toggle them, then press Continue)"
	promptNotifs   = "How should we set up your notifications?"

	promptCustomNotifs = "⏰ <b>Custom Notification Setup</b>\n\n" +
		"Please enter <b>3 times</b> for your daily check-ins in HH:MM format.\n" +
		"Send them in one message, separated by commas.\n\n" +
		"<b>Example:</b> <code>08:00, 14:30, 21:00</code>\n\n" +
		"Format: Morning, Afternoon, Evening"
)

// Button captions shared between keyboards and text matching.
const (
	btnSkip = "⏭ Skip"
)

// Check-in flow texts.
const (
	checkinAlreadyDoneFmt = "✅ You've already completed your %s check-in today!"

	morningIntro = "🌅 <b>Good morning!</b> Let's start your day.\n\nHow was your sleep quality?"
	dayIntro     = "☀️ <b>Mid-day check-in!</b>\n\nHow's your mood right now?"
	eveningIntro = "🌙 <b>Evening reflection time!</b>\n\nHow satisfied are you with your day?"

	askMoodMorning = "😊 How's your mood this morning?"
	askMoodDay     = "😊 How's your mood right now?"
	askMoodEvening = "😊 How's your mood this evening?"
	askEnergy      = "⚡ What's your energy level?"
	askStress      = "😰 How stressed are you right now?"
	askWakeup      = "⏰ Did you wake up on time?"

	askNotesMorning = "📝 <b>Any notes for your morning?</b>"
	askNotesDay     = "💪 <b>You're halfway through the day!</b>\n\n" +
		"Keep up the momentum! 🚀\n\n" +
		"📝 <b>Any quick notes about your day so far?</b>\n" +
		"(e.g., what went well, what's challenging, or anything on your mind)"
	askReflection = "📝 <b>Final reflection:</b> Any thoughts on your day?"

	doneMorning = "✅ <b>Morning check-in complete!</b>\n\nHave a wonderful day! ☀️"
	doneDay     = "✅ <b>Day check-in complete!</b>\n\n" +
		"Great job! I'll see you this evening for your final check-in. Keep it up! 💪"
	doneEvening = "✅ <b>Evening check-in complete!</b>\n\n" +
		"Great work today! Rest well and see you tomorrow morning! 🌙"

	snoozeAckFmt   = "✅ Okay! I'll check back with you in %s. ⏰"
	snoozeAtLimit  = "⏰ This was your last reminder! Please complete your check-in now or skip it."
	tooLongFmt     = "⚠️ Response too long. Please keep it under %d characters."
	maxFreeTextLen = 1000
)

var skipMessages = map[string]string{
	"morning": "✅ Morning check-in skipped.\n\n" +
		"No worries! See you at your afternoon check-in. Have a great day! 😊",
	"day": "✅ Day check-in skipped.\n\n" +
		"That's okay! I'll catch up with you this evening. Keep up the good work! 💪",
	"evening": "✅ Evening check-in skipped.\n\n" +
		"Rest well! See you tomorrow morning for a fresh start. Good night! 🌙",
}

// Follow-up question banks, keyed by trigger. One is picked at random when a
// rating pattern warrants digging deeper.
var morningQuestions = map[string][]string{
	"sleep_low": {
		"What hindered your sleep: difficulty falling asleep, waking up at night, or just not enough time?",
		"What do you think was the main cause of poor sleep today?",
		"Is it physical fatigue or did your brain just fail to 'switch off'?",
	},
	"mood_low": {
		"What's affecting your mood: specific plans for today or just your general state?",
		"Is it physical heaviness or a lack of motivation to start the day?",
	},
	"energy_low": {
		"Is it physical heaviness or a lack of motivation to start the day?",
		"What's draining your energy this morning?",
	},
	"all_perfect": {
		"Wow! You're at your peak. What helped you wake up in such a perfect state?",
	},
}

var dayQuestions = map[string][]string{
	"mood_low": {
		"If you could pause the day right now, what would you change first?",
		"What's weighing on your mind right now?",
	},
	"energy_low": {
		"Energy dropped sharply. Is it exhaustion or just a mid-day slump?",
		"What's draining your energy most right now?",
	},
	"mood_drop": {
		"Your mood shifted. What happened between this morning and now?",
		"If you could pause the day right now, what would you change first?",
	},
	"energy_drop": {
		"Energy dropped sharply. Is it exhaustion or just a mid-day slump?",
		"What changed since this morning that's affecting your energy?",
	},
	"stress_high": {
		"Is this work pressure, a conflict, or internal anxiety?",
		"How is this stress manifesting in your body (tension, headache)?",
	},
	"stress_spike": {
		"Stress spiked. What was the trigger?",
		"Is this work pressure, a conflict, or internal anxiety?",
	},
	"all_perfect": {
		"You're crushing it today! What's your secret? 🌟",
	},
}

var eveningQuestions = map[string][]string{
	"mood_low": {
		"If you could rewind the day, what would you change first?",
		"What exactly was missing today for you to feel satisfied?",
	},
	"stress_high": {
		"Stress spiked this evening. What was the 'last straw' today?",
		"What thought is currently preventing you from relaxing?",
	},
	"stress_spike": {
		"Stress rose sharply. What happened this evening?",
		"What thought is currently preventing you from relaxing?",
	},
	"satisfaction_low": {
		"If you could rewind the day, what would you change first?",
		"What exactly was missing today for you to feel satisfied?",
	},
	"all_perfect": {
		"Perfect day! What made today so special? 🌟",
	},
}

func tooLong() string { return fmt.Sprintf(tooLongFmt, maxFreeTextLen) }

// snoozeWording renders the configured snooze delay for user-facing copy.
func snoozeWording(d time.Duration) string {
	m := int(d.Round(time.Minute).Minutes())
	if m <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
