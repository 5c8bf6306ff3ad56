package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yvasiuk/wellness-bot/internal/domain"
	"github.com/yvasiuk/wellness-bot/internal/store"
)

func (r *Router) handleStart(ctx context.Context, chatID int64, from *tgbotapi.User) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err == nil {
		name := p.FirstName
		if name == "" && from != nil {
			name = from.FirstName
		}
		r.sendWithKeyboard(chatID, fmt.Sprintf(welcomeExistingUser, name), removeKeyboard())
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		r.log.Error("get profile failed", zap.Int64("user_id", chatID), zap.Error(err))
		r.sendText(chatID, msgGenericError)
		return
	}

	s := r.session(chatID)
	*s = session{
		step:   stepRegGender,
		draft:  &domain.Profile{UserID: chatID},
		habits: make(map[string]bool),
	}
	if from != nil {
		s.draft.FirstName = from.FirstName
		s.detectedTZ = domain.TimezoneForLocale(from.LanguageCode)
	} else {
		s.detectedTZ = domain.DefaultTimezone
	}

	r.sendHTML(chatID, welcomeNewUser)
	r.sendWithKeyboard(chatID, promptGender, genderKeyboard())
}

// handleRegistrationText advances the text-driven registration steps.
func (r *Router) handleRegistrationText(ctx context.Context, chatID int64, s *session, text string) {
	switch s.step {
	case stepRegGender:
		var matched string
		for _, g := range domain.Genders {
			if strings.EqualFold(text, g) {
				matched = g
				break
			}
		}
		if matched == "" {
			r.sendWithKeyboard(chatID, msgUseButtons, genderKeyboard())
			return
		}
		s.draft.Gender = matched
		s.step = stepRegAge
		r.sendWithKeyboard(chatID, "✅ "+matched, removeKeyboard())
		r.sendText(chatID, promptAge)

	case stepRegAge:
		age, err := strconv.Atoi(text)
		if err != nil || age < domain.AgeMin || age > domain.AgeMax {
			r.sendText(chatID, fmt.Sprintf("⚠️ Please enter a valid age (%d-%d):", domain.AgeMin, domain.AgeMax))
			return
		}
		s.draft.Age = age
		s.step = stepRegHeight
		r.sendText(chatID, promptHeight)

	case stepRegHeight:
		h, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(text), "cm"))
		if err != nil || h < domain.HeightMin || h > domain.HeightMax {
			r.sendText(chatID, fmt.Sprintf("⚠️ Enter valid height (%d-%d cm):", domain.HeightMin, domain.HeightMax))
			return
		}
		s.draft.HeightCm = h
		s.step = stepRegWeight
		r.sendText(chatID, promptWeight)

	case stepRegWeight:
		w, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(text), "kg"), 64)
		if err != nil || w < domain.WeightMin || w > domain.WeightMax {
			r.sendText(chatID, fmt.Sprintf("⚠️ Enter valid weight (%d-%d kg):", domain.WeightMin, domain.WeightMax))
			return
		}
		s.draft.WeightKg = w
		s.step = stepRegActivity
		r.sendWithKeyboard(chatID, promptActivity, activityKeyboard())

	case stepRegActivity:
		var matched string
		for _, a := range domain.ActivityLevels {
			if strings.EqualFold(text, a) {
				matched = a
				break
			}
		}
		if matched == "" {
			r.sendWithKeyboard(chatID, msgUseButtons, activityKeyboard())
			return
		}
		s.draft.ActivityLevel = matched
		s.step = stepRegBedtime
		r.sendWithKeyboard(chatID, "✅ "+matched, removeKeyboard())
		r.sendText(chatID, promptBedtime)

	case stepRegBedtime:
		bt, err := domain.NormalizeClock(text)
		if err != nil {
			r.sendText(chatID, msgInvalidTime)
			return
		}
		s.draft.Bedtime = bt
		s.step = stepRegWakeup
		r.sendText(chatID, promptWakeup)

	case stepRegWakeup:
		wk, err := domain.NormalizeClock(text)
		if err != nil {
			r.sendText(chatID, msgInvalidTime)
			return
		}
		if err := domain.ValidateSleepSchedule(s.draft.Bedtime, wk); err != nil {
			r.sendText(chatID, "⚠️ "+err.Error()+" Please adjust your times.")
			s.step = stepRegBedtime
			r.sendText(chatID, promptBedtime)
			return
		}
		s.draft.Wakeup = wk
		s.step = stepRegTZ
		r.sendWithKeyboard(chatID,
			fmt.Sprintf("🌍 Detected timezone: <b>%s</b>\nIs this correct?", s.detectedTZ),
			timezoneConfirmKeyboard())

	case stepRegTZManual:
		tz, err := domain.NormalizeTimezone(text)
		if err != nil {
			r.sendHTML(chatID, "⚠️ Unknown timezone. "+promptTZManual)
			return
		}
		s.draft.Timezone = tz
		r.sendText(chatID, "✅ "+tz)
		r.askHabits(chatID, s)

	case stepRegNotify:
		// custom notification times, one message "HH:MM, HH:MM, HH:MM"
		r.handleCustomNotifyText(chatID, s, text)
	}
}

func (r *Router) handleTimezoneCallback(ctx context.Context, chatID int64, value, cbID string) {
	s := r.session(chatID)
	if s.step != stepRegTZ {
		r.alertCallback(cbID, "⚠️ This action is no longer available.")
		return
	}
	r.answerCallback(cbID, "")

	switch value {
	case "correct":
		s.draft.Timezone = s.detectedTZ
		r.sendText(chatID, "✅ "+s.detectedTZ)
		r.askHabits(chatID, s)
	case "change":
		s.step = stepRegTZManual
		r.sendHTML(chatID, promptTZManual)
	}
}

func (r *Router) askHabits(chatID int64, s *session) {
	s.step = stepRegHabits
	r.sendWithKeyboard(chatID, promptHabits, habitsKeyboard(s.habits))
}

func (r *Router) handleHabitsCallback(ctx context.Context, chatID int64, prefix, value, cbID string) {
	s := r.session(chatID)
	if s.step != stepRegHabits && s.step != stepEditHabits {
		r.alertCallback(cbID, "⚠️ This action is no longer available.")
		return
	}
	r.answerCallback(cbID, "")

	if prefix == "habit" {
		s.habits[value] = !s.habits[value]
		r.sendWithKeyboard(chatID, promptHabits, habitsKeyboard(s.habits))
		return
	}

	// habits:done
	s.draft.Habits = nil
	for _, h := range domain.Habits {
		if s.habits[h] {
			s.draft.Habits = append(s.draft.Habits, h)
		}
	}

	if s.step == stepEditHabits {
		r.saveEditedProfile(ctx, chatID, s, false)
		return
	}
	s.step = stepRegNotify
	r.sendWithKeyboard(chatID, promptNotifs, notificationsChoiceKeyboard())
}

// defaultTimesFor derives the standard notification times from the profile's
// sleep schedule. Errors only on a malformed stored clock value.
func defaultTimesFor(p *domain.Profile) ([]string, error) {
	return domain.DefaultNotificationTimes(p.Wakeup, p.Bedtime)
}

func (r *Router) handleNotifyCallback(ctx context.Context, chatID int64, value, cbID string) {
	s := r.session(chatID)
	if s.step != stepRegNotify {
		r.alertCallback(cbID, "⚠️ This action is no longer available.")
		return
	}
	r.answerCallback(cbID, "")

	switch value {
	case "default":
		times, err := defaultTimesFor(s.draft)
		if err != nil {
			r.log.Error("default times failed", zap.Int64("user_id", chatID), zap.Error(err))
			r.sendText(chatID, "⚠️ Your sleep times look invalid. Please restart with /start.")
			return
		}
		s.draft.NotificationTimes = times
		s.draft.CustomTimes = false
		r.sendHTML(chatID, fmt.Sprintf(
			"✅ <b>Default notifications set:</b>\n🌅 Morning: %s\n☀️ Afternoon: %s\n🌙 Evening: %s",
			times[0], times[1], times[2]))
		r.showProfileReview(chatID, s)
	case "custom":
		r.sendHTML(chatID, promptCustomNotifs)
		// stay on stepRegNotify; the next text message carries the times
	}
}

func (r *Router) handleCustomNotifyText(chatID int64, s *session, text string) {
	parts := strings.Split(text, ",")
	if len(parts) != len(domain.Periods) {
		r.sendHTML(chatID, "⚠️ Please enter exactly <b>3 times</b> separated by commas.\n"+
			"Example: <code>08:00, 14:30, 21:00</code>")
		return
	}
	times := make([]string, 0, len(parts))
	for _, raw := range parts {
		t, err := domain.NormalizeClock(strings.TrimSpace(raw))
		if err != nil {
			r.sendHTML(chatID, fmt.Sprintf(
				"⚠️ Invalid time format: <code>%s</code>\nPlease use HH:MM format (e.g., 08:00)",
				strings.TrimSpace(raw)))
			return
		}
		times = append(times, t)
	}
	s.draft.NotificationTimes = times
	s.draft.CustomTimes = true
	r.sendHTML(chatID, fmt.Sprintf(
		"✅ <b>Custom times set:</b>\n🌅 Morning: %s\n☀️ Afternoon: %s\n🌙 Evening: %s",
		times[0], times[1], times[2]))
	r.showProfileReview(chatID, s)
}

func (r *Router) showProfileReview(chatID int64, s *session) {
	s.step = stepRegReview
	d := s.draft
	habits := strings.Join(d.Habits, ", ")
	if habits == "" {
		habits = "None"
	}
	review := fmt.Sprintf(
		"📋 <b>Review your profile:</b>\n\n"+
			"👤 %s, %s, %d y.o\n"+
			"📏 %d cm, %.1f kg\n"+
			"🏃 Activity: %s\n"+
			"😴 Sleep: %s - %s\n"+
			"🌍 Timezone: %s\n"+
			"🛠 Habits: %s\n"+
			"📲 Notifications: %s",
		escapeHTML(d.FirstName), d.Gender, d.Age,
		d.HeightCm, d.WeightKg,
		d.ActivityLevel,
		d.Bedtime, d.Wakeup,
		d.Timezone,
		habits,
		strings.Join(d.NotificationTimes, ", "))
	r.sendWithKeyboard(chatID, review, finalConfirmKeyboard())
}

func (r *Router) handleProfileReviewCallback(ctx context.Context, chatID int64, value, cbID string) {
	s := r.session(chatID)
	if s.step != stepRegReview {
		r.alertCallback(cbID, "⚠️ This action is no longer available.")
		return
	}
	r.answerCallback(cbID, "")

	switch value {
	case "save":
		if err := r.repo.UpsertProfile(ctx, s.draft); err != nil {
			r.log.Error("save profile failed", zap.Int64("user_id", chatID), zap.Error(err))
			r.sendText(chatID, "❌ Error saving to database. Please try again or contact support.")
			return
		}
		if ok := r.svc.Reschedule(s.draft.UserID, s.draft.NotificationTimes, s.draft.Timezone); !ok {
			r.log.Warn("initial scheduling incomplete", zap.Int64("user_id", chatID))
		}
		r.clearSession(chatID)
		r.sendHTML(chatID, "✅ <b>Profile created!</b>\n\n"+
			"I'll send you check-in reminders at your chosen times. "+
			"Use /help to see all commands.")
		r.log.Info("profile registered", zap.Int64("user_id", chatID))
	case "restart":
		from := &tgbotapi.User{FirstName: s.draft.FirstName}
		r.clearSession(chatID)
		r.handleStart(ctx, chatID, from)
	}
}

// --- profile editing ---

func (r *Router) handleEditProfile(ctx context.Context, chatID int64) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil {
		r.sendText(chatID, msgNoProfile)
		return
	}
	s := r.session(chatID)
	*s = session{draft: p, editing: true, habits: make(map[string]bool)}
	for _, h := range p.Habits {
		s.habits[h] = true
	}
	r.sendWithKeyboard(chatID, "✏️ <b>What would you like to change?</b>", editProfileKeyboard())
}

func (r *Router) handleEditCallback(ctx context.Context, chatID int64, field, cbID string) {
	s := r.session(chatID)
	if !s.editing {
		r.alertCallback(cbID, "⚠️ This action is no longer available.")
		return
	}
	r.answerCallback(cbID, "")

	switch field {
	case "done":
		r.clearSession(chatID)
		r.sendText(chatID, "✅ Done editing.")
		return
	case "habits":
		s.step = stepEditHabits
		r.sendWithKeyboard(chatID, promptHabits, habitsKeyboard(s.habits))
		return
	}

	prompts := map[string]string{
		"age":           promptAge,
		"height":        promptHeight,
		"weight":        promptWeight,
		"activity":      promptActivity,
		"bedtime":       promptBedtime,
		"wakeup":        promptWakeup,
		"timezone":      promptTZManual,
		"notifications": promptCustomNotifs,
	}
	prompt, ok := prompts[field]
	if !ok {
		return
	}
	s.step = stepEditField
	s.editField = field
	switch field {
	case "activity":
		r.sendWithKeyboard(chatID, prompt, activityKeyboard())
	default:
		r.sendHTML(chatID, prompt)
	}
}

// handleEditFieldText applies a single-field edit and saves.
func (r *Router) handleEditFieldText(ctx context.Context, chatID int64, s *session, text string) {
	d := s.draft
	reschedule := false

	switch s.editField {
	case "age":
		v, err := strconv.Atoi(text)
		if err != nil || v < domain.AgeMin || v > domain.AgeMax {
			r.sendText(chatID, fmt.Sprintf("⚠️ Please enter a valid age (%d-%d):", domain.AgeMin, domain.AgeMax))
			return
		}
		d.Age = v
	case "height":
		v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(text), "cm"))
		if err != nil || v < domain.HeightMin || v > domain.HeightMax {
			r.sendText(chatID, fmt.Sprintf("⚠️ Enter valid height (%d-%d cm):", domain.HeightMin, domain.HeightMax))
			return
		}
		d.HeightCm = v
	case "weight":
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(text), "kg"), 64)
		if err != nil || v < domain.WeightMin || v > domain.WeightMax {
			r.sendText(chatID, fmt.Sprintf("⚠️ Enter valid weight (%d-%d kg):", domain.WeightMin, domain.WeightMax))
			return
		}
		d.WeightKg = v
	case "activity":
		var matched string
		for _, a := range domain.ActivityLevels {
			if strings.EqualFold(text, a) {
				matched = a
				break
			}
		}
		if matched == "" {
			r.sendWithKeyboard(chatID, msgUseButtons, activityKeyboard())
			return
		}
		d.ActivityLevel = matched
	case "bedtime":
		v, err := domain.NormalizeClock(text)
		if err != nil {
			r.sendText(chatID, msgInvalidTime)
			return
		}
		if err := domain.ValidateSleepSchedule(v, d.Wakeup); err != nil {
			r.sendText(chatID, "⚠️ "+err.Error()+" Please adjust your times.")
			return
		}
		d.Bedtime = v
		if !d.CustomTimes {
			times, terr := defaultTimesFor(d)
			if terr != nil {
				r.sendText(chatID, msgInvalidTime)
				return
			}
			d.NotificationTimes = times
		}
		reschedule = true
	case "wakeup":
		v, err := domain.NormalizeClock(text)
		if err != nil {
			r.sendText(chatID, msgInvalidTime)
			return
		}
		if err := domain.ValidateSleepSchedule(d.Bedtime, v); err != nil {
			r.sendText(chatID, "⚠️ "+err.Error()+" Please adjust your times.")
			return
		}
		d.Wakeup = v
		if !d.CustomTimes {
			times, terr := defaultTimesFor(d)
			if terr != nil {
				r.sendText(chatID, msgInvalidTime)
				return
			}
			d.NotificationTimes = times
		}
		reschedule = true
	case "timezone":
		tz, err := domain.NormalizeTimezone(text)
		if err != nil {
			r.sendHTML(chatID, "⚠️ Unknown timezone. "+promptTZManual)
			return
		}
		d.Timezone = tz
		reschedule = true
	case "notifications":
		parts := strings.Split(text, ",")
		if len(parts) != len(domain.Periods) {
			r.sendHTML(chatID, "⚠️ Please enter exactly <b>3 times</b> separated by commas.\n"+
				"Example: <code>08:00, 14:30, 21:00</code>")
			return
		}
		times := make([]string, 0, len(parts))
		for _, raw := range parts {
			t, err := domain.NormalizeClock(strings.TrimSpace(raw))
			if err != nil {
				r.sendText(chatID, msgInvalidTime)
				return
			}
			times = append(times, t)
		}
		d.NotificationTimes = times
		d.CustomTimes = true
		reschedule = true
	default:
		return
	}

	r.saveEditedProfile(ctx, chatID, s, reschedule)
}

func (r *Router) saveEditedProfile(ctx context.Context, chatID int64, s *session, reschedule bool) {
	if err := r.repo.UpsertProfile(ctx, s.draft); err != nil {
		r.log.Error("save profile failed", zap.Int64("user_id", chatID), zap.Error(err))
		r.sendText(chatID, msgGenericError)
		return
	}
	if reschedule {
		d := s.draft
		if ok := r.svc.Reschedule(d.UserID, d.NotificationTimes, d.Timezone); !ok {
			r.log.Warn("reschedule incomplete after edit", zap.Int64("user_id", chatID))
		}
		r.sendHTML(chatID, msgScheduleUpdated)
	}
	s.step = ""
	s.editField = ""
	r.sendWithKeyboard(chatID, "✅ Saved. Anything else?", editProfileKeyboard())
}
