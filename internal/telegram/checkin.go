package telegram

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

func (r *Router) handleCheckinStart(ctx context.Context, chatID int64, period domain.Period, cbID string) {
	r.answerCallback(cbID, "")
	if !period.Valid() {
		return
	}

	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil {
		r.sendText(chatID, msgNoProfile)
		return
	}

	entry, err := r.repo.EnsureEntry(ctx, chatID, r.userToday(p), period)
	if err != nil {
		r.log.Error("ensure entry failed", zap.Int64("user_id", chatID), zap.Error(err))
		r.sendText(chatID, msgGenericError)
		return
	}
	if entry.Status == domain.EntryCompleted {
		r.sendWithKeyboard(chatID, fmt.Sprintf(checkinAlreadyDoneFmt, period), removeKeyboard())
		return
	}

	s := r.session(chatID)
	*s = session{entry: entry, habits: make(map[string]bool)}
	for _, h := range p.Habits {
		s.habits[h] = true
	}

	switch period {
	case domain.PeriodMorning:
		s.step = stepCheckSleep
		r.sendWithKeyboard(chatID, morningIntro, ratingKeyboard())
	case domain.PeriodDay:
		s.step = stepCheckMood
		r.sendWithKeyboard(chatID, dayIntro, ratingKeyboard())
	case domain.PeriodEvening:
		s.step = stepCheckSatisfaction
		r.sendWithKeyboard(chatID, eveningIntro, ratingKeyboard())
	}
}

func (r *Router) handleRatingCallback(ctx context.Context, chatID int64, value, cbID string) {
	s := r.session(chatID)
	if s.entry == nil {
		r.alertCallback(cbID, "⚠️ This action is no longer available.")
		return
	}

	rating, err := strconv.Atoi(value)
	if err != nil || !domain.ValidateRating(rating) {
		r.alertCallback(cbID, "Invalid rating. Please select 1-5.")
		return
	}
	r.answerCallback(cbID, "")

	e := s.entry
	switch s.step {
	case stepCheckSleep:
		e.SleepQuality = &rating
		s.step = stepCheckMood
		r.saveEntry(ctx, chatID, e)
		r.sendWithKeyboard(chatID, askMoodMorning, ratingKeyboard())

	case stepCheckSatisfaction:
		e.Satisfaction = &rating
		s.step = stepCheckMood
		r.saveEntry(ctx, chatID, e)
		r.sendWithKeyboard(chatID, askMoodEvening, ratingKeyboard())

	case stepCheckMood:
		e.Mood = &rating
		r.saveEntry(ctx, chatID, e)
		switch e.Period {
		case domain.PeriodEvening:
			s.step = stepCheckStress
			r.sendWithKeyboard(chatID, askStress, ratingKeyboard())
		default:
			s.step = stepCheckEnergy
			r.sendWithKeyboard(chatID, askEnergy, ratingKeyboard())
		}

	case stepCheckEnergy:
		e.Energy = &rating
		r.saveEntry(ctx, chatID, e)
		switch e.Period {
		case domain.PeriodMorning:
			s.step = stepCheckWakeup
			r.sendWithKeyboard(chatID, askWakeup, wakeupKeyboard())
		default:
			s.step = stepCheckStress
			r.sendWithKeyboard(chatID, askStress, ratingKeyboard())
		}

	case stepCheckStress:
		e.Stress = &rating
		r.saveEntry(ctx, chatID, e)
		r.askConditional(ctx, chatID, s)

	default:
		r.alertCallback(cbID, "⚠️ This action is no longer available.")
	}
}

func (r *Router) handleWakeupCallback(ctx context.Context, chatID int64, value, cbID string) {
	s := r.session(chatID)
	if s.entry == nil || s.step != stepCheckWakeup {
		r.alertCallback(cbID, "⚠️ This action is no longer available.")
		return
	}
	r.answerCallback(cbID, "")

	onTime := value == "ontime"
	s.entry.WokeOnTime = &onTime
	r.saveEntry(ctx, chatID, s.entry)
	r.askConditional(ctx, chatID, s)
}

// askConditional decides whether the ratings warrant a follow-up question;
// otherwise it moves straight to notes.
func (r *Router) askConditional(ctx context.Context, chatID int64, s *session) {
	prev := r.previousEntry(ctx, s.entry)
	trigger, ok := conditionalTrigger(s.entry, prev)
	if !ok {
		r.askNotes(chatID, s)
		return
	}

	bank := questionBank(s.entry.Period)
	qs := bank[trigger]
	if len(qs) == 0 {
		r.askNotes(chatID, s)
		return
	}
	s.question = qs[rand.Intn(len(qs))]
	s.step = stepCheckConditional
	r.sendWithKeyboard(chatID, "💭 "+s.question, skipKeyboard())
}

// previousEntry loads the same-day entry of the preceding period, used for
// drop/spike detection. Morning has nothing to compare against.
func (r *Router) previousEntry(ctx context.Context, e *domain.Entry) *domain.Entry {
	var prevPeriod domain.Period
	switch e.Period {
	case domain.PeriodDay:
		prevPeriod = domain.PeriodMorning
	case domain.PeriodEvening:
		prevPeriod = domain.PeriodDay
	default:
		return nil
	}
	prev, err := r.repo.GetEntry(ctx, e.UserID, e.Date, prevPeriod)
	if err != nil {
		return nil
	}
	return prev
}

func questionBank(p domain.Period) map[string][]string {
	switch p {
	case domain.PeriodMorning:
		return morningQuestions
	case domain.PeriodDay:
		return dayQuestions
	default:
		return eveningQuestions
	}
}

func ratingOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// conditionalTrigger mirrors the rating patterns that deserve a follow-up:
// outstanding days get a celebration question, low ratings and sharp changes
// against the previous check-in get a probing one.
func conditionalTrigger(e, prev *domain.Entry) (string, bool) {
	mood := ratingOr(e.Mood, 0)
	energy := ratingOr(e.Energy, 0)
	stress := ratingOr(e.Stress, 0)
	sleep := ratingOr(e.SleepQuality, 0)
	satisfaction := ratingOr(e.Satisfaction, 0)

	if e.Period == domain.PeriodMorning && mood == 5 && energy == 5 && sleep == 5 {
		return "all_perfect", true
	}
	if e.Period != domain.PeriodMorning && mood == 5 && stress == 1 &&
		(e.Energy == nil || energy == 5) {
		return "all_perfect", true
	}

	if e.Period == domain.PeriodMorning && e.SleepQuality != nil && sleep <= 2 {
		return "sleep_low", true
	}
	if e.Period == domain.PeriodEvening && e.Satisfaction != nil && satisfaction <= 2 {
		return "satisfaction_low", true
	}
	if e.Mood != nil && mood <= 2 {
		return "mood_low", true
	}
	if e.Energy != nil && energy <= 2 {
		return "energy_low", true
	}
	if e.Stress != nil && stress >= 4 {
		return "stress_high", true
	}

	if prev != nil {
		prevMood := ratingOr(prev.Mood, 3)
		prevEnergy := ratingOr(prev.Energy, 3)
		prevStress := ratingOr(prev.Stress, 3)

		if e.Mood != nil && mood-prevMood <= -2 {
			return "mood_drop", true
		}
		if e.Energy != nil && energy-prevEnergy <= -2 {
			return "energy_drop", true
		}
		if e.Stress != nil && stress-prevStress >= 2 {
			return "stress_spike", true
		}
	}
	return "", false
}

func (r *Router) askNotes(chatID int64, s *session) {
	switch s.entry.Period {
	case domain.PeriodMorning:
		if len(s.habits) > 0 {
			var lines []string
			for _, h := range domain.Habits {
				if s.habits[h] {
					lines = append(lines, "• "+h)
				}
			}
			r.sendWithKeyboard(chatID,
				"🛠 <b>Don't forget your habits:</b>\n"+strings.Join(lines, "\n"),
				skipKeyboard())
		}
		s.step = stepCheckNotes
		r.sendWithKeyboard(chatID, askNotesMorning, skipKeyboard())
	case domain.PeriodDay:
		s.step = stepCheckNotes
		r.sendWithKeyboard(chatID, askNotesDay, skipKeyboard())
	default:
		s.step = stepCheckReflection
		r.sendWithKeyboard(chatID, askReflection, skipKeyboard())
	}
}

// handleCheckinText consumes the free-text steps of a running check-in.
func (r *Router) handleCheckinText(ctx context.Context, chatID int64, s *session, text string) {
	if s.entry == nil {
		return
	}
	skip := text == btnSkip

	if !skip && len(text) > maxFreeTextLen {
		r.sendWithKeyboard(chatID, tooLong(), skipKeyboard())
		return
	}

	switch s.step {
	case stepCheckConditional:
		if !skip {
			s.entry.Conditional = text
			r.saveEntry(ctx, chatID, s.entry)
		}
		r.askNotes(chatID, s)

	case stepCheckNotes:
		if !skip {
			s.entry.Notes = text
			r.saveEntry(ctx, chatID, s.entry)
		}
		r.completeCheckin(ctx, chatID, s)

	case stepCheckReflection:
		if !skip {
			s.entry.Reflection = text
			r.saveEntry(ctx, chatID, s.entry)
		}
		r.completeCheckin(ctx, chatID, s)
	}
}

func (r *Router) completeCheckin(ctx context.Context, chatID int64, s *session) {
	e := s.entry
	if err := r.repo.MarkCompleted(ctx, e.ID); err != nil {
		r.log.Error("mark completed failed", zap.Int64("user_id", chatID), zap.Error(err))
		r.sendText(chatID, msgGenericError)
		return
	}

	var done string
	switch e.Period {
	case domain.PeriodMorning:
		done = doneMorning
	case domain.PeriodDay:
		done = doneDay
	default:
		done = doneEvening
	}
	r.clearSession(chatID)
	r.sendWithKeyboard(chatID, done, removeKeyboard())
	r.log.Info("check-in completed",
		zap.Int64("user_id", chatID),
		zap.String("period", string(e.Period)),
		zap.String("date", e.Date))
}

func (r *Router) saveEntry(ctx context.Context, chatID int64, e *domain.Entry) {
	if err := r.repo.SaveEntry(ctx, e); err != nil {
		r.log.Error("save entry failed", zap.Int64("user_id", chatID), zap.Error(err))
	}
}

// --- reminder buttons ---

func (r *Router) handleSnoozeCallback(ctx context.Context, chatID int64, period domain.Period, cbID string) {
	if !period.Valid() {
		r.answerCallback(cbID, "")
		return
	}

	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil {
		r.alertCallback(cbID, msgNoProfile)
		return
	}
	entry, err := r.repo.EnsureEntry(ctx, chatID, r.userToday(p), period)
	if err != nil {
		r.alertCallback(cbID, "❌ Error creating entry. Please try again.")
		return
	}
	if entry.Status.Terminal() {
		r.alertCallback(cbID, fmt.Sprintf(checkinAlreadyDoneFmt, period))
		return
	}

	if entry.SnoozeCount >= r.svc.MaxSnoozes() {
		r.alertCallback(cbID, snoozeAtLimit)
		return
	}

	if err := r.svc.ScheduleSnooze(chatID, period, entry.SnoozeCount); err != nil {
		r.log.Error("schedule snooze failed", zap.Int64("user_id", chatID), zap.Error(err))
		r.alertCallback(cbID, "⚠️ Could not schedule reminder. Please try again.")
		return
	}
	newCount, err := r.repo.IncrementSnooze(ctx, entry.ID)
	if err != nil {
		r.log.Error("increment snooze failed", zap.Int64("user_id", chatID), zap.Error(err))
		newCount = entry.SnoozeCount + 1
	}

	wording := snoozeWording(r.svc.SnoozeDelay())
	r.answerCallback(cbID, "⏰ I'll remind you in "+wording+".")
	r.sendWithKeyboard(chatID, fmt.Sprintf(snoozeAckFmt, wording), removeKeyboard())
	r.log.Info("reminder snoozed",
		zap.Int64("user_id", chatID),
		zap.String("period", string(period)),
		zap.Int("count", newCount))
}

func (r *Router) handleSkipCallback(ctx context.Context, chatID int64, period domain.Period, cbID string) {
	if !period.Valid() {
		r.answerCallback(cbID, "")
		return
	}

	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil {
		r.alertCallback(cbID, msgNoProfile)
		return
	}
	entry, err := r.repo.EnsureEntry(ctx, chatID, r.userToday(p), period)
	if err != nil {
		r.alertCallback(cbID, msgGenericError)
		return
	}
	if entry.Status.Terminal() {
		r.alertCallback(cbID, fmt.Sprintf(checkinAlreadyDoneFmt, period))
		return
	}
	if err := r.repo.MarkSkipped(ctx, entry.ID); err != nil {
		r.log.Error("mark skipped failed", zap.Int64("user_id", chatID), zap.Error(err))
		r.alertCallback(cbID, msgGenericError)
		return
	}

	r.answerCallback(cbID, "")
	r.clearSession(chatID)
	r.sendWithKeyboard(chatID, skipMessages[string(period)], removeKeyboard())
	r.log.Info("check-in skipped",
		zap.Int64("user_id", chatID),
		zap.String("period", string(period)),
		zap.String("date", entry.Date))
}
