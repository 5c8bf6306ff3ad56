package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/yvasiuk/wellness-bot/internal/domain"
	"github.com/yvasiuk/wellness-bot/internal/sched"
	"github.com/yvasiuk/wellness-bot/internal/textkit"
)

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func escapeHTML(s string) string {
	repl := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return repl.Replace(s)
}

func (r *Router) handleMyProfile(ctx context.Context, chatID int64) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil {
		r.sendText(chatID, msgNoProfile)
		return
	}

	habits := strings.Join(p.Habits, ", ")
	if habits == "" {
		habits = "None"
	}
	times := strings.Join(p.NotificationTimes, ", ")
	if times == "" {
		times = "Not set"
	}

	card := fmt.Sprintf(
		"👤 <b>Profile:</b> %s\n\n"+
			"📊 <b>Stats:</b> %s, %d y.o, %dcm, %.1fkg\n"+
			"🏃 <b>Activity:</b> %s\n"+
			"😴 <b>Sleep:</b> %s - %s\n"+
			"🛠 <b>Trackers:</b> %s\n"+
			"📲 <b>Notifications:</b> %s\n"+
			"🌍 <b>Timezone:</b> %s",
		escapeHTML(p.FirstName),
		p.Gender, p.Age, p.HeightCm, p.WeightKg,
		p.ActivityLevel,
		p.Bedtime, p.Wakeup,
		escapeHTML(habits),
		times,
		p.Timezone)
	r.sendHTML(chatID, card)
}

func (r *Router) handleWeeklyReport(ctx context.Context, chatID int64) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil {
		r.sendText(chatID, msgNoProfile)
		return
	}

	loc, lerr := time.LoadLocation(p.Timezone)
	if lerr != nil {
		loc = time.UTC
	}
	today := r.now().In(loc)
	weekStart := domain.WeekStart(today)

	stats, err := r.repo.WeeklyStats(ctx, chatID, weekStart)
	if err != nil {
		r.log.Error("weekly stats failed", zap.Int64("user_id", chatID), zap.Error(err))
		r.sendText(chatID, msgGenericError)
		return
	}
	if stats.TotalCheckins == 0 {
		r.sendHTML(chatID, "📊 <b>This Week's Report</b>\n\n"+
			"No check-ins completed yet this week.\n"+
			"Start tracking to see your progress!")
		return
	}

	if r.insights.Enabled() {
		r.sendText(chatID, "🤖 Analyzing your week with AI...")
	}
	entries, err := r.repo.ListWeekEntries(ctx, chatID, weekStart)
	if err != nil {
		r.log.Error("list week entries failed", zap.Int64("user_id", chatID), zap.Error(err))
		entries = nil
	}
	ai := r.insights.Weekly(ctx, p, entries)

	start, _ := time.ParseInLocation("2006-01-02", weekStart, loc)
	daysInWeek := int(today.Sub(start).Hours()/24) + 1
	if daysInWeek < 1 {
		daysInWeek = 1
	}
	if daysInWeek > 7 {
		daysInWeek = 7
	}
	completionPct := stats.CompletedDays * 100 / daysInWeek

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>This Week's Report</b>\n")
	fmt.Fprintf(&b, "Week: %s - %s\n\n", start.Format("Jan 02"), today.Format("Jan 02"))
	fmt.Fprintf(&b, "✅ <b>Completion:</b> %d/%d days (%d%%)\n", stats.CompletedDays, daysInWeek, completionPct)
	fmt.Fprintf(&b, "📈 <b>Total Check-ins:</b> %d\n", stats.TotalCheckins)
	fmt.Fprintf(&b, "🌅 Morning: %d\n", stats.MorningCount)
	fmt.Fprintf(&b, "☀️ Day: %d\n", stats.DayCount)
	fmt.Fprintf(&b, "🌙 Evening: %d\n\n", stats.EveningCount)

	if stats.AvgMood != nil {
		fmt.Fprintf(&b, "%s <b>Avg Mood:</b> %.2f/5\n", scaleEmoji(*stats.AvgMood, "😊", "😐", "😔"), *stats.AvgMood)
	}
	if stats.AvgEnergy != nil {
		fmt.Fprintf(&b, "%s <b>Avg Energy:</b> %.2f/5\n", scaleEmoji(*stats.AvgEnergy, "⚡", "🔋", "🪫"), *stats.AvgEnergy)
	}
	if stats.AvgStress != nil {
		fmt.Fprintf(&b, "%s <b>Avg Stress:</b> %.2f/5\n", scaleEmoji(*stats.AvgStress, "😰", "😐", "😌"), *stats.AvgStress)
	}
	if stats.AvgSleepQuality != nil {
		fmt.Fprintf(&b, "%s <b>Avg Sleep:</b> %.2f/5\n", scaleEmoji(*stats.AvgSleepQuality, "💤", "😴", "😵"), *stats.AvgSleepQuality)
	}

	if themes := weekThemes(entries); themes != "" {
		fmt.Fprintf(&b, "\n🏷 <b>Themes:</b> %s\n", themes)
	}

	if r.insights.Enabled() {
		fmt.Fprintf(&b, "\n🤖 <b>AI Insights:</b>\n<i>%s</i>\n\n", escapeHTML(ai.Summary))
		fmt.Fprintf(&b, "💡 <b>Recommendations:</b>\n%s\n", escapeHTML(ai.Recommendations))
	} else {
		b.WriteString("\n💪 Keep up the great work!")
	}

	r.sendHTML(chatID, b.String())

	// Snapshot the week for /history. Regenerating a report refreshes it.
	summary := &domain.WeeklySummary{
		UserID:        chatID,
		WeekStart:     weekStart,
		CompletedDays: stats.CompletedDays,
		AvgMood:       stats.AvgMood,
		Summary:       ai.Summary,
	}
	if err := r.repo.CreateSummary(ctx, summary); err != nil {
		r.log.Warn("save weekly summary failed", zap.Int64("user_id", chatID), zap.Error(err))
	}
}

// weekThemes extracts the dominant note tags of the week, or "" when the
// notes carry no known keywords.
func weekThemes(entries []domain.Entry) string {
	var tagLists [][]string
	for _, e := range entries {
		if e.Status != domain.EntryCompleted {
			continue
		}
		for _, s := range []string{e.Notes, e.Conditional, e.Reflection} {
			if strings.TrimSpace(s) != "" {
				tagLists = append(tagLists, textkit.ExtractTags(s))
			}
		}
	}
	top := textkit.TopTags(textkit.CountTags(tagLists), 3)
	if len(top) == 0 {
		return ""
	}
	names := make([]string, 0, len(top))
	for _, tc := range top {
		names = append(names, tc.Tag)
	}
	return textkit.FormatTags(names)
}

// scaleEmoji picks an emoji for a 1..5 average: high, middling, low.
func scaleEmoji(v float64, high, mid, low string) string {
	switch {
	case v >= 4:
		return high
	case v >= 3:
		return mid
	default:
		return low
	}
}

func (r *Router) handleHistory(ctx context.Context, chatID int64) {
	if _, err := r.repo.GetProfile(ctx, chatID); err != nil {
		r.sendText(chatID, msgNoProfile)
		return
	}

	summaries, err := r.repo.ListSummaries(ctx, chatID, 5)
	if err != nil {
		r.log.Error("list summaries failed", zap.Int64("user_id", chatID), zap.Error(err))
		r.sendText(chatID, msgGenericError)
		return
	}
	if len(summaries) == 0 {
		r.sendHTML(chatID, "📚 <b>History</b>\n\n"+
			"No weekly summaries available yet.\n"+
			"Complete a full week to generate your first summary!")
		return
	}

	var b strings.Builder
	b.WriteString("📚 <b>Your Weekly Summaries</b>\n\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "📅 Week of %s\n   ✅ %d/7 days\n", s.WeekStart, s.CompletedDays)
		if s.AvgMood != nil {
			fmt.Fprintf(&b, "   %s Mood: %.2f/5\n", scaleEmoji(*s.AvgMood, "😊", "😐", "😔"), *s.AvgMood)
		}
		b.WriteString("\n")
	}
	r.sendHTML(chatID, b.String())
}

func (r *Router) handleJobs(ctx context.Context, chatID int64) {
	if _, err := r.repo.GetProfile(ctx, chatID); err != nil {
		r.sendText(chatID, msgNoProfile)
		return
	}

	jobs := r.svc.UserJobs(chatID)
	if len(jobs) == 0 {
		r.sendHTML(chatID, msgNoJobs)
		return
	}

	var b strings.Builder
	b.WriteString("📅 <b>Your active schedule:</b>\n\n")
	for _, job := range jobs {
		label := capitalize(string(job.Key.Period))
		if job.Key.Kind == sched.KindOneShot {
			label += " (snooze)"
		}
		next := "not scheduled"
		if !job.NextRun.IsZero() {
			next = fmt.Sprintf("%s (%s)", job.NextRun.Format("15:04, 02 Jan"), humanize.Time(job.NextRun))
		}
		fmt.Fprintf(&b, "• <b>%s</b>: next run at <code>%s</code>\n", label, next)
	}
	r.sendHTML(chatID, b.String())
}

func (r *Router) handleReloadSchedule(ctx context.Context, chatID int64) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil {
		r.sendText(chatID, msgNoProfile)
		return
	}
	if !p.Scheduled() {
		r.sendText(chatID, "⚠️ Your profile has no notification times set. Use /edit_profile first.")
		return
	}
	if ok := r.svc.Reschedule(p.UserID, p.NotificationTimes, p.Timezone); !ok {
		r.sendText(chatID, "❌ Error updating schedule. Please try again.")
		return
	}
	r.sendHTML(chatID, msgScheduleUpdated)
	r.log.Info("schedule reloaded", zap.Int64("user_id", chatID))
}

func (r *Router) handleDeleteProfile(ctx context.Context, chatID int64) {
	if _, err := r.repo.GetProfile(ctx, chatID); err != nil {
		r.sendText(chatID, msgNoProfile)
		return
	}
	r.sendWithKeyboard(chatID, deleteConfirmText, deleteConfirmKeyboard())
}

func (r *Router) handleDeleteCallback(ctx context.Context, chatID int64, value, cbID string) {
	r.answerCallback(cbID, "")
	switch value {
	case "confirm":
		if err := r.repo.DeleteProfile(ctx, chatID); err != nil {
			r.log.Error("delete profile failed", zap.Int64("user_id", chatID), zap.Error(err))
			r.sendText(chatID, "❌ Error deleting profile. Please try again later.")
			return
		}
		removed := r.svc.RemoveAll(chatID)
		r.clearSession(chatID)
		r.sendHTML(chatID, msgProfileDeleted)
		r.log.Info("profile deleted",
			zap.Int64("user_id", chatID),
			zap.Int("jobs_removed", removed))
	case "cancel":
		r.sendText(chatID, msgDeleteCancelled)
	}
}
