package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleProfile(userID int64) *domain.Profile {
	return &domain.Profile{
		UserID:            userID,
		FirstName:         "Olena",
		Gender:            "Female",
		Age:               29,
		HeightCm:          168,
		WeightKg:          61.5,
		ActivityLevel:     "Medium",
		Bedtime:           "23:00",
		Wakeup:            "07:00",
		Timezone:          "Europe/Kyiv",
		Habits:            []string{"Water", "Meditation"},
		NotificationTimes: []string{"08:00", "14:00", "21:00"},
	}
}

func TestProfileRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetProfile(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	in := sampleProfile(42)
	if err := repo.UpsertProfile(ctx, in); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetProfile(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FirstName != "Olena" || got.Timezone != "Europe/Kyiv" {
		t.Errorf("unexpected profile: %+v", got)
	}
	if len(got.Habits) != 2 || got.Habits[0] != "Water" {
		t.Errorf("habits not preserved: %v", got.Habits)
	}
	if len(got.NotificationTimes) != 3 || got.NotificationTimes[1] != "14:00" {
		t.Errorf("notification times not preserved: %v", got.NotificationTimes)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not stamped")
	}

	// upsert updates in place
	in.Age = 30
	in.NotificationTimes = []string{"09:00", "15:00", "20:00"}
	if err := repo.UpsertProfile(ctx, in); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = repo.GetProfile(ctx, 42)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Age != 30 || got.NotificationTimes[0] != "09:00" {
		t.Errorf("update not applied: %+v", got)
	}

	all, err := repo.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("want 1 profile, got %d", len(all))
	}
}

func TestDeleteProfileCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertProfile(ctx, sampleProfile(7)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := repo.EnsureEntry(ctx, 7, "2026-08-24", domain.PeriodMorning); err != nil {
		t.Fatalf("ensure entry: %v", err)
	}

	if err := repo.DeleteProfile(ctx, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteProfile(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	if _, err := repo.GetEntry(ctx, 7, "2026-08-24", domain.PeriodMorning); !errors.Is(err, ErrNotFound) {
		t.Fatalf("entry survived cascade: %v", err)
	}
}

func TestEnsureEntryIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertProfile(ctx, sampleProfile(1)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	first, err := repo.EnsureEntry(ctx, 1, "2026-08-24", domain.PeriodDay)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if first.Status != domain.EntryPending {
		t.Errorf("new entry status = %s, want pending", first.Status)
	}

	second, err := repo.EnsureEntry(ctx, 1, "2026-08-24", domain.PeriodDay)
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("ensure created a duplicate: %d vs %d", second.ID, first.ID)
	}
}

func TestEntryLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertProfile(ctx, sampleProfile(1)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	e, err := repo.EnsureEntry(ctx, 1, "2026-08-24", domain.PeriodMorning)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if err := repo.MarkSent(ctx, 1, "2026-08-24", domain.PeriodMorning); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	got, _ := repo.GetEntry(ctx, 1, "2026-08-24", domain.PeriodMorning)
	if got.Status != domain.EntrySent {
		t.Errorf("status = %s, want sent", got.Status)
	}

	count, err := repo.IncrementSnooze(ctx, e.ID)
	if err != nil {
		t.Fatalf("snooze: %v", err)
	}
	if count != 1 {
		t.Errorf("snooze count = %d, want 1", count)
	}
	count, _ = repo.IncrementSnooze(ctx, e.ID)
	if count != 2 {
		t.Errorf("second snooze count = %d, want 2", count)
	}
	got, _ = repo.GetEntry(ctx, 1, "2026-08-24", domain.PeriodMorning)
	if got.Status != domain.EntrySnoozed {
		t.Errorf("status = %s, want snoozed", got.Status)
	}

	mood, sleep := 4, 5
	woke := true
	got.Mood = &mood
	got.SleepQuality = &sleep
	got.WokeOnTime = &woke
	got.Notes = "slept well"
	if err := repo.SaveEntry(ctx, got); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.MarkCompleted(ctx, e.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, _ = repo.GetEntry(ctx, 1, "2026-08-24", domain.PeriodMorning)
	if got.Status != domain.EntryCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at not stamped")
	}
	if got.Mood == nil || *got.Mood != 4 {
		t.Errorf("mood not preserved: %v", got.Mood)
	}
	if got.WokeOnTime == nil || !*got.WokeOnTime {
		t.Errorf("woke_on_time not preserved: %v", got.WokeOnTime)
	}
	if got.SnoozeCount != 2 {
		t.Errorf("snooze count = %d, want 2", got.SnoozeCount)
	}
}

func TestMarkSentDoesNotRegress(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertProfile(ctx, sampleProfile(1)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	e, err := repo.EnsureEntry(ctx, 1, "2026-08-24", domain.PeriodEvening)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := repo.MarkCompleted(ctx, e.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// a late reminder must not move a finished entry back to sent
	if err := repo.MarkSent(ctx, 1, "2026-08-24", domain.PeriodEvening); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	got, _ := repo.GetEntry(ctx, 1, "2026-08-24", domain.PeriodEvening)
	if got.Status != domain.EntryCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestTerminalEntryStaysTerminal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertProfile(ctx, sampleProfile(1)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	e, err := repo.EnsureEntry(ctx, 1, "2026-08-24", domain.PeriodMorning)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := repo.MarkCompleted(ctx, e.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// a snooze tap on a stale reminder must not reopen the entry
	count, err := repo.IncrementSnooze(ctx, e.ID)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if count != 0 {
		t.Errorf("snooze count = %d, want 0 on a completed entry", count)
	}
	got, _ := repo.GetEntry(ctx, 1, "2026-08-24", domain.PeriodMorning)
	if got.Status != domain.EntryCompleted {
		t.Errorf("status after snooze = %s, want completed", got.Status)
	}

	if err := repo.MarkSkipped(ctx, e.ID); err != nil {
		t.Fatalf("skip: %v", err)
	}
	got, _ = repo.GetEntry(ctx, 1, "2026-08-24", domain.PeriodMorning)
	if got.Status != domain.EntryCompleted {
		t.Errorf("status after skip = %s, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("completed timestamp lost")
	}
}

func TestWeeklyStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertProfile(ctx, sampleProfile(1)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	complete := func(date string, period domain.Period, mood int) {
		t.Helper()
		e, err := repo.EnsureEntry(ctx, 1, date, period)
		if err != nil {
			t.Fatalf("ensure %s %s: %v", date, period, err)
		}
		e.Mood = &mood
		if err := repo.SaveEntry(ctx, e); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := repo.MarkCompleted(ctx, e.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	// week of Monday 2026-08-24
	complete("2026-08-24", domain.PeriodMorning, 4)
	complete("2026-08-24", domain.PeriodEvening, 2)
	complete("2026-08-25", domain.PeriodDay, 3)
	// skipped entries do not count
	e, _ := repo.EnsureEntry(ctx, 1, "2026-08-26", domain.PeriodMorning)
	_ = repo.MarkSkipped(ctx, e.ID)
	// next week's entry is out of range
	complete("2026-08-31", domain.PeriodMorning, 5)

	stats, err := repo.WeeklyStats(ctx, 1, "2026-08-24")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalCheckins != 3 {
		t.Errorf("total = %d, want 3", stats.TotalCheckins)
	}
	if stats.CompletedDays != 2 {
		t.Errorf("days = %d, want 2", stats.CompletedDays)
	}
	if stats.MorningCount != 1 || stats.DayCount != 1 || stats.EveningCount != 1 {
		t.Errorf("period counts = %d/%d/%d", stats.MorningCount, stats.DayCount, stats.EveningCount)
	}
	if stats.AvgMood == nil || *stats.AvgMood != 3.0 {
		t.Errorf("avg mood = %v, want 3.0", stats.AvgMood)
	}
	if stats.AvgEnergy != nil {
		t.Errorf("avg energy = %v, want nil", stats.AvgEnergy)
	}
}

func TestSummariesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertProfile(ctx, sampleProfile(1)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	mood := 3.5
	for _, week := range []string{"2026-08-10", "2026-08-17", "2026-08-24"} {
		err := repo.CreateSummary(ctx, &domain.WeeklySummary{
			UserID:        1,
			WeekStart:     week,
			CompletedDays: 5,
			AvgMood:       &mood,
			Summary:       "steady week",
		})
		if err != nil {
			t.Fatalf("create %s: %v", week, err)
		}
	}

	// same week again replaces, not duplicates
	err := repo.CreateSummary(ctx, &domain.WeeklySummary{
		UserID:        1,
		WeekStart:     "2026-08-24",
		CompletedDays: 6,
		Summary:       "revised",
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.ListSummaries(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 summaries, got %d", len(got))
	}
	if got[0].WeekStart != "2026-08-24" || got[0].Summary != "revised" {
		t.Errorf("newest summary wrong: %+v", got[0])
	}
	if got[0].AvgMood != nil {
		t.Errorf("avg mood should be nil after replace, got %v", got[0].AvgMood)
	}
	if got[1].WeekStart != "2026-08-17" {
		t.Errorf("second summary = %s, want 2026-08-17", got[1].WeekStart)
	}
}
