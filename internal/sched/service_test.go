package sched

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

// fakeSender records delivered prompts; fail makes every send error.
type fakeSender struct {
	mu    sync.Mutex
	sent  []sentPrompt
	fail  bool
	fired chan sentPrompt
}

type sentPrompt struct {
	userID      int64
	period      domain.Period
	snoozeCount int
}

func newFakeSender() *fakeSender {
	return &fakeSender{fired: make(chan sentPrompt, 16)}
}

func (f *fakeSender) SendCheckinPrompt(userID int64, text string, period domain.Period, snoozeCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("blocked by user")
	}
	p := sentPrompt{userID: userID, period: period, snoozeCount: snoozeCount}
	f.sent = append(f.sent, p)
	f.fired <- p
	return nil
}

func testService(t *testing.T, sender Sender) *Service {
	t.Helper()
	if sender == nil {
		sender = newFakeSender()
	}
	return NewService(zap.NewNop(), sender, Config{})
}

func TestScheduleAll_Idempotent(t *testing.T) {
	s := testService(t, nil)
	times := []string{"08:00", "14:00", "21:00"}

	if n := s.ScheduleAll(42, times, "Europe/Kyiv"); n != 3 {
		t.Fatalf("first ScheduleAll: want 3, got %d", n)
	}
	if n := s.ScheduleAll(42, times, "Europe/Kyiv"); n != 3 {
		t.Fatalf("second ScheduleAll: want 3, got %d", n)
	}

	st := s.Status()
	if st.TotalJobs != 3 {
		t.Fatalf("replace-on-collision broken: want 3 jobs, got %d", st.TotalJobs)
	}
}

func TestScheduleAll_PartialFailure(t *testing.T) {
	s := testService(t, nil)

	n := s.ScheduleAll(7, []string{"08:00", "not-a-time", "21:00"}, "UTC")
	if n != 2 {
		t.Fatalf("want 2 of 3 scheduled, got %d", n)
	}
	sched := s.UserSchedule(7)
	if sched[domain.PeriodMorning] != "08:00" || sched[domain.PeriodEvening] != "21:00" {
		t.Fatalf("surviving periods wrong: %v", sched)
	}
	if sched[domain.PeriodDay] != "" {
		t.Fatalf("failed period should be unscheduled, got %q", sched[domain.PeriodDay])
	}
}

func TestRescheduleRoundTrip(t *testing.T) {
	s := testService(t, nil)

	if !s.Reschedule(1, []string{"08:00", "14:00", "21:00"}, "UTC") {
		t.Fatal("reschedule user 1 failed")
	}
	if !s.Reschedule(2, []string{"09:00", "15:00", "22:00"}, "Europe/Berlin") {
		t.Fatal("reschedule user 2 failed")
	}

	if removed := s.RemoveAll(1); removed != 3 {
		t.Fatalf("want 3 removed, got %d", removed)
	}
	if jobs := s.UserJobs(1); len(jobs) != 0 {
		t.Fatalf("user 1 should have no jobs, got %d", len(jobs))
	}
	if jobs := s.UserJobs(2); len(jobs) != 3 {
		t.Fatalf("user 2's jobs must be untouched, got %d", len(jobs))
	}
}

func TestReschedule_ReplacesTimes(t *testing.T) {
	s := testService(t, nil)

	s.Reschedule(5, []string{"08:00", "14:00", "21:00"}, "UTC")
	if !s.Reschedule(5, []string{"07:30", "13:30", "21:30"}, "Europe/Kyiv") {
		t.Fatal("second reschedule failed")
	}

	sched := s.UserSchedule(5)
	want := map[domain.Period]string{
		domain.PeriodMorning: "07:30",
		domain.PeriodDay:     "13:30",
		domain.PeriodEvening: "21:30",
	}
	for period, w := range want {
		if sched[period] != w {
			t.Fatalf("%s: want %s, got %s", period, w, sched[period])
		}
	}
	if st := s.Status(); st.TotalJobs != 3 {
		t.Fatalf("want 3 jobs after reschedule, got %d", st.TotalJobs)
	}
}

func TestEndToEndDefaults(t *testing.T) {
	// User sets bedtime 23:30, wake-up 06:30, Europe/Kyiv, accepts defaults.
	times, err := domain.DefaultNotificationTimes("06:30", "23:30")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}

	s := testService(t, nil)
	if !s.Reschedule(100, times, "Europe/Kyiv") {
		t.Fatal("reschedule failed")
	}

	want := map[string]string{
		"notif:100:morning": "07:30",
		"notif:100:day":     "13:30",
		"notif:100:evening": "21:30",
	}
	jobs := s.UserJobs(100)
	if len(jobs) != 3 {
		t.Fatalf("want 3 jobs, got %d", len(jobs))
	}
	for _, j := range jobs {
		id := j.Key.String()
		w, ok := want[id]
		if !ok {
			t.Fatalf("unexpected job id %s", id)
		}
		if got := domain.FormatClock(j.Hour, j.Minute); got != w {
			t.Fatalf("%s: want %s, got %s", id, w, got)
		}
		if j.TZ != "Europe/Kyiv" {
			t.Fatalf("%s: want Europe/Kyiv, got %s", id, j.TZ)
		}
	}
}

func TestScheduleSnooze_Bound(t *testing.T) {
	s := testService(t, nil)
	now := time.Now()
	s.now = func() time.Time { return now }

	if err := s.ScheduleSnooze(1, domain.PeriodMorning, 0); err != nil {
		t.Fatalf("first snooze: %v", err)
	}
	now = now.Add(time.Second) // distinct nonce for the next snooze
	if err := s.ScheduleSnooze(1, domain.PeriodMorning, 1); err != nil {
		t.Fatalf("second snooze: %v", err)
	}
	now = now.Add(time.Hour) // elapsed time does not reopen the budget
	if err := s.ScheduleSnooze(1, domain.PeriodMorning, 2); !errors.Is(err, ErrSnoozeLimit) {
		t.Fatalf("third snooze: want ErrSnoozeLimit, got %v", err)
	}

	if st := s.Status(); st.OneShotJobs != 2 {
		t.Fatalf("want 2 one-shot jobs, got %d", st.OneShotJobs)
	}
}

func TestScheduleSnooze_FiresWithIncrementedCount(t *testing.T) {
	sender := newFakeSender()
	s := NewService(zap.NewNop(), sender, Config{SnoozeDelay: 10 * time.Millisecond})

	if err := s.ScheduleSnooze(3, domain.PeriodDay, 1); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	select {
	case p := <-sender.fired:
		if p.userID != 3 || p.period != domain.PeriodDay || p.snoozeCount != 2 {
			t.Fatalf("unexpected prompt: %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("snooze reminder never fired")
	}
}

func TestDispatchFailureIsCountedNotFatal(t *testing.T) {
	sender := newFakeSender()
	sender.fail = true
	s := NewService(zap.NewNop(), sender, Config{})

	s.disp.Send(9, domain.PeriodEvening, 0)

	st := s.Status()
	if st.Stats.RemindersFailed != 1 {
		t.Fatalf("want 1 failed reminder, got %d", st.Stats.RemindersFailed)
	}
	if st.Stats.RemindersSent != 0 {
		t.Fatalf("want 0 sent, got %d", st.Stats.RemindersSent)
	}

	s.ResetStats()
	if st := s.Status(); st.Stats.RemindersFailed != 0 {
		t.Fatalf("reset left %d failed reminders", st.Stats.RemindersFailed)
	}
}

func TestSweep(t *testing.T) {
	s := testService(t, nil)
	now := time.Now()
	s.now = func() time.Time { return now }

	// Active recurring job and a one-shot an hour out: both must survive.
	if n := s.ScheduleAll(1, []string{"08:00", "14:00", "21:00"}, "UTC"); n != 3 {
		t.Fatalf("schedule: %d", n)
	}
	if err := s.ScheduleSnooze(1, domain.PeriodDay, 0); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	// Orphaned one-shot stuck 25 hours in the past: timer long gone.
	stuck := OneShotKey(1, domain.PeriodMorning, now.Add(-25*time.Hour).Unix())
	s.store.mu.Lock()
	s.store.jobs[stuck] = &job{key: stuck, fireAt: now.Add(-25 * time.Hour), createdAt: now.Add(-25 * time.Hour)}
	s.store.mu.Unlock()

	if removed := s.Sweep(); removed != 1 {
		t.Fatalf("want 1 swept, got %d", removed)
	}

	st := s.Status()
	if st.RecurringJobs != 3 {
		t.Fatalf("sweep must not touch recurring jobs, got %d", st.RecurringJobs)
	}
	if st.OneShotJobs != 1 {
		t.Fatalf("future one-shot must survive, got %d", st.OneShotJobs)
	}
	if st.Stats.LastCleanup.IsZero() {
		t.Fatal("sweep should record last cleanup time")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	s := testService(t, nil)

	s.Start()
	s.Start() // warns, no effect
	if !s.Status().Running {
		t.Fatal("scheduler should be running")
	}

	s.Stop()
	s.Stop() // warns, no effect
	if s.Status().Running {
		t.Fatal("scheduler should be stopped")
	}
}

func TestReminderText(t *testing.T) {
	base := ReminderText(domain.PeriodMorning, 0)
	if base == "" || base == fallbackReminderText {
		t.Fatal("morning template missing")
	}
	first := ReminderText(domain.PeriodMorning, 1)
	if first == base || !strings.Contains(first, "Friendly reminder") {
		t.Fatalf("snooze 1 should append the friendly nudge: %q", first)
	}
	last := ReminderText(domain.PeriodMorning, 2)
	if !strings.Contains(last, "Last chance") {
		t.Fatalf("snooze 2 should append the final notice: %q", last)
	}
	if got := ReminderText(domain.Period("brunch"), 0); got != fallbackReminderText {
		t.Fatalf("unknown period should fall back, got %q", got)
	}
}
