package sched

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

// ErrSnoozeLimit means the user has used up their remind-later clicks for
// this slot.
var ErrSnoozeLimit = errors.New("snooze limit reached")

// Defaults for the snooze and janitor policies.
const (
	DefaultSnoozeDelay     = 15 * time.Minute
	DefaultMaxSnoozes      = 2
	DefaultJanitorInterval = 6 * time.Hour

	// staleAfter is how long past its fire time a one-shot job is considered
	// orphaned and eligible for the janitor sweep.
	staleAfter = 24 * time.Hour
)

// Config tunes the service. Zero values pick the defaults above.
type Config struct {
	SnoozeDelay     time.Duration
	MaxSnoozes      int
	JanitorInterval time.Duration
}

// Service is the schedule lifecycle manager: it owns the job store, the
// dispatcher and the stats, and is constructed once at startup and handed to
// every collaborator.
type Service struct {
	store *Store
	disp  *Dispatcher
	stats *Stats
	log   *zap.Logger

	snoozeDelay     time.Duration
	maxSnoozes      int
	janitorInterval time.Duration
	janitorID       cron.EntryID

	running atomic.Bool
	now     func() time.Time
}

func NewService(log *zap.Logger, sender Sender, cfg Config) *Service {
	if cfg.SnoozeDelay <= 0 {
		cfg.SnoozeDelay = DefaultSnoozeDelay
	}
	if cfg.MaxSnoozes <= 0 {
		cfg.MaxSnoozes = DefaultMaxSnoozes
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = DefaultJanitorInterval
	}

	stats := &Stats{}
	return &Service{
		store:           NewStore(log),
		disp:            NewDispatcher(sender, stats, log),
		stats:           stats,
		log:             log,
		snoozeDelay:     cfg.SnoozeDelay,
		maxSnoozes:      cfg.MaxSnoozes,
		janitorInterval: cfg.JanitorInterval,
		now:             time.Now,
	}
}

// MaxSnoozes reports the remind-later limit, for keyboard construction.
func (s *Service) MaxSnoozes() int { return s.maxSnoozes }

// SnoozeDelay reports how long a remind-later postpones the prompt.
func (s *Service) SnoozeDelay() time.Duration { return s.snoozeDelay }

// Start begins dispatching triggers and registers the janitor sweep.
// Idempotent: a second call only logs a warning.
func (s *Service) Start() {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("scheduler already running")
		return
	}

	id, err := s.store.cron.AddFunc("@every "+s.janitorInterval.String(), func() {
		s.Sweep()
	})
	if err != nil {
		// Only possible with a broken interval string; keep running without
		// the sweep rather than refusing to start.
		s.log.Error("janitor registration failed", zap.Error(err))
	} else {
		s.janitorID = id
	}

	s.store.Start()
	s.log.Info("scheduler started",
		zap.Duration("snooze_delay", s.snoozeDelay),
		zap.Int("max_snoozes", s.maxSnoozes),
		zap.Duration("janitor_interval", s.janitorInterval),
	)
}

// Stop shuts the scheduler down gracefully, waiting for running callbacks.
func (s *Service) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		s.log.Warn("scheduler is not running")
		return
	}
	s.store.Stop()
	s.log.Info("scheduler stopped")
}

// ScheduleAll registers the user's three recurring reminders and returns how
// many were scheduled. Best effort, not a transaction: a bad time string
// skips that period and the rest still register.
func (s *Service) ScheduleAll(userID int64, times []string, tz string) int {
	if len(times) != len(domain.Periods) {
		s.log.Warn("time count mismatch",
			zap.Int64("user", userID),
			zap.Int("expected", len(domain.Periods)),
			zap.Int("got", len(times)),
		)
	}

	scheduled := 0
	for i, ts := range times {
		if i >= len(domain.Periods) {
			break
		}
		if s.scheduleOne(userID, domain.Periods[i], ts, tz) {
			scheduled++
		}
	}

	s.log.Info("user schedule complete",
		zap.Int64("user", userID),
		zap.Int("scheduled", scheduled),
		zap.Int("requested", len(times)),
	)
	return scheduled
}

func (s *Service) scheduleOne(userID int64, period domain.Period, timeStr, tz string) bool {
	hour, minute, err := domain.ParseClock(timeStr)
	if err != nil {
		s.log.Error("invalid notification time",
			zap.Int64("user", userID),
			zap.String("period", string(period)),
			zap.String("time", timeStr),
			zap.Error(err),
		)
		return false
	}

	key := RecurringKey(userID, period)
	err = s.store.AddRecurring(key, hour, minute, tz, func() {
		s.disp.Send(userID, period, 0)
	})
	if err != nil {
		s.log.Error("scheduling failed",
			zap.Int64("user", userID),
			zap.String("period", string(period)),
			zap.Error(err),
		)
		return false
	}

	s.stats.addCreated()
	s.log.Info("reminder scheduled",
		zap.Int64("user", userID),
		zap.String("period", string(period)),
		zap.String("time", domain.FormatClock(hour, minute)),
		zap.String("tz", tz),
	)
	return true
}

// RemoveAll deletes the user's recurring jobs, returning how many existed.
// Absent jobs are not an error.
func (s *Service) RemoveAll(userID int64) int {
	removed := 0
	for _, period := range domain.Periods {
		if s.store.Remove(RecurringKey(userID, period)) {
			removed++
			s.stats.addRemoved(1)
		}
	}
	if removed > 0 {
		s.log.Info("schedule removed", zap.Int64("user", userID), zap.Int("jobs", removed))
	}
	return removed
}

// Reschedule replaces a user's schedule after a profile change. Removal and
// re-creation are two sequential steps; a crash between them leaves the user
// unscheduled until the next /reload_schedule, which is the accepted failure
// mode. Success means all three periods registered.
func (s *Service) Reschedule(userID int64, times []string, tz string) bool {
	s.RemoveAll(userID)
	scheduled := s.ScheduleAll(userID, times, tz)

	ok := scheduled == len(domain.Periods)
	if ok {
		s.log.Info("rescheduled", zap.Int64("user", userID))
	} else {
		s.log.Warn("partial reschedule",
			zap.Int64("user", userID),
			zap.Int("scheduled", scheduled),
		)
	}
	return ok
}

// ScheduleSnooze registers a one-shot reminder firing after the snooze delay.
// currentCount is the number of snoozes already consumed for this slot today,
// as recorded on the persisted entry; at the limit the request is refused
// with ErrSnoozeLimit.
func (s *Service) ScheduleSnooze(userID int64, period domain.Period, currentCount int) error {
	if currentCount >= s.maxSnoozes {
		return ErrSnoozeLimit
	}

	key := OneShotKey(userID, period, s.now().Unix())
	nextCount := currentCount + 1

	err := s.store.AddOneShot(key, s.now().Add(s.snoozeDelay), func() {
		s.disp.Send(userID, period, nextCount)
		s.stats.addRemoved(1) // one-shot retires itself after firing
	})
	if err != nil {
		s.log.Error("one-time scheduling failed",
			zap.Int64("user", userID),
			zap.String("period", string(period)),
			zap.Error(err),
		)
		return err
	}

	s.stats.addCreated()
	s.log.Info("one-time reminder scheduled",
		zap.Int64("user", userID),
		zap.String("period", string(period)),
		zap.Int("snooze_count", nextCount),
		zap.Time("fire_at", s.now().Add(s.snoozeDelay)),
	)
	return nil
}

// UserSchedule reports the registered time per period, empty string when the
// period has no job.
func (s *Service) UserSchedule(userID int64) map[domain.Period]string {
	out := make(map[domain.Period]string, len(domain.Periods))
	for _, period := range domain.Periods {
		if info, ok := s.store.Get(RecurringKey(userID, period)); ok {
			out[period] = domain.FormatClock(info.Hour, info.Minute)
		} else {
			out[period] = ""
		}
	}
	return out
}

// UserJobs lists the user's active jobs for the /jobs command.
func (s *Service) UserJobs(userID int64) []JobInfo {
	return s.store.UserJobs(userID)
}

// Sweep removes retired or orphaned one-shot jobs: anything already executed
// but still present, or whose fire time lies more than a day in the past.
// Recurring jobs are never touched. Returns the number removed.
func (s *Service) Sweep() int {
	defer func() {
		// A sweep must never take the process down; the next interval
		// retries anyway.
		if r := recover(); r != nil {
			s.log.Error("janitor sweep panicked", zap.Any("panic", r))
		}
	}()

	now := s.now()
	removed := 0
	for _, info := range s.store.List() {
		if info.Key.Kind != KindOneShot {
			continue
		}
		if info.Done || now.Sub(info.FireAt) > staleAfter {
			if s.store.Remove(info.Key) {
				removed++
			}
		}
	}

	if removed > 0 {
		s.stats.addRemoved(removed)
		s.log.Info("cleanup complete", zap.Int("removed_jobs", removed))
	}
	s.stats.setLastCleanup(now)
	return removed
}

// Status is the diagnostics surface consumed by operational commands.
type Status struct {
	Running       bool
	TotalJobs     int
	RecurringJobs int
	OneShotJobs   int
	Stats         StatsSnapshot
}

func (s *Service) Status() Status {
	total, recurring, oneShot := s.store.Counts()
	return Status{
		Running:       s.running.Load(),
		TotalJobs:     total,
		RecurringJobs: recurring,
		OneShotJobs:   oneShot,
		Stats:         s.stats.Snapshot(),
	}
}

// ResetStats zeroes the diagnostic counters.
func (s *Service) ResetStats() {
	s.stats.Reset()
	s.log.Info("scheduler stats reset")
}
