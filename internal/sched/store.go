package sched

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	ErrDuplicateJob = errors.New("job already exists")
	ErrPastFireTime = errors.New("fire time is in the past")
	ErrBadTrigger   = errors.New("invalid trigger")
)

// misfireGrace is how far past its fire time a one-shot job may be and still
// fire immediately instead of being dropped.
const misfireGrace = 5 * time.Minute

// Store is the in-process job table: recurring daily cron triggers plus
// one-shot timers, both keyed by JobKey. All mutations are safe for
// concurrent callers; the cron engine has its own locking for trigger
// dispatch, the map is guarded here.
type Store struct {
	log  *zap.Logger
	cron *cron.Cron

	mu   sync.Mutex
	jobs map[JobKey]*job

	// counts armed one-shot timers whose callback has not finished;
	// Stop waits on it so an in-flight reminder is never abandoned.
	oneShot sync.WaitGroup

	now func() time.Time
}

type job struct {
	key       JobKey
	createdAt time.Time

	// recurring
	hour, minute int
	tz           string
	entryID      cron.EntryID

	// one-shot
	fireAt time.Time
	timer  *time.Timer
	done   bool
}

// JobInfo is an exported snapshot of one job, for status output and the
// janitor sweep.
type JobInfo struct {
	Key       JobKey
	Hour      int
	Minute    int
	TZ        string
	FireAt    time.Time // zero for recurring jobs
	NextRun   time.Time
	CreatedAt time.Time
	Done      bool
}

func NewStore(log *zap.Logger) *Store {
	return &Store{
		log:  log,
		cron: cron.New(),
		jobs: make(map[JobKey]*job),
		now:  time.Now,
	}
}

// Start begins trigger dispatch. Jobs may be added before or after.
func (s *Store) Start() { s.cron.Start() }

// Stop halts trigger dispatch and waits for running callbacks, recurring and
// one-shot alike, to finish. Pending one-shot timers are cancelled.
func (s *Store) Stop() {
	<-s.cron.Stop().Done()

	s.mu.Lock()
	for _, j := range s.jobs {
		// Stop reports true only when it prevented the firing; a false
		// return means the callback is running or done and will balance
		// the wait group itself.
		if j.timer != nil && j.timer.Stop() {
			s.oneShot.Done()
		}
	}
	s.mu.Unlock()

	s.oneShot.Wait()
}

// AddRecurring registers a daily trigger at hour:minute in the named
// timezone. An existing job under the same key is replaced, which is what
// makes re-registration idempotent.
func (s *Store) AddRecurring(key JobKey, hour, minute int, tz string, fn func()) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: hour=%d minute=%d", ErrBadTrigger, hour, minute)
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("%w: timezone %q", ErrBadTrigger, tz)
	}

	spec := fmt.Sprintf("CRON_TZ=%s %d %d * * *", tz, minute, hour)

	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(spec, s.guard(key, fn))
	if err != nil {
		return fmt.Errorf("add cron trigger: %w", err)
	}

	if old, ok := s.jobs[key]; ok {
		s.cron.Remove(old.entryID)
	}
	s.jobs[key] = &job{
		key:       key,
		createdAt: s.now(),
		hour:      hour,
		minute:    minute,
		tz:        tz,
		entryID:   entryID,
	}
	return nil
}

// AddOneShot registers a job firing once at fireAt. Duplicate keys are an
// error. A fire time already past fires immediately when within the misfire
// grace window and is rejected beyond it.
func (s *Store) AddOneShot(key JobKey, fireAt time.Time, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, key)
	}

	delay := fireAt.Sub(s.now())
	if delay < 0 {
		if -delay > misfireGrace {
			return fmt.Errorf("%w: %s was due %s ago", ErrPastFireTime, key, -delay)
		}
		delay = 0
	}

	j := &job{
		key:       key,
		createdAt: s.now(),
		fireAt:    fireAt,
	}
	wrapped := s.guard(key, fn)
	s.oneShot.Add(1)
	j.timer = time.AfterFunc(delay, func() {
		defer s.oneShot.Done()
		wrapped()
		s.complete(key)
	})
	s.jobs[key] = j
	return nil
}

// complete retires a fired one-shot job from the table.
func (s *Store) complete(key JobKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[key]; ok {
		j.done = true
		delete(s.jobs, key)
	}
}

// Remove deletes a job if present and reports whether it was.
func (s *Store) Remove(key JobKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[key]
	if !ok {
		return false
	}
	if j.key.Kind == KindRecurring {
		s.cron.Remove(j.entryID)
	} else if j.timer != nil && j.timer.Stop() {
		s.oneShot.Done()
	}
	delete(s.jobs, key)
	return true
}

// Get returns a snapshot of the job under key.
func (s *Store) Get(key JobKey) (JobInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[key]
	if !ok {
		return JobInfo{}, false
	}
	return s.info(j), true
}

// List snapshots every job in the table.
func (s *Store) List() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, s.info(j))
	}
	return out
}

// UserJobs snapshots the jobs belonging to one user, matched on the
// structured key, not on identifier strings.
func (s *Store) UserJobs(userID int64) []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []JobInfo
	for _, j := range s.jobs {
		if j.key.UserID == userID {
			out = append(out, s.info(j))
		}
	}
	return out
}

// Counts returns total, recurring and one-shot job counts.
func (s *Store) Counts() (total, recurring, oneShot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.key.Kind == KindRecurring {
			recurring++
		} else {
			oneShot++
		}
	}
	return len(s.jobs), recurring, oneShot
}

// info builds a JobInfo; caller holds the mutex.
func (s *Store) info(j *job) JobInfo {
	inf := JobInfo{
		Key:       j.key,
		Hour:      j.hour,
		Minute:    j.minute,
		TZ:        j.tz,
		FireAt:    j.fireAt,
		CreatedAt: j.createdAt,
		Done:      j.done,
	}
	if j.key.Kind == KindRecurring {
		inf.NextRun = s.cron.Entry(j.entryID).Next
	} else {
		inf.NextRun = j.fireAt
	}
	return inf
}

// guard wraps a job callback so a panic is logged instead of killing the
// process or, for recurring jobs, poisoning future firings.
func (s *Store) guard(key JobKey, fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("job callback panicked",
					zap.String("job", key.String()),
					zap.Any("panic", r),
				)
			}
		}()
		fn()
	}
}
