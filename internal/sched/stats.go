package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats holds process-wide scheduler counters. They are diagnostic only:
// increments are plain atomics and readers may observe mid-operation values.
// Counters reset on demand and are lost on restart.
type Stats struct {
	remindersSent   atomic.Int64
	remindersFailed atomic.Int64
	jobsCreated     atomic.Int64
	jobsRemoved     atomic.Int64

	mu          sync.Mutex
	lastCleanup time.Time
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	RemindersSent   int64
	RemindersFailed int64
	JobsCreated     int64
	JobsRemoved     int64
	LastCleanup     time.Time
}

func (s *Stats) addSent()         { s.remindersSent.Add(1) }
func (s *Stats) addFailed()       { s.remindersFailed.Add(1) }
func (s *Stats) addCreated()      { s.jobsCreated.Add(1) }
func (s *Stats) addRemoved(n int) { s.jobsRemoved.Add(int64(n)) }

func (s *Stats) setLastCleanup(t time.Time) {
	s.mu.Lock()
	s.lastCleanup = t
	s.mu.Unlock()
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	last := s.lastCleanup
	s.mu.Unlock()
	return StatsSnapshot{
		RemindersSent:   s.remindersSent.Load(),
		RemindersFailed: s.remindersFailed.Load(),
		JobsCreated:     s.jobsCreated.Load(),
		JobsRemoved:     s.jobsRemoved.Load(),
		LastCleanup:     last,
	}
}

// Reset zeroes the counters. The last-cleanup timestamp survives a reset.
func (s *Stats) Reset() {
	s.remindersSent.Store(0)
	s.remindersFailed.Store(0)
	s.jobsCreated.Store(0)
	s.jobsRemoved.Store(0)
}
