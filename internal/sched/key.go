package sched

import (
	"fmt"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

// JobKind separates the two job classes the store manages.
type JobKind uint8

const (
	// KindRecurring is a daily cron trigger, one per (user, period).
	KindRecurring JobKind = iota
	// KindOneShot is a snooze reminder firing once at an absolute instant.
	KindOneShot
)

// JobKey identifies a job structurally. Recurring keys carry a zero nonce and
// collide on purpose: re-registering a (user, period) replaces the old job.
// One-shot keys append the creation epoch second so repeated snoozes for the
// same period never collide.
type JobKey struct {
	Kind   JobKind
	UserID int64
	Period domain.Period
	Nonce  int64
}

// RecurringKey builds the deterministic key for a user's period slot.
func RecurringKey(userID int64, period domain.Period) JobKey {
	return JobKey{Kind: KindRecurring, UserID: userID, Period: period}
}

// OneShotKey builds a unique key for a snooze reminder.
func OneShotKey(userID int64, period domain.Period, nonce int64) JobKey {
	return JobKey{Kind: KindOneShot, UserID: userID, Period: period, Nonce: nonce}
}

// String renders the key in its diagnostic form, used in logs and the /jobs
// command. Lookups always go through the struct key, never this string.
func (k JobKey) String() string {
	if k.Kind == KindOneShot {
		return fmt.Sprintf("onetime:%d:%s:%d", k.UserID, k.Period, k.Nonce)
	}
	return fmt.Sprintf("notif:%d:%s", k.UserID, k.Period)
}
