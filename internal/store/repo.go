package store

import (
	"context"
	"errors"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

// ErrNotFound is returned for lookups that match no row.
var ErrNotFound = errors.New("not found")

// Repo defines storage operations for profiles, daily check-in entries and
// weekly summaries.
type Repo interface {
	UpsertProfile(ctx context.Context, p *domain.Profile) error
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	DeleteProfile(ctx context.Context, userID int64) error

	// EnsureEntry returns the entry for (user, date, period), creating a
	// pending one when absent.
	EnsureEntry(ctx context.Context, userID int64, date string, period domain.Period) (*domain.Entry, error)
	GetEntry(ctx context.Context, userID int64, date string, period domain.Period) (*domain.Entry, error)
	SaveEntry(ctx context.Context, e *domain.Entry) error
	MarkSent(ctx context.Context, userID int64, date string, period domain.Period) error
	// IncrementSnooze bumps the entry's snooze counter, moves it to the
	// snoozed state and returns the new count.
	IncrementSnooze(ctx context.Context, entryID int64) (int, error)
	MarkCompleted(ctx context.Context, entryID int64) error
	MarkSkipped(ctx context.Context, entryID int64) error

	ListWeekEntries(ctx context.Context, userID int64, weekStart string) ([]domain.Entry, error)
	WeeklyStats(ctx context.Context, userID int64, weekStart string) (*domain.WeeklyStats, error)

	CreateSummary(ctx context.Context, s *domain.WeeklySummary) error
	ListSummaries(ctx context.Context, userID int64, limit int) ([]domain.WeeklySummary, error)

	Close() error
}
