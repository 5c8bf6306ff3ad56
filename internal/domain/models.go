package domain

import "time"

// Profile bounds for registration input.
const (
	AgeMin    = 11
	AgeMax    = 109
	HeightMin = 100
	HeightMax = 280
	WeightMin = 30
	WeightMax = 300
)

var (
	Genders        = []string{"Male", "Female"}
	ActivityLevels = []string{"Low", "Medium", "High"}
	Habits         = []string{"Water", "Activity", "Meditation", "Medication"}
)

// Profile is a user's registration record. NotificationTimes holds exactly
// three HH:MM entries in Periods order once scheduling has been set up; an
// empty slice means the user is not scheduled yet.
type Profile struct {
	UserID            int64
	FirstName         string
	Gender            string
	Age               int
	HeightCm          int
	WeightKg          float64
	ActivityLevel     string
	Bedtime           string // HH:MM
	Wakeup            string // HH:MM
	Timezone          string // IANA name
	Habits            []string
	NotificationTimes []string
	CustomTimes       bool
	CreatedAt         time.Time
}

// Scheduled reports whether the profile carries a complete notification
// schedule.
func (p *Profile) Scheduled() bool {
	return len(p.NotificationTimes) == len(Periods)
}

// EntryStatus tracks one check-in slot through its day. Transitions:
// pending -> sent -> snoozed (snooze count on the entry) -> completed or
// skipped. Completed and skipped are terminal.
type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntrySent      EntryStatus = "sent"
	EntrySnoozed   EntryStatus = "snoozed"
	EntryCompleted EntryStatus = "completed"
	EntrySkipped   EntryStatus = "skipped"
)

// Terminal reports whether the entry can no longer change.
func (s EntryStatus) Terminal() bool {
	return s == EntryCompleted || s == EntrySkipped
}

// Entry is one check-in record for (user, date, period). Rating pointers are
// nil until the corresponding question was answered.
type Entry struct {
	ID           int64
	UserID       int64
	Date         string // YYYY-MM-DD, user-local
	Period       Period
	Status       EntryStatus
	SnoozeCount  int
	Mood         *int
	Energy       *int
	Stress       *int
	SleepQuality *int
	Satisfaction *int
	WokeOnTime   *bool
	Conditional  string // answer to the period's follow-up question
	Reflection   string
	Notes        string
	CompletedAt  *time.Time
}

// ValidateRating checks a 1..5 scale answer.
func ValidateRating(v int) bool {
	return v >= 1 && v <= 5
}

// WeeklyStats aggregates completed check-ins for one ISO week. Averages are
// nil when no entry of that kind was answered.
type WeeklyStats struct {
	TotalCheckins   int
	CompletedDays   int
	MorningCount    int
	DayCount        int
	EveningCount    int
	AvgMood         *float64
	AvgEnergy       *float64
	AvgStress       *float64
	AvgSleepQuality *float64
}

// WeeklySummary is a persisted end-of-week digest.
type WeeklySummary struct {
	ID            int64
	UserID        int64
	WeekStart     string // YYYY-MM-DD, Monday
	CompletedDays int
	AvgMood       *float64
	Summary       string
	CreatedAt     time.Time
}

// WeekStart returns the Monday of the week containing t, formatted as a
// date string.
func WeekStart(t time.Time) string {
	wd := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -wd).Format("2006-01-02")
}
