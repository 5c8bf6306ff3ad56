package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

var _ Repo = (*SQLiteRepo)(nil)

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- profiles ---

// notifyColumns splits a profile's notification times into the three fixed
// columns; missing entries become empty strings.
func notifyColumns(times []string) (m, d, e string) {
	if len(times) > 0 {
		m = times[0]
	}
	if len(times) > 1 {
		d = times[1]
	}
	if len(times) > 2 {
		e = times[2]
	}
	return m, d, e
}

// UpsertProfile inserts or updates a user's profile by user_id.
func (r *SQLiteRepo) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	if p == nil {
		return errors.New("nil profile")
	}

	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	nm, nd, ne := notifyColumns(p.NotificationTimes)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (
			user_id, first_name, gender, age, height_cm, weight_kg,
			activity_level, bedtime, wakeup, tz, habits,
			notify_morning, notify_day, notify_evening, custom_times, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			first_name     = excluded.first_name,
			gender         = excluded.gender,
			age            = excluded.age,
			height_cm      = excluded.height_cm,
			weight_kg      = excluded.weight_kg,
			activity_level = excluded.activity_level,
			bedtime        = excluded.bedtime,
			wakeup         = excluded.wakeup,
			tz             = excluded.tz,
			habits         = excluded.habits,
			notify_morning = excluded.notify_morning,
			notify_day     = excluded.notify_day,
			notify_evening = excluded.notify_evening,
			custom_times   = excluded.custom_times`,
		p.UserID, p.FirstName, p.Gender, p.Age, p.HeightCm, p.WeightKg,
		p.ActivityLevel, p.Bedtime, p.Wakeup, p.Timezone, strings.Join(p.Habits, ","),
		nm, nd, ne, boolToInt(p.CustomTimes), created.Unix(),
	)
	return err
}

const profileColumns = `user_id, first_name, gender, age, height_cm, weight_kg,
	activity_level, bedtime, wakeup, tz, habits,
	notify_morning, notify_day, notify_evening, custom_times, created_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.Profile, error) {
	var (
		p          domain.Profile
		habits     string
		nm, nd, ne string
		customInt  int
		createdAt  int64
	)
	err := row.Scan(
		&p.UserID, &p.FirstName, &p.Gender, &p.Age, &p.HeightCm, &p.WeightKg,
		&p.ActivityLevel, &p.Bedtime, &p.Wakeup, &p.Timezone, &habits,
		&nm, &nd, &ne, &customInt, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if habits != "" {
		p.Habits = strings.Split(habits, ",")
	}
	if nm != "" || nd != "" || ne != "" {
		p.NotificationTimes = []string{nm, nd, ne}
	}
	p.CustomTimes = customInt != 0
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

// GetProfile returns a user's profile or ErrNotFound.
func (r *SQLiteRepo) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListProfiles returns every registered profile, used to rebuild the job
// table after a restart.
func (r *SQLiteRepo) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *p)
	}
	return res, rows.Err()
}

// DeleteProfile removes the profile; entries and summaries cascade.
func (r *SQLiteRepo) DeleteProfile(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- entries ---

const entryColumns = `id, user_id, entry_date, period, status, snooze_count,
	mood, energy, stress, sleep_quality, satisfaction, woke_on_time,
	conditional, reflection, notes, completed_at`

func scanEntry(row interface{ Scan(...any) error }) (*domain.Entry, error) {
	var (
		e              domain.Entry
		period, status string

		mood, energy, stress, sleepQ, satisf sql.NullInt64
		wokeOnTime, completedAt              sql.NullInt64
	)
	err := row.Scan(
		&e.ID, &e.UserID, &e.Date, &period, &status, &e.SnoozeCount,
		&mood, &energy, &stress, &sleepQ, &satisf, &wokeOnTime,
		&e.Conditional, &e.Reflection, &e.Notes, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Period = domain.Period(period)
	e.Status = domain.EntryStatus(status)
	e.Mood = fromNullInt(mood)
	e.Energy = fromNullInt(energy)
	e.Stress = fromNullInt(stress)
	e.SleepQuality = fromNullInt(sleepQ)
	e.Satisfaction = fromNullInt(satisf)
	e.WokeOnTime = fromNullBool(wokeOnTime)
	e.CompletedAt = fromNullInt64(completedAt)
	return &e, nil
}

// GetEntry returns the check-in entry for (user, date, period) or ErrNotFound.
func (r *SQLiteRepo) GetEntry(ctx context.Context, userID int64, date string, period domain.Period) (*domain.Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE user_id = ? AND entry_date = ? AND period = ?`,
		userID, date, string(period))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// EnsureEntry returns the entry for (user, date, period), creating a pending
// one when absent.
func (r *SQLiteRepo) EnsureEntry(ctx context.Context, userID int64, date string, period domain.Period) (*domain.Entry, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (user_id, entry_date, period, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, entry_date, period) DO NOTHING`,
		userID, date, string(period), string(domain.EntryPending))
	if err != nil {
		return nil, err
	}
	return r.GetEntry(ctx, userID, date, period)
}

// SaveEntry upserts the full entry row by its (user, date, period) key.
func (r *SQLiteRepo) SaveEntry(ctx context.Context, e *domain.Entry) error {
	if e == nil {
		return errors.New("nil entry")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (
			user_id, entry_date, period, status, snooze_count,
			mood, energy, stress, sleep_quality, satisfaction, woke_on_time,
			conditional, reflection, notes, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, entry_date, period) DO UPDATE SET
			status        = excluded.status,
			snooze_count  = excluded.snooze_count,
			mood          = excluded.mood,
			energy        = excluded.energy,
			stress        = excluded.stress,
			sleep_quality = excluded.sleep_quality,
			satisfaction  = excluded.satisfaction,
			woke_on_time  = excluded.woke_on_time,
			conditional   = excluded.conditional,
			reflection    = excluded.reflection,
			notes         = excluded.notes,
			completed_at  = excluded.completed_at`,
		e.UserID, e.Date, string(e.Period), string(e.Status), e.SnoozeCount,
		toNullInt(e.Mood), toNullInt(e.Energy), toNullInt(e.Stress),
		toNullInt(e.SleepQuality), toNullInt(e.Satisfaction), toNullBool(e.WokeOnTime),
		e.Conditional, e.Reflection, e.Notes, toNullInt64(e.CompletedAt),
	)
	return err
}

// MarkSent moves a pending entry to the sent state; entries that already
// progressed further keep their state.
func (r *SQLiteRepo) MarkSent(ctx context.Context, userID int64, date string, period domain.Period) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE entries SET status = ?
		WHERE user_id = ? AND entry_date = ? AND period = ? AND status = ?`,
		string(domain.EntrySent), userID, date, string(period), string(domain.EntryPending))
	return err
}

// IncrementSnooze bumps the snooze counter and returns the current count.
// Completed and skipped entries are left untouched.
func (r *SQLiteRepo) IncrementSnooze(ctx context.Context, entryID int64) (int, error) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE entries SET snooze_count = snooze_count + 1, status = ?
		WHERE id = ? AND status NOT IN (?, ?)`,
		string(domain.EntrySnoozed), entryID,
		string(domain.EntryCompleted), string(domain.EntrySkipped))
	if err != nil {
		return 0, err
	}
	var count int
	err = r.db.QueryRowContext(ctx,
		`SELECT snooze_count FROM entries WHERE id = ?`, entryID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return count, err
}

// MarkCompleted stamps the entry completed now.
func (r *SQLiteRepo) MarkCompleted(ctx context.Context, entryID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE entries SET status = ?, completed_at = ?
		WHERE id = ?`,
		string(domain.EntryCompleted), time.Now().UTC().Unix(), entryID)
	return err
}

// MarkSkipped records the user's explicit skip. A completed entry stays
// completed.
func (r *SQLiteRepo) MarkSkipped(ctx context.Context, entryID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE entries SET status = ? WHERE id = ? AND status NOT IN (?, ?)`,
		string(domain.EntrySkipped), entryID,
		string(domain.EntryCompleted), string(domain.EntrySkipped))
	return err
}

// ListWeekEntries returns all entries for the 7 days starting at weekStart
// (YYYY-MM-DD), ordered by date then period.
func (r *SQLiteRepo) ListWeekEntries(ctx context.Context, userID int64, weekStart string) ([]domain.Entry, error) {
	start, err := time.Parse("2006-01-02", weekStart)
	if err != nil {
		return nil, fmt.Errorf("week start: %w", err)
	}
	end := start.AddDate(0, 0, 7).Format("2006-01-02")

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE user_id = ? AND entry_date >= ? AND entry_date < ?
		ORDER BY entry_date, period`,
		userID, weekStart, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *e)
	}
	return res, rows.Err()
}

// WeeklyStats aggregates the week's completed check-ins.
func (r *SQLiteRepo) WeeklyStats(ctx context.Context, userID int64, weekStart string) (*domain.WeeklyStats, error) {
	entries, err := r.ListWeekEntries(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}

	stats := &domain.WeeklyStats{}
	days := make(map[string]bool)
	var moods, energies, stresses, sleeps []int

	for _, e := range entries {
		if e.Status != domain.EntryCompleted {
			continue
		}
		stats.TotalCheckins++
		days[e.Date] = true
		switch e.Period {
		case domain.PeriodMorning:
			stats.MorningCount++
		case domain.PeriodDay:
			stats.DayCount++
		case domain.PeriodEvening:
			stats.EveningCount++
		}
		if e.Mood != nil {
			moods = append(moods, *e.Mood)
		}
		if e.Energy != nil {
			energies = append(energies, *e.Energy)
		}
		if e.Stress != nil {
			stresses = append(stresses, *e.Stress)
		}
		if e.SleepQuality != nil {
			sleeps = append(sleeps, *e.SleepQuality)
		}
	}
	stats.CompletedDays = len(days)
	stats.AvgMood = avg(moods)
	stats.AvgEnergy = avg(energies)
	stats.AvgStress = avg(stresses)
	stats.AvgSleepQuality = avg(sleeps)
	return stats, nil
}

func avg(vals []int) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	// round to two decimals, matching the report formatting
	a := float64(int(float64(sum)/float64(len(vals))*100+0.5)) / 100
	return &a
}

// --- weekly summaries ---

// CreateSummary inserts a weekly digest; a second digest for the same week
// replaces the first.
func (r *SQLiteRepo) CreateSummary(ctx context.Context, s *domain.WeeklySummary) error {
	if s == nil {
		return errors.New("nil summary")
	}
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO weekly_summaries (user_id, week_start, completed_days, avg_mood, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, week_start) DO UPDATE SET
			completed_days = excluded.completed_days,
			avg_mood       = excluded.avg_mood,
			summary        = excluded.summary`,
		s.UserID, s.WeekStart, s.CompletedDays, toNullFloat(s.AvgMood), s.Summary, created.Unix(),
	)
	return err
}

// ListSummaries returns the most recent weekly digests, newest first.
func (r *SQLiteRepo) ListSummaries(ctx context.Context, userID int64, limit int) ([]domain.WeeklySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, week_start, completed_days, avg_mood, summary, created_at
		FROM weekly_summaries
		WHERE user_id = ?
		ORDER BY week_start DESC
		LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.WeeklySummary
	for rows.Next() {
		var (
			s         domain.WeeklySummary
			mood      sql.NullFloat64
			createdAt int64
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.WeekStart, &s.CompletedDays, &mood, &s.Summary, &createdAt); err != nil {
			return nil, err
		}
		s.AvgMood = fromNullFloat(mood)
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		res = append(res, s)
	}
	return res, rows.Err()
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
