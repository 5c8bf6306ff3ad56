package domain

import (
	"fmt"
)

// Sleep-schedule bounds, inclusive.
const (
	MinSleepHours = 4
	MaxSleepHours = 12
)

// Offsets for the default notification times relative to the user's sleep
// schedule: morning an hour after waking, day mid-afternoon, evening two
// hours before bed.
const (
	morningOffsetMin = 1 * 60
	dayOffsetMin     = 7 * 60
	eveningOffsetMin = -2 * 60
)

const minutesPerDay = 24 * 60

// SleepDuration returns the sleep duration in hours for a bedtime and wake-up
// time given as HH:MM clock strings. A wake-up at or before the bedtime on
// the clock is treated as the following day, so 23:00 -> 07:00 is 8 hours.
func SleepDuration(bedtime, wakeup string) (float64, error) {
	bedM, err := clockMinutes(bedtime)
	if err != nil {
		return 0, fmt.Errorf("bedtime: %w", err)
	}
	wakeM, err := clockMinutes(wakeup)
	if err != nil {
		return 0, fmt.Errorf("wakeup: %w", err)
	}
	if wakeM <= bedM {
		wakeM += minutesPerDay
	}
	return float64(wakeM-bedM) / 60, nil
}

// ValidateSleepSchedule checks that the sleep duration falls inside the
// closed [MinSleepHours, MaxSleepHours] interval. The returned error carries
// the computed duration so handlers can surface it to the user.
func ValidateSleepSchedule(bedtime, wakeup string) error {
	d, err := SleepDuration(bedtime, wakeup)
	if err != nil {
		return err
	}
	if d < MinSleepHours {
		return fmt.Errorf("sleep duration (%.1fh) is too short: minimum %d hours", d, MinSleepHours)
	}
	if d > MaxSleepHours {
		return fmt.Errorf("sleep duration (%.1fh) is too long: maximum %d hours", d, MaxSleepHours)
	}
	return nil
}

// DefaultNotificationTimes derives the three default check-in times from the
// user's wake-up time and bedtime: wake+1h, wake+7h and bed-2h, in Periods
// order. The evening slot is compared against the wake-up time as a bare
// clock value; when it sorts earlier it is read as belonging to the next
// calendar day. On a daily repeating trigger that interpretation changes
// nothing about the fired wall-clock time, and it can misjudge very unusual
// schedules (wake-up late in the day).
func DefaultNotificationTimes(wakeup, bedtime string) ([]string, error) {
	wakeM, err := clockMinutes(wakeup)
	if err != nil {
		return nil, fmt.Errorf("wakeup: %w", err)
	}
	bedM, err := clockMinutes(bedtime)
	if err != nil {
		return nil, fmt.Errorf("bedtime: %w", err)
	}

	wrap := func(m int) int { return ((m % minutesPerDay) + minutesPerDay) % minutesPerDay }

	morning := wrap(wakeM + morningOffsetMin)
	day := wrap(wakeM + dayOffsetMin)
	evening := wrap(bedM + eveningOffsetMin)

	return []string{
		FormatClock(morning/60, morning%60),
		FormatClock(day/60, day%60),
		FormatClock(evening/60, evening%60),
	}, nil
}
