package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrBadClock = errors.New("invalid time, expected HH:MM")

// Users type times with whatever separator their keyboard offers, so accept
// ":", ".", "-" and a single space. "24:00" normalizes to "00:00".
var clockRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-4])[\s.\-:]([0-5][0-9])$`)

// ParseClock parses a local clock time like "23:30" into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour == 24 {
		if minute != 0 {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
		}
		hour = 0
	}
	return hour, minute, nil
}

// NormalizeClock reformats a user-typed time as canonical "HH:MM".
func NormalizeClock(s string) (string, error) {
	h, m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(h, m), nil
}

// FormatClock renders hour and minute as "HH:MM".
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// clockMinutes returns minutes since midnight for a valid HH:MM string.
func clockMinutes(s string) (int, error) {
	h, m, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	return h*60 + m, nil
}
