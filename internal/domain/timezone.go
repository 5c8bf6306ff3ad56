package domain

import (
	"errors"
	"strings"
	"time"
)

const DefaultTimezone = "UTC"

var ErrUnknownTimezone = errors.New("unknown timezone")

// City and country shorthands users actually type instead of IANA names.
var timezoneAliases = map[string]string{
	"kyiv":        "Europe/Kyiv",
	"kiev":        "Europe/Kyiv",
	"ukraine":     "Europe/Kyiv",
	"moscow":      "Europe/Moscow",
	"russia":      "Europe/Moscow",
	"london":      "Europe/London",
	"uk":          "Europe/London",
	"paris":       "Europe/Paris",
	"france":      "Europe/Paris",
	"berlin":      "Europe/Berlin",
	"germany":     "Europe/Berlin",
	"warsaw":      "Europe/Warsaw",
	"poland":      "Europe/Warsaw",
	"new york":    "America/New_York",
	"ny":          "America/New_York",
	"los angeles": "America/Los_Angeles",
	"la":          "America/Los_Angeles",
	"chicago":     "America/Chicago",
	"tokyo":       "Asia/Tokyo",
	"japan":       "Asia/Tokyo",
	"beijing":     "Asia/Shanghai",
	"china":       "Asia/Shanghai",
	"dubai":       "Asia/Dubai",
	"sydney":      "Australia/Sydney",
	"melbourne":   "Australia/Melbourne",
	"utc":         "UTC",
	"gmt":         "GMT",
}

// languageTimezones maps a Telegram client language code to a best-guess
// timezone. A lookup table, not geolocation; unknown codes fall back to UTC.
var languageTimezones = map[string]string{
	"uk": "Europe/Kyiv",
	"en": "UTC",
	"pl": "Europe/Warsaw",
	"de": "Europe/Berlin",
	"ru": "Europe/Moscow",
	"fr": "Europe/Paris",
	"es": "Europe/Madrid",
	"it": "Europe/Rome",
}

// NormalizeTimezone resolves free-text timezone input to a canonical IANA
// name. Aliases are matched case-insensitively; anything else must load from
// the system timezone database.
func NormalizeTimezone(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrUnknownTimezone
	}
	if canon, ok := timezoneAliases[strings.ToLower(s)]; ok {
		s = canon
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return "", ErrUnknownTimezone
	}
	return loc.String(), nil
}

// TimezoneForLocale guesses a timezone from a client language code.
func TimezoneForLocale(languageCode string) string {
	if tz, ok := languageTimezones[strings.ToLower(languageCode)]; ok {
		return tz
	}
	return DefaultTimezone
}

// CommonTimezones is the suggestion list shown when asking for manual input.
func CommonTimezones() []string {
	return []string{
		"UTC",
		"Europe/Kyiv",
		"Europe/Moscow",
		"Europe/London",
		"Europe/Paris",
		"Europe/Berlin",
		"Europe/Warsaw",
		"Europe/Rome",
		"Europe/Madrid",
		"America/New_York",
		"America/Chicago",
		"America/Los_Angeles",
		"Asia/Tokyo",
		"Asia/Shanghai",
		"Asia/Dubai",
		"Australia/Sydney",
	}
}
