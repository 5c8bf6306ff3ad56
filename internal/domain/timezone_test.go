package domain

import "testing"

func TestNormalizeTimezone(t *testing.T) {
	cases := map[string]string{
		"Europe/Kyiv": "Europe/Kyiv",
		"kyiv":        "Europe/Kyiv",
		"KYIV":        "Europe/Kyiv",
		"new york":    "America/New_York",
		"utc":         "UTC",
		" Tokyo ":     "Asia/Tokyo",
	}
	for in, want := range cases {
		got, err := NormalizeTimezone(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: want %s, got %s", in, want, got)
		}
	}
}

func TestNormalizeTimezone_Rejects(t *testing.T) {
	for _, in := range []string{"", "Atlantis/Lost", "not a zone"} {
		if _, err := NormalizeTimezone(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestTimezoneForLocale(t *testing.T) {
	if got := TimezoneForLocale("uk"); got != "Europe/Kyiv" {
		t.Fatalf("uk: got %s", got)
	}
	if got := TimezoneForLocale("de"); got != "Europe/Berlin" {
		t.Fatalf("de: got %s", got)
	}
	if got := TimezoneForLocale("xx"); got != DefaultTimezone {
		t.Fatalf("unknown locale should fall back to UTC, got %s", got)
	}
}
