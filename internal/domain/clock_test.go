package domain

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		h, m int
	}{
		{"23:30", 23, 30},
		{"7:05", 7, 5},
		{"07.05", 7, 5},
		{"07-05", 7, 5},
		{"07 05", 7, 5},
		{"24:00", 0, 0},
		{" 09:15 ", 9, 15},
	}
	for _, c := range cases {
		h, m, err := ParseClock(c.in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", c.in, err)
		}
		if h != c.h || m != c.m {
			t.Fatalf("%q: want %02d:%02d, got %02d:%02d", c.in, c.h, c.m, h, m)
		}
	}
}

func TestParseClock_Rejects(t *testing.T) {
	for _, in := range []string{"", "25:00", "24:30", "12:60", "noon", "1230", "12:3"} {
		if _, _, err := ParseClock(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	got, err := NormalizeClock("7.5")
	if err == nil {
		t.Fatalf("single-digit minutes should be rejected, got %q", got)
	}
	got, err = NormalizeClock("7.45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "07:45" {
		t.Fatalf("want 07:45, got %s", got)
	}
}
