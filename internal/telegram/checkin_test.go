package telegram

import (
	"testing"
	"time"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

func rp(v int) *int { return &v }

func TestConditionalTrigger(t *testing.T) {
	tests := []struct {
		name string
		e    domain.Entry
		prev *domain.Entry
		want string
		ok   bool
	}{
		{
			name: "morning all perfect",
			e:    domain.Entry{Period: domain.PeriodMorning, Mood: rp(5), Energy: rp(5), SleepQuality: rp(5)},
			want: "all_perfect", ok: true,
		},
		{
			name: "morning poor sleep",
			e:    domain.Entry{Period: domain.PeriodMorning, Mood: rp(4), Energy: rp(4), SleepQuality: rp(2)},
			want: "sleep_low", ok: true,
		},
		{
			name: "day low mood",
			e:    domain.Entry{Period: domain.PeriodDay, Mood: rp(2), Energy: rp(3), Stress: rp(3)},
			want: "mood_low", ok: true,
		},
		{
			name: "day high stress",
			e:    domain.Entry{Period: domain.PeriodDay, Mood: rp(3), Energy: rp(3), Stress: rp(4)},
			want: "stress_high", ok: true,
		},
		{
			name: "day all perfect",
			e:    domain.Entry{Period: domain.PeriodDay, Mood: rp(5), Energy: rp(5), Stress: rp(1)},
			want: "all_perfect", ok: true,
		},
		{
			name: "evening low satisfaction",
			e:    domain.Entry{Period: domain.PeriodEvening, Satisfaction: rp(2), Mood: rp(3), Stress: rp(3)},
			want: "satisfaction_low", ok: true,
		},
		{
			name: "evening all perfect without energy",
			e:    domain.Entry{Period: domain.PeriodEvening, Satisfaction: rp(5), Mood: rp(5), Stress: rp(1)},
			want: "all_perfect", ok: true,
		},
		{
			name: "mood drop against morning",
			e:    domain.Entry{Period: domain.PeriodDay, Mood: rp(3), Energy: rp(3), Stress: rp(3)},
			prev: &domain.Entry{Period: domain.PeriodMorning, Mood: rp(5)},
			want: "mood_drop", ok: true,
		},
		{
			name: "stress spike against missing prev stress",
			e:    domain.Entry{Period: domain.PeriodEvening, Satisfaction: rp(3), Mood: rp(3), Stress: rp(3)},
			prev: &domain.Entry{Period: domain.PeriodDay},
			// prev stress defaults to neutral 3, delta 0
			ok: false,
		},
		{
			name: "steady ratings no question",
			e:    domain.Entry{Period: domain.PeriodDay, Mood: rp(4), Energy: rp(3), Stress: rp(2)},
			prev: &domain.Entry{Period: domain.PeriodMorning, Mood: rp(4), Energy: rp(3)},
			ok:   false,
		},
		{
			name: "unanswered ratings never trigger low",
			e:    domain.Entry{Period: domain.PeriodMorning},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := conditionalTrigger(&tt.e, tt.prev)
			if ok != tt.ok || got != tt.want {
				t.Errorf("conditionalTrigger() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
			if ok {
				if qs := questionBank(tt.e.Period)[got]; len(qs) == 0 {
					t.Errorf("no question bank entry for trigger %q in period %s", got, tt.e.Period)
				}
			}
		})
	}
}

func TestCheckinKeyboardSnoozeSuppression(t *testing.T) {
	buttons := func(snoozeCount int) []string {
		kb := checkinKeyboard(domain.PeriodMorning, snoozeCount, 2, 15*time.Minute)
		var out []string
		for _, row := range kb.InlineKeyboard {
			for _, btn := range row {
				out = append(out, *btn.CallbackData)
			}
		}
		return out
	}

	fresh := buttons(0)
	if len(fresh) != 3 {
		t.Fatalf("fresh keyboard has %d buttons, want start+snooze+skip", len(fresh))
	}
	if fresh[1] != "snooze:morning" {
		t.Errorf("second button = %s, want snooze:morning", fresh[1])
	}

	spent := buttons(2)
	if len(spent) != 2 {
		t.Fatalf("exhausted keyboard has %d buttons, want start+skip", len(spent))
	}
	for _, data := range spent {
		if data == "snooze:morning" {
			t.Error("snooze button offered after budget spent")
		}
	}
	if spent[len(spent)-1] != "skip:morning" {
		t.Errorf("last button = %s, want skip:morning", spent[len(spent)-1])
	}
}

func TestCheckinKeyboardStartButtons(t *testing.T) {
	for period, want := range map[domain.Period]string{
		domain.PeriodMorning: "start:morning",
		domain.PeriodDay:     "start:day",
		domain.PeriodEvening: "start:evening",
	} {
		kb := checkinKeyboard(period, 0, 2, 15*time.Minute)
		if got := *kb.InlineKeyboard[0][0].CallbackData; got != want {
			t.Errorf("%s start button = %s, want %s", period, got, want)
		}
	}
}

func TestCheckinKeyboardSnoozeLabelTracksDelay(t *testing.T) {
	kb := checkinKeyboard(domain.PeriodDay, 0, 2, 20*time.Minute)
	if got := kb.InlineKeyboard[1][0].Text; got != "⏰ Remind me later (20 min)" {
		t.Errorf("snooze label = %q", got)
	}
	if got := snoozeWording(20 * time.Minute); got != "20 minutes" {
		t.Errorf("snoozeWording = %q", got)
	}
	if got := snoozeWording(time.Minute); got != "1 minute" {
		t.Errorf("snoozeWording(1m) = %q", got)
	}
}
