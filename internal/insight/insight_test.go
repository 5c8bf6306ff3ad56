package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/yvasiuk/wellness-bot/internal/domain"
)

type stubClient struct {
	reply string
	err   error
	// last prompt seen, for assertions
	prompt string
}

func (s *stubClient) Complete(_ context.Context, _, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func intp(v int) *int { return &v }

func weekEntries() []domain.Entry {
	return []domain.Entry{
		{Status: domain.EntryCompleted, Mood: intp(4), Energy: intp(3), Notes: "good run in the park"},
		{Status: domain.EntryCompleted, Mood: intp(2), Stress: intp(5), Conditional: "deadline at work"},
		{Status: domain.EntrySkipped, Mood: intp(1), Notes: "should not appear"},
	}
}

func TestWeeklyParsesStructuredReply(t *testing.T) {
	stub := &stubClient{reply: `SUMMARY: A mixed week with strong starts.
RECOMMENDATIONS:
1. Keep the morning runs.
2. Block focus time before deadlines.
3. Wind down earlier.`}
	g := NewGenerator(zap.NewNop(), stub)

	got := g.Weekly(context.Background(), &domain.Profile{UserID: 1, Age: 30, ActivityLevel: "Medium"}, weekEntries())

	if got.Summary != "A mixed week with strong starts." {
		t.Errorf("summary = %q", got.Summary)
	}
	if !strings.HasPrefix(got.Recommendations, "1. Keep the morning runs.") {
		t.Errorf("recommendations = %q", got.Recommendations)
	}
}

func TestWeeklyPromptContents(t *testing.T) {
	stub := &stubClient{reply: "SUMMARY: ok\nRECOMMENDATIONS:\n1. rest"}
	g := NewGenerator(zap.NewNop(), stub)

	p := &domain.Profile{UserID: 1, Age: 29, ActivityLevel: "High", Habits: []string{"Water", "Meditation"}}
	g.Weekly(context.Background(), p, weekEntries())

	for _, want := range []string{
		"Average Mood: 3.00/5",
		"Average Stress: 5.00/5",
		"Average Sleep Quality: N/A/5",
		"Completed Check-ins: 2",
		"Water, Meditation",
		"good run in the park",
		"deadline at work",
		"Recurring Themes: exercise (x1), nature (x1), work_stress (x1)",
		"Notes Sentiment: positive",
	} {
		if !strings.Contains(stub.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(stub.prompt, "should not appear") {
		t.Error("skipped entry leaked into prompt")
	}
}

func TestWeeklyNoClient(t *testing.T) {
	g := NewGenerator(zap.NewNop(), nil)
	got := g.Weekly(context.Background(), &domain.Profile{UserID: 1}, nil)
	if got.Summary != fallbackSummary || got.Recommendations != fallbackRecommendations {
		t.Errorf("fallback not used: %+v", got)
	}
	if g.Enabled() {
		t.Error("generator reports enabled without a client")
	}
}

func TestWeeklyBackendError(t *testing.T) {
	stub := &stubClient{err: errors.New("rate limited")}
	g := NewGenerator(zap.NewNop(), stub)
	got := g.Weekly(context.Background(), &domain.Profile{UserID: 1}, weekEntries())
	if got.Summary != errorSummary {
		t.Errorf("summary = %q, want error fallback", got.Summary)
	}
}

func TestParseInsightsUnformattedReply(t *testing.T) {
	got := parseInsights("The week went fine.\nSleep improved.\nMood steady.\nTry walking more.\nDrink water.")
	if got.Summary != "The week went fine. Sleep improved. Mood steady." {
		t.Errorf("summary = %q", got.Summary)
	}
	if !strings.Contains(got.Recommendations, "Try walking more.") {
		t.Errorf("recommendations = %q", got.Recommendations)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("п", 10) // 2 bytes each
	for limit := 0; limit <= len(s); limit++ {
		got := truncate(s, limit)
		if len(got) > limit {
			t.Fatalf("limit %d: got %d bytes", limit, len(got))
		}
		if !utf8.ValidString(got) {
			t.Fatalf("limit %d: split a rune: %q", limit, got)
		}
	}
	if got := truncate("short", 100); got != "short" {
		t.Errorf("under-limit string changed: %q", got)
	}
}

func TestParseInsightsTruncatesOnRuneBoundary(t *testing.T) {
	long := "SUMMARY: " + strings.Repeat("добрий тиждень ", 200)
	got := parseInsights(long)
	if len(got.Summary) > 1500 {
		t.Fatalf("summary is %d bytes", len(got.Summary))
	}
	if !utf8.ValidString(got.Summary) {
		t.Fatal("summary truncation split a rune")
	}
}

func TestNewClientProviders(t *testing.T) {
	if c, err := NewClient(ProviderConfig{Provider: "none"}); err != nil || c != nil {
		t.Errorf("none: c=%v err=%v", c, err)
	}
	if c, err := NewClient(ProviderConfig{Provider: "anthropic", APIKey: "k"}); err != nil || c == nil {
		t.Errorf("anthropic: c=%v err=%v", c, err)
	}
	if c, err := NewClient(ProviderConfig{Provider: "openai", APIKey: "k"}); err != nil || c == nil {
		t.Errorf("openai: c=%v err=%v", c, err)
	}
	if _, err := NewClient(ProviderConfig{Provider: "bard"}); err == nil {
		t.Error("unknown provider accepted")
	}
}
