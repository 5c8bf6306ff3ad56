// Package insight turns a week of check-in entries into a short coaching
// digest using an LLM, degrading to canned text when no provider is
// configured or the call fails.
package insight

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/yvasiuk/wellness-bot/internal/domain"
	"github.com/yvasiuk/wellness-bot/internal/textkit"
)

const (
	systemPrompt = "You are a compassionate wellness coach analyzing a user's weekly check-in data. Provide empathetic, actionable insights."

	fallbackSummary         = "AI insights unavailable. Keep tracking your progress!"
	fallbackRecommendations = "Continue your daily check-ins to build better patterns."
	errorSummary            = "Unable to generate insights this week. Keep tracking!"

	maxNotes    = 20
	maxNotesLen = 800
)

// Insights is the parsed result of one weekly generation.
type Insights struct {
	Summary         string
	Recommendations string
}

// Generator produces weekly insights. A nil client is valid and yields the
// fallback text.
type Generator struct {
	client Client
	log    *zap.Logger
}

func NewGenerator(log *zap.Logger, client Client) *Generator {
	return &Generator{client: client, log: log}
}

// Enabled reports whether a completion backend is configured.
func (g *Generator) Enabled() bool { return g.client != nil }

// Weekly builds the coaching prompt from the user's profile and completed
// entries, calls the backend and parses the structured reply. It never
// returns an error to the caller; failures log and fall back.
func (g *Generator) Weekly(ctx context.Context, p *domain.Profile, entries []domain.Entry) Insights {
	if g.client == nil {
		return Insights{Summary: fallbackSummary, Recommendations: fallbackRecommendations}
	}

	prompt := buildWeeklyPrompt(p, entries)
	raw, err := g.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		g.log.Warn("insight generation failed", zap.Int64("user_id", p.UserID), zap.Error(err))
		return Insights{Summary: errorSummary, Recommendations: fallbackRecommendations}
	}
	return parseInsights(raw)
}

func buildWeeklyPrompt(p *domain.Profile, entries []domain.Entry) string {
	var moods, energies, stresses, sleeps []int
	var notes []string
	var tagLists [][]string
	completed := 0

	for _, e := range entries {
		if e.Status != domain.EntryCompleted {
			continue
		}
		completed++
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
		for _, s := range []string{e.Notes, e.Conditional, e.Reflection} {
			if strings.TrimSpace(s) != "" {
				notes = append(notes, s)
				tagLists = append(tagLists, textkit.ExtractTags(s))
			}
		}
	}

	if len(notes) > maxNotes {
		notes = notes[:maxNotes]
	}
	notesText := "No notes provided"
	if len(notes) > 0 {
		notesText = strings.Join(notes, "\n")
	}
	notesText = truncate(notesText, maxNotesLen)

	habits := "None"
	if len(p.Habits) > 0 {
		habits = strings.Join(p.Habits, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**User Profile:**\n")
	fmt.Fprintf(&b, "- Age: %d\n", p.Age)
	fmt.Fprintf(&b, "- Activity Level: %s\n", p.ActivityLevel)
	fmt.Fprintf(&b, "- Tracked Habits: %s\n\n", habits)
	fmt.Fprintf(&b, "**This Week's Data:**\n")
	fmt.Fprintf(&b, "- Average Mood: %s/5\n", avgLabel(moods))
	fmt.Fprintf(&b, "- Average Energy: %s/5\n", avgLabel(energies))
	fmt.Fprintf(&b, "- Average Stress: %s/5\n", avgLabel(stresses))
	fmt.Fprintf(&b, "- Average Sleep Quality: %s/5\n", avgLabel(sleeps))
	fmt.Fprintf(&b, "- Completed Check-ins: %d\n", completed)
	fmt.Fprintf(&b, "- Recurring Themes: %s\n", themeLabel(tagLists))
	fmt.Fprintf(&b, "- Notes Sentiment: %s\n\n", textkit.AnalyzeSentiment(strings.Join(notes, " ")))
	fmt.Fprintf(&b, "**User's Recent Notes:**\n%s\n\n", notesText)
	b.WriteString(`**Task:**
1. Provide a brief 2-3 sentence summary of their week's patterns
2. Give 3 specific, actionable recommendations to improve their well-being

Keep tone warm, supportive, and practical. Focus on small, achievable changes.

Format your response as:
SUMMARY: [your summary]
RECOMMENDATIONS:
1. [recommendation 1]
2. [recommendation 2]
3. [recommendation 3]`)
	return b.String()
}

// truncate caps s at limit bytes without splitting a multi-byte rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// themeLabel renders the five most frequent note tags for the prompt.
func themeLabel(tagLists [][]string) string {
	top := textkit.TopTags(textkit.CountTags(tagLists), 5)
	if len(top) == 0 {
		return "none detected"
	}
	parts := make([]string, 0, len(top))
	for _, tc := range top {
		parts = append(parts, fmt.Sprintf("%s (x%d)", tc.Tag, tc.Count))
	}
	return strings.Join(parts, ", ")
}

func avgLabel(vals []int) string {
	if len(vals) == 0 {
		return "N/A"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.2f", float64(sum)/float64(len(vals)))
}

// parseInsights splits the model's reply on the SUMMARY/RECOMMENDATIONS
// markers; replies that ignore the format become summary-only.
func parseInsights(raw string) Insights {
	const (
		maxSummaryLen = 1500
		maxRecsLen    = 2000
	)

	var out Insights
	if strings.Contains(raw, "SUMMARY:") {
		parts := strings.SplitN(raw, "RECOMMENDATIONS:", 2)
		out.Summary = strings.TrimSpace(strings.Replace(parts[0], "SUMMARY:", "", 1))
		if len(parts) > 1 {
			out.Recommendations = strings.TrimSpace(parts[1])
		}
	} else {
		lines := strings.Split(raw, "\n")
		head := lines
		if len(head) > 3 {
			head = head[:3]
		}
		out.Summary = strings.TrimSpace(strings.Join(head, " "))
		if len(lines) > 3 {
			out.Recommendations = strings.TrimSpace(strings.Join(lines[3:], "\n"))
		}
	}

	out.Summary = truncate(out.Summary, maxSummaryLen)
	out.Recommendations = truncate(out.Recommendations, maxRecsLen)
	if out.Summary == "" {
		out.Summary = errorSummary
	}
	if out.Recommendations == "" {
		out.Recommendations = fallbackRecommendations
	}
	return out
}
