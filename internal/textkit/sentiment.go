package textkit

import "strings"

// Sentiment labels returned by AnalyzeSentiment.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

var positiveKeywords = []string{
	"good", "great", "excellent", "happy", "joy", "wonderful", "amazing",
	"love", "beautiful", "peaceful", "relaxed", "proud", "grateful",
	"blessed", "lucky", "excited", "hopeful", "optimistic", "satisfied",
	"pleased", "delighted", "fantastic", "perfect", "better", "improved",
}

var negativeKeywords = []string{
	"bad", "terrible", "awful", "sad", "depressed", "anxious", "worried",
	"stressed", "angry", "frustrated", "upset", "disappointed", "tired",
	"exhausted", "overwhelmed", "hopeless", "miserable", "unhappy", "worse",
	"horrible", "difficult", "struggling", "painful", "hard",
}

var negationWords = map[string]bool{
	"not": true, "no": true, "never": true, "none": true, "nobody": true,
	"nothing": true, "neither": true, "nowhere": true, "hardly": true,
	"barely": true, "scarcely": true, "don't": true, "doesn't": true,
	"didn't": true, "won't": true, "wouldn't": true, "shouldn't": true,
	"can't": true, "cannot": true,
}

// negatedBefore reports whether any of the 3 words preceding the keyword's
// first occurrence is a negation ("not happy", "didn't sleep well").
func negatedBefore(textLower, keyword string) bool {
	pos := strings.Index(textLower, keyword)
	if pos < 0 {
		return false
	}
	words := strings.Fields(textLower[:pos])
	if len(words) > 3 {
		words = words[len(words)-3:]
	}
	for _, w := range words {
		if negationWords[strings.Trim(w, ".,!?;:")] {
			return true
		}
	}
	return false
}

func sentimentCounts(text string) (pos, neg int) {
	textLower := strings.ToLower(text)
	for _, w := range positiveKeywords {
		if !strings.Contains(textLower, w) {
			continue
		}
		if negatedBefore(textLower, w) {
			neg++ // "not happy" reads negative
		} else {
			pos++
		}
	}
	for _, w := range negativeKeywords {
		if !strings.Contains(textLower, w) {
			continue
		}
		if negatedBefore(textLower, w) {
			pos++ // "not bad" reads positive
		} else {
			neg++
		}
	}
	return pos, neg
}

// AnalyzeSentiment classifies free-form text as positive, negative or
// neutral using keyword counts with negation handling.
func AnalyzeSentiment(text string) string {
	if len(strings.TrimSpace(text)) < 3 {
		return SentimentNeutral
	}
	pos, neg := sentimentCounts(text)
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// SentimentScore maps text onto [-1, 1]; 0 when no sentiment keyword hits.
func SentimentScore(text string) float64 {
	if len(strings.TrimSpace(text)) < 3 {
		return 0
	}
	pos, neg := sentimentCounts(text)
	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total)
}
