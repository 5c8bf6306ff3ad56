package textkit

import (
	"sort"
	"strings"
)

// tagKeywords maps theme tags to the phrases that signal them in free-form
// check-in text. Matching is case-insensitive on whole words.
var tagKeywords = map[string][]string{
	// stress sources
	"work_stress": {
		"work", "job", "boss", "deadline", "meeting", "project", "office",
		"colleague", "presentation", "client", "overtime", "workload",
	},
	"relationship_stress": {
		"partner", "spouse", "family", "argument", "fight", "conflict",
		"relationship", "marriage", "divorce", "breakup", "parents",
	},
	"financial_stress": {
		"money", "bills", "debt", "financial", "budget", "expensive",
		"afford", "salary", "payment", "rent", "mortgage", "loan",
	},
	"health_stress": {
		"sick", "pain", "health", "doctor", "hospital", "illness",
		"injury", "medication", "headache", "backache", "anxiety",
	},
	"time_pressure": {
		"rushed", "hurry", "late", "busy", "overwhelmed", "too much",
		"no time", "behind", "deadline", "pressure", "stressed",
	},

	// positive activities
	"exercise": {
		"gym", "run", "running", "walk", "walking", "workout", "exercise",
		"sport", "yoga", "fitness", "training", "jogging", "swimming",
	},
	"social_time": {
		"friends", "social", "party", "gathering", "hangout", "visit",
		"dinner", "lunch", "coffee", "chat", "conversation", "connection",
	},
	"hobby_time": {
		"hobby", "reading", "book", "music", "playing", "game", "cooking",
		"painting", "drawing", "creative", "fun", "enjoyable",
	},
	"meditation": {
		"meditate", "meditation", "mindfulness", "breathing", "calm",
		"relaxation", "peaceful", "zen", "quiet time", "reflection",
	},
	"nature": {
		"nature", "outdoor", "park", "forest", "beach", "hiking",
		"garden", "outside", "fresh air", "sunshine", "walk outside",
	},

	// sleep issues
	"trouble_falling_asleep": {
		"can't sleep", "couldn't sleep", "insomnia", "lying awake",
		"tossing", "turning", "mind racing", "can't fall asleep",
	},
	"waking_up_night": {
		"woke up", "waking up", "interrupted sleep", "restless",
		"kept waking", "multiple times", "nightmare", "disrupted",
	},
	"not_enough_sleep": {
		"not enough sleep", "lack of sleep", "tired", "exhausted",
		"fatigue", "sleep deprived", "only slept", "few hours",
	},

	// mood factors
	"achievement": {
		"achieved", "accomplished", "success", "completed", "finished",
		"proud", "well done", "great job", "productive", "progress",
	},
	"disappointment": {
		"disappointed", "failed", "didn't work", "upset", "frustrated",
		"let down", "didn't go well", "expected", "hoped",
	},
	"conflict": {
		"argument", "fight", "disagreement", "conflict", "tension",
		"angry", "frustrated with", "argued", "dispute",
	},
	"lonely": {
		"lonely", "alone", "isolated", "miss", "missing", "solitary",
		"no one", "by myself", "wished someone", "loneliness",
	},
	"overwhelmed": {
		"overwhelmed", "too much", "can't handle", "drowning",
		"swamped", "buried", "overloaded", "can't cope",
	},
}

// tagCategories groups tags for report sections.
var tagCategories = map[string][]string{
	"stressor": {"work_stress", "relationship_stress", "financial_stress",
		"health_stress", "time_pressure"},
	"activity": {"exercise", "social_time", "hobby_time", "meditation", "nature"},
	"sleep":    {"trouble_falling_asleep", "waking_up_night", "not_enough_sleep"},
	"mood":     {"achievement", "disappointment", "conflict", "lonely", "overwhelmed"},
}

// tagOrder keeps ExtractTags output deterministic.
var tagOrder = func() []string {
	keys := make([]string, 0, len(tagKeywords))
	for k := range tagKeywords {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// ExtractTags returns the theme tags whose keywords appear in text. Each tag
// is reported at most once; text shorter than 3 characters yields nothing.
func ExtractTags(text string) []string {
	if len(strings.TrimSpace(text)) < 3 {
		return nil
	}
	norm := normalizeWords(text)

	var found []string
	for _, tag := range tagOrder {
		for _, kw := range tagKeywords[tag] {
			if containsPhrase(norm, normalizeWords(kw)) {
				found = append(found, tag)
				break
			}
		}
	}
	return found
}

// normalizeWords lowercases text and flattens punctuation so keyword phrases
// match on word boundaries.
func normalizeWords(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r > 127 && !strings.ContainsRune("«»…—–", r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func containsPhrase(norm, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+norm+" ", " "+phrase+" ")
}

// CountTags tallies tag frequency across entries.
func CountTags(tagLists [][]string) map[string]int {
	freq := make(map[string]int)
	for _, tags := range tagLists {
		for _, tag := range tags {
			freq[tag]++
		}
	}
	return freq
}

// TagCount pairs a tag with how often it occurred.
type TagCount struct {
	Tag   string
	Count int
}

// TopTags returns the most frequent tags, highest first. Ties break
// alphabetically so output is stable.
func TopTags(freq map[string]int, limit int) []TagCount {
	res := make([]TagCount, 0, len(freq))
	for tag, n := range freq {
		res = append(res, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		return res[i].Tag < res[j].Tag
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res
}

// CategorizeTags groups tags into report sections; unknown tags land in
// "other".
func CategorizeTags(tags []string) map[string][]string {
	member := make(map[string]string)
	for cat, list := range tagCategories {
		for _, tag := range list {
			member[tag] = cat
		}
	}

	out := map[string][]string{}
	for _, tag := range tags {
		cat, ok := member[tag]
		if !ok {
			cat = "other"
		}
		out[cat] = append(out[cat], tag)
	}
	return out
}

// FormatTags renders tags for display, snake_case to Title Case.
func FormatTags(tags []string) string {
	if len(tags) == 0 {
		return "No specific themes detected"
	}
	parts := make([]string, len(tags))
	for i, tag := range tags {
		words := strings.Split(tag, "_")
		for j, w := range words {
			if w != "" {
				words[j] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
		parts[i] = strings.Join(words, " ")
	}
	return strings.Join(parts, ", ")
}
