package event

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// typeKeywords is scored in declaration order; the first category reaching
// the maximum count wins a tie. The lists are unweighted and carry known
// bleed ("dance" under theatre also appears in music-adjacent titles).
// Changing them is a product decision, not a refactor.
var typeKeywords = []struct {
	category EventType
	words    []string
}{
	{TypeMusic, []string{
		"concert", "band", "live music", "dj ", "dj night", "album",
		"tour", "orchestra", "choir", "quartet", "singer", "songwriter",
	}},
	{TypeComedy, []string{
		"comedy", "stand-up", "standup", "stand up", "improv",
		"open mic", "sketch", "comedian",
	}},
	{TypeTheatre, []string{
		"theatre", "theater", "play", "musical", "opera", "ballet",
		"dance", "drama", "cabaret",
	}},
	{TypeScreening, []string{
		"screening", "film", "movie", "cinema", "documentary", "premiere",
	}},
}

// ClassifyType infers an event category from its title by counting keyword
// occurrences per category and taking the strictly highest score. All-zero
// scores classify as other.
func ClassifyType(title string) EventType {
	lowered := strings.ToLower(title)
	best := TypeOther
	bestScore := 0
	for _, cat := range typeKeywords {
		score := 0
		for _, w := range cat.words {
			score += strings.Count(lowered, w)
		}
		if score > bestScore {
			best = cat.category
			bestScore = score
		}
	}
	return best
}

var freeIndicators = []string{"free", "pwyc", "pay what you can"}

var priceToken = regexp.MustCompile(`\$?\s*(\d+(?:\.\d{1,2})?)`)

// ParsePrice turns a free-text price into integer cents. A nil price with
// isFree false means no price could be determined. Ranges like "$12-$25"
// yield the first number; free indicators yield zero cents and isFree true.
func ParsePrice(raw string) (cents *int, isFree bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}
	lowered := strings.ToLower(trimmed)
	if lowered == "$0" || lowered == "0" {
		zero := 0
		return &zero, true
	}
	for _, ind := range freeIndicators {
		if strings.Contains(lowered, ind) {
			zero := 0
			return &zero, true
		}
	}
	m := priceToken.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, false
	}
	dollars, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, false
	}
	v := int(math.Round(dollars * 100))
	return &v, false
}
