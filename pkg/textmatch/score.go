package textmatch

import (
	"strings"
	"unicode/utf8"
)

// Base scores for the mutually exclusive match tiers. The first tier that
// applies wins; the length-ratio bonus is added on top and the total is
// clamped to 100.
const (
	scoreExact     = 100.0
	scorePrefix    = 80.0
	scoreWholeWord = 60.0
	scoreSubstring = 40.0
	lengthBonusMax = 20.0
)

// Score rates how well text matches query on a 0-100 scale. It only ranks;
// inclusion is decided by Matches.
func Score(text, query string) float64 {
	t := Normalize(text)
	q := Normalize(query)
	if t == "" || q == "" {
		return 0
	}

	var base float64
	switch {
	case t == q:
		base = scoreExact
	case strings.HasPrefix(t, q):
		base = scorePrefix
	case strings.Contains(t, " "+q+" "):
		base = scoreWholeWord
	case strings.Contains(t, q):
		base = scoreSubstring
	default:
		base = 0
	}

	// A query covering more of a short text is more relevant.
	ratio := float64(utf8.RuneCountInString(q)) / float64(utf8.RuneCountInString(t))
	score := base + ratio*lengthBonusMax
	if score > 100 {
		score = 100
	}
	return score
}

// Matches reports whether text should be included for query. An empty query
// matches everything ("show all"); an empty text never matches a non-empty
// query. This predicate, not Score, is authoritative for inclusion.
func Matches(text, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	t := Normalize(text)
	if t == "" {
		return false
	}
	return strings.Contains(t, q)
}
