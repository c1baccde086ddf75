package textmatch

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Record is one searchable item: an opaque field-name to value mapping.
// The engine treats records as read-only and never mutates them; fields it
// is not told to search are invisible to it.
type Record map[string]string

// Result pairs a record with its relevance for one query. Results are
// computed fresh on every call, never cached.
type Result struct {
	Record     Record               `json:"record"`
	Score      float64              `json:"score"`
	Matched    bool                 `json:"matched"`
	Highlights map[string]Highlight `json:"highlights,omitempty"`
}

// Options configures Search. Zero Fields falls back to DefaultFields; use
// DefaultOptions for the documented defaults (relevance sort on).
type Options struct {
	Fields            []string
	MinScore          float64
	SortByRelevance   bool
	IncludeHighlights bool
}

// DefaultFields are searched when the caller does not narrow the field list.
var DefaultFields = []string{"title", "description"}

// DefaultFieldWeights are the MultiMatch weights when none are supplied.
var DefaultFieldWeights = map[string]float64{
	"title":       2.0,
	"description": 1.0,
	"priority":    1.5,
}

const (
	// DefaultMaxDistance is the FuzzyMatch edit tolerance.
	DefaultMaxDistance = 2
	// DefaultMaxSuggestions caps Suggest output.
	DefaultMaxSuggestions = 5
	// suggestionFloor is the minimum similarity a dictionary term needs.
	suggestionFloor = 0.5
)

func DefaultOptions() Options {
	return Options{
		Fields:          DefaultFields,
		SortByRelevance: true,
	}
}

// Search runs the ranked linear scan: every record's listed fields go through
// the match predicate, matching records are scored by the maximum field score,
// optionally annotated with highlights, filtered by MinScore and stable-sorted
// by descending relevance. An empty or whitespace query disables filtering:
// all records come back unscored in their original order.
func Search(records []Record, query string, opts Options) []Result {
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}

	if Normalize(query) == "" {
		out := make([]Result, 0, len(records))
		for _, r := range records {
			out = append(out, Result{Record: r, Matched: true})
		}
		return out
	}

	out := make([]Result, 0, len(records))
	for _, r := range records {
		res := Result{Record: r}
		for _, f := range fields {
			value, ok := r[f]
			if !ok || !Matches(value, query) {
				// A missing field is simply non-matching, never an error.
				continue
			}
			res.Matched = true
			if s := Score(value, query); s > res.Score {
				res.Score = s
			}
			if opts.IncludeHighlights {
				if res.Highlights == nil {
					res.Highlights = make(map[string]Highlight)
				}
				res.Highlights[f] = HighlightMatches(value, query)
			}
		}
		if !res.Matched {
			continue
		}
		// Matched is authoritative for inclusion; MinScore is a strict
		// post-filter on top of it.
		if res.Score < opts.MinScore {
			continue
		}
		out = append(out, res)
	}

	if opts.SortByRelevance {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	}
	return out
}

// MultiMatch ranks records by a weighted sum of field scores instead of the
// maximum. Only matched records are returned, always sorted descending; there
// is no score floor. Nil weights fall back to DefaultFieldWeights.
func MultiMatch(records []Record, query string, weights map[string]float64) []Result {
	if len(weights) == 0 {
		weights = DefaultFieldWeights
	}

	out := make([]Result, 0, len(records))
	for _, r := range records {
		res := Result{Record: r}
		for field, weight := range weights {
			value, ok := r[field]
			if !ok || !Matches(value, query) {
				continue
			}
			res.Matched = true
			res.Score += Score(value, query) * weight
		}
		if res.Matched {
			out = append(out, res)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// FuzzyMatch is the typo-tolerant predicate: true when the plain substring
// predicate already matches, or when any whitespace token of the text is
// within maxDistance edits of the query. maxDistance <= 0 means
// DefaultMaxDistance.
func FuzzyMatch(text, query string, maxDistance int) bool {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	if Matches(text, query) {
		return true
	}
	q := Normalize(query)
	if q == "" {
		return true
	}
	for _, token := range strings.Fields(Normalize(text)) {
		if Distance(token, q) <= maxDistance {
			return true
		}
	}
	return false
}

// Suggest ranks dictionary terms by edit-distance similarity to query and
// returns the closest ones, best first. Terms at or below the similarity
// floor are dropped. maxSuggestions <= 0 means DefaultMaxSuggestions.
func Suggest(query string, dictionary []string, maxSuggestions int) []string {
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}
	q := Normalize(query)
	if q == "" {
		return []string{}
	}

	type candidate struct {
		term       string
		similarity float64
	}
	candidates := make([]candidate, 0, len(dictionary))
	for _, term := range dictionary {
		t := Normalize(term)
		maxLen := utf8.RuneCountInString(q)
		if l := utf8.RuneCountInString(t); l > maxLen {
			maxLen = l
		}
		if maxLen == 0 {
			continue
		}
		similarity := 1 - float64(Distance(q, t))/float64(maxLen)
		if similarity > suggestionFloor {
			candidates = append(candidates, candidate{term: term, similarity: similarity})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.term)
	}
	return out
}
