package textmatch

import (
	"strings"
	"unicode"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Span marks one query occurrence inside the source text. Offsets are rune
// indexes into the original string; Text carries the original-case substring.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Highlight is the annotated form of a field value: the source text, the
// located spans (left to right, non-overlapping) and a best-effort markup
// rendering with each span wrapped in <mark> tags.
type Highlight struct {
	Original    string `json:"original"`
	Highlighted string `json:"highlighted"`
	Matches     []Span `json:"matches"`
	MatchCount  int    `json:"match_count"`
}

// HighlightMatches locates every occurrence of query in text with a forward
// scan. The cursor jumps past each hit, so reported spans never overlap even
// when occurrences do in the source. Absent input yields a pass-through
// Highlight with no spans.
func HighlightMatches(text, query string) Highlight {
	h := Highlight{Original: text, Highlighted: text, Matches: []Span{}}
	q := Normalize(query)
	if text == "" || q == "" {
		return h
	}

	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}
	qr := []rune(q)

	for i := 0; i+len(qr) <= len(lower); {
		if runesEqual(lower[i:i+len(qr)], qr) {
			h.Matches = append(h.Matches, Span{
				Start: i,
				End:   i + len(qr),
				Text:  string(runes[i : i+len(qr)]),
			})
			i += len(qr)
		} else {
			i++
		}
	}
	h.MatchCount = len(h.Matches)
	h.Highlighted = wrapSpans(runes, h.Matches)
	return h
}

// wrapSpans splices the markers in from the last span to the first, so each
// earlier span's offsets stay valid while later text shifts.
func wrapSpans(runes []rune, spans []Span) string {
	out := runes
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		var b []rune
		b = append(b, out[:s.Start]...)
		b = append(b, []rune(markOpen)...)
		b = append(b, out[s.Start:s.End]...)
		b = append(b, []rune(markClose)...)
		b = append(b, out[s.End:]...)
		out = b
	}
	return string(out)
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Reconstruct joins the unmatched gaps and match spans back together. It is
// the inverse used to verify that highlighting never loses source text.
func (h Highlight) Reconstruct() string {
	runes := []rune(h.Original)
	var b strings.Builder
	cursor := 0
	for _, s := range h.Matches {
		b.WriteString(string(runes[cursor:s.Start]))
		b.WriteString(s.Text)
		cursor = s.End
	}
	b.WriteString(string(runes[cursor:]))
	return b.String()
}
