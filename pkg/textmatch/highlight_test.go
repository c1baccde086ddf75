package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightMatchesBasic(t *testing.T) {
	h := HighlightMatches("Team meeting with the team", "team")
	assert.Equal(t, 2, h.MatchCount)
	assert.Equal(t, "Team", h.Matches[0].Text)
	assert.Equal(t, "team", h.Matches[1].Text)
	assert.Equal(t, 0, h.Matches[0].Start)
	assert.Equal(t, 4, h.Matches[0].End)
	assert.Equal(t, "<mark>Team</mark> meeting with the <mark>team</mark>", h.Highlighted)
}

func TestHighlightPassThrough(t *testing.T) {
	h := HighlightMatches("some text", "")
	assert.Equal(t, "some text", h.Original)
	assert.Equal(t, "some text", h.Highlighted)
	assert.Empty(t, h.Matches)
	assert.Zero(t, h.MatchCount)

	h = HighlightMatches("", "query")
	assert.Equal(t, "", h.Original)
	assert.Empty(t, h.Matches)
}

func TestHighlightSpansOrderedNonOverlapping(t *testing.T) {
	// Overlapping occurrences in the source ("aaaa" contains "aa" three
	// times) are reported non-overlapping by the forward cursor.
	h := HighlightMatches("aaaa", "aa")
	assert.Equal(t, 2, h.MatchCount)
	prevEnd := 0
	for _, s := range h.Matches {
		assert.GreaterOrEqual(t, s.Start, prevEnd)
		assert.Greater(t, s.End, s.Start)
		prevEnd = s.End
	}
}

func TestHighlightRoundTrip(t *testing.T) {
	cases := [][2]string{
		{"Team meeting with the team", "team"},
		{"aaaa", "aa"},
		{"no hits here", "zzz"},
		{"Grocery run: milk, more milk", "milk"},
		{"Ünïcode tëst ünïcode", "ünïcode"},
	}
	for _, c := range cases {
		h := HighlightMatches(c[0], c[1])
		assert.Equal(t, c[0], h.Reconstruct(), "round trip for %q / %q", c[0], c[1])
	}
}

func TestHighlightCaseInsensitiveKeepsOriginalCase(t *testing.T) {
	h := HighlightMatches("URGENT task", "urgent")
	assert.Equal(t, 1, h.MatchCount)
	assert.Equal(t, "URGENT", h.Matches[0].Text)
	assert.Equal(t, "<mark>URGENT</mark> task", h.Highlighted)
}
