package textmatch

import "strings"

// Normalize lower-cases and trims the input. Every comparison in this
// package goes through it; nothing else is allowed to compare raw text.
// An empty or absent value normalizes to "" instead of failing.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
