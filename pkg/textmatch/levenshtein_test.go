package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"recieve", "receive", 2},
		{"priority", "priority", 0},
		{"flaw", "lawn", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Distance(tt.a, tt.b), "distance(%q,%q)", tt.a, tt.b)
	}
}

func TestDistanceIdentity(t *testing.T) {
	for _, s := range []string{"", "a", "task", "longer phrase here"} {
		assert.Equal(t, 0, Distance(s, s))
	}
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]string{{"abc", "acb"}, {"priority", "priorty"}, {"", "x"}, {"meet", "meat"}}
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]))
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	words := []string{"task", "tusk", "desk", "dusk", "", "tasks"}
	for _, a := range words {
		for _, b := range words {
			for _, c := range words {
				assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c),
					"triangle(%q,%q,%q)", a, b, c)
			}
		}
	}
}
