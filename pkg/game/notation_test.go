package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"e4", "e4"},
		{" Nf3 ", "Nf3"},
		{"Qxf7#", "Qxf7"},
		{"Bb5+", "Bb5"},
		{"Nc3!?", "Nc3"},
		{"0-0", "O-O"},
		{"0-0-0+", "O-O-O"},
		{"O-O-O", "O-O-O"},
		{"exd6 e.p.", "exd6"},
		{"e8=Q+", "e8Q"},
		{"e8Q", "e8Q"},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, Normalize(test.token), test.token)
	}
}

func TestSameMove(t *testing.T) {
	assert.True(t, SameMove("e8=Q+", "e8Q"))
	assert.True(t, SameMove("O-O", "0-0"))
	assert.False(t, SameMove("Bxc3", "bxc3"))
	assert.False(t, SameMove("", ""))
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		token string
		want  Result
		found bool
	}{
		{"1-0", WhiteWins, true},
		{"0-1", BlackWins, true},
		{"1/2-1/2", Draw, true},
		{"0.5-0.5", Draw, true},
		{"½-½", Draw, true},
		{" 1-0 ", WhiteWins, true},
		{"0-0", Undecided, false},
		{"e4", Undecided, false},
	}

	for _, test := range tests {
		result, found := ParseResult(test.token)
		assert.Equal(t, test.found, found, test.token)
		assert.Equal(t, test.want, result, test.token)
	}

	assert.Equal(t, "1/2-1/2", Draw.String())
	assert.Equal(t, "*", Undecided.String())
}
