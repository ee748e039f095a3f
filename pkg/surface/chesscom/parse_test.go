package chesscom

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name string
		node node
		want string
		ok   bool
	}{
		{"pawn", node{Class: "node white-move", Text: "e4"}, "e4", true},
		{"castling", node{Class: "node black-move", Text: "O-O"}, "O-O", true},
		{"figurine", node{Class: "node white-move", Text: "f3", Figurine: "N"}, "Nf3", true},
		{"piece class", node{Class: "node black-move", Text: "xd5", PieceClass: "icon-font-chess queen-black"}, "Qxd5", true},
		{"text piece", node{Class: "node white-move", Text: "Rxe8#"}, "Rxe8#", true},
		{"promotion", node{Class: "node white-move", Text: "e8=", Figurine: "Q"}, "e8=Q", true},
		{"promotion check", node{Class: "node black-move", Text: "bxa1=+", Figurine: "N"}, "bxa1=N+", true},
		{"promotion mate", node{Class: "node white-move", Text: "g8=#", Figurine: "Q"}, "g8=Q#", true},
		{"not a move", node{Class: "node move-number", Text: "12."}, "", false},
		{"empty", node{Class: "node white-move"}, "", false},
	}

	for _, test := range tests {
		move, ok := assemble(test.node)
		assert.Equal(t, test.ok, ok, test.name)
		assert.Equal(t, test.want, move, test.name)
	}
}

func TestSessionFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.chess.com/game/live/123456789", "live_123456789", true},
		{"https://www.chess.com/game/live/987?tab=review", "live_987", true},
		{"https://www.chess.com/game/live/42/analysis", "live_42", true},
		{"https://www.chess.com/play/computer", "computer", true},
		{"https://www.chess.com/play/computer/komodo", "computer", true},
		{"https://www.chess.com/play/online", "", false},
		{"https://www.chess.com/game/live/", "", false},
	}

	for _, test := range tests {
		id, ok := sessionFromURL(test.url)
		assert.Equal(t, test.ok, ok, test.url)
		assert.Equal(t, test.want, id, test.url)
	}
}

func pt(v float64) *float64 { return &v }

func TestBoardOrientation(t *testing.T) {
	// ranks run down the left edge and files along the bottom
	white := &board{Coords: []coordinate{
		{X: pt(0.75), Y: pt(3.5), Text: "8"},
		{X: pt(0.75), Y: pt(90.75), Text: "1"},
		{X: pt(10), Y: pt(99), Text: "a"},
		{X: pt(97), Y: pt(99), Text: "h"},
	}}

	ok, err := white.isWhite()
	require.NoError(t, err)
	assert.True(t, ok)

	black := &board{Coords: []coordinate{
		{X: pt(0.75), Y: pt(3.5), Text: "1"},
		{X: pt(0.75), Y: pt(90.75), Text: "8"},
		{Text: "unplaced"},
	}}

	ok, err = black.isWhite()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = (&board{}).isWhite()
	assert.ErrorIs(t, err, errNoCoordinates)
}

func startingClasses() []string {
	var classes []string
	for square, piece := range startingPieces {
		id := string(rune('1'+square[0]-'a')) + square[1:]
		classes = append(classes, "piece "+piece+" square-"+id)
	}
	return classes
}

func TestAtStart(t *testing.T) {
	b := &board{Pieces: startingClasses()}
	start, known := b.atStart()
	assert.True(t, known)
	assert.True(t, start)

	// e2-e4
	for i, class := range b.Pieces {
		if class == "piece wp square-52" {
			b.Pieces[i] = "piece wp square-54"
		}
	}

	start, known = b.atStart()
	assert.True(t, known)
	assert.False(t, start)

	_, known = (&board{}).atStart()
	assert.False(t, known)
}

func TestSquareName(t *testing.T) {
	name, ok := squareName("52")
	assert.True(t, ok)
	assert.Equal(t, "e2", name)

	for _, id := range []string{"", "5", "09", "90", "ab", "123"} {
		_, ok := squareName(id)
		assert.False(t, ok, id)
	}
}

func TestPoint(t *testing.T) {
	b := &board{X: 100, Y: 50, Width: 800, Height: 800}

	assert.Equal(t, proto.Point{X: 150, Y: 800}, b.point("a1", true))
	assert.Equal(t, proto.Point{X: 850, Y: 100}, b.point("h8", true))
	assert.Equal(t, proto.Point{X: 850, Y: 100}, b.point("a1", false))
	assert.Equal(t, proto.Point{X: 450, Y: 400}, b.point("e4", false))
}

func TestPromotionSquare(t *testing.T) {
	assert.Equal(t, "e8", promotionSquare("e8", 'q', true))
	assert.Equal(t, "e7", promotionSquare("e8", 'r', true))
	assert.Equal(t, "e5", promotionSquare("e8", 'n', true))
	assert.Equal(t, "a3", promotionSquare("a1", 'b', false))
	assert.Equal(t, "a1", promotionSquare("a1", 'x', false))
}
