// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chesscom

import (
	"errors"
	"math"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// node is a move node of the move list, as scraped from the page.
type node struct {
	ID         string `json:"id"`
	Class      string `json:"class"`
	Text       string `json:"text"`
	Figurine   string `json:"figurine"`
	PieceClass string `json:"pieceClass"`
}

var pieceNames = []struct {
	name   string
	letter string
}{
	{"king", "K"}, {"queen", "Q"}, {"rook", "R"}, {"bishop", "B"}, {"knight", "N"},
}

// assemble builds the notation token of a move node. Piece letters are
// rendered as figurines on the page, so they have to be put back into
// the token: before the move, or after the promotion sign.
func assemble(n node) (string, bool) {
	if !strings.Contains(n.Class, "white-move") && !strings.Contains(n.Class, "black-move") {
		return "", false
	}

	text := strings.TrimSpace(n.Text)
	figure := strings.TrimSpace(n.Figurine)

	if figure == "" && n.PieceClass != "" {
		class := strings.ToLower(n.PieceClass)
		for _, piece := range pieceNames {
			if strings.Contains(class, piece.name) {
				figure = piece.letter
				break
			}
		}
	}

	if figure == "" && text != "" && strings.ContainsRune("KQRBN", rune(text[0])) {
		figure, text = text[:1], text[1:]
	}

	switch {
	case figure == "":
		// pawn move or castling
		return text, text != ""

	case strings.Contains(text, "="):
		move := text + figure
		for _, mark := range []string{"+", "#"} {
			if strings.Contains(move, mark) {
				move = strings.ReplaceAll(move, mark, "") + mark
			}
		}

		return move, true

	default:
		return figure + text, true
	}
}

// sessionFromURL derives a session identifier from the page's location.
// Live games have their own identifier, while every computer game shares
// one since the location does not change between them.
func sessionFromURL(url string) (string, bool) {
	if _, rest, found := strings.Cut(url, "/game/live/"); found {
		id, _, _ := strings.Cut(rest, "?")
		id, _, _ = strings.Cut(id, "/")
		if id == "" {
			return "", false
		}

		return "live_" + id, true
	}

	if strings.Contains(url, "/play/computer") || strings.Contains(url, "/computer/") {
		return "computer", true
	}

	return "", false
}

// coordinate is a board coordinate label of the page.
type coordinate struct {
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Text string   `json:"text"`
}

// board is the visible board element of the page.
type board struct {
	ID     string       `json:"id"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Coords []coordinate `json:"coords"`
	Pieces []string     `json:"pieces"`
}

var errNoCoordinates = errors.New("chesscom: board has no coordinates")

// isWhite reports whether the board is oriented with white at the bottom,
// which is the case when the bottom left coordinate label is rank 1.
func (b *board) isWhite() (bool, error) {
	var (
		label      *coordinate
		minX, maxY = math.Inf(1), math.Inf(-1)
	)

	for i := range b.Coords {
		coord := &b.Coords[i]
		if coord.X == nil || coord.Y == nil {
			continue
		}

		if label == nil || (*coord.X <= minX && *coord.Y >= maxY) {
			minX, maxY = *coord.X, *coord.Y
			label = coord
		}
	}

	if label == nil {
		return false, errNoCoordinates
	}

	return strings.TrimSpace(label.Text) == "1", nil
}

var startingPieces = map[string]string{
	"a1": "wr", "b1": "wn", "c1": "wb", "d1": "wq", "e1": "wk", "f1": "wb", "g1": "wn", "h1": "wr",
	"a2": "wp", "b2": "wp", "c2": "wp", "d2": "wp", "e2": "wp", "f2": "wp", "g2": "wp", "h2": "wp",
	"a7": "bp", "b7": "bp", "c7": "bp", "d7": "bp", "e7": "bp", "f7": "bp", "g7": "bp", "h7": "bp",
	"a8": "br", "b8": "bn", "c8": "bb", "d8": "bq", "e8": "bk", "f8": "bb", "g8": "bn", "h8": "br",
}

// squareName converts a numeric square class suffix like "52" into the
// name of the square, "e2".
func squareName(id string) (string, bool) {
	if len(id) != 2 || id[0] < '1' || id[0] > '8' || id[1] < '1' || id[1] > '8' {
		return "", false
	}

	return string(rune('a'+id[0]-'1')) + id[1:], true
}

// placement returns the piece on every occupied square of the board.
func (b *board) placement() map[string]string {
	found := make(map[string]string, len(b.Pieces))
	for _, class := range b.Pieces {
		var square, piece string
		for _, field := range strings.Fields(class) {
			switch {
			case strings.HasPrefix(field, "square-"):
				square, _ = squareName(strings.TrimPrefix(field, "square-"))
			case len(field) == 2 && (field[0] == 'w' || field[0] == 'b') &&
				strings.ContainsRune("pnbrqk", rune(field[1])):
				piece = field
			}
		}

		if square != "" && piece != "" {
			found[square] = piece
		}
	}

	return found
}

// atStart reports whether the pieces on the board are in the standard
// starting position. It is unknown if no pieces are visible.
func (b *board) atStart() (bool, bool) {
	if len(b.Pieces) == 0 {
		return false, false
	}

	found := b.placement()
	if len(found) != len(startingPieces) {
		return false, true
	}

	for square, piece := range startingPieces {
		if found[square] != piece {
			return false, true
		}
	}

	return true, true
}

// point returns the viewport coordinates of the center of a square.
func (b *board) point(square string, white bool) proto.Point {
	file := float64(square[0] - 'a')
	rank := float64(square[1] - '1')
	size := b.Width / 8

	if white {
		return proto.Point{
			X: b.X + size*file + size/2,
			Y: b.Y + size*(7-rank) + size/2,
		}
	}

	return proto.Point{
		X: b.X + size*(7-file) + size/2,
		Y: b.Y + size*rank + size/2,
	}
}

// promotionSquare returns the square of the given promotion piece in the
// piece picker, which is stacked from the promotion square towards the
// promoting side.
func promotionSquare(to string, piece byte, white bool) string {
	offset := strings.IndexByte("qrbn", piece)
	if offset < 0 {
		return to
	}

	direction := 1
	if white {
		direction = -1
	}

	rank := int(to[1]-'0') + direction*offset
	if rank < 1 || rank > 8 {
		return to
	}

	return to[:1] + string(rune('0'+rank))
}
