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

// Package game implements the authoritative model of a single game of
// chess: the position reached by replaying a move sequence from the
// standard start, the history of plies that were replayed, and the
// terminal state derived from that position.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// Terminal is the terminal state of a position.
type Terminal int

const (
	None Terminal = iota
	Checkmate
	Drawn
	UnknownResult
)

func (terminal Terminal) String() string {
	switch terminal {
	case None:
		return "none"
	case Checkmate:
		return "checkmate"
	case Drawn:
		return "draw"
	default:
		return "unknown-result"
	}
}

// Ply is a single half-move which has been applied to a Model.
type Ply struct {
	Token string // the token as it was observed, kept for reporting
	SAN   string // standard algebraic notation of the move
	UCI   string // engine-form (long algebraic) notation of the move
}

var ErrIllegalMove = errors.New("game: illegal move")

// IllegalMoveError is returned when a token in a move sequence does not
// parse as a legal continuation of the position before it.
type IllegalMoveError struct {
	Index int
	Token string
}

func (err *IllegalMoveError) Error() string {
	return fmt.Sprintf("game: illegal move %q at ply %d", err.Token, err.Index+1)
}

func (err *IllegalMoveError) Unwrap() error {
	return ErrIllegalMove
}

// Model is the authoritative game model. The number of plies in its
// history is always equal to the number of moves replayed into its
// position, and the side to move alternates with every ply.
type Model struct {
	game  *chess.Game
	plies []Ply
}

// New returns an empty Model at the standard starting position.
func New() *Model {
	return &Model{game: chess.NewGame()}
}

// Replay builds a new Model by replaying every token from the standard
// starting position, validating each one as a legal move.
func Replay(tokens []string) (*Model, error) {
	model := New()
	for i, token := range tokens {
		if _, err := model.Apply(token); err != nil {
			return nil, &IllegalMoveError{Index: i, Token: token}
		}
	}

	return model, nil
}

// Reset discards the model's state wholesale, returning it to the
// standard starting position with an empty history.
func (model *Model) Reset() {
	*model = *New()
}

// Parse finds the legal move from the current position which the given
// token denotes. The model is not modified.
func (model *Model) Parse(token string) (*chess.Move, error) {
	want := Normalize(token)
	if want == "" || IsResultToken(token) || model.game.Outcome() != chess.NoOutcome {
		return nil, ErrIllegalMove
	}

	pos := model.game.Position()
	for _, mov := range pos.ValidMoves() {
		if Normalize(chess.AlgebraicNotation{}.Encode(pos, mov)) == want {
			return mov, nil
		}
	}

	return nil, ErrIllegalMove
}

// Find finds the legal move from the current position with the given
// engine-form notation.
func (model *Model) Find(uci string) (*chess.Move, error) {
	if model.game.Outcome() != chess.NoOutcome {
		return nil, ErrIllegalMove
	}

	for _, mov := range model.game.Position().ValidMoves() {
		if strings.EqualFold(mov.String(), strings.TrimSpace(uci)) {
			return mov, nil
		}
	}

	return nil, ErrIllegalMove
}

// EncodeUCI converts a move in engine-form notation into standard
// algebraic notation in the context of the current position.
func (model *Model) EncodeUCI(uci string) (string, error) {
	mov, err := model.Find(uci)
	if err != nil {
		return "", err
	}

	return chess.AlgebraicNotation{}.Encode(model.game.Position(), mov), nil
}

// Apply parses the given token and appends it to the model as a new ply.
func (model *Model) Apply(token string) (Ply, error) {
	mov, err := model.Parse(token)
	if err != nil {
		return Ply{}, err
	}

	pos := model.game.Position()
	ply := Ply{
		Token: strings.TrimSpace(token),
		SAN:   chess.AlgebraicNotation{}.Encode(pos, mov),
		UCI:   mov.String(),
	}

	if err := model.game.Move(mov); err != nil {
		return Ply{}, err
	}

	model.plies = append(model.plies, ply)
	return ply, nil
}

// Clone returns an independent copy of the model.
func (model *Model) Clone() *Model {
	return &Model{
		game:  model.game.Clone(),
		plies: model.Plies(),
	}
}

// Len returns the number of plies in the model's history.
func (model *Model) Len() int {
	return len(model.plies)
}

// Plies returns a copy of the model's history.
func (model *Model) Plies() []Ply {
	return append([]Ply(nil), model.plies...)
}

// Tokens returns the observed tokens of the model's history.
func (model *Model) Tokens() []string {
	tokens := make([]string, len(model.plies))
	for i, ply := range model.plies {
		tokens[i] = ply.Token
	}

	return tokens
}

// UCI returns the engine-form notation of the model's history.
func (model *Model) UCI() []string {
	moves := make([]string, len(model.plies))
	for i, ply := range model.plies {
		moves[i] = ply.UCI
	}

	return moves
}

func (model *Model) Position() *chess.Position {
	return model.game.Position()
}

func (model *Model) SideToMove() chess.Color {
	return model.game.Position().Turn()
}

func (model *Model) FEN() string {
	return model.game.Position().String()
}

// Terminal returns the terminal state derived from the current position.
func (model *Model) Terminal() Terminal {
	if model.game.Outcome() == chess.NoOutcome {
		return None
	}

	switch model.game.Method() {
	case chess.Checkmate:
		return Checkmate
	case chess.Stalemate,
		chess.ThreefoldRepetition, chess.FivefoldRepetition,
		chess.FiftyMoveRule, chess.SeventyFiveMoveRule,
		chess.InsufficientMaterial:
		return Drawn
	default:
		return UnknownResult
	}
}

// Result returns the result of the game and the reason for it.
func (model *Model) Result() (Result, string) {
	var result Result
	switch model.game.Outcome() {
	case chess.WhiteWon:
		result = WhiteWins
	case chess.BlackWon:
		result = BlackWins
	case chess.Draw:
		result = Draw
	default:
		return Undecided, ""
	}

	switch model.game.Method() {
	case chess.Checkmate:
		return result, "Checkmate"
	case chess.Stalemate:
		return result, "Stalemate"
	case chess.FiftyMoveRule:
		return result, "50-move Rule"
	case chess.SeventyFiveMoveRule:
		return result, "75-move Rule"
	case chess.ThreefoldRepetition:
		return result, "Threefold Repetition"
	case chess.FivefoldRepetition:
		return result, "Fivefold Repetition"
	case chess.InsufficientMaterial:
		return result, "Insufficient Material"
	}

	return result, ""
}

var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
}

// Material returns white's material minus black's material.
func (model *Model) Material() int {
	balance := 0
	for _, piece := range model.game.Position().Board().SquareMap() {
		switch piece.Color() {
		case chess.White:
			balance += pieceValues[piece.Type()]
		case chess.Black:
			balance -= pieceValues[piece.Type()]
		}
	}

	return balance
}
