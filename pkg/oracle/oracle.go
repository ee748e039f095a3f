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

// Package oracle implements move selection for a synchronized session,
// most notably by searching positions with a UCI chess engine.
package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/notnil/chess"
)

// Oracle selects a move for a position. Any error it returns is fatal for
// the current tick only.
type Oracle interface {
	SelectMove(ctx context.Context, pos *chess.Position, info Context) (Suggestion, error)
}

// Context is additional information about the position being searched.
type Context struct {
	PlyCount int
}

// Suggestion is a move selected by an Oracle.
type Suggestion struct {
	Move  string        // move in engine-form notation
	Delay time.Duration // advisory delay before the move is applied

	Eval    Eval
	HasEval bool
}

// Eval is an evaluation of a position from white's point of view.
type Eval struct {
	Centipawns int
	Mate       int // moves to mate, negative if white is mated; 0 if none

	WDL    [3]int // win/draw/loss expectation in permille
	HasWDL bool
}

// Flip returns the evaluation from the other side's point of view.
func (eval Eval) Flip() Eval {
	eval.Centipawns = -eval.Centipawns
	eval.Mate = -eval.Mate
	eval.WDL[0], eval.WDL[2] = eval.WDL[2], eval.WDL[0]
	return eval
}

func (eval Eval) String() string {
	switch {
	case eval.Mate > 0:
		return fmt.Sprintf("M%d", eval.Mate)
	case eval.Mate < 0:
		return fmt.Sprintf("-M%d", -eval.Mate)
	default:
		return fmt.Sprintf("%+.2f", float64(eval.Centipawns)/100)
	}
}

// WDLString returns the win/draw/loss expectation as "w/d/l", or "?" if
// the engine did not report one.
func (eval Eval) WDLString() string {
	if !eval.HasWDL {
		return "?"
	}

	return fmt.Sprintf("%d/%d/%d", eval.WDL[0], eval.WDL[1], eval.WDL[2])
}
