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

package oracle

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/notnil/chess"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/tandem/pkg/fault"
)

var ErrNoMove = errors.New("engine: no move returned")

// SelectMove searches the given position and returns the engine's best
// move, along with the evaluation from its last search info.
func (engine *Engine) SelectMove(ctx context.Context, pos *chess.Position, info Context) (Suggestion, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	suggestion, err := engine.search(ctx, pos, info)
	if err != nil {
		return Suggestion{}, fault.Wrap(fault.OracleFailure, err, "ply %d", info.PlyCount)
	}

	return suggestion, nil
}

func (engine *Engine) search(ctx context.Context, pos *chess.Position, info Context) (Suggestion, error) {
	// a shorter game than the last one searched must be a new one
	if info.PlyCount < engine.plies {
		if err := engine.NewGame(ctx); err != nil {
			return Suggestion{}, err
		}
	}
	engine.plies = info.PlyCount

	if err := engine.Write("position fen %s", pos.String()); err != nil {
		return Suggestion{}, err
	}

	if err := engine.Write(engine.goCommand()); err != nil {
		return Suggestion{}, err
	}

	timeout := engine.config.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	deadline := time.Now().Add(timeout)

	var (
		eval    Eval
		hasEval bool
	)

	for {
		remaining := time.Until(deadline)
		line, err := engine.Await(ctx, "^(info|bestmove) ", remaining)
		if err != nil {
			if errors.Is(err, ErrReadTimeout) || errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				engine.stop()
			}

			return Suggestion{}, err
		}

		if move, found := ParseBestMove(line); found {
			if move == "" {
				return Suggestion{}, ErrNoMove
			}

			// engines score from the side to move's point of view
			if hasEval && pos.Turn() == chess.Black {
				eval = eval.Flip()
			}

			logrus.WithFields(logrus.Fields{
				"move": move,
				"eval": eval.String(),
			}).Debug("engine selected move")

			return Suggestion{
				Move:    move,
				Delay:   engine.config.Delay,
				Eval:    eval,
				HasEval: hasEval,
			}, nil
		}

		if ParseInfo(line, &eval) {
			hasEval = true
		}
	}
}

// stop interrupts a search which has been abandoned and drains its
// remaining output, so that the next search does not read it.
func (engine *Engine) stop() {
	if err := engine.Write("stop"); err != nil {
		return
	}

	_, _ = engine.Await(context.Background(), "^bestmove", time.Second)
}

func (engine *Engine) goCommand() string {
	switch {
	case engine.config.Depth > 0:
		return "go depth " + strconv.Itoa(engine.config.Depth)
	case engine.config.MoveTime > 0:
		return "go movetime " + strconv.FormatInt(engine.config.MoveTime.Milliseconds(), 10)
	case engine.config.Nodes > 0:
		return "go nodes " + strconv.Itoa(engine.config.Nodes)
	default:
		return "go depth 12"
	}
}

// ParseInfo parses the score and win/draw/loss statistics of a UCI info
// line into eval, reporting whether the line contained a score. Bound
// scores are ignored.
func ParseInfo(line string, eval *Eval) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return false
	}

	scored := false
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "string":
			// the rest of the line is free-form text
			return scored

		case "score":
			if i+2 >= len(fields) {
				return scored
			}

			if i+3 < len(fields) && (fields[i+3] == "lowerbound" || fields[i+3] == "upperbound") {
				i += 3
				continue
			}

			value, err := strconv.Atoi(fields[i+2])
			if err != nil {
				continue
			}

			switch fields[i+1] {
			case "cp":
				eval.Centipawns, eval.Mate = value, 0
				scored = true
			case "mate":
				eval.Mate = value
				scored = true
			}

			i += 2

		case "wdl":
			if i+3 >= len(fields) {
				return scored
			}

			var wdl [3]int
			valid := true
			for j := range wdl {
				value, err := strconv.Atoi(fields[i+1+j])
				if err != nil {
					valid = false
					break
				}

				wdl[j] = value
			}

			if valid {
				eval.WDL, eval.HasWDL = wdl, true
			}

			i += 3
		}
	}

	return scored
}

// ParseBestMove parses a UCI bestmove line. The returned move is empty if
// the engine had no move to make.
func ParseBestMove(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "bestmove" {
		return "", false
	}

	if len(fields) < 2 || fields[1] == "(none)" || fields[1] == "0000" {
		return "", true
	}

	return fields[1], true
}
