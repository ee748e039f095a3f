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

// Package observe defines the read interface of an externally rendered
// game and the snapshots which are captured from it on every poll.
package observe

import (
	"context"
	"strings"

	"laptudirm.com/x/tandem/pkg/game"
)

// Observer is the polled read interface of an external game surface. Any
// site specific quirks are handled behind it; none of its methods are
// expected to panic or block for long, and each one may answer with an
// Unknown reading instead of a value.
type Observer interface {
	// MoveList returns the currently visible move list as notation tokens.
	MoveList(ctx context.Context) Reading[[]string]

	// EngineIsWhite reports whether the automated player has the white
	// pieces in the visible game.
	EngineIsWhite(ctx context.Context) Reading[bool]

	// BoardReady reports whether a board is visible and ready.
	BoardReady(ctx context.Context) Reading[bool]

	// StartingPosition reports whether the visible board shows the standard
	// starting position. Surfaces without the capability return Unknown.
	StartingPosition(ctx context.Context) Reading[bool]

	// GameOver reports whether an end of game indicator is visible.
	GameOver(ctx context.Context) bool

	// SessionID returns an opaque identifier of the visible game.
	SessionID(ctx context.Context) Reading[string]

	// ResetCache drops any memoized already-seen move markers.
	ResetCache(ctx context.Context)

	// RequestNewGame asks the surface to start a new game, returning
	// whether the action appeared to succeed.
	RequestNewGame(ctx context.Context) bool
}

// Snapshot is an ObservationSnapshot: every value read from the surface
// during a single poll.
type Snapshot struct {
	Moves  []string // the move list, without any result marker
	Result string   // the result marker at the end of the list, if any

	Visible   bool // the move list could be read
	Ready     bool // the board is visible and ready
	GameOver  bool // an end of game indicator is visible
	Transient bool // some read failed transiently

	SessionID Reading[string]
	Starting  Reading[bool]
}

// Len returns the number of moves in the snapshot.
func (snap Snapshot) Len() int {
	return len(snap.Moves)
}

// Empty reports whether a visible move list has no moves in it.
func (snap Snapshot) Empty() bool {
	return snap.Visible && len(snap.Moves) == 0
}

// Capture reads a Snapshot from the given Observer.
func Capture(ctx context.Context, observer Observer) Snapshot {
	var snap Snapshot

	ready := observer.BoardReady(ctx)
	snap.Ready = Is(ready, true)

	moves := observer.MoveList(ctx)
	if list, known := moves.Get(); known {
		snap.Visible = true
		snap.Moves, snap.Result = SplitResult(list)
	}

	snap.GameOver = observer.GameOver(ctx)
	snap.SessionID = observer.SessionID(ctx)
	snap.Starting = observer.StartingPosition(ctx)

	snap.Transient = ready.Status == TransientFailure ||
		moves.Status == TransientFailure ||
		snap.SessionID.Status == TransientFailure ||
		snap.Starting.Status == TransientFailure

	return snap
}

// SplitResult separates the result marker from a move list. Anything
// after the first result marker is not part of the game and is dropped.
func SplitResult(tokens []string) (moves []string, result string) {
	moves = make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if game.IsResultToken(token) {
			return moves, token
		}

		moves = append(moves, token)
	}

	return moves, ""
}
