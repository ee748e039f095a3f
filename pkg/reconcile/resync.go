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

package reconcile

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/tandem/internal/util"
	"laptudirm.com/x/tandem/pkg/fault"
	"laptudirm.com/x/tandem/pkg/game"
	"laptudirm.com/x/tandem/pkg/observe"
)

// ErrConcluded is returned by Resync when the observed move list ends in
// a result marker. A finished game is never rebuilt.
var ErrConcluded = errors.New("reconcile: observed game has concluded")

// Unbounded can be passed to Resync as the expected number of plies when
// it is not known.
const Unbounded = -1

// Resync fetches fresh observations until one of them replays cleanly
// from the standard starting position, and returns the model built from
// it. The caller's model is never patched: it is replaced wholesale with
// the returned one, or kept if Resync fails.
//
// A positive expected ply count rejects observations which are longer
// than it by more than a small allowance as stale.
func (engine *Engine) Resync(ctx context.Context, state *State, reason string, expected int) (*game.Model, error) {
	logger := logrus.WithField("reason", reason)
	logger.Warn("resynchronizing move list")

	var last string
	for attempt := 1; attempt <= engine.policy.ResyncAttempts; attempt++ {
		if attempt > 1 {
			if err := util.Sleep(ctx, engine.policy.ResyncDelay); err != nil {
				return nil, err
			}
		}

		snap := observe.Capture(ctx, engine.observer)
		if snap.Visible {
			state.see(snap.Moves)
		}

		model, retry, err := engine.rebuild(ctx, snap, expected)
		if err != nil {
			return nil, err
		}

		if retry == "" {
			state.EmptyPolls = 0
			logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"plies":   model.Len(),
			}).Info("move list resynchronized")
			return model, nil
		}

		last = retry
		logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"retry":   retry,
		}).Debug("resync attempt rejected")
	}

	return nil, fault.New(fault.ResyncExhausted,
		"%d attempts, last rejection: %s, last seen: [%s]",
		engine.policy.ResyncAttempts, last, strings.Join(state.LastSeen, " "),
	)
}

// rebuild tries to build a model out of a single observation. A non-empty
// retry string is the reason the observation was rejected.
func (engine *Engine) rebuild(ctx context.Context, snap observe.Snapshot, expected int) (*game.Model, string, error) {
	if snap.Result != "" {
		return nil, "", ErrConcluded
	}

	switch snap.Starting.Status {
	case observe.Known:
		if snap.Starting.Value {
			// the board is at the start position, so any visible moves
			// belong to a game which is already over
			engine.observer.ResetCache(ctx)
			return game.New(), "", nil
		}
	case observe.TransientFailure:
		return nil, "start position indeterminate", nil
	}

	if !snap.Visible {
		return nil, "move list not visible", nil
	}

	if expected >= 0 && len(snap.Moves) > expected+allowance(expected) {
		return nil, "move list longer than expected", nil
	}

	model, err := game.Replay(snap.Moves)
	if err != nil {
		return nil, err.Error(), nil
	}

	if snap.GameOver && model.Terminal() == game.None {
		return nil, "stale game over indicator", nil
	}

	return model, "", nil
}

// allowance is the number of plies an observation may be ahead of the
// expected count, since the opponent keeps moving during a resync.
func allowance(expected int) int {
	if expected <= 2 {
		return 2
	}

	return 4
}
