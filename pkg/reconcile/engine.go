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

// Package reconcile keeps a game model synchronized with the polled and
// occasionally inconsistent observations of an external game surface.
//
// Each observation is classified against the model by Reconcile, which
// only ever appends a single ply to the model or resets it. Anything it
// cannot explain is reported as a divergence, after which the caller
// rebuilds the model from scratch with Resync. The observed move list is
// always authoritative over the model.
package reconcile

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/tandem/pkg/game"
	"laptudirm.com/x/tandem/pkg/observe"
)

// Policy contains the tuning constants of an Engine.
type Policy struct {
	// EmptyDebounce is the number of consecutive empty observations of a
	// non-empty game after which the game is considered shrunk.
	EmptyDebounce int `yaml:"empty-debounce"`

	// ResyncAttempts bounds the number of observations fetched by a
	// single resync, which are ResyncDelay apart.
	ResyncAttempts int           `yaml:"resync-attempts"`
	ResyncDelay    time.Duration `yaml:"resync-delay"`
}

func DefaultPolicy() Policy {
	return Policy{
		EmptyDebounce:  3,
		ResyncAttempts: 10,
		ResyncDelay:    500 * time.Millisecond,
	}
}

// Engine is the synchronization engine of a single surface.
type Engine struct {
	policy   Policy
	observer observe.Observer
}

func NewEngine(observer observe.Observer, policy Policy) *Engine {
	defaults := DefaultPolicy()
	if policy.EmptyDebounce < 1 {
		policy.EmptyDebounce = defaults.EmptyDebounce
	}

	if policy.ResyncAttempts < 1 {
		policy.ResyncAttempts = defaults.ResyncAttempts
	}

	return &Engine{policy: policy, observer: observer}
}

func (engine *Engine) Policy() Policy {
	return engine.policy
}

// Reconcile classifies the given observation against the model. An
// Advanced outcome has already been appended to the model and a Shrunk
// outcome has already reset it; every other outcome leaves the model
// untouched.
func (engine *Engine) Reconcile(snap observe.Snapshot, model *game.Model, state *State) Outcome {
	if !snap.Visible {
		return Outcome{Kind: NoChange, Reason: "move list not visible"}
	}

	state.see(snap.Moves)

	if snap.Result != "" {
		state.EmptyPolls = 0
		return Outcome{Kind: Concluded, Result: snap.Result}
	}

	observed, recorded := len(snap.Moves), model.Len()

	if observed == 0 && recorded > 0 {
		state.EmptyPolls++
		if state.EmptyPolls < engine.policy.EmptyDebounce {
			logrus.WithFields(logrus.Fields{
				"polls": state.EmptyPolls,
				"plies": recorded,
			}).Debug("empty move list observed")
			return Outcome{Kind: AmbiguousEmpty}
		}

		state.EmptyPolls = 0
		model.Reset()
		return Outcome{Kind: Shrunk}
	}

	state.EmptyPolls = 0

	// a shorter list is a new game, whatever its moves
	if observed < recorded {
		model.Reset()
		return Outcome{Kind: Shrunk}
	}

	if i, ok := matchPrefix(snap.Moves, model.Plies()); !ok {
		return Outcome{
			Kind:   Diverged,
			Reason: fmt.Sprintf("prefix mismatch at ply %d", i+1),
		}
	}

	switch {
	case observed == recorded:
		return Outcome{Kind: NoChange}

	case observed == recorded+1:
		token := snap.Moves[recorded]
		ply, err := model.Apply(token)
		if err != nil {
			return Outcome{
				Kind:   Diverged,
				Reason: fmt.Sprintf("illegal move %q at ply %d", token, recorded+1),
			}
		}

		return Outcome{Kind: Advanced, Moves: []game.Ply{ply}}

	default:
		return Outcome{
			Kind:   Diverged,
			Reason: fmt.Sprintf("jump from %d to %d plies", recorded, observed),
		}
	}
}

// matchPrefix checks that the common prefix of the observed moves and the
// recorded plies agree, returning the index of the first mismatch if not.
func matchPrefix(observed []string, recorded []game.Ply) (int, bool) {
	for i := 0; i < len(observed) && i < len(recorded); i++ {
		if !game.SameMove(observed[i], recorded[i].Token) &&
			!game.SameMove(observed[i], recorded[i].SAN) {
			return i, false
		}
	}

	return 0, true
}
