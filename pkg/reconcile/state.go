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

import "laptudirm.com/x/tandem/pkg/observe"

// State is the context of a single synchronized session. It is owned by
// the session's controller and passed into the Engine by reference.
type State struct {
	// EmptyPolls is the number of consecutive polls which observed an
	// empty move list while the model was not empty.
	EmptyPolls int

	// SessionID is the last known session identifier, empty if none.
	SessionID string

	// Failures is the number of consecutive failed steps.
	Failures int

	// LastSeen is the last observed move list.
	LastSeen []string
}

// SessionChanged reports whether the given reading is a known session
// identifier which differs from a previously known one.
func (state *State) SessionChanged(reading observe.Reading[string]) bool {
	id, known := reading.Get()
	return known && id != "" && state.SessionID != "" && id != state.SessionID
}

// RecordSession remembers the given session identifier if it is known.
func (state *State) RecordSession(reading observe.Reading[string]) {
	if id, known := reading.Get(); known && id != "" {
		state.SessionID = id
	}
}

// Fail counts a failed step and returns the number of consecutive ones.
func (state *State) Fail() int {
	state.Failures++
	return state.Failures
}

// Succeed resets the consecutive failure counter.
func (state *State) Succeed() {
	state.Failures = 0
}

func (state *State) see(moves []string) {
	state.LastSeen = append(state.LastSeen[:0], moves...)
}
