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
	"fmt"

	"laptudirm.com/x/tandem/pkg/game"
)

// Kind is the tag of a reconciliation Outcome.
type Kind int

const (
	NoChange Kind = iota
	Advanced
	Diverged
	Shrunk
	AmbiguousEmpty
	Concluded
)

func (kind Kind) String() string {
	switch kind {
	case NoChange:
		return "no-change"
	case Advanced:
		return "advanced"
	case Diverged:
		return "diverged"
	case Shrunk:
		return "shrunk"
	case AmbiguousEmpty:
		return "ambiguous-empty"
	case Concluded:
		return "concluded"
	default:
		return "unknown"
	}
}

// Outcome is the result of comparing an observation to the game model.
type Outcome struct {
	Kind Kind

	Moves  []game.Ply // the plies appended to the model, for Advanced
	Reason string     // why the observation diverged, for Diverged
	Result string     // the observed result marker, for Concluded
}

func (outcome Outcome) String() string {
	switch outcome.Kind {
	case Advanced:
		return fmt.Sprintf("advanced(%d)", len(outcome.Moves))
	case Diverged:
		return "diverged(" + outcome.Reason + ")"
	case Concluded:
		return "concluded(" + outcome.Result + ")"
	default:
		return outcome.Kind.String()
	}
}
