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

// Package fault implements the error taxonomy of a synchronized session.
// Every fault has a Kind which decides whether it is absorbed or surfaced
// to the supervising process, and under which outward code.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// TransientObservation is a one-tick parse or visibility gap.
	TransientObservation Kind = iota

	// Divergence is a move-list mismatch which is recovered by a resync.
	Divergence

	// ResyncExhausted is a resync which ran out of attempts.
	ResyncExhausted

	// ConfirmationTimeout is a move that was never observed as applied.
	ConfirmationTimeout

	// OracleFailure is a move oracle which failed to produce a move.
	OracleFailure

	// SessionTimeout is a wait for a stable session which timed out.
	SessionTimeout

	// EngineStartup is an engine process which could not be started.
	EngineStartup
)

func (kind Kind) String() string {
	switch kind {
	case TransientObservation:
		return "transient observation"
	case Divergence:
		return "divergence"
	case ResyncExhausted:
		return "resync exhausted"
	case ConfirmationTimeout:
		return "confirmation timeout"
	case OracleFailure:
		return "oracle failure"
	case SessionTimeout:
		return "session timeout"
	case EngineStartup:
		return "engine startup"
	default:
		return "unknown fault"
	}
}

// Code returns the outward error code of the kind of fault.
func (kind Kind) Code() string {
	switch kind {
	case ConfirmationTimeout:
		return "CONFIRMATION"
	case OracleFailure:
		return "ORACLE"
	case SessionTimeout:
		return "TIMEOUT"
	case EngineStartup:
		return "ENGINE"
	default:
		return "RUNTIME"
	}
}

// Fatal reports whether a fault of this kind leaves the correctness of
// the game model unguaranteed, and has to be surfaced.
func (kind Kind) Fatal() bool {
	switch kind {
	case TransientObservation, Divergence:
		return false
	default:
		return true
	}
}

// Fault is an error with a Kind. Detail only ever carries diagnostic
// context like counts and last-seen tokens.
type Fault struct {
	Kind   Kind
	Detail string
	Err    error
}

func New(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap returns a new Fault of the given kind wrapping the given error.
func Wrap(kind Kind, err error, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

func (fault *Fault) Error() string {
	msg := fault.Kind.String()
	if fault.Detail != "" {
		msg += ": " + fault.Detail
	}

	if fault.Err != nil {
		msg += ": " + fault.Err.Error()
	}

	return msg
}

func (fault *Fault) Unwrap() error {
	return fault.Err
}

// KindOf returns the Kind of the first Fault in err's chain. Errors which
// are not faults are classified as transient.
func KindOf(err error) Kind {
	var fault *Fault
	if errors.As(err, &fault) {
		return fault.Kind
	}

	return TransientObservation
}

// Is reports whether err's chain contains a Fault of the given kind.
func Is(err error, kind Kind) bool {
	var fault *Fault
	return errors.As(err, &fault) && fault.Kind == kind
}
