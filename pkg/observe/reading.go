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

package observe

// Status classifies a single read of the external surface.
type Status int

const (
	// Known means the read succeeded and produced a value.
	Known Status = iota

	// Unknown means the surface could not answer, either because the
	// value is not visible or because the capability is not supported.
	Unknown

	// TransientFailure means the read failed in a way which is expected
	// to clear up on a later poll (stale element, page in transition).
	TransientFailure
)

func (status Status) String() string {
	switch status {
	case Known:
		return "known"
	case Unknown:
		return "unknown"
	default:
		return "transient"
	}
}

// Reading is the three-valued result of reading a value from the surface.
type Reading[T any] struct {
	Status Status
	Value  T
	Err    error
}

func Value[T any](value T) Reading[T] {
	return Reading[T]{Status: Known, Value: value}
}

func Missing[T any]() Reading[T] {
	return Reading[T]{Status: Unknown}
}

func Transient[T any](err error) Reading[T] {
	return Reading[T]{Status: TransientFailure, Err: err}
}

// Get returns the read value and whether it is known.
func (reading Reading[T]) Get() (T, bool) {
	return reading.Value, reading.Status == Known
}

func (reading Reading[T]) Known() bool {
	return reading.Status == Known
}

// Is reports whether the reading is known and equal to the given value.
func Is[T comparable](reading Reading[T], value T) bool {
	return reading.Status == Known && reading.Value == value
}
