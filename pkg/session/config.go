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

package session

import (
	"time"

	"laptudirm.com/x/tandem/pkg/reconcile"
)

// Config contains the tuning constants of a Controller. The defaults are
// a starting point: they trade responsiveness against the risk of acting
// on a transient page state.
type Config struct {
	PollInterval time.Duration `yaml:"poll-interval"`

	// Continuous makes the controller start a new game after every
	// finished one instead of terminating.
	Continuous bool `yaml:"continuous"`

	// Stability requirements for a session to start, for the first
	// session and for the ones following a previous session.
	StableStreak          int           `yaml:"stable-streak"`
	RestartStableStreak   int           `yaml:"restart-stable-streak"`
	SessionTimeout        time.Duration `yaml:"session-timeout"`
	RestartSessionTimeout time.Duration `yaml:"restart-session-timeout"`

	// Number of empty move lists which are accepted as a new game when
	// the start position cannot be checked.
	UnknownStartStreak        int `yaml:"unknown-start-streak"`
	RestartUnknownStartStreak int `yaml:"restart-unknown-start-streak"`

	ConfirmTimeout    time.Duration `yaml:"confirm-timeout"`
	ConfirmAttempts   int           `yaml:"confirm-attempts"`
	ConfirmRetryDelay time.Duration `yaml:"confirm-retry-delay"`

	// FailureCeiling is the number of consecutive failures after which a
	// full resync is forced.
	FailureCeiling int `yaml:"failure-ceiling"`

	// GameOverTimeout bounds the wait for the end of game indicator to
	// clear after requesting a new game.
	GameOverTimeout time.Duration `yaml:"game-over-timeout"`

	Sync reconcile.Policy `yaml:"sync"`
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 250 * time.Millisecond,

		StableStreak:          2,
		RestartStableStreak:   3,
		SessionTimeout:        30 * time.Second,
		RestartSessionTimeout: 60 * time.Second,

		UnknownStartStreak:        6,
		RestartUnknownStartStreak: 10,

		ConfirmTimeout:    5 * time.Second,
		ConfirmAttempts:   3,
		ConfirmRetryDelay: 200 * time.Millisecond,

		FailureCeiling:  10,
		GameOverTimeout: 15 * time.Second,

		Sync: reconcile.DefaultPolicy(),
	}
}

// normalize replaces unset values with their defaults.
func (config Config) normalize() Config {
	defaults := DefaultConfig()

	positive := func(value *int, fallback int) {
		if *value < 1 {
			*value = fallback
		}
	}

	duration := func(value *time.Duration, fallback time.Duration) {
		if *value <= 0 {
			*value = fallback
		}
	}

	duration(&config.PollInterval, defaults.PollInterval)
	positive(&config.StableStreak, defaults.StableStreak)
	positive(&config.RestartStableStreak, defaults.RestartStableStreak)
	duration(&config.SessionTimeout, defaults.SessionTimeout)
	duration(&config.RestartSessionTimeout, defaults.RestartSessionTimeout)
	positive(&config.UnknownStartStreak, defaults.UnknownStartStreak)
	positive(&config.RestartUnknownStartStreak, defaults.RestartUnknownStartStreak)
	duration(&config.ConfirmTimeout, defaults.ConfirmTimeout)
	positive(&config.ConfirmAttempts, defaults.ConfirmAttempts)
	positive(&config.FailureCeiling, defaults.FailureCeiling)
	duration(&config.GameOverTimeout, defaults.GameOverTimeout)

	return config
}
