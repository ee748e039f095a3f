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
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/tandem/pkg/control"
	"laptudirm.com/x/tandem/pkg/fault"
	"laptudirm.com/x/tandem/pkg/game"
	"laptudirm.com/x/tandem/pkg/observe"
	"laptudirm.com/x/tandem/pkg/reconcile"
)

// sessionWait is the progress of waiting for a stable session.
type sessionWait struct {
	started time.Time
	polls   int

	streak  int // consecutive acceptable observations
	unknown int // consecutive empty lists without a start position check
	lastLen int // length of the last observed list, -1 if none

	required        int
	unknownRequired int
	timeout         time.Duration
}

func (c *Controller) newWait() *sessionWait {
	wait := &sessionWait{
		started:         time.Now(),
		lastLen:         -1,
		required:        c.config.StableStreak,
		unknownRequired: c.config.UnknownStartStreak,
		timeout:         c.config.SessionTimeout,
	}

	if c.restarted {
		wait.required = c.config.RestartStableStreak
		wait.unknownRequired = c.config.RestartUnknownStartStreak
		wait.timeout = c.config.RestartSessionTimeout
	}

	return wait
}

// awaitSession polls the surface once, and starts a session once enough
// consecutive polls have shown a game which can be joined.
func (c *Controller) awaitSession(ctx context.Context) error {
	if c.wait == nil {
		c.wait = c.newWait()
	}

	wait := c.wait
	wait.polls++

	if elapsed := time.Since(wait.started); elapsed > wait.timeout {
		c.wait = nil
		c.terminate(fault.New(fault.SessionTimeout,
			"no stable game found in %s after %d polls", elapsed.Round(time.Second), wait.polls,
		))
		return nil
	}

	logger := logrus.WithField("poll", wait.polls)

	snap := observe.Capture(ctx, c.observer)
	if !snap.Ready || snap.Transient {
		wait.streak = 0
		logger.Trace("board not ready")
		return nil
	}

	starting := observe.Is(snap.Starting, true)

	// a finished game is left alone until the board is reset
	if snap.GameOver && !starting {
		wait.streak = 0
		logger.Trace("game over indicator visible")
		return nil
	}

	white, known := c.observer.EngineIsWhite(ctx).Get()
	if !known {
		logger.Trace("engine colour unknown")
		return nil
	}

	if !snap.Visible {
		logger.Trace("move list not visible")
		return nil
	}

	length := len(snap.Moves)

	if length == 0 && snap.Result == "" {
		if starting {
			wait.unknown = 0
		} else {
			if snap.Starting.Status != observe.Unknown {
				wait.streak = 0
				logger.Trace("board not at start position")
				return nil
			}

			// once trusted, an unknown start counts towards the streak
			wait.unknown++
			if wait.unknown < wait.unknownRequired {
				wait.streak = 0
				logger.Trace("start position unknown")
				return nil
			}
		}
	} else {
		wait.unknown = 0
	}

	if wait.lastLen >= 0 && length < wait.lastLen {
		logger.WithFields(logrus.Fields{
			"from": wait.lastLen,
			"to":   length,
		}).Debug("move list shrank while waiting for a game")
		c.observer.ResetCache(ctx)
		wait.lastLen = -1
		return nil
	}

	wait.lastLen = length

	// the start position overrides any stale list of a finished game
	if snap.Result != "" {
		if starting {
			c.observer.ResetCache(ctx)
			return c.begin(ctx, game.New(), white, snap)
		}

		logger.WithField("result", snap.Result).Trace("previous game still visible")
		return nil
	}

	model, err := game.Replay(snap.Moves)
	if err != nil {
		logger.WithError(err).Debug("unable to replay move list")
		c.observer.ResetCache(ctx)
		return nil
	}

	if model.Terminal() != game.None {
		if starting {
			c.observer.ResetCache(ctx)
			return c.begin(ctx, game.New(), white, snap)
		}

		logger.Trace("finished game still visible")
		return nil
	}

	if c.restarted {
		expected := 0
		if !white {
			expected = 1
		}

		if length > expected+5 {
			if starting {
				c.observer.ResetCache(ctx)
				return c.begin(ctx, game.New(), white, snap)
			}

			logger.WithField("plies", length).Trace("move list too long for a new game")
			return nil
		}

		id, known := snap.SessionID.Get()
		changed := known && id != "" && id != c.previous
		if !changed && !starting && length > expected+1 {
			wait.streak = 0
			logger.Trace("session unchanged and game in progress")
			return nil
		}
	}

	wait.streak++
	logger.WithFields(logrus.Fields{
		"streak": wait.streak,
		"plies":  length,
	}).Trace("game looks valid")

	if wait.streak < wait.required {
		return nil
	}

	return c.begin(ctx, model, white, snap)
}

// begin starts a new session with the given model.
func (c *Controller) begin(ctx context.Context, model *game.Model, white bool, snap observe.Snapshot) error {
	c.wait = nil
	c.pending = nil
	c.escalated = false
	c.model = model
	c.white = white
	c.started = time.Now()
	c.hasEval = false

	c.tracked = reconcile.State{}
	c.tracked.RecordSession(snap.SessionID)

	logrus.WithFields(logrus.Fields{
		"plies":   model.Len(),
		"white":   white,
		"session": c.tracked.SessionID,
	}).Info("game session started")

	c.send(control.Start())
	if model.Len() > 0 {
		c.send(control.Bulk(model.Tokens()))
	}

	c.report()
	c.setState(Active)
	return nil
}
