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
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/tandem/internal/util"
	"laptudirm.com/x/tandem/pkg/fault"
	"laptudirm.com/x/tandem/pkg/game"
	"laptudirm.com/x/tandem/pkg/observe"
	"laptudirm.com/x/tandem/pkg/reconcile"
)

// pendingMove is a move which has been applied to the surface but has not
// yet been observed in its move list.
type pendingMove struct {
	uci  string
	san  string
	base int // length of the model when the move was played

	attempts int
	deadline time.Time
}

// attempt applies the move to the surface and restarts the confirmation
// deadline. Failing to apply the move is not an error in itself, it will
// simply fail to be confirmed.
func (move *pendingMove) attempt(ctx context.Context, executor Executor, timeout time.Duration) error {
	move.attempts++
	move.deadline = time.Now().Add(timeout)

	if err := executor.Apply(ctx, move.uci); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		logrus.WithError(err).WithFields(logrus.Fields{
			"move":    move.uci,
			"attempt": move.attempts,
		}).Warn("unable to apply move")
	}

	return nil
}

// matches reports whether the observed token denotes the pending move.
func (move *pendingMove) matches(model *game.Model, token string) bool {
	if game.SameMove(token, move.san) {
		return true
	}

	parsed, err := model.Parse(token)
	return err == nil && parsed.String() == move.uci
}

// confirm waits for the pending move to appear in the move list.
func (c *Controller) confirm(ctx context.Context) error {
	move := c.pending
	if move == nil {
		c.setState(Active)
		return nil
	}

	snap := observe.Capture(ctx, c.observer)
	if snap.Transient || !snap.Visible {
		return c.retry(ctx, move)
	}

	length := snap.Len()
	switch {
	case length > move.base:
		if !move.matches(c.model, snap.Moves[move.base]) {
			logrus.WithFields(logrus.Fields{
				"expected": move.san,
				"observed": snap.Moves[move.base],
			}).Warn("confirmed move does not match")

			c.pending = nil
			if err := c.fail(ctx, "confirmed move mismatch", move.base+1); err != nil {
				return err
			}

			if c.state == AwaitingConfirmation {
				c.setState(Active)
			}
			return nil
		}

		logrus.WithFields(logrus.Fields{
			"move":     move.san,
			"attempts": move.attempts,
		}).Debug("move confirmed")

		// only the confirmed move is taken, the rest is left to Active
		confirmed := snap
		confirmed.Moves = snap.Moves[:move.base+1]
		confirmed.Result = ""

		c.pending = nil
		c.apply(c.sync.Reconcile(confirmed, c.model, &c.tracked))
		c.setState(Active)
		return nil

	case length < move.base, snap.Result != "", snap.GameOver:
		// the game moved on without the move, let Active sort it out
		c.pending = nil
		c.setState(Active)
		return nil
	}

	return c.retry(ctx, move)
}

// retry re-applies the pending move once its confirmation deadline has
// passed, and gives up once the attempts are exhausted.
func (c *Controller) retry(ctx context.Context, move *pendingMove) error {
	if time.Now().Before(move.deadline) {
		return nil
	}

	if move.attempts < c.config.ConfirmAttempts {
		logrus.WithFields(logrus.Fields{
			"move":    move.san,
			"attempt": move.attempts + 1,
		}).Debug("move not confirmed, retrying")

		if err := util.Sleep(ctx, c.config.ConfirmRetryDelay); err != nil {
			return err
		}

		return move.attempt(ctx, c.executor, c.config.ConfirmTimeout)
	}

	c.pending = nil
	c.tracked.Fail()
	err := fault.New(fault.ConfirmationTimeout,
		"%d attempts, move %s, last seen [%s]",
		move.attempts, move.san, strings.Join(c.tracked.LastSeen, " "),
	)

	if c.config.Continuous {
		// a full resync may still find the move
		logrus.WithError(err).Warn("move not confirmed, resyncing")

		model, resyncErr := c.sync.Resync(ctx, &c.tracked, "confirmation timeout", reconcile.Unbounded)
		if resyncErr == nil && model.Len() > move.base {
			c.model = model
			c.resynced()
			c.setState(Active)
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	c.fatal(err)
	return nil
}
