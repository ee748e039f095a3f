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
	"errors"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/tandem/internal/util"
	"laptudirm.com/x/tandem/pkg/control"
	"laptudirm.com/x/tandem/pkg/fault"
	"laptudirm.com/x/tandem/pkg/game"
	"laptudirm.com/x/tandem/pkg/observe"
	"laptudirm.com/x/tandem/pkg/oracle"
	"laptudirm.com/x/tandem/pkg/reconcile"
)

// active reconciles the model with the surface, and plays a move if it is
// the engine's turn.
func (c *Controller) active(ctx context.Context) error {
	snap := observe.Capture(ctx, c.observer)
	if snap.Transient {
		logrus.Trace("transient observation, skipping tick")
		return nil
	}

	if snap.Result != "" {
		// catch up with the last move before the result, if possible
		if snap.Len() == c.model.Len()+1 {
			moves := snap
			moves.Result = ""
			c.apply(c.sync.Reconcile(moves, c.model, &c.tracked))
		}

		c.end(ending{result: snap.Result, reason: "result marker"})
		return nil
	}

	if snap.GameOver {
		c.end(ending{reason: "game over indicator"})
		return nil
	}

	if c.tracked.SessionChanged(snap.SessionID) {
		return c.newGame(ctx, "session changed")
	}

	// a shrinking list may reset the model, keep the finished game around
	previous := c.model
	if snap.Len() < c.model.Len() {
		previous = c.model.Clone()
	}

	outcome := c.sync.Reconcile(snap, c.model, &c.tracked)
	switch outcome.Kind {
	case reconcile.Advanced:
		c.apply(outcome)

	case reconcile.Shrunk:
		c.model = previous
		return c.newGame(ctx, "move list shrank")

	case reconcile.Diverged:
		logrus.WithField("reason", outcome.Reason).Warn("move list diverged")
		if err := c.fail(ctx, outcome.Reason, c.model.Len()+1); err != nil {
			return err
		}

		if c.state != Active {
			return nil
		}

	case reconcile.AmbiguousEmpty:
		return nil
	}

	if terminal := c.model.Terminal(); terminal != game.None {
		c.end(ending{reason: terminal.String()})
		return nil
	}

	if c.enginesTurn() {
		return c.move(ctx)
	}

	return nil
}

// apply reports the plies of an Advanced outcome.
func (c *Controller) apply(outcome reconcile.Outcome) {
	if outcome.Kind != reconcile.Advanced {
		return
	}

	c.tracked.Succeed()
	c.escalated = false
	for _, ply := range outcome.Moves {
		logrus.WithFields(logrus.Fields{
			"ply":  c.model.Len(),
			"move": ply.Token,
		}).Debug("move observed")

		c.send(control.Single(ply.Token))
	}

	c.report()
}

// move asks the oracle for a move, applies it to the surface and starts
// waiting for its confirmation.
func (c *Controller) move(ctx context.Context) error {
	suggestion, err := c.oracle.SelectMove(ctx, c.model.Position(), oracle.Context{
		PlyCount: c.model.Len(),
	})

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return c.oracleFailed(ctx, err)
	}

	if suggestion.HasEval {
		c.eval, c.hasEval = suggestion.Eval, true
	}

	san, err := c.model.EncodeUCI(suggestion.Move)
	if err != nil {
		return c.oracleFailed(ctx, fault.Wrap(fault.OracleFailure, err, "suggested %s", suggestion.Move))
	}

	if err := util.Sleep(ctx, suggestion.Delay); err != nil {
		return err
	}

	c.pending = &pendingMove{
		uci:  suggestion.Move,
		san:  san,
		base: c.model.Len(),
	}

	logrus.WithFields(logrus.Fields{
		"move": san,
		"ply":  c.model.Len() + 1,
	}).Debug("playing move")

	if err := c.pending.attempt(ctx, c.executor, c.config.ConfirmTimeout); err != nil {
		return err
	}

	c.setState(AwaitingConfirmation)
	return nil
}

// oracleFailed surfaces a failure of the oracle. The session stays active
// so that the next tick retries.
func (c *Controller) oracleFailed(ctx context.Context, err error) error {
	if !fault.Is(err, fault.OracleFailure) {
		err = fault.Wrap(fault.OracleFailure, err, "ply %d", c.model.Len())
	}

	logrus.WithError(err).Error("move oracle failed")
	c.surface(err)
	return c.fail(ctx, "oracle failure", skipResync)
}

// newGame starts a new session after a new game was detected while one
// was still active, without going through a full transition.
func (c *Controller) newGame(ctx context.Context, reason string) error {
	logrus.WithField("reason", reason).Info("new game detected")

	c.record(ctx, ending{reason: reason})
	c.model = game.New()
	c.pending = nil
	c.observer.ResetCache(ctx)

	model, err := c.sync.Resync(ctx, &c.tracked, reason, reconcile.Unbounded)
	switch {
	case err == nil:
	case errors.Is(err, reconcile.ErrConcluded):
		// the new list is already finished, wait for a fresh game instead
		c.ending = ending{reason: reason}
		c.setState(Transitioning)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		c.fatal(err)
		return nil
	}

	snap := observe.Capture(ctx, c.observer)

	c.send(control.Restart())
	if err := c.channel.AwaitAck(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.terminate(err)
		return nil
	}

	white := c.white
	if known, ok := c.observer.EngineIsWhite(ctx).Get(); ok {
		white = known
	}

	return c.begin(ctx, model, white, snap)
}

// resync rebuilds the model from the surface, replacing it wholesale if
// successful. A concluded game ends the session, and an exhausted resync
// is fatal.
func (c *Controller) resync(ctx context.Context, reason string, expected int) error {
	model, err := c.sync.Resync(ctx, &c.tracked, reason, expected)
	switch {
	case err == nil:
		c.model = model
		c.resynced()
		return nil

	case errors.Is(err, reconcile.ErrConcluded):
		snap := observe.Capture(ctx, c.observer)
		c.end(ending{result: snap.Result, reason: "result marker"})
		return nil

	case ctx.Err() != nil:
		return ctx.Err()

	default:
		c.fatal(err)
		return nil
	}
}

// skipResync makes fail only count the failure, unless the failure
// ceiling has been reached.
const skipResync = -2

// resynced replaces the supervisor's move list with the rebuilt one.
func (c *Controller) resynced() {
	c.send(control.Bulk(c.model.Tokens()))
	c.report()
}

// fail counts a failed step and resyncs the model with the given expected
// length. Once the failure ceiling is reached the resync is unbounded, and
// reaching it again without any progress in between ends the session.
func (c *Controller) fail(ctx context.Context, reason string, expected int) error {
	failures := c.tracked.Fail()
	forced := failures >= c.config.FailureCeiling

	switch {
	case forced && c.escalated:
		c.fatal(fault.New(fault.ResyncExhausted,
			"%d consecutive failures after a forced resync, last: %s", failures, reason,
		))
		return nil
	case forced:
		logrus.WithFields(logrus.Fields{
			"failures": failures,
			"reason":   reason,
		}).Warn("failure ceiling reached, forcing resync")
		expected = reconcile.Unbounded
	case expected == skipResync:
		return nil
	}

	if err := c.resync(ctx, reason, expected); err != nil {
		return err
	}

	if forced && c.state != Transitioning && c.state != Terminated {
		c.tracked.Succeed()
		c.escalated = true
	}

	return nil
}

// end ends the current session for the given reason.
func (c *Controller) end(end ending) {
	logrus.WithFields(logrus.Fields{
		"reason": end.reason,
		"result": end.result,
		"plies":  c.model.Len(),
	}).Info("game session ended")

	c.pending = nil
	c.ending = end
	c.setState(Transitioning)
}

// fatal ends the current session with a surfaced fault. Without
// continuous play, the controller terminates.
func (c *Controller) fatal(err error) {
	logrus.WithError(err).Error("session failed")
	c.surface(err)
	c.end(ending{reason: fault.KindOf(err).String(), err: err})
}

// terminate stops the controller for good with a surfaced fault.
func (c *Controller) terminate(err error) {
	logrus.WithError(err).Error("session terminated")
	c.surface(err)
	c.err = err
	c.setState(Terminated)
}

// surface reports a fault to the supervisor.
func (c *Controller) surface(err error) {
	var f *fault.Fault
	if errors.As(err, &f) {
		c.send(control.Failure(f.Kind.Code(), f.Detail))
		return
	}

	c.send(control.Failure(fault.KindOf(err).Code(), err.Error()))
}
