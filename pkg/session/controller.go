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

// Package session implements the lifecycle of synchronized games: waiting
// for a game to appear on the surface, playing it by asking an oracle for
// moves and confirming them on the surface, and moving on to the next
// game once it ends.
//
// A Controller is a single logical loop. Everything it owns, the game
// model included, is only ever touched from Tick.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/notnil/chess"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/tandem/pkg/archive"
	"laptudirm.com/x/tandem/pkg/control"
	"laptudirm.com/x/tandem/pkg/game"
	"laptudirm.com/x/tandem/pkg/observe"
	"laptudirm.com/x/tandem/pkg/oracle"
	"laptudirm.com/x/tandem/pkg/reconcile"
)

type State int

const (
	AwaitingSession State = iota
	Active
	AwaitingConfirmation
	Transitioning
	Terminated
)

func (state State) String() string {
	switch state {
	case AwaitingSession:
		return "awaiting-session"
	case Active:
		return "active"
	case AwaitingConfirmation:
		return "awaiting-confirmation"
	case Transitioning:
		return "transitioning"
	default:
		return "terminated"
	}
}

// Executor applies moves to the surface. It is best-effort: a move is only
// known to be applied once it is observed.
type Executor interface {
	Apply(ctx context.Context, move string) error
}

// Archive records finished games.
type Archive interface {
	Record(ctx context.Context, game archive.Game) (string, error)
}

type Options struct {
	Observer observe.Observer
	Executor Executor
	Oracle   oracle.Oracle
	Channel  control.Channel

	// optional
	Archive Archive
	OnState func(State)
}

// Controller is the lifecycle controller of a single surface.
type Controller struct {
	config Config

	observer observe.Observer
	executor Executor
	oracle   oracle.Oracle
	channel  control.Channel
	archive  Archive
	onState  func(State)

	sync *reconcile.Engine

	state   State
	model   *game.Model
	tracked reconcile.State
	white   bool
	started time.Time

	wait    *sessionWait // while AwaitingSession
	pending *pendingMove // while AwaitingConfirmation
	ending  ending       // while Transitioning

	// previous is the identifier of the last session, and restarted
	// whether there has been one at all
	previous  string
	restarted bool

	// escalated is set once the failure ceiling forced a resync, and
	// cleared by the next observed progress
	escalated bool

	eval    oracle.Eval
	hasEval bool

	err error
}

// ending describes why a session ended.
type ending struct {
	result string // observed result marker, if any
	reason string
	err    error // fatal fault, if any
}

func New(config Config, opts Options) *Controller {
	config = config.normalize()

	channel := opts.Channel
	if channel == nil {
		channel = control.Discard{}
	}

	return &Controller{
		config:   config,
		observer: opts.Observer,
		executor: opts.Executor,
		oracle:   opts.Oracle,
		channel:  channel,
		archive:  opts.Archive,
		onState:  opts.OnState,
		sync:     reconcile.NewEngine(opts.Observer, config.Sync),
		model:    game.New(),
	}
}

func (c *Controller) State() State {
	return c.state
}

// Model returns the authoritative game model. It must not be modified.
func (c *Controller) Model() *game.Model {
	return c.model
}

// Err returns the fault which terminated the controller, if any.
func (c *Controller) Err() error {
	return c.err
}

// Run ticks the controller every poll interval until it terminates or the
// context is done. It returns the fault the controller terminated with.
func (c *Controller) Run(ctx context.Context) error {
	if c.onState != nil {
		c.onState(c.state)
	}

	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for {
		if err := c.Tick(ctx); err != nil {
			return err
		}

		if c.state == Terminated {
			return c.err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs a single step of the controller. It only returns an error if
// the context is done; every other failure is handled internally.
func (c *Controller) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	switch c.state {
	case AwaitingSession:
		err = c.awaitSession(ctx)
	case Active:
		err = c.active(ctx)
	case AwaitingConfirmation:
		err = c.confirm(ctx)
	case Transitioning:
		err = c.transition(ctx)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if err != nil {
		// only context errors are expected to escape a step
		logrus.WithError(err).Error("unexpected error in session step")
		c.fatal(err)
	}

	return nil
}

func (c *Controller) setState(state State) {
	if c.state == state {
		return
	}

	logrus.WithFields(logrus.Fields{
		"from": c.state.String(),
		"to":   state.String(),
	}).Debug("session state changed")

	c.state = state
	if c.onState != nil {
		c.onState(state)
	}
}

func (c *Controller) send(msg control.Message) {
	if err := c.channel.Send(msg); err != nil {
		logrus.WithError(err).WithField("message", msg.Encode()).Warn("unable to send control message")
	}
}

// enginesTurn reports whether the engine is to move in the model.
func (c *Controller) enginesTurn() bool {
	return (c.model.SideToMove() == chess.White) == c.white
}
