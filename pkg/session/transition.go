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

	"laptudirm.com/x/tandem/internal/util"
	"laptudirm.com/x/tandem/pkg/archive"
	"laptudirm.com/x/tandem/pkg/control"
	"laptudirm.com/x/tandem/pkg/game"
)

// transition archives the finished game and, in continuous play, prepares
// the surface for the next one.
func (c *Controller) transition(ctx context.Context) error {
	c.record(ctx, c.ending)

	if !c.config.Continuous {
		c.err = c.ending.err
		c.setState(Terminated)
		return nil
	}

	logrus.Info("requesting a new game")

	requested := c.observer.RequestNewGame(ctx)
	if !requested && ctx.Err() == nil {
		requested = c.observer.RequestNewGame(ctx)
	}

	if !requested {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// a new game can still be started by hand
		logrus.Warn("unable to request a new game")
	}

	cleared := util.Poll(ctx, c.config.GameOverTimeout, c.config.PollInterval, func() bool {
		return !c.observer.GameOver(ctx)
	})

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if !cleared {
		logrus.Warn("game over indicator did not clear")
	}

	c.observer.ResetCache(ctx)

	c.send(control.Restart())
	if err := c.channel.AwaitAck(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.terminate(err)
		return nil
	}

	c.previous = c.tracked.SessionID
	c.restarted = true

	c.model = game.New()
	c.pending = nil
	c.ending = ending{}
	c.wait = nil

	c.setState(AwaitingSession)
	return nil
}

// record archives the current game, if it has any moves.
func (c *Controller) record(ctx context.Context, end ending) {
	if c.archive == nil || c.model.Len() == 0 {
		return
	}

	result, reason := c.model.Result()
	if parsed, found := game.ParseResult(end.result); found {
		result = parsed
	}

	if reason == "" {
		reason = end.reason
	}

	id, err := c.archive.Record(ctx, archive.Game{
		Session:     c.tracked.SessionID,
		EngineWhite: c.white,
		Started:     c.started,
		Ended:       time.Now(),
		Result:      result.String(),
		Reason:      reason,
		Moves:       c.model.Tokens(),
	})

	if err != nil {
		logrus.WithError(err).Warn("unable to archive game")
		return
	}

	logrus.WithFields(logrus.Fields{
		"id":     id,
		"result": result.String(),
		"plies":  c.model.Len(),
	}).Debug("game archived")
}
