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

package control

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Channel is the session's end of a control channel.
type Channel interface {
	// Send sends the given message to the supervisor.
	Send(msg Message) error

	// AwaitAck blocks until the supervisor acknowledges that it has
	// cleared its state. There is no timeout other than the context.
	AwaitAck(ctx context.Context) error
}

var (
	ErrClosed = errors.New("control: channel closed")
	ErrFull   = errors.New("control: channel full")
)

// Discard is a Channel without a supervisor: messages are only logged and
// acknowledgements are immediate.
type Discard struct{}

var _ Channel = Discard{}

func (Discard) Send(msg Message) error {
	logrus.WithField("message", msg.Encode()).Debug("control message")
	return nil
}

func (Discard) AwaitAck(ctx context.Context) error {
	return ctx.Err()
}

// acks is a latch of pending acknowledgements shared by the transports.
// Duplicate acknowledgements before a wait collapse into one.
type acks chan struct{}

func newAcks() acks {
	return make(acks, 1)
}

func (ch acks) deliver() {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (ch acks) await(ctx context.Context, closed <-chan struct{}) error {
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-closed:
		// an ack may have raced the close
		select {
		case <-ch:
			return nil
		default:
			return ErrClosed
		}
	}
}
