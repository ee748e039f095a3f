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
	"sync"
)

// Pipe is an in-process Channel. The supervisor reads messages from
// Messages and acknowledges with Ack.
type Pipe struct {
	messages chan Message
	acks     acks

	once   sync.Once
	closed chan struct{}
}

var _ Channel = (*Pipe)(nil)

// NewPipe returns a Pipe which buffers up to size unread messages.
func NewPipe(size int) *Pipe {
	return &Pipe{
		messages: make(chan Message, size),
		acks:     newAcks(),
		closed:   make(chan struct{}),
	}
}

func (pipe *Pipe) Send(msg Message) error {
	select {
	case <-pipe.closed:
		return ErrClosed
	default:
	}

	select {
	case pipe.messages <- msg:
		return nil
	default:
		return ErrFull
	}
}

func (pipe *Pipe) AwaitAck(ctx context.Context) error {
	return pipe.acks.await(ctx, pipe.closed)
}

// Messages returns the supervisor's end of the pipe.
func (pipe *Pipe) Messages() <-chan Message {
	return pipe.messages
}

// Ack acknowledges that the supervisor has cleared its state.
func (pipe *Pipe) Ack() {
	pipe.acks.deliver()
}

// Close closes the pipe, unblocking any waiting AwaitAck.
func (pipe *Pipe) Close() {
	pipe.once.Do(func() { close(pipe.closed) })
}
