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
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Stream is a Channel which writes messages as lines to a writer and
// reads acknowledgements as lines from a reader, like a process's
// standard output and input.
type Stream struct {
	mu     sync.Mutex
	writer *bufio.Writer

	acks   acks
	closed chan struct{}
}

var _ Channel = (*Stream)(nil)

// NewStream returns a new Stream and starts reading from r in the
// background until it reaches EOF.
func NewStream(r io.Reader, w io.Writer) *Stream {
	stream := &Stream{
		writer: bufio.NewWriter(w),
		acks:   newAcks(),
		closed: make(chan struct{}),
	}

	go stream.read(r)
	return stream
}

func (stream *Stream) read(r io.Reader) {
	defer close(stream.closed)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		msg, err := Parse(line)
		switch {
		case err != nil:
			logrus.WithField("line", line).Debug("ignoring unknown control line")
		case msg.Tag != AckCleared:
			logrus.WithField("message", msg.Encode()).Debug("ignoring outbound message from supervisor")
		default:
			stream.acks.deliver()
		}
	}

	if err := scanner.Err(); err != nil {
		logrus.WithError(err).Debug("control stream closed")
	}
}

func (stream *Stream) Send(msg Message) error {
	stream.mu.Lock()
	defer stream.mu.Unlock()

	if _, err := stream.writer.WriteString(msg.Encode() + "\n"); err != nil {
		return err
	}

	return stream.writer.Flush()
}

// AwaitAck blocks until an ACK_CLEARED line is read. It fails with
// ErrClosed if the reader runs out first.
func (stream *Stream) AwaitAck(ctx context.Context) error {
	return stream.acks.await(ctx, stream.closed)
}
