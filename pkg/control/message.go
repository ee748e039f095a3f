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

// Package control implements the message channel between a synchronized
// session and the process supervising it. Messages are single lines of
// text, a tag optionally followed by a colon and a payload.
package control

import (
	"errors"
	"fmt"
	"strings"
)

type Tag string

const (
	SessionStart   Tag = "SESSION_START"
	SessionRestart Tag = "SESSION_RESTART"
	MoveSingle     Tag = "MOVE_SINGLE"
	MoveBulk       Tag = "MOVE_BULK"
	Status         Tag = "STATUS"
	Error          Tag = "ERROR"

	// AckCleared is the only inbound message, sent by the supervisor once
	// it has cleared its own state after a SessionRestart.
	AckCleared Tag = "ACK_CLEARED"
)

var tags = map[Tag]bool{
	SessionStart: true, SessionRestart: true,
	MoveSingle: true, MoveBulk: true,
	Status: true, Error: true, AckCleared: true,
}

type Message struct {
	Tag     Tag
	Payload string
}

// Encode returns the line representation of the message, without the
// trailing newline.
func (msg Message) Encode() string {
	if msg.Payload == "" {
		return string(msg.Tag)
	}

	return string(msg.Tag) + ":" + msg.Payload
}

func (msg Message) String() string {
	return msg.Encode()
}

var ErrUnknownTag = errors.New("control: unknown message tag")

// Parse parses a single line into a Message.
func Parse(line string) (Message, error) {
	line = strings.TrimSpace(line)
	tag, payload, _ := strings.Cut(line, ":")

	msg := Message{Tag: Tag(tag), Payload: payload}
	if !tags[msg.Tag] {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownTag, line)
	}

	return msg, nil
}

func Start() Message {
	return Message{Tag: SessionStart}
}

func Restart() Message {
	return Message{Tag: SessionRestart}
}

// Single announces a single move in short-form notation.
func Single(move string) Message {
	return Message{Tag: MoveSingle, Payload: move}
}

// Bulk announces a complete move list.
func Bulk(moves []string) Message {
	return Message{Tag: MoveBulk, Payload: strings.Join(moves, ",")}
}

// Report announces the status of the game: an evaluation summary, the
// win/draw/loss expectation and the material balance.
func Report(eval, wdl, material string) Message {
	return Message{Tag: Status, Payload: eval + "|" + wdl + "|" + material}
}

// Failure reports an error with an outward code and optional detail.
func Failure(code, detail string) Message {
	payload := code
	if detail != "" {
		payload += ":" + detail
	}

	return Message{Tag: Error, Payload: payload}
}

func Ack() Message {
	return Message{Tag: AckCleared}
}
