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

package game

import "strings"

// Result represents the decided result of a game, as written at the end of
// a move list.
type Result int

const (
	Undecided Result = iota
	WhiteWins
	BlackWins
	Draw
)

// String returns the result marker of the given Result.
func (result Result) String() string {
	switch result {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

var resultTokens = map[string]Result{
	"1-0":     WhiteWins,
	"0-1":     BlackWins,
	"1/2-1/2": Draw,
	"0.5-0.5": Draw,
	"½-½":     Draw,
}

// ParseResult parses a standalone result marker token.
func ParseResult(token string) (Result, bool) {
	result, found := resultTokens[strings.TrimSpace(token)]
	return result, found
}

// IsResultToken reports whether the token is a result marker instead of a move.
func IsResultToken(token string) bool {
	_, found := ParseResult(token)
	return found
}

// Normalize canonicalizes a notation token for comparison purposes. Castling
// written with zeros is unified with the letter form, en-passant suffixes
// and trailing check, mate and annotation glyphs are removed, and the '='
// of a promotion is dropped so that "e8=Q+" and "e8Q" compare equal.
func Normalize(token string) string {
	token = strings.TrimSpace(token)

	// 0-0-0 has to be replaced before 0-0, otherwise it becomes O-O-0.
	token = strings.ReplaceAll(token, "0-0-0", "O-O-O")
	token = strings.ReplaceAll(token, "0-0", "O-O")

	token = strings.ReplaceAll(token, " e.p.", "")
	token = strings.ReplaceAll(token, "e.p.", "")
	token = strings.TrimRight(token, "+#!? ")
	token = strings.ReplaceAll(token, "=", "")

	return token
}

// SameMove reports whether two notation tokens denote the same move text.
func SameMove(a, b string) bool {
	return Normalize(a) != "" && Normalize(a) == Normalize(b)
}
