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

package archive

import (
	"fmt"
	"strings"

	"laptudirm.com/x/tandem/pkg/game"
)

// PGN returns the game in portable game notation.
func (g Game) PGN() string {
	var pgn strings.Builder

	white, black := "tandem", "opponent"
	if !g.EngineWhite {
		white, black = black, white
	}

	date := "????.??.??"
	if !g.Started.IsZero() {
		date = g.Started.Format("2006.01.02")
	}

	result := g.Result
	if result == "" {
		result = "*"
	}

	tags := [][2]string{
		{"Event", "Online game"},
		{"Site", g.Session},
		{"Date", date},
		{"Round", "-"},
		{"White", white},
		{"Black", black},
		{"Result", result},
	}

	if g.Reason != "" {
		tags = append(tags, [2]string{"Termination", g.Reason})
	}

	for _, tag := range tags {
		fmt.Fprintf(&pgn, "[%s %q]\n", tag[0], tag[1])
	}

	pgn.WriteString("\n")

	for i, move := range g.san() {
		if i%2 == 0 {
			fmt.Fprintf(&pgn, "%d. ", i/2+1)
		}

		pgn.WriteString(move)
		pgn.WriteString(" ")
	}

	pgn.WriteString(result)
	pgn.WriteString("\n")
	return pgn.String()
}

// san returns the moves of the game in standard algebraic notation, or as
// they were recorded if they can't be replayed.
func (g Game) san() []string {
	model, err := game.Replay(g.Moves)
	if err != nil {
		return g.Moves
	}

	plies := model.Plies()
	moves := make([]string, len(plies))
	for i, ply := range plies {
		moves[i] = ply.SAN
	}

	return moves
}
