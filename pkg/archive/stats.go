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

import "math"

// Record is the engine's score over a number of games.
type Record struct {
	Wins, Draws, Losses int
	Unfinished          int // games without a decided result
}

// Tally counts the results of the given games from the engine's side.
func Tally(games []Game) Record {
	var record Record
	for _, game := range games {
		switch game.Result {
		case "1/2-1/2":
			record.Draws++
		case "1-0":
			if game.EngineWhite {
				record.Wins++
			} else {
				record.Losses++
			}
		case "0-1":
			if game.EngineWhite {
				record.Losses++
			} else {
				record.Wins++
			}
		default:
			record.Unfinished++
		}
	}

	return record
}

// Games returns the number of decided games.
func (record Record) Games() int {
	return record.Wins + record.Draws + record.Losses
}

// Score returns the fraction of points scored in the decided games.
func (record Record) Score() float64 {
	n := float64(record.Games())
	if n == 0 {
		return 0
	}

	return (float64(record.Wins) + float64(record.Draws)/2) / n
}

// Elo returns the likely elo difference between the engine and its
// opponents, along with the bounds of its 95% confidence interval.
func (record Record) Elo() (low float64, elo float64, high float64) {
	n := float64(record.Games())
	if n == 0 {
		return 0, 0, 0
	}

	w := float64(record.Wins) / n   // measured win probability
	d := float64(record.Draws) / n  // measured draw probability
	l := float64(record.Losses) / n // measured loss probability

	// empirical mean and standard deviation of a game's score
	mu := w + d/2
	sigma := math.Sqrt(w*math.Pow(1-mu, 2)+d*math.Pow(0.5-mu, 2)+l*math.Pow(0-mu, 2)) / math.Sqrt(n)

	z := phiInv(0.975)
	return scoreToElo(mu - z*sigma), scoreToElo(mu), scoreToElo(mu + z*sigma)
}

// scoreToElo converts an expected score into an elo difference. Scores of
// zero and one have no finite difference, so they map to zero.
func scoreToElo(score float64) float64 {
	switch {
	case score <= 0, score >= 1:
		return 0
	default:
		return -400 * math.Log10(1/score-1)
	}
}

func phiInv(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
