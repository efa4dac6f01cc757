// Copyright © 2025 The Patzer Authors
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

package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// mateBase is the linearized value of the fastest possible mate. Mate
// scores decay by 100 per move of distance so that a faster mate always
// outranks a slower one, and any mate outranks any centipawn score.
const mateBase = 10000

// Score is an evaluation reported by an analysis engine, from the
// point of view of the side to move.
type Score struct {
	Centipawns int
	Mate       int
	IsMate     bool
}

// Cp builds a centipawn Score.
func Cp(value int) Score {
	return Score{Centipawns: value}
}

// MateIn builds a mate Score. Positive distances are mates delivered by
// the side to move, negative distances are mates suffered.
func MateIn(distance int) Score {
	return Score{Mate: distance, IsMate: true}
}

// Linear flattens the score onto a single centipawn axis. Centipawn
// scores pass through unchanged while mate scores map near ±10000,
// decaying towards it with mate distance.
func (score Score) Linear() int {
	if !score.IsMate {
		return score.Centipawns
	}

	distance := score.Mate
	if distance < 0 {
		distance = -distance
	}

	if distance > 99 {
		distance = 99
	}

	value := mateBase - distance*100
	if score.Mate < 0 {
		return -value
	}

	return value
}

func (score Score) String() string {
	if score.IsMate {
		return fmt.Sprintf("mate %d", score.Mate)
	}

	return fmt.Sprintf("cp %d", score.Centipawns)
}

// parseInfo extracts the multipv rank, score and first principal
// variation move from a uci info line. Lines without all three parts,
// including currmove and string chatter, report ok as false. A missing
// multipv field means the engine is searching a single line.
func parseInfo(line string) (rank int, score Score, mov string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return 0, Score{}, "", false
	}

	rank = 1
	var scored bool

	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "multipv":
			if i+1 >= len(fields) {
				return 0, Score{}, "", false
			}

			value, err := strconv.Atoi(fields[i+1])
			if err != nil || value < 1 {
				return 0, Score{}, "", false
			}

			rank = value
			i++

		case "score":
			if i+2 >= len(fields) {
				return 0, Score{}, "", false
			}

			value, err := strconv.Atoi(fields[i+2])
			if err != nil {
				return 0, Score{}, "", false
			}

			switch fields[i+1] {
			case "cp":
				score = Cp(value)
			case "mate":
				score = MateIn(value)
			default:
				return 0, Score{}, "", false
			}

			scored = true
			i += 2

		case "pv":
			if i+1 >= len(fields) {
				return 0, Score{}, "", false
			}

			mov = fields[i+1]
			// everything after pv is the variation
			i = len(fields)
		}
	}

	if !scored || mov == "" {
		return 0, Score{}, "", false
	}

	return rank, score, mov, true
}
