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

// Package engine talks to uci chess engines and turns their multipv
// analysis into ranked move candidates.
package engine

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	// ErrReadTimeout is reported when an engine stops responding.
	ErrReadTimeout = errors.New("engine: read i/o timeout")

	// ErrNoCandidates is reported when an analysis produces no usable
	// moves, which happens on mated or otherwise dead positions.
	ErrNoCandidates = errors.New("engine: no candidates returned")
)

// Candidate is a single engine-approved move with its evaluation
// flattened onto the centipawn axis, from the side to move's view.
type Candidate struct {
	Move  string
	Score int
}

// Request describes one analysis of a single position. Moves extends
// the position like the uci position command does, so callers that know
// the full game history can hand it over for repetition awareness.
type Request struct {
	FEN      string
	Moves    []string
	Lines    int
	MoveTime time.Duration
}

// Analyser is anything which can analyse a chess position into a
// ranked list of candidate moves.
type Analyser interface {
	Analyse(ctx context.Context, request Request) ([]Candidate, error)
}

// Normalize deduplicates candidates keeping the best score seen for
// each move, then orders them by descending score with ties broken by
// the move string. The result is deterministic for any input order.
func Normalize(candidates []Candidate) []Candidate {
	best := make(map[string]int, len(candidates))
	for _, candidate := range candidates {
		mov := strings.ToLower(candidate.Move)
		if score, seen := best[mov]; !seen || candidate.Score > score {
			best[mov] = candidate.Score
		}
	}

	normalized := make([]Candidate, 0, len(best))
	for mov, score := range best {
		normalized = append(normalized, Candidate{Move: mov, Score: score})
	}

	sort.Slice(normalized, func(i, j int) bool {
		if normalized[i].Score != normalized[j].Score {
			return normalized[i].Score > normalized[j].Score
		}

		return normalized[i].Move < normalized[j].Move
	})

	return normalized
}
