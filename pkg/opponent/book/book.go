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

// Package book indexes named opening lines for weighted prefix lookup,
// so the opponent can play theory it "knows" instead of calling the
// analysis engine on every move.
package book

import (
	"sort"
	"strings"

	"github.com/patzerhq/patzer/pkg/chess"
	"github.com/patzerhq/patzer/pkg/internal/random"
)

// Line is one opening line, normalized to coordinate notation at load
// time. Read-only once the book is built.
type Line struct {
	ECO       string
	Name      string
	Variation string

	Side chess.Side

	// OpeningWeight ranks the opening against its siblings, Weight
	// ranks this line against the opening's other lines.
	OpeningWeight float64
	Weight        float64

	Moves []string
}

// Title renders the line's human-readable name.
func (line *Line) Title() string {
	if line.Variation == "" {
		return line.Name
	}

	return line.Name + ": " + line.Variation
}

type groupKey struct {
	side  chess.Side
	first string
}

// Book is a prefix index over opening lines, grouped by side and
// first move for fast narrowing. Safe for concurrent readers.
type Book struct {
	lines   []*Line
	bySide  map[chess.Side][]*Line
	byFirst map[groupKey][]*Line
}

func newBook(lines []*Line) *Book {
	book := &Book{
		lines:   lines,
		bySide:  make(map[chess.Side][]*Line),
		byFirst: make(map[groupKey][]*Line),
	}

	for _, line := range lines {
		book.bySide[line.Side] = append(book.bySide[line.Side], line)

		key := groupKey{side: line.Side, first: strings.ToLower(line.Moves[0])}
		book.byFirst[key] = append(book.byFirst[key], line)
	}

	return book
}

// Len returns the number of indexed lines.
func (book *Book) Len() int {
	return len(book.lines)
}

// Lookup returns every line of the given side whose move prefix equals
// the history, ignoring promotion-letter casing. An empty history
// matches all of the side's lines.
func (book *Book) Lookup(side chess.Side, history []string) []*Line {
	if len(history) == 0 {
		return book.bySide[side]
	}

	var matches []*Line
	for _, line := range book.byFirst[groupKey{side: side, first: strings.ToLower(history[0])}] {
		if hasPrefix(line.Moves, history) {
			matches = append(matches, line)
		}
	}

	return matches
}

func hasPrefix(moves, history []string) bool {
	if len(moves) < len(history) {
		return false
	}

	for i, mov := range history {
		if !strings.EqualFold(moves[i], mov) {
			return false
		}
	}

	return true
}

// Position is the live game position a picked book move must be legal
// in before it is returned.
type Position interface {
	Moves() []string
}

// Query describes one book pick attempt.
type Query struct {
	Side     chess.Side
	History  []string
	Position Position

	// MaxPlies ends book play past a depth, TopLines restricts common
	// play to an opening's most popular lines.
	MaxPlies    int
	TopLines    int
	FavorCommon bool

	// ExitPlies and ExitChance give a roll to wander out of book
	// before the depth cap. A zero chance disables the roll.
	ExitPlies  int
	ExitChance float64

	RNG random.Source
}

// Pick selects the next move to play from the book, or "" when the
// book has nothing safe to offer. The chosen move is confirmed legal
// on the live position before it is returned, so stale or mismatched
// book data degrades to a miss instead of an illegal move.
func (book *Book) Pick(query Query) (string, *Line) {
	if len(query.History) >= query.MaxPlies {
		return "", nil
	}

	if query.ExitChance > 0 && len(query.History) >= query.ExitPlies &&
		query.RNG.Float64() < query.ExitChance {
		return "", nil
	}

	var matches []*Line
	for _, line := range book.Lookup(query.Side, query.History) {
		if len(line.Moves) > len(query.History) {
			matches = append(matches, line)
		}
	}

	if len(matches) == 0 {
		return "", nil
	}

	group := pickGroup(matches, query)
	line := pickLine(group, query)

	mov := line.Moves[len(query.History)]
	if !legal(query.Position, mov) {
		return "", nil
	}

	return mov, line
}

// pickGroup groups the matches by opening identity and selects one
// group, deterministically by weight for common play and otherwise by
// a weight-proportional draw.
func pickGroup(matches []*Line, query Query) []*Line {
	// sorted group order keeps the draw independent of map iteration
	sort.SliceStable(matches, func(i, j int) bool {
		return identity(matches[i]) < identity(matches[j])
	})

	var keys []string
	groups := make(map[string][]*Line)
	for _, line := range matches {
		key := identity(line)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}

		groups[key] = append(groups[key], line)
	}

	if query.FavorCommon {
		best := keys[0]
		for _, key := range keys[1:] {
			if groups[key][0].OpeningWeight > groups[best][0].OpeningWeight {
				best = key
			}
		}

		return groups[best]
	}

	weights := make([]float64, len(keys))
	for i, key := range keys {
		weights[i] = groups[key][0].OpeningWeight
	}

	return groups[keys[random.WeightedIndex(query.RNG, weights)]]
}

// pickLine selects one line within the group by a weight-proportional
// draw, restricted to the top lines for common play.
func pickLine(group []*Line, query Query) *Line {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].Weight != group[j].Weight {
			return group[i].Weight > group[j].Weight
		}

		return group[i].Variation < group[j].Variation
	})

	if query.FavorCommon && query.TopLines > 0 && len(group) > query.TopLines {
		group = group[:query.TopLines]
	}

	weights := make([]float64, len(group))
	for i, line := range group {
		weights[i] = line.Weight
	}

	return group[random.WeightedIndex(query.RNG, weights)]
}

func identity(line *Line) string {
	return line.ECO + "/" + line.Name
}

func legal(position Position, mov string) bool {
	if position == nil {
		return false
	}

	for _, legal := range position.Moves() {
		if strings.EqualFold(legal, mov) {
			return true
		}
	}

	return false
}

// Identify finds the line sharing the deepest move prefix with the
// history, for naming the opening a game went through. It searches
// both sides' lines and returns how many plies matched.
func (book *Book) Identify(history []string) (*Line, int) {
	var best *Line
	depth := 0

	for _, line := range book.lines {
		matched := 0
		for i := 0; i < len(line.Moves) && i < len(history); i++ {
			if !strings.EqualFold(line.Moves[i], history[i]) {
				break
			}

			matched++
		}

		if matched > depth {
			best, depth = line, matched
		}
	}

	return best, depth
}
