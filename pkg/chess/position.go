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

// Package chess adapts the mess move-generation library into the small
// position contract the opponent needs: build a position from a FEN,
// enumerate and apply legal moves, and report the terminal status.
package chess

import (
	"errors"
	"fmt"
	"strings"

	"laptudirm.com/x/mess/pkg/board"
	"laptudirm.com/x/mess/pkg/board/move"
	"laptudirm.com/x/mess/pkg/board/piece"
	"laptudirm.com/x/mess/pkg/formats/fen"
)

// StartingFEN is the standard chess starting position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Side identifies the player to move.
type Side uint8

const (
	White Side = iota
	Black
)

func (side Side) String() string {
	if side == White {
		return "white"
	}

	return "black"
}

// Other returns the opposing side.
func (side Side) Other() Side {
	return side ^ 1
}

// ParseSide converts a side name into a Side.
func ParseSide(name string) (Side, error) {
	switch strings.ToLower(name) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return White, fmt.Errorf("chess: unknown side %q", name)
	}
}

// Status reports whether a position is still playable, and if not, why
// the game ended.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	DrawFiftyMoves
	DrawRepetition
	DrawMaterial
)

func (status Status) String() string {
	switch status {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawFiftyMoves:
		return "50-move rule"
	case DrawRepetition:
		return "threefold repetition"
	case DrawMaterial:
		return "insufficient material"
	default:
		return "unknown"
	}
}

var ErrIllegalMove = errors.New("chess: illegal move")

// Position is a live chess position with its legal moves generated.
type Position struct {
	brd   *board.Board
	legal []move.Move
}

// FromFEN builds a Position from a FEN string.
func FromFEN(fenstr string) (*Position, error) {
	if len(strings.Fields(fenstr)) != 6 {
		return nil, fmt.Errorf("chess: malformed fen %q", fenstr)
	}

	pos := &Position{brd: board.New(board.FEN(fen.FromString(fenstr)))}
	pos.legal = pos.brd.GenerateMoves(false)
	return pos, nil
}

// Start builds the standard starting Position.
func Start() *Position {
	pos, _ := FromFEN(StartingFEN)
	return pos
}

// SideToMove returns the side whose turn it is.
func (pos *Position) SideToMove() Side {
	if pos.brd.SideToMove == piece.White {
		return White
	}

	return Black
}

// Moves returns the legal moves in coordinate notation.
func (pos *Position) Moves() []string {
	moves := make([]string, len(pos.legal))
	for i, mov := range pos.legal {
		moves[i] = mov.String()
	}

	return moves
}

// Make applies the given move to the position. The move is matched
// against the legal move list ignoring case, so promotions written as
// e7e8q and e7e8Q are the same move.
func (pos *Position) Make(movstr string) error {
	for _, mov := range pos.legal {
		if strings.EqualFold(mov.String(), movstr) {
			pos.brd.MakeMove(mov)
			pos.legal = pos.brd.GenerateMoves(false)
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrIllegalMove, movstr)
}

// Replay applies the given move sequence in order, stopping at the
// first illegal move.
func (pos *Position) Replay(moves []string) error {
	for i, mov := range moves {
		if err := pos.Make(mov); err != nil {
			return fmt.Errorf("replay move %d: %w", i+1, err)
		}
	}

	return nil
}

// FEN returns the position as a FEN string.
func (pos *Position) FEN() string {
	parts := [6]string(pos.brd.FEN())
	return strings.Join(parts[:], " ")
}

// Status reports the terminal state of the position.
func (pos *Position) Status() Status {
	switch {
	case len(pos.legal) == 0:
		if pos.brd.IsInCheck(pos.brd.SideToMove) {
			return Checkmate
		}

		return Stalemate

	case pos.brd.DrawClock >= 100:
		return DrawFiftyMoves
	case pos.brd.IsThreefoldRepetition():
		return DrawRepetition
	case pos.brd.IsInsufficientMaterial():
		return DrawMaterial
	}

	return Ongoing
}

// Terminal reports whether the game is over in this position.
func (pos *Position) Terminal() bool {
	return pos.Status() != Ongoing
}
