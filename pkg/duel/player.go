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

package duel

import (
	"context"
	"fmt"
	"time"

	"github.com/patzerhq/patzer/pkg/chess"
	"github.com/patzerhq/patzer/pkg/engine"
	"github.com/patzerhq/patzer/pkg/opponent"
	"github.com/patzerhq/patzer/pkg/opponent/strength"
)

// Player produces moves for one side of a duel game.
type Player interface {
	Name() string

	// NewGame is called before each game the player takes part in.
	NewGame() error

	// Play returns the player's move in coordinate notation for the
	// position reached by history from the starting fen.
	Play(ctx context.Context, fen string, history []string) (string, error)

	Close()
}

// PlayerConfig describes one participant of a duel. An elo target wraps
// the engine in a synthetic opponent playing at that strength; without
// one the engine plays raw, fixed-movetime moves.
type PlayerConfig struct {
	Engine engine.Config `yaml:"engine"`

	Elo int `yaml:"elo"`

	// MoveTime is the raw engine's time per move in milliseconds.
	MoveTime int `yaml:"move-time"`
}

// Start launches the configured player. Every call spawns a fresh
// engine process, so each duel worker gets its own copy.
func (config PlayerConfig) Start() (Player, error) {
	uci, err := engine.StartUCI(config.Engine)
	if err != nil {
		return nil, err
	}

	if config.Elo > 0 {
		elo := strength.ClampElo(config.Elo)
		return &synthetic{
			name:   fmt.Sprintf("%s@%d", uci.Name(), elo),
			elo:    elo,
			uci:    uci,
			picker: opponent.New(uci, nil, nil),
		}, nil
	}

	movetime := config.MoveTime
	if movetime <= 0 {
		movetime = 100
	}

	return &raw{uci: uci, movetime: time.Duration(movetime) * time.Millisecond}, nil
}

// synthetic plays through a strength-limited move picker wrapped around
// the engine.
type synthetic struct {
	name   string
	elo    int
	uci    *engine.UCI
	picker *opponent.Picker
}

func (player *synthetic) Name() string { return player.name }

func (player *synthetic) NewGame() error { return player.uci.NewGame() }

func (player *synthetic) Play(ctx context.Context, fen string, history []string) (string, error) {
	// The picker wants the live position, not the game's start.
	position, err := chess.FromFEN(fen)
	if err != nil {
		return "", err
	}
	if err := position.Replay(history); err != nil {
		return "", err
	}

	result, err := player.picker.PickMove(ctx, opponent.Request{
		FEN:     position.FEN(),
		History: history,
		Elo:     player.elo,
	})
	if err != nil {
		return "", err
	}

	return result.Move, nil
}

func (player *synthetic) Close() { _ = player.uci.Kill() }

// raw plays the engine's own move at a fixed movetime.
type raw struct {
	uci      *engine.UCI
	movetime time.Duration
}

func (player *raw) Name() string { return player.uci.Name() }

func (player *raw) NewGame() error { return player.uci.NewGame() }

func (player *raw) Play(ctx context.Context, fen string, history []string) (string, error) {
	return player.uci.BestMove(ctx, engine.Request{
		FEN:      fen,
		Moves:    history,
		MoveTime: player.movetime,
	})
}

func (player *raw) Close() { _ = player.uci.Kill() }
