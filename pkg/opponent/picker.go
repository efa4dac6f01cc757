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

// Package opponent picks moves for a synthetic chess opponent of a
// target Elo. It consults an opening book first, then analyses the
// position with a real engine under band-tuned budgets, progressively
// widening the search until a usable candidate pool exists, injects
// calibrated imperfection, and samples the pool with a temperature
// weighted draw. Every pick returns a machine-readable decision trace.
package opponent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/patzerhq/patzer/pkg/chess"
	"github.com/patzerhq/patzer/pkg/engine"
	"github.com/patzerhq/patzer/pkg/internal/random"
	"github.com/patzerhq/patzer/pkg/opponent/book"
	"github.com/patzerhq/patzer/pkg/opponent/strength"
)

// ErrNoLegalMove is reported when a pick is requested on a terminal
// position. Callers are expected to check the game status first.
var ErrNoLegalMove = errors.New("opponent: no legal move in position")

// Request describes one move pick.
type Request struct {
	FEN     string
	History []string
	Elo     int

	// Seed pins the random stream so a pick can be reproduced
	// exactly. A nil seed draws a fresh one, which is still recorded
	// in the decision trace.
	Seed *uint64
}

// Picker selects moves at a target strength. One Picker owns one
// opponent session: its calibration state evolves across calls, so
// calls are serialized. The book and configuration are read-only and
// may be shared between pickers playing concurrently.
type Picker struct {
	mu sync.Mutex

	analyser engine.Analyser
	book     *book.Book
	config   *strength.Config

	tuning tuningState
}

// New builds a Picker over the given analyser. A nil book or config
// selects the built-in defaults.
func New(analyser engine.Analyser, openings *book.Book, config *strength.Config) *Picker {
	if openings == nil {
		openings = book.Default()
	}

	if config == nil {
		config = strength.Default()
	}

	return &Picker{
		analyser: analyser,
		book:     openings,
		config:   config,
		tuning:   newTuningState(),
	}
}

// PickMove selects one move for the position. Cancelling the context
// aborts cleanly: no move is returned and the calibration state keeps
// its pre-call value.
func (picker *Picker) PickMove(ctx context.Context, request Request) (*Result, error) {
	picker.mu.Lock()
	defer picker.mu.Unlock()

	seed := random.Seed64()
	if request.Seed != nil {
		seed = *request.Seed
	}

	rng := random.NewSeeded(seed)

	position, err := chess.FromFEN(request.FEN)
	if err != nil {
		return nil, err
	}

	legal := position.Moves()
	if len(legal) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoLegalMove, request.FEN)
	}

	elo := strength.ClampElo(request.Elo)
	band := picker.config.BandForElo(elo)
	dev := &picker.config.Dev
	inDev := dev.Contains(elo)

	timeMs := picker.config.TimeBudget(elo, band)
	lines := picker.config.LineBudget(timeMs, band)
	tolerance := band.BaseDrop
	temperature := band.Temperature

	// The feedback state is staged and committed only when the pick
	// completes, so cancellation never leaves half-applied state.
	stage := picker.tuning
	if !inDev || len(request.History) < stage.lastLen {
		stage.reset()
	}

	stage.lastLen = len(request.History)

	if inDev {
		timeMs, lines, tolerance = phaseWiden(dev.Phase, len(request.History), timeMs, lines, tolerance)

		tolerance += stage.dropAdjust
		if tolerance < 0 {
			tolerance = 0
		}

		temperature *= stage.kScale
	}

	meta := Meta{
		Seed:        seed,
		Band:        band.Name,
		HistoryLen:  len(request.History),
		TimeMs:      timeMs,
		Lines:       lines,
		DropTol:     tolerance,
		Temperature: temperature,
	}

	var exitPlies int
	var exitChance float64
	if exit := band.Book.Exit; exit != nil {
		exitPlies, exitChance = exit.MinPlies, exit.Probability
	}

	if mov, line := picker.book.Pick(book.Query{
		Side:        position.SideToMove(),
		History:     request.History,
		Position:    position,
		MaxPlies:    picker.config.BookPlies(band),
		TopLines:    band.Book.TopLines,
		FavorCommon: band.FavorCommon,
		ExitPlies:   exitPlies,
		ExitChance:  exitChance,
		RNG:         rng,
	}); mov != "" {
		meta.BookLine = line.Title()
		picker.tuning = stage
		return &Result{Move: mov, Reason: "book:" + line.Name, Meta: meta}, nil
	}

	candidates, err := picker.analyse(ctx, request.FEN, lines, timeMs)
	if err != nil {
		return nil, err
	}

	dropSteps := band.Widen.Drop
	lineSteps := band.Widen.Lines
	timeSteps := band.Widen.Time

	pool := within(candidates, tolerance)

widening:
	for len(pool) == 0 {
		switch {
		case len(dropSteps) > 0:
			tolerance += dropSteps[0]
			meta.DropBumps = append(meta.DropBumps, dropSteps[0])
			dropSteps = dropSteps[1:]

		case len(lineSteps) > 0:
			lines += lineSteps[0]
			meta.LineBumps = append(meta.LineBumps, lineSteps[0])
			lineSteps = lineSteps[1:]

			fresh, err := picker.analyse(ctx, request.FEN, lines, timeMs)
			if err != nil {
				return nil, err
			}

			if len(fresh) > 0 {
				candidates = fresh
			}

		case len(timeSteps) > 0:
			timeMs += timeSteps[0]
			if timeMs > picker.config.TimeCap {
				timeMs = picker.config.TimeCap
			}

			meta.TimeBumps = append(meta.TimeBumps, timeSteps[0])
			timeSteps = timeSteps[1:]

			fresh, err := picker.analyse(ctx, request.FEN, lines, timeMs)
			if err != nil {
				return nil, err
			}

			if len(fresh) > 0 {
				candidates = fresh
			}

		default:
			// schedule exhausted: take the pool unfiltered
			pool = within(candidates, -1)
			break widening
		}

		pool = within(candidates, tolerance)
	}

	meta.TimeMs = timeMs
	meta.Lines = lines
	meta.DropTol = tolerance

	if len(pool) == 0 {
		// the engine never produced a score: any legal move beats
		// failing the pick
		mov := legal[rng.IntN(len(legal))]
		picker.tuning = stage
		return &Result{Move: mov, Reason: "engine:fallback", Meta: meta}, nil
	}

	meta.Pool = pool

	rc := &ruleContext{
		pool:    pool,
		full:    within(candidates, -1),
		legal:   legal,
		rng:     rng,
		band:    band,
		dev:     dev,
		profile: picker.config.ImperfectionForElo(elo),
		inDev:   inDev,
	}

	for _, rule := range rules {
		if mov, ok := rule.fire(rc); ok {
			meta.Imperfection = rule.kind
			picker.tuning = stage
			return &Result{Move: mov, Reason: "engine:" + rule.kind, Meta: meta}, nil
		}
	}

	mov := sample(rc, temperature)

	if inDev {
		for _, candidate := range pool {
			if candidate.Move == mov {
				stage.observe(dev, float64(candidate.Drop))
				break
			}
		}
	}

	picker.tuning = stage
	return &Result{Move: mov, Reason: "engine:weighted", Meta: meta}, nil
}

// analyse queries the engine once. Cancellation propagates, while
// engine hiccups degrade to an empty candidate list for the widening
// loop and the legal-move fallback to absorb.
func (picker *Picker) analyse(ctx context.Context, fen string, lines, timeMs int) ([]engine.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates, err := picker.analyser.Analyse(ctx, engine.Request{
		FEN:      fen,
		Lines:    lines,
		MoveTime: time.Duration(timeMs) * time.Millisecond,
	})

	switch {
	case err == nil:
		return engine.Normalize(candidates), nil

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err

	default:
		logrus.Debugf("analysis failed: %v\n", err)
		return nil, nil
	}
}

// phaseWiden relaxes the early-game budgets of the calibration band,
// with influence decaying linearly over the phase's plies.
func phaseWiden(phase strength.Phase, plies, timeMs, lines, tolerance int) (int, int, int) {
	if phase.Plies <= 0 || plies >= phase.Plies {
		return timeMs, lines, tolerance
	}

	weight := 1 - float64(plies)/float64(phase.Plies)

	if phase.TimeCeiling > timeMs {
		timeMs += int(weight * float64(phase.TimeCeiling-timeMs))
	}

	if phase.LineCeiling > lines {
		lines += int(weight * float64(phase.LineCeiling-lines))
	}

	tolerance += int(weight * float64(phase.DropRelax))

	return timeMs, lines, tolerance
}

// within converts engine candidates to pool candidates with their
// drops, keeping those inside the tolerance. A negative tolerance
// keeps everything.
func within(candidates []engine.Candidate, tolerance int) []PoolCandidate {
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0].Score
	pool := make([]PoolCandidate, 0, len(candidates))

	for _, candidate := range candidates {
		drop := best - candidate.Score
		if tolerance >= 0 && drop > tolerance {
			continue
		}

		pool = append(pool, PoolCandidate{
			Move:  candidate.Move,
			Score: candidate.Score,
			Drop:  drop,
		})
	}

	return pool
}
