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

// Package duel plays calibration matches between two configured players
// and measures the strength difference between them. One side is
// usually a synthetic opponent, which turns the duel into a check of
// how faithfully that opponent holds its target elo.
package duel

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/patzerhq/patzer/pkg/chess"
	patzer "github.com/patzerhq/patzer/pkg/common"
	"github.com/patzerhq/patzer/pkg/internal/random"
	"github.com/patzerhq/patzer/pkg/rating"
)

// Config describes a duel.
type Config struct {
	Name string `yaml:"name"`

	// The players taking part in the duel. The first entry is the
	// challenger whose strength is being measured.
	Players [2]PlayerConfig `yaml:"players"`

	// Number of game pairs that will be played concurrently.
	Concurrency int `yaml:"concurrency"`

	// Rounds is the number of game pairs to play. Zero keeps playing
	// until the sequential test reaches a verdict.
	Rounds int `yaml:"rounds"`

	// MaxPlies adjudicates a game as drawn once it runs this long.
	MaxPlies int `yaml:"max-plies"`

	// Trinomial scores the sequential test on single games instead
	// of game pairs.
	Trinomial bool `yaml:"trinomial"`

	Openings OpeningConfig `yaml:"openings"`

	// The elo hypotheses and error probabilities of the sequential
	// test. Without one the duel just plays its rounds and reports
	// the measured elo.
	Test *TestConfig `yaml:"test"`

	State State `yaml:"state"`
}

// TestConfig parameterizes a sequential probability ratio test.
type TestConfig struct {
	Elo0  float64 `yaml:"elo0"`
	Elo1  float64 `yaml:"elo1"`
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
}

// State carries the running tallies of a duel from the challenger's
// point of view.
type State struct {
	Wins, Losses, Draws int

	WinWin, WinDraw, DrawDraw, DrawLoss, LossLoss int
}

func (state State) pairs() int {
	return state.WinWin + state.WinDraw + state.DrawDraw +
		state.DrawLoss + state.LossLoss
}

// Verdict is the conclusion a duel arrives at.
type Verdict int

const (
	Inconclusive Verdict = iota
	AcceptH0             // the challenger performs at elo0
	AcceptH1             // the challenger performs at elo1
)

// String returns a short description of the given Verdict.
func (verdict Verdict) String() string {
	switch verdict {
	case AcceptH0:
		return "H0 accepted"
	case AcceptH1:
		return "H1 accepted"
	default:
		return "inconclusive"
	}
}

// New prepares a duel from its configuration.
func New(config Config) (*Duel, error) {
	var duel Duel
	duel.Config = config

	if duel.Concurrency < 1 {
		duel.Concurrency = 1
	}

	if duel.MaxPlies < 1 {
		duel.MaxPlies = 400
	}

	if duel.Test == nil && duel.Rounds < 1 {
		return nil, fmt.Errorf("duel needs a round limit or a sequential test")
	}

	source := random.NewEntropy()
	if config.Openings.Seed != "" {
		source = random.NewSeededString(config.Openings.Seed)
	}

	var err error
	duel.openings, err = newOpenings(config.Openings, source)
	if err != nil {
		return nil, err
	}

	duel.results = make(chan pairOutcome)
	duel.complete = make(chan Verdict)
	duel.stop = make(chan struct{})

	return &duel, nil
}

type Duel struct {
	Config

	openings *openings

	results  chan pairOutcome
	complete chan Verdict
	stop     chan struct{}

	number atomic.Int64

	a, b float64
}

type pairOutcome struct {
	result PairResult
	games  [2]gameOutcome
}

type gameOutcome struct {
	number       int64
	white, black string

	result  Result // challenger's score
	outcome Result // white's score
	reason  string
}

func (game gameOutcome) String() string {
	switch game.outcome {
	case Win:
		return fmt.Sprintf("%s wins by %s", game.white, game.reason)
	case Loss:
		return fmt.Sprintf("%s wins by %s", game.black, game.reason)
	case Draw:
		return fmt.Sprintf("draw by %s", game.reason)
	default:
		return "unfinished"
	}
}

// startPlayer is swapped out by tests to duel scripted players.
var startPlayer = func(config PlayerConfig) (Player, error) {
	return config.Start()
}

// Start plays the duel to completion and returns its verdict. The
// context cancels in-progress games and reports whatever was tallied
// up to that point.
func (duel *Duel) Start(ctx context.Context) (Verdict, error) {
	if duel.Test != nil {
		duel.a, duel.b = rating.StoppingBounds(duel.Test.Alpha, duel.Test.Beta)
	}

	// Spawn every player before starting any worker, so a failed
	// spawn leaves nothing running.
	players := make([][2]Player, 0, duel.Concurrency)
	for i := 0; i < duel.Concurrency; i++ {
		challenger, err := startPlayer(duel.Players[0])
		if err != nil {
			closePlayers(players)
			return Inconclusive, err
		}

		defender, err := startPlayer(duel.Players[1])
		if err != nil {
			challenger.Close()
			closePlayers(players)
			return Inconclusive, err
		}

		players = append(players, [2]Player{challenger, defender})
	}

	var workers sync.WaitGroup
	for _, pair := range players {
		workers.Add(1)
		go duel.worker(ctx, pair, &workers)
	}

	go func() {
		workers.Wait()
		close(duel.results)
	}()

	go duel.resultHandler()

	verdict := <-duel.complete
	return verdict, ctx.Err()
}

func closePlayers(players [][2]Player) {
	for _, pair := range players {
		pair[0].Close()
		pair[1].Close()
	}
}

func (duel *Duel) worker(ctx context.Context, players [2]Player, workers *sync.WaitGroup) {
	defer workers.Done()
	defer players[0].Close()
	defer players[1].Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-duel.stop:
			return
		default:
		}

		pair := duel.playPair(ctx, players)
		if ctx.Err() != nil {
			return
		}

		select {
		case duel.results <- pair:
		case <-duel.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (duel *Duel) playPair(ctx context.Context, players [2]Player) pairOutcome {
	opening := duel.openings.Next()

	var pair pairOutcome
	for game := 0; game < 2; game++ {
		number := duel.number.Add(1)

		// the challenger opens the pair as white
		white, black := players[0], players[1]
		if game == 1 {
			white, black = players[1], players[0]
		}

		logrus.Infof(
			"\x1b[33mStarting\x1b[0m Game #%d: %s vs %s (\x1b[33m%s\x1b[0m)\n",
			number, white.Name(), black.Name(), opening,
		)

		outcome, reason := duel.play(ctx, white, black, opening)

		result := outcome
		if game == 1 {
			result = -result
		}

		pair.games[game] = gameOutcome{
			number: number,
			white:  white.Name(),
			black:  black.Name(),

			result:  result,
			outcome: outcome,
			reason:  reason,
		}
	}

	pair.result = pairOf(pair.games[0].result, pair.games[1].result)
	return pair
}

// play runs a single game and returns the result from white's point of
// view along with the reason the game ended.
func (duel *Duel) play(ctx context.Context, white, black Player, opening string) (Result, string) {
	position, err := chess.FromFEN(opening)
	if err != nil {
		return Draw, err.Error()
	}

	if err := white.NewGame(); err != nil {
		return Loss, err.Error()
	}

	if err := black.NewGame(); err != nil {
		return Win, err.Error()
	}

	var history []string
	for {
		mover, forfeit := white, Loss
		if position.SideToMove() == chess.Black {
			mover, forfeit = black, Win
		}

		mv, err := mover.Play(ctx, opening, history)
		if err != nil {
			return forfeit, err.Error()
		}

		if err := position.Make(mv); err != nil {
			return forfeit, fmt.Sprintf("illegal move %s", mv)
		}

		history = append(history, mv)

		switch status := position.Status(); status {
		case chess.Ongoing:
		case chess.Checkmate:
			// the mover delivered the mate
			return -forfeit, status.String()
		default:
			return Draw, status.String()
		}

		if len(history) >= duel.MaxPlies {
			return Draw, "maximum game length"
		}
	}
}

func (duel *Duel) resultHandler() {
	verdict, ended := Inconclusive, false

	for pair := range duel.results {
		duel.tally(pair)

		if duel.State.pairs()%5 == 0 {
			duel.Report()
		}

		if ended {
			continue
		}

		if v, done := duel.decide(); done {
			verdict, ended = v, true
			close(duel.stop)
		}
	}

	duel.Report()
	duel.complete <- verdict
}

func (duel *Duel) tally(pair pairOutcome) {
	switch pair.result {
	case WinWin:
		duel.State.WinWin++
	case WinDraw:
		duel.State.WinDraw++
	case DrawDraw:
		duel.State.DrawDraw++
	case DrawLoss:
		duel.State.DrawLoss++
	case LossLoss:
		duel.State.LossLoss++
	}

	for _, game := range pair.games {
		switch game.result {
		case Win:
			duel.State.Wins++
		case Loss:
			duel.State.Losses++
		case Draw:
			duel.State.Draws++
		}

		logrus.Infof(
			"\x1b[32mFinished\x1b[0m Game #%d: %s vs %s: %s\n",
			game.number, game.white, game.black, game,
		)
	}
}

func (duel *Duel) decide() (Verdict, bool) {
	if duel.Test != nil {
		switch llr := duel.LLR(); {
		case llr <= duel.a:
			fmt.Println("\n\x1b[31mH0 Accepted\x1b[0m")
			return AcceptH0, true

		case llr >= duel.b:
			fmt.Println("\n\x1b[32mH1 Accepted\x1b[0m")
			return AcceptH1, true
		}
	}

	if duel.Rounds > 0 && duel.State.pairs() >= duel.Rounds {
		return Inconclusive, true
	}

	return Inconclusive, false
}

// LLR returns the running log-likelihood ratio of the duel's test.
func (duel *Duel) LLR() float64 {
	if duel.Test == nil {
		return 0
	}

	if duel.Trinomial {
		return rating.SPRT(
			duel.State.Wins, duel.State.Draws, duel.State.Losses,
			duel.Test.Elo0, duel.Test.Elo1,
		)
	}

	return rating.PentaSPRT(
		duel.State.LossLoss, duel.State.DrawLoss, duel.State.DrawDraw,
		duel.State.WinDraw, duel.State.WinWin,
		duel.Test.Elo0, duel.Test.Elo1,
	)
}

// Report snapshots the duel's state to disk and prints the running
// strength estimate.
func (duel *Duel) Report() {
	if duel.Name != "" {
		data, _ := yaml.Marshal(duel.Config)
		_ = os.WriteFile(
			filepath.Join(patzer.DuelDirectory, duel.Name+".yaml"),
			data, patzer.FilePermissions,
		)
	}

	lower, elo, upper := rating.Elo(duel.State.Wins, duel.State.Draws, duel.State.Losses)
	err := math.Abs(math.Max(upper-elo, elo-lower))

	n := duel.State.Wins + duel.State.Losses + duel.State.Draws

	eloStr := fmt.Sprintf("║ ELO   | %.2f +- %.2f (95%%)", elo, err)
	gamStr := fmt.Sprintf(
		"║ GAMES | N: %d W: %d L: %d D: %d",
		n, duel.State.Wins, duel.State.Losses, duel.State.Draws,
	)
	penStr := fmt.Sprintf(
		"║ PENTA | [%d, %d, %d, %d, %d]",
		duel.State.LossLoss, duel.State.DrawLoss, duel.State.DrawDraw,
		duel.State.WinDraw, duel.State.WinWin,
	)

	fmt.Println("╔═════════════════════════════════════════════════╗")
	fmt.Printf("%-50s║\n", eloStr)
	if duel.Test != nil {
		llrStr := fmt.Sprintf(
			"║ LLR   | %.2f (%.2f, %.2f) [%.2f, %.2f]",
			duel.LLR(), duel.a, duel.b, duel.Test.Elo0, duel.Test.Elo1,
		)
		fmt.Printf("%-50s║\n", llrStr)
	}
	fmt.Printf("%-50s║\n", gamStr)
	fmt.Printf("%-50s║\n", penStr)
	fmt.Println("╚═════════════════════════════════════════════════╝")
}
