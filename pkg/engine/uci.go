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
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config describes how to launch and set up a uci engine.
type Config struct {
	Name string `yaml:"name"`
	Cmd  string `yaml:"cmd"`
	Dir  string `yaml:"dir"`
	Arg  string `yaml:"arg"`

	InitStr string `yaml:"init-string"`

	Options map[string]string `yaml:"options"`
}

// StartUCI launches the configured engine process and completes the
// uci handshake, leaving the engine ready for analysis requests.
func StartUCI(config Config) (*UCI, error) {
	var engine UCI
	process := exec.Command(config.Cmd, strings.Fields(config.Arg)...)

	engine.config = config

	process.Dir = config.Dir

	stdin, _ := process.StdinPipe()
	stdout, _ := process.StdoutPipe()

	engine.writer = bufio.NewWriter(stdin)
	engine.reader = bufio.NewReader(stdout)
	engine.lines = make(chan string)

	engine.Cmd = process

	if err := engine.Cmd.Start(); err != nil {
		return nil, err
	}

	go func() {
		for {
			line, err := engine.reader.ReadString('\n')
			if err != nil {
				engine.err = err
				close(engine.lines)
				return
			}

			line = strings.Trim(line, " \n\t\r")

			logrus.Debugf("info: ("+engine.config.Name+")> %s\n", line)
			engine.lines <- line
		}
	}()

	if engine.config.InitStr != "" {
		if err := engine.Write(engine.config.InitStr); err != nil {
			return nil, err
		}
	}

	if err := engine.Initialize(); err != nil {
		return nil, err
	}

	for name, value := range engine.config.Options {
		if err := engine.Write("setoption name %s value %s", name, value); err != nil {
			return nil, err
		}
	}

	if err := engine.NewGame(); err != nil {
		return nil, err
	}

	return &engine, nil
}

// UCI drives a single uci engine process.
type UCI struct {
	config Config

	*exec.Cmd

	writer *bufio.Writer
	reader *bufio.Reader

	lines chan string

	lastLines int

	err error
}

// Name returns the configured engine name.
func (engine *UCI) Name() string {
	return engine.config.Name
}

// NewGame prepares the engine for a new game of chess.
func (engine *UCI) NewGame() error {
	if err := engine.Write("ucinewgame"); err != nil {
		return err
	}

	return engine.Synchronize()
}

// Initialize initializes the engine on startup.
func (engine *UCI) Initialize() error {
	if err := engine.Write("uci"); err != nil {
		return err
	}

	_, err := engine.Await("uciok", 5*time.Second)
	return err
}

// Synchronize waits for the engine to complete some time consuming task
// and synchronizes the interface with it.
func (engine *UCI) Synchronize() error {
	if err := engine.Write("isready"); err != nil {
		return err
	}

	_, err := engine.Await("readyok", 5*time.Second)
	return err
}

// Kill kills the engine.
func (engine *UCI) Kill() error {
	if err := engine.Write("quit"); err != nil {
		return err
	}

	return engine.Process.Kill()
}

// Await is a utility function which waits for a particular string from
// the engine with a fixed timeout.
func (engine *UCI) Await(pattern string, timeout time.Duration) (string, error) {
	regex := regexp.MustCompile(pattern)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			// timer ran out: wait timeout

			if engine.err != nil {
				return "", engine.err
			}

			return "", ErrReadTimeout

		case line, open := <-engine.lines:
			if !open {
				return "", engine.err
			}

			if regex.MatchString(line) {
				// line is the expected line
				return line, nil
			}
		}
	}
}

func (engine *UCI) Write(format string, a ...any) error {
	logrus.Debugf("info: ("+engine.config.Name+")< "+format+"\n", a...)

	if _, err := fmt.Fprintf(engine.writer, format+"\n", a...); err != nil {
		return err
	}

	return engine.writer.Flush()
}

// Analyse runs a multipv search on the requested position and returns
// the normalized candidate list. Cancelling the context stops the
// search and abandons its output.
func (engine *UCI) Analyse(ctx context.Context, request Request) ([]Candidate, error) {
	candidates, _, err := engine.search(ctx, request)
	if err != nil {
		return nil, err
	}

	return candidates, nil
}

// BestMove runs a single-line search and returns the move the engine
// itself would play.
func (engine *UCI) BestMove(ctx context.Context, request Request) (string, error) {
	request.Lines = 1
	_, best, err := engine.search(ctx, request)
	if err != nil {
		return "", err
	}

	return best, nil
}

// BestMoves evaluates a batch of positions on the one engine process,
// sequentially and in input order, returning the engine's move and
// score for each.
func (engine *UCI) BestMoves(ctx context.Context, fens []string, movetime time.Duration) ([]Candidate, error) {
	evals := make([]Candidate, 0, len(fens))
	for _, fen := range fens {
		candidates, best, err := engine.search(ctx, Request{FEN: fen, Lines: 1, MoveTime: movetime})
		if err != nil {
			return nil, err
		}

		eval := Candidate{Move: best}
		for _, candidate := range candidates {
			if candidate.Move == best {
				eval = candidate
				break
			}
		}

		evals = append(evals, eval)
	}

	return evals, nil
}

func (engine *UCI) search(ctx context.Context, request Request) ([]Candidate, string, error) {
	lines := request.Lines
	if lines < 1 {
		lines = 1
	}

	if lines != engine.lastLines {
		if err := engine.Write("setoption name MultiPV value %d", lines); err != nil {
			return nil, "", err
		}

		engine.lastLines = lines
	}

	position := "position fen " + request.FEN
	if len(request.Moves) > 0 {
		position += " moves " + strings.Join(request.Moves, " ")
	}

	if err := engine.Write("%s", position); err != nil {
		return nil, "", err
	}

	if err := engine.Write("go movetime %d", request.MoveTime.Milliseconds()); err != nil {
		return nil, "", err
	}

	return engine.collect(ctx, request.MoveTime+5*time.Second)
}

// collect reads search output until the engine announces its best
// move, keeping the deepest info line seen for every multipv rank.
func (engine *UCI) collect(ctx context.Context, timeout time.Duration) ([]Candidate, string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	ranked := make(map[int]Candidate)

	for {
		select {
		case <-ctx.Done():
			// stop the search so the engine stays usable
			_ = engine.Write("stop")
			_, _ = engine.Await("bestmove", time.Second)
			return nil, "", ctx.Err()

		case <-timer.C:
			if engine.err != nil {
				return nil, "", engine.err
			}

			return nil, "", ErrReadTimeout

		case line, open := <-engine.lines:
			if !open {
				return nil, "", engine.err
			}

			if rank, score, mov, ok := parseInfo(line); ok {
				ranked[rank] = Candidate{Move: mov, Score: score.Linear()}
				continue
			}

			if best, ok := parseBestMove(line); ok {
				return finish(ranked, best)
			}
		}
	}
}

func parseBestMove(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "bestmove" {
		return "", false
	}

	return fields[1], true
}

func finish(ranked map[int]Candidate, best string) ([]Candidate, string, error) {
	if best == "(none)" || best == "0000" {
		return nil, "", ErrNoCandidates
	}

	candidates := make([]Candidate, 0, len(ranked))
	for _, candidate := range ranked {
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		// some engines move instantly without info output
		candidates = append(candidates, Candidate{Move: best})
	}

	return Normalize(candidates), best, nil
}
