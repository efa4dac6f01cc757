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

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/notnil/chess"
	"github.com/spf13/cobra"

	"github.com/patzerhq/patzer/pkg/engine"
	"github.com/patzerhq/patzer/pkg/internal/random"
	"github.com/patzerhq/patzer/pkg/internal/util"
	"github.com/patzerhq/patzer/pkg/opponent"
	"github.com/patzerhq/patzer/pkg/opponent/book"
)

// patzer play
func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game against a synthetic opponent",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`play starts an interactive game in the terminal against a
			synthetic opponent of the given strength. Moves are entered
			in standard algebraic notation (Nf3, exd5, O-O), with long
			algebraic (g1f3) accepted as well.

			Type resign to give up and quit to abandon the game.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(cmd)
		},
	}

	cmd.Flags().StringP("engine", "e", "stockfish", "name or path of the analysis engine")
	cmd.Flags().Int("elo", 1500, "strength of the opponent")
	cmd.Flags().String("color", "random", "color to play: white, black or random")
	cmd.Flags().String("book", "", "custom opening book for the opponent")

	return cmd
}

func play(cmd *cobra.Command) error {
	name, _ := cmd.Flags().GetString("engine")
	elo, _ := cmd.Flags().GetInt("elo")
	color, _ := cmd.Flags().GetString("color")
	bookPath, _ := cmd.Flags().GetString("book")

	human, err := pickColor(color)
	if err != nil {
		return err
	}

	openings := book.Default()
	if bookPath != "" {
		if openings, err = book.Load(bookPath); err != nil {
			return err
		}
	}

	config, err := resolveEngine(name)
	if err != nil {
		return err
	}

	uci, err := engine.StartUCI(config)
	if err != nil {
		return err
	}
	defer func() { _ = uci.Kill() }()

	picker := opponent.New(uci, openings, nil)

	game := chess.NewGame()
	var history []string
	input := bufio.NewScanner(os.Stdin)

	fmt.Printf("\nPlaying \x1b[33m%s\x1b[0m against \x1b[33m%s@%d\x1b[0m.\n", human.Name(), uci.Name(), elo)

	for game.Outcome() == chess.NoOutcome {
		fmt.Println(game.Position().Board().Draw())
		if line, _ := openings.Identify(history); line != nil {
			fmt.Printf("\x1b[36m%s\x1b[0m\n", line.Title())
		}

		if game.Position().Turn() == human {
			move, quit := prompt(input, game)
			if quit {
				return nil
			}
			if move == nil {
				// The human resigned.
				fmt.Printf("\n\x1b[33m%s\x1b[0m wins by resignation.\n", human.Other().Name())
				return nil
			}

			uciMove := chess.UCINotation{}.Encode(game.Position(), move)
			if err := game.Move(move); err != nil {
				return err
			}
			history = append(history, uciMove)
			continue
		}

		util.StartSpinner()
		result, err := picker.PickMove(cmd.Context(), opponent.Request{
			FEN:     game.FEN(),
			History: history,
			Elo:     elo,
		})
		util.PauseSpinner()
		if err != nil {
			return err
		}

		move, err := chess.UCINotation{}.Decode(game.Position(), result.Move)
		if err != nil {
			return fmt.Errorf("opponent played the illegal move %s", result.Move)
		}

		fmt.Printf("\nOpponent plays \x1b[32m%s\x1b[0m.\n", chess.AlgebraicNotation{}.Encode(game.Position(), move))
		if err := game.Move(move); err != nil {
			return err
		}
		history = append(history, result.Move)
	}

	fmt.Println(game.Position().Board().Draw())
	fmt.Printf("Game over: \x1b[33m%s\x1b[0m by %s.\n", game.Outcome(), game.Method())
	return nil
}

// prompt reads moves from the human until one of them is legal in the
// position. A nil move with quit unset means the human resigned.
func prompt(input *bufio.Scanner, game *chess.Game) (move *chess.Move, quit bool) {
	for {
		fmt.Print("your move: ")
		if !input.Scan() {
			return nil, true
		}

		text := strings.TrimSpace(input.Text())
		switch text {
		case "":
			continue
		case "quit", "exit":
			return nil, true
		case "resign":
			return nil, false
		}

		// Standard algebraic first, long algebraic as a fallback.
		move, err := chess.AlgebraicNotation{}.Decode(game.Position(), text)
		if err != nil {
			move, err = chess.UCINotation{}.Decode(game.Position(), text)
		}
		if err != nil {
			fmt.Printf("\x1b[31m%s is not a legal move.\x1b[0m\n", text)
			continue
		}

		return move, false
	}
}

// pickColor parses the --color flag, flipping a coin for random.
func pickColor(name string) (chess.Color, error) {
	switch strings.ToLower(name) {
	case "white", "w":
		return chess.White, nil
	case "black", "b":
		return chess.Black, nil
	case "random":
		if random.NewEntropy().IntN(2) == 0 {
			return chess.White, nil
		}
		return chess.Black, nil
	default:
		return chess.NoColor, fmt.Errorf("unknown color %s", name)
	}
}
