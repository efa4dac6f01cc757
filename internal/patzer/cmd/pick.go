package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/patzerhq/patzer/pkg/chess"
	"github.com/patzerhq/patzer/pkg/engine"
	"github.com/patzerhq/patzer/pkg/internal/util"
	"github.com/patzerhq/patzer/pkg/manager"
	"github.com/patzerhq/patzer/pkg/opponent"
)

// patzer pick
func Pick() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick a single move at the given strength",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`pick selects one move for the given position the way an
			opponent of the given strength would, and prints the move
			together with the full decision trace that produced it.

			The position is given as a FEN string and, when available,
			the moves that led to it. Supplying the history lets the
			opening book and the game-phase heuristics do their job, so
			pass it whenever you have it.

			A pick can be replayed exactly by passing the seed printed
			in its trace back through --seed.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("engine")
			fen, _ := cmd.Flags().GetString("fen")
			elo, _ := cmd.Flags().GetInt("elo")
			history, _ := cmd.Flags().GetStringSlice("history")

			config, err := resolveEngine(name)
			if err != nil {
				return err
			}

			uci, err := engine.StartUCI(config)
			if err != nil {
				return err
			}
			defer func() { _ = uci.Kill() }()

			request := opponent.Request{FEN: fen, History: history, Elo: elo}
			if cmd.Flag("seed").Changed {
				seed, _ := cmd.Flags().GetUint64("seed")
				request.Seed = &seed
			}

			picker := opponent.New(uci, nil, nil)

			util.StartSpinner()
			result, err := picker.PickMove(cmd.Context(), request)
			util.PauseSpinner()
			if err != nil {
				return err
			}

			printPick(result)
			return nil
		},
	}

	cmd.Flags().StringP("engine", "e", "stockfish", "name or path of the analysis engine")
	cmd.Flags().String("fen", chess.StartingFEN, "position to pick a move in")
	cmd.Flags().Int("elo", 1500, "strength to pick the move at")
	cmd.Flags().StringSlice("history", nil, "moves leading to the position, long algebraic")
	cmd.Flags().Uint64("seed", 0, "seed to replay a previous pick")

	return cmd
}

// printPick renders a picked move and its decision trace.
func printPick(result *opponent.Result) {
	meta := result.Meta

	fmt.Printf("\n\x1b[32m%s\x1b[0m (%s)\n\n", result.Move, result.Reason)
	fmt.Printf("%-13s %s\n", "band:", meta.Band)
	fmt.Printf("%-13s %d\n", "seed:", meta.Seed)

	// Book picks never touch the engine, so there is no search trace.
	if meta.BookLine != "" {
		fmt.Printf("%-13s %s\n", "book line:", meta.BookLine)
		return
	}

	fmt.Printf("%-13s %dms x %d lines, %dcp drop tolerance\n", "search:", meta.TimeMs, meta.Lines, meta.DropTol)

	if len(meta.DropBumps)+len(meta.LineBumps)+len(meta.TimeBumps) > 0 {
		fmt.Printf("%-13s", "widened:")
		for _, bump := range meta.DropBumps {
			fmt.Printf(" drop+%d", bump)
		}
		for _, bump := range meta.LineBumps {
			fmt.Printf(" lines+%d", bump)
		}
		for _, bump := range meta.TimeBumps {
			fmt.Printf(" time+%dms", bump)
		}
		fmt.Println()
	}

	if meta.Imperfection != "" {
		fmt.Printf("%-13s %s\n", "imperfection:", meta.Imperfection)
	}
	fmt.Printf("%-13s %.2f\n", "temperature:", meta.Temperature)

	if len(meta.Pool) > 0 {
		fmt.Println("\ncandidate pool:")
		for _, candidate := range meta.Pool {
			marker := "   "
			if candidate.Move == result.Move {
				marker = " \x1b[32m>\x1b[0m "
			}
			fmt.Printf("%s%-8s cp %+5d  drop %d\n", marker, candidate.Move, candidate.Score, candidate.Drop)
		}
	}
}

// resolveEngine maps an --engine flag value to a runnable engine
// configuration. Names of installed engines resolve through the
// manager, anything else is treated as a path to an engine binary.
func resolveEngine(name string) (engine.Config, error) {
	if path, err := manager.ResolveBinary(name); err == nil {
		return engine.Config{Name: name, Cmd: path}, nil
	}

	if _, err := os.Stat(name); err != nil {
		return engine.Config{}, fmt.Errorf("engine %s is neither installed nor a binary on disk", name)
	}

	return engine.Config{Name: filepath.Base(name), Cmd: name}, nil
}
