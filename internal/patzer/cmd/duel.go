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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/patzerhq/patzer/pkg/duel"
	"github.com/patzerhq/patzer/pkg/rating"
)

// patzer duel
func Duel() *cobra.Command {
	return &cobra.Command{
		Use:   "duel config-file",
		Short: "Run a calibration duel between two players",
		Args:  cobra.ExactArgs(1),
		Long: heredoc.Doc(`duel plays a match of color-reversed game pairs between the
			two players described by the given yaml file, and reports
			the challenger's rating difference as the match progresses.

			Players can be synthetic opponents pinned to a strength or
			raw engines on a fixed move time, so a duel can check a
			strength band against a calibrated reference, or two bands
			against each other. Configuring a sequential test stops the
			duel as soon as the result is statistically decided.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var config duel.Config
			if err := yaml.Unmarshal(file, &config); err != nil {
				return err
			}

			match, err := duel.New(config)
			if err != nil {
				return err
			}

			// When both players are synthetic their nominal strengths
			// predict the score. The duel checks that prediction.
			if eloA, eloB := config.Players[0].Elo, config.Players[1].Elo; eloA > 0 && eloB > 0 {
				expected := rating.Expected(float64(eloA - eloB))
				fmt.Printf("Expected challenger score at nominal strength: \x1b[33m%.1f%%\x1b[0m\n", expected*100)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			verdict, err := match.Start(ctx)
			if errors.Is(err, context.Canceled) {
				fmt.Println("\nDuel interrupted.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("\nDuel finished: \x1b[32m%s\x1b[0m.\n", verdict)
			return nil
		},
	}
}
