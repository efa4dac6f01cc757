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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patzerhq/patzer/pkg/chess"
	"github.com/patzerhq/patzer/pkg/opponent/book"
)

// patzer book
func Book() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Inspect an opening book",
		Args:  cobra.NoArgs,
	}

	cmd.PersistentFlags().String("book", "", "book file to inspect instead of the built-in one")

	cmd.AddCommand(bookLines())
	cmd.AddCommand(bookIdentify())
	return cmd
}

// patzer book lines
func bookLines() *cobra.Command {
	return &cobra.Command{
		Use:   "lines [moves...]",
		Short: "List the book lines matching the given moves",
		Args:  cobra.ArbitraryArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loadBook(cmd)
			if err != nil {
				return err
			}

			// The book indexes lines by the side which plays them, so
			// list the lines of the side to move after the prefix.
			side := chess.White
			if len(args)%2 == 1 {
				side = chess.Black
			}

			lines := lib.Lookup(side, args)
			if len(lines) == 0 {
				fmt.Println("\x1b[31mThe book has no lines here.\x1b[0m")
				return nil
			}

			if len(args) > 0 {
				fmt.Printf("\x1b[32mBook lines\x1b[0m for %s after %s:\n\n", side, strings.Join(args, " "))
			} else {
				fmt.Printf("\x1b[32mBook lines\x1b[0m for %s:\n\n", side)
			}

			for _, line := range lines {
				fmt.Printf("  [%-3s] %-42s %s\n", line.ECO, line.Title(), strings.Join(line.Moves, " "))
			}

			return nil
		},
	}
}

// patzer book identify
func bookIdentify() *cobra.Command {
	return &cobra.Command{
		Use:   "identify moves...",
		Short: "Name the opening the given moves went through",
		Args:  cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loadBook(cmd)
			if err != nil {
				return err
			}

			line, matched := lib.Identify(args)
			if line == nil {
				fmt.Println("\x1b[31mNo opening matched.\x1b[0m")
				return nil
			}

			fmt.Printf("[%s] \x1b[32m%s\x1b[0m (first %d plies)\n", line.ECO, line.Title(), matched)
			return nil
		},
	}
}

// loadBook opens the book named by the inherited --book flag, or the
// built-in book when the flag is unset.
func loadBook(cmd *cobra.Command) (*book.Book, error) {
	if path := cmd.Flag("book").Value.String(); path != "" {
		return book.Load(path)
	}

	return book.Default(), nil
}
