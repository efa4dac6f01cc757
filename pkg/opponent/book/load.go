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

package book

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	notnil "github.com/notnil/chess"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/patzerhq/patzer/pkg/chess"
)

//go:embed openings.yaml
var openingsFile []byte

var (
	defaultOnce sync.Once
	defaultBook *Book
)

// Default returns the built-in opening book, parsed once and shared.
func Default() *Book {
	defaultOnce.Do(func() {
		book, err := FromYAML(openingsFile)
		if err != nil {
			panic("book: embedded openings are broken: " + err.Error())
		}

		defaultBook = book
	})

	return defaultBook
}

// Load reads an opening book from a yaml file.
func Load(path string) (*Book, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	return FromYAML(file)
}

type bookFile struct {
	Openings []openingRecord `yaml:"openings"`
}

type openingRecord struct {
	ECO    string       `yaml:"eco"`
	Name   string       `yaml:"name"`
	Side   string       `yaml:"side"`
	Weight float64      `yaml:"weight"`
	Lines  []lineRecord `yaml:"lines"`
}

type lineRecord struct {
	Variation string  `yaml:"variation"`
	Weight    float64 `yaml:"weight"`
	Moves     string  `yaml:"moves"`
}

// FromYAML parses opening records and builds the index. Moves may be
// written in algebraic or coordinate notation and are normalized to
// coordinate notation. Lines that fail to replay legally are dropped
// without failing the load, since a thin book beats no opponent.
func FromYAML(data []byte) (*Book, error) {
	var file bookFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	var lines []*Line
	for _, opening := range file.Openings {
		side, err := chess.ParseSide(opening.Side)
		if err != nil {
			logrus.Debugf("book: dropped %s %q: %v\n", opening.ECO, opening.Name, err)
			continue
		}

		for _, record := range opening.Lines {
			moves, err := normalize(strings.Fields(record.Moves))
			if err != nil {
				logrus.Debugf("book: dropped %s %q (%s): %v\n",
					opening.ECO, opening.Name, record.Variation, err)
				continue
			}

			if len(moves) == 0 {
				continue
			}

			lines = append(lines, &Line{
				ECO:           opening.ECO,
				Name:          opening.Name,
				Variation:     record.Variation,
				Side:          side,
				OpeningWeight: opening.Weight,
				Weight:        record.Weight,
				Moves:         moves,
			})
		}
	}

	return newBook(lines), nil
}

// normalize replays a move sequence from the start position, accepting
// algebraic or coordinate tokens, and re-encodes every move in
// coordinate notation. Illegal sequences fail with the offending move.
func normalize(tokens []string) ([]string, error) {
	game := notnil.NewGame()
	coordinate := notnil.UCINotation{}
	algebraic := notnil.AlgebraicNotation{}

	moves := make([]string, 0, len(tokens))
	for i, token := range tokens {
		position := game.Position()

		mov, err := coordinate.Decode(position, token)
		if err != nil {
			mov, err = algebraic.Decode(position, token)
		}

		if err != nil {
			return nil, fmt.Errorf("move %d (%s): %w", i+1, token, err)
		}

		if err := game.Move(mov); err != nil {
			return nil, fmt.Errorf("move %d (%s): %w", i+1, token, err)
		}

		moves = append(moves, coordinate.Encode(position, mov))
	}

	return moves, nil
}
