package duel

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/patzerhq/patzer/pkg/chess"
	"github.com/patzerhq/patzer/pkg/internal/random"
)

// OpeningConfig selects the starting positions the games of a duel are
// played from.
type OpeningConfig struct {
	// File points to a newline separated list of FENs. Leaving it
	// empty plays every game from the standard starting position.
	File string `yaml:"file"`

	// Order is either "sequential" (the default) or "random".
	Order string `yaml:"order"`

	// Seed makes a random order reproducible: the same seed string
	// draws the same opening sequence on every run.
	Seed string `yaml:"seed"`
}

func newOpenings(config OpeningConfig, rng random.Source) (*openings, error) {
	book := openings{order: config.Order, rng: rng, current: -1}

	if config.File == "" {
		book.entries = []string{chess.StartingFEN}
		return &book, nil
	}

	file, err := os.ReadFile(config.File)
	if err != nil {
		return nil, err
	}

	for i, entry := range strings.Split(string(file), "\n") {
		entry = strings.Trim(entry, "\n\r\t ")
		if entry == "" {
			continue
		}

		if _, err := chess.FromFEN(entry); err != nil {
			return nil, fmt.Errorf("opening %d of %s: %w", i+1, config.File, err)
		}

		book.entries = append(book.entries, entry)
	}

	if len(book.entries) == 0 {
		return nil, fmt.Errorf("opening file %s has no positions", config.File)
	}

	return &book, nil
}

type openings struct {
	mu sync.Mutex

	entries []string
	order   string
	rng     random.Source
	current int
}

// Next advances the book and returns the position the next game pair
// starts from. It is safe for concurrent use.
func (book *openings) Next() string {
	book.mu.Lock()
	defer book.mu.Unlock()

	switch book.order {
	case "random":
		book.current = book.rng.IntN(len(book.entries))
	default:
		book.current = (book.current + 1) % len(book.entries)
	}

	return book.entries[book.current]
}
