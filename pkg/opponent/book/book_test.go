package book

import (
	"strings"
	"testing"

	"github.com/patzerhq/patzer/pkg/chess"
	"github.com/patzerhq/patzer/pkg/internal/random"
)

type fakePosition struct {
	moves []string
}

func (position *fakePosition) Moves() []string {
	return position.moves
}

func TestDefaultBookLoads(t *testing.T) {
	book := Default()

	if book.Len() != 23 {
		t.Fatalf("expected 23 lines in the default book, got %d", book.Len())
	}

	if len(book.Lookup(chess.White, nil)) != 11 {
		t.Fatalf("expected 11 white lines, got %d", len(book.Lookup(chess.White, nil)))
	}

	if len(book.Lookup(chess.Black, nil)) != 12 {
		t.Fatalf("expected 12 black lines, got %d", len(book.Lookup(chess.Black, nil)))
	}
}

func TestNormalizationProducesCoordinateMoves(t *testing.T) {
	book := Default()

	for _, line := range book.Lookup(chess.White, nil) {
		for _, mov := range line.Moves {
			if len(mov) < 4 || len(mov) > 5 || strings.ContainsAny(mov, "xO+-") {
				t.Fatalf("line %q has unnormalized move %q", line.Title(), mov)
			}
		}
	}
}

func TestLookupMatchesPrefix(t *testing.T) {
	book := Default()

	matches := book.Lookup(chess.White, []string{"e2e4", "e7e5"})
	if len(matches) != 7 {
		t.Fatalf("expected 7 white lines after 1. e4 e5, got %d", len(matches))
	}

	for _, line := range matches {
		if line.Moves[0] != "e2e4" || line.Moves[1] != "e7e5" {
			t.Fatalf("line %q does not match the history", line.Title())
		}
	}

	if got := book.Lookup(chess.Black, []string{"e2e4", "e7e5"}); len(got) != 2 {
		t.Fatalf("expected 2 black lines after 1. e4 e5, got %d", len(got))
	}
}

func TestLookupIgnoresMoveCase(t *testing.T) {
	book := Default()

	if len(book.Lookup(chess.White, []string{"E2E4", "E7E5"})) != 7 {
		t.Fatalf("expected prefix matching to ignore case")
	}
}

func TestPickFavorsCommonOpening(t *testing.T) {
	book := Default()

	for seed := uint64(1); seed <= 5; seed++ {
		mov, line := book.Pick(Query{
			Side:        chess.White,
			History:     nil,
			Position:    chess.Start(),
			MaxPlies:    6,
			TopLines:    4,
			FavorCommon: true,
			RNG:         random.NewSeeded(seed),
		})

		if mov != "e2e4" {
			t.Fatalf("seed %d: expected e2e4 from the top opening, got %q", seed, mov)
		}

		if line == nil || line.Name != "Italian Game" {
			t.Fatalf("seed %d: expected the Italian Game, got %v", seed, line)
		}
	}
}

func TestPickContinuesLine(t *testing.T) {
	book := Default()

	position := chess.Start()
	if err := position.Replay([]string{"e2e4", "e7e5"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mov, line := book.Pick(Query{
		Side:        chess.White,
		History:     []string{"e2e4", "e7e5"},
		Position:    position,
		MaxPlies:    8,
		TopLines:    4,
		FavorCommon: true,
		RNG:         random.NewSeeded(7),
	})

	if mov != "g1f3" {
		t.Fatalf("expected g1f3 to continue the Italian, got %q", mov)
	}

	if line == nil || line.Name != "Italian Game" {
		t.Fatalf("expected the Italian Game, got %v", line)
	}
}

func TestPickIsReproducibleWithoutFavorCommon(t *testing.T) {
	book := Default()

	first, _ := book.Pick(Query{
		Side:     chess.White,
		Position: chess.Start(),
		MaxPlies: 6,
		RNG:      random.NewSeeded(99),
	})

	second, _ := book.Pick(Query{
		Side:     chess.White,
		Position: chess.Start(),
		MaxPlies: 6,
		RNG:      random.NewSeeded(99),
	})

	if first == "" || first != second {
		t.Fatalf("expected identical picks for one seed, got %q and %q", first, second)
	}
}

func TestPickRespectsPlyCap(t *testing.T) {
	book := Default()

	mov, _ := book.Pick(Query{
		Side:     chess.White,
		History:  []string{"e2e4", "e7e5"},
		Position: &fakePosition{moves: []string{"g1f3"}},
		MaxPlies: 2,
		RNG:      random.NewSeeded(1),
	})

	if mov != "" {
		t.Fatalf("expected a miss at the ply cap, got %q", mov)
	}
}

func TestPickExitsEarly(t *testing.T) {
	book := Default()

	mov, _ := book.Pick(Query{
		Side:       chess.White,
		History:    []string{"e2e4", "e7e5"},
		Position:   &fakePosition{moves: []string{"g1f3"}},
		MaxPlies:   12,
		ExitPlies:  2,
		ExitChance: 1.0,
		RNG:        random.NewSeeded(1),
	})

	if mov != "" {
		t.Fatalf("expected a guaranteed early exit, got %q", mov)
	}
}

func TestPickConfirmsLegality(t *testing.T) {
	book := Default()

	// The live position disagrees with the history: no book move is
	// legal in it, so the pick must degrade to a miss.
	mov, _ := book.Pick(Query{
		Side:        chess.White,
		History:     []string{"e2e4", "e7e5"},
		Position:    &fakePosition{moves: []string{"a2a3"}},
		MaxPlies:    12,
		TopLines:    4,
		FavorCommon: true,
		RNG:         random.NewSeeded(1),
	})

	if mov != "" {
		t.Fatalf("expected an illegal book move to degrade to a miss, got %q", mov)
	}
}

func TestPickMissesOffBook(t *testing.T) {
	book := Default()

	mov, _ := book.Pick(Query{
		Side:     chess.White,
		History:  []string{"a2a3", "a7a6"},
		Position: &fakePosition{moves: []string{"b2b3"}},
		MaxPlies: 12,
		RNG:      random.NewSeeded(1),
	})

	if mov != "" {
		t.Fatalf("expected a miss for an unknown history, got %q", mov)
	}
}

func TestFromYAMLDropsIllegalLines(t *testing.T) {
	book, err := FromYAML([]byte(`
openings:
  - eco: C20
    name: King's Pawn
    side: white
    weight: 1
    lines:
      - variation: Good
        weight: 1
        moves: e4 e5
      - variation: Broken
        weight: 1
        moves: e4 e5 Ke2 Ke7 Kxe1
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if book.Len() != 1 {
		t.Fatalf("expected the illegal line to be dropped, got %d lines", book.Len())
	}
}

func TestFromYAMLAcceptsCoordinateMoves(t *testing.T) {
	book, err := FromYAML([]byte(`
openings:
  - eco: C20
    name: King's Pawn
    side: white
    weight: 1
    lines:
      - variation: Coordinate
        weight: 1
        moves: e2e4 e7e5 g1f3
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := book.Lookup(chess.White, nil)
	if len(lines) != 1 || lines[0].Moves[2] != "g1f3" {
		t.Fatalf("expected coordinate input to normalize cleanly, got %v", lines)
	}
}

func TestIdentifyFindsDeepestLine(t *testing.T) {
	book := Default()

	line, depth := book.Identify([]string{"e2e4", "c7c5", "g1f3", "d7d6", "d2d4", "c5d4", "f3d4", "g8f6", "b1c3", "a7a6", "h2h3"})
	if line == nil || line.Name != "Sicilian Defense" || line.Variation != "Najdorf" {
		t.Fatalf("expected the Najdorf, got %v", line)
	}

	if depth != 10 {
		t.Fatalf("expected 10 matched plies, got %d", depth)
	}

	if line, depth := book.Identify([]string{"h2h4"}); line != nil || depth != 0 {
		t.Fatalf("expected no match for 1. h4, got %v at %d", line, depth)
	}
}
