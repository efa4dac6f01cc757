package duel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/patzerhq/patzer/pkg/internal/random"
)

// scripted replays a fixed game line, move by move. The same line is
// indexed by ply, so a player holding a line answers correctly for
// whichever color it is asked to play.
type scripted struct {
	name    string
	asWhite []string
	asBlack []string
	closed  int
}

func follow(name string, line ...string) *scripted {
	return &scripted{name: name, asWhite: line, asBlack: line}
}

func (player *scripted) Name() string { return player.name }

func (player *scripted) NewGame() error { return nil }

func (player *scripted) Play(_ context.Context, _ string, history []string) (string, error) {
	line := player.asWhite
	if len(history)%2 == 1 {
		line = player.asBlack
	}

	if len(history) >= len(line) {
		return "", errors.New("out of script")
	}

	return line[len(history)], nil
}

func (player *scripted) Close() { player.closed++ }

type failing struct{}

func (failing) Name() string   { return "failing" }
func (failing) NewGame() error { return nil }
func (failing) Close()         {}

func (failing) Play(context.Context, string, []string) (string, error) {
	return "", errors.New("no move")
}

var (
	scholarsMate = []string{"e2e4", "e7e5", "d1h5", "b8c6", "f1c4", "g8f6", "h5f7"}
	foolsMate    = []string{"f2f3", "e7e5", "g2g4", "d8h4"}
)

func startFEN() string {
	return "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
}

func TestPlayCheckmate(t *testing.T) {
	duel := &Duel{Config: Config{MaxPlies: 400}}

	white := follow("white", scholarsMate...)
	black := follow("black", scholarsMate...)

	result, reason := duel.play(context.Background(), white, black, startFEN())
	if result != Win || reason != "checkmate" {
		t.Fatalf("expected white to mate, got %s by %s", result, reason)
	}

	white = follow("white", foolsMate...)
	black = follow("black", foolsMate...)

	result, reason = duel.play(context.Background(), white, black, startFEN())
	if result != Loss || reason != "checkmate" {
		t.Fatalf("expected black to mate, got %s by %s", result, reason)
	}
}

func TestPlayForfeitsIllegalMove(t *testing.T) {
	duel := &Duel{Config: Config{MaxPlies: 400}}

	white := follow("white", "e2e5")
	result, reason := duel.play(context.Background(), white, follow("black"), startFEN())
	if result != Loss {
		t.Fatalf("expected white to forfeit, got %s", result)
	}

	if reason != "illegal move e2e5" {
		t.Fatalf("expected an illegal move reason, got %q", reason)
	}

	// a player error forfeits the same way
	result, reason = duel.play(context.Background(), failing{}, follow("black"), startFEN())
	if result != Loss || reason != "no move" {
		t.Fatalf("expected an error forfeit, got %s by %s", result, reason)
	}
}

func TestPlayStalemate(t *testing.T) {
	duel := &Duel{Config: Config{MaxPlies: 400}}

	white := follow("white", "f6g6")
	result, reason := duel.play(
		context.Background(),
		white, follow("black"),
		"7k/8/5Q1K/8/8/8/8/8 w - - 0 1",
	)
	if result != Draw || reason != "stalemate" {
		t.Fatalf("expected a stalemate, got %s by %s", result, reason)
	}
}

func TestPlayAdjudicatesLongGames(t *testing.T) {
	duel := &Duel{Config: Config{MaxPlies: 3}}

	white := follow("white", scholarsMate...)
	black := follow("black", scholarsMate...)

	result, reason := duel.play(context.Background(), white, black, startFEN())
	if result != Draw || reason != "maximum game length" {
		t.Fatalf("expected an adjudicated draw, got %s by %s", result, reason)
	}
}

func TestDuelAcceptsH1(t *testing.T) {
	// the challenger knows a mate for either color, the defender
	// walks into both
	challenger := &scripted{name: "challenger", asWhite: scholarsMate, asBlack: foolsMate}
	defender := &scripted{name: "defender", asWhite: foolsMate, asBlack: scholarsMate}

	restore := startPlayer
	defer func() { startPlayer = restore }()

	spawns := 0
	startPlayer = func(PlayerConfig) (Player, error) {
		spawns++
		if spawns%2 == 1 {
			return challenger, nil
		}
		return defender, nil
	}

	duel, err := New(Config{
		Rounds: 20,
		Test:   &TestConfig{Elo0: 0, Elo1: 100, Alpha: 0.05, Beta: 0.05},
	})
	if err != nil {
		t.Fatalf("expected the duel to configure, got %v", err)
	}

	verdict, err := duel.Start(context.Background())
	if err != nil {
		t.Fatalf("expected a clean finish, got %v", err)
	}

	if verdict != AcceptH1 {
		t.Fatalf("expected an H1 verdict for a perfect score, got %s", verdict)
	}

	if duel.State.Losses != 0 || duel.State.Draws != 0 {
		t.Fatalf(
			"expected only challenger wins, got %d losses and %d draws",
			duel.State.Losses, duel.State.Draws,
		)
	}

	if duel.State.WinWin != duel.State.pairs() {
		t.Fatalf(
			"expected every pair double-won, got %d of %d",
			duel.State.WinWin, duel.State.pairs(),
		)
	}

	if duel.State.Wins != 2*duel.State.pairs() {
		t.Fatalf(
			"expected two wins per pair, got %d wins over %d pairs",
			duel.State.Wins, duel.State.pairs(),
		)
	}

	if challenger.closed != 1 || defender.closed != 1 {
		t.Fatalf(
			"expected both players closed once, got %d and %d",
			challenger.closed, defender.closed,
		)
	}
}

func TestDuelPlaysFixedRounds(t *testing.T) {
	opening := filepath.Join(t.TempDir(), "openings.epd")
	if err := os.WriteFile(opening, []byte("7k/8/5Q1K/8/8/8/8/8 w - - 0 1\n"), 0644); err != nil {
		t.Fatalf("expected the opening file to write, got %v", err)
	}

	restore := startPlayer
	defer func() { startPlayer = restore }()

	startPlayer = func(PlayerConfig) (Player, error) {
		return follow("drawish", "f6g6"), nil
	}

	duel, err := New(Config{
		Rounds:   3,
		Openings: OpeningConfig{File: opening},
	})
	if err != nil {
		t.Fatalf("expected the duel to configure, got %v", err)
	}

	verdict, err := duel.Start(context.Background())
	if err != nil {
		t.Fatalf("expected a clean finish, got %v", err)
	}

	if verdict != Inconclusive {
		t.Fatalf("expected no verdict without a test, got %s", verdict)
	}

	if duel.State.pairs() != 3 || duel.State.DrawDraw != 3 {
		t.Fatalf(
			"expected 3 drawn pairs, got %d pairs with %d draw-draws",
			duel.State.pairs(), duel.State.DrawDraw,
		)
	}

	if duel.State.Draws != 6 {
		t.Fatalf("expected 6 drawn games, got %d", duel.State.Draws)
	}
}

func TestDuelNeedsABound(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected an unbounded duel to be rejected")
	}
}

func TestOpeningsSequential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openings.epd")
	entries := "8/P6k/8/8/8/8/8/K7 w - - 0 1\n\n7k/8/5Q1K/8/8/8/8/8 w - - 0 1\n"
	if err := os.WriteFile(path, []byte(entries), 0644); err != nil {
		t.Fatalf("expected the opening file to write, got %v", err)
	}

	book, err := newOpenings(OpeningConfig{File: path}, random.NewSeeded(1))
	if err != nil {
		t.Fatalf("expected the openings to load, got %v", err)
	}

	first, second, third := book.Next(), book.Next(), book.Next()
	if first == second {
		t.Fatalf("expected the book to advance, got %q twice", first)
	}

	if third != first {
		t.Fatalf("expected the book to wrap around, got %q", third)
	}
}

func TestOpeningsRandomIsSeeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openings.epd")
	entries := "8/P6k/8/8/8/8/8/K7 w - - 0 1\n7k/8/5Q1K/8/8/8/8/8 w - - 0 1\n" + startFEN() + "\n"
	if err := os.WriteFile(path, []byte(entries), 0644); err != nil {
		t.Fatalf("expected the opening file to write, got %v", err)
	}

	one, err := newOpenings(OpeningConfig{File: path, Order: "random"}, random.NewSeeded(7))
	if err != nil {
		t.Fatalf("expected the openings to load, got %v", err)
	}

	two, err := newOpenings(OpeningConfig{File: path, Order: "random"}, random.NewSeeded(7))
	if err != nil {
		t.Fatalf("expected the openings to load, got %v", err)
	}

	for i := 0; i < 10; i++ {
		if a, b := one.Next(), two.Next(); a != b {
			t.Fatalf("expected draw %d to repeat with the seed, got %q and %q", i, a, b)
		}
	}
}

func TestOpeningsSeedStringRepeatsSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openings.epd")
	entries := "8/P6k/8/8/8/8/8/K7 w - - 0 1\n7k/8/5Q1K/8/8/8/8/8 w - - 0 1\n" + startFEN() + "\n"
	if err := os.WriteFile(path, []byte(entries), 0644); err != nil {
		t.Fatalf("expected the opening file to write, got %v", err)
	}

	config := Config{
		Rounds:   1,
		Openings: OpeningConfig{File: path, Order: "random", Seed: "sparring"},
	}

	one, err := New(config)
	if err != nil {
		t.Fatalf("expected the duel to prepare, got %v", err)
	}

	two, err := New(config)
	if err != nil {
		t.Fatalf("expected the duel to prepare, got %v", err)
	}

	for i := 0; i < 10; i++ {
		if a, b := one.openings.Next(), two.openings.Next(); a != b {
			t.Fatalf("expected draw %d to repeat with the seed, got %q and %q", i, a, b)
		}
	}
}

func TestOpeningsRejectBrokenFENs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openings.epd")
	if err := os.WriteFile(path, []byte("not a position\n"), 0644); err != nil {
		t.Fatalf("expected the opening file to write, got %v", err)
	}

	if _, err := newOpenings(OpeningConfig{File: path}, random.NewSeeded(1)); err == nil {
		t.Fatalf("expected a broken opening file to be rejected")
	}
}

func TestOpeningsDefaultToStartPosition(t *testing.T) {
	book, err := newOpenings(OpeningConfig{}, random.NewSeeded(1))
	if err != nil {
		t.Fatalf("expected the default openings to load, got %v", err)
	}

	if got := book.Next(); got != startFEN() {
		t.Fatalf("expected the standard start position, got %q", got)
	}
}

func TestResultStrings(t *testing.T) {
	if Win.String() != "1-0" || Loss.String() != "0-1" || Draw.String() != "1/2-1/2" {
		t.Fatalf(
			"expected conventional scorelines, got %s %s %s",
			Win, Loss, Draw,
		)
	}

	if pairOf(Win, Draw) != WinDraw || pairOf(Loss, Loss) != LossLoss {
		t.Fatalf("expected pair sums to classify pairs")
	}
}
