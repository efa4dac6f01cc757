package engine

import (
	"errors"
	"testing"
)

func TestScoreLinear(t *testing.T) {
	if got := Cp(34).Linear(); got != 34 {
		t.Fatalf("expected centipawn scores to pass through, got %d", got)
	}

	if got := Cp(-250).Linear(); got != -250 {
		t.Fatalf("expected negative centipawns to pass through, got %d", got)
	}

	if got := MateIn(1).Linear(); got != 9900 {
		t.Fatalf("expected mate in 1 to map to 9900, got %d", got)
	}

	if got := MateIn(3).Linear(); got != 9700 {
		t.Fatalf("expected mate in 3 to map to 9700, got %d", got)
	}

	if got := MateIn(-2).Linear(); got != -9800 {
		t.Fatalf("expected mated in 2 to map to -9800, got %d", got)
	}

	if got := MateIn(150).Linear(); got != 100 {
		t.Fatalf("expected absurd mate distances to clamp, got %d", got)
	}

	if MateIn(2).Linear() <= MateIn(5).Linear() {
		t.Fatalf("expected faster mates to outrank slower ones")
	}

	if MateIn(99).Linear() <= Cp(9000).Linear() {
		t.Fatalf("expected any mate to outrank any centipawn score")
	}
}

func TestParseInfo(t *testing.T) {
	line := "info depth 18 seldepth 24 multipv 2 score cp 34 nodes 52133"
	if _, _, _, ok := parseInfo(line); ok {
		t.Fatalf("expected line without pv to be skipped")
	}

	line = "info depth 18 seldepth 24 multipv 2 score cp 34 nodes 52133 nps 100 pv d2d4 d7d5 c2c4"
	rank, score, mov, ok := parseInfo(line)
	if !ok {
		t.Fatalf("expected full info line to parse")
	}

	if rank != 2 || mov != "d2d4" || score.Linear() != 34 {
		t.Fatalf("unexpected parse result: rank=%d move=%q score=%d", rank, mov, score.Linear())
	}
}

func TestParseInfoDefaultsRankToOne(t *testing.T) {
	rank, score, mov, ok := parseInfo("info depth 12 score mate -3 pv h7h8")
	if !ok {
		t.Fatalf("expected info line to parse")
	}

	if rank != 1 {
		t.Fatalf("expected missing multipv to mean rank 1, got %d", rank)
	}

	if mov != "h7h8" || score.Linear() != -9700 {
		t.Fatalf("unexpected parse result: move=%q score=%d", mov, score.Linear())
	}
}

func TestParseInfoSkipsChatter(t *testing.T) {
	for _, line := range []string{
		"info string NNUE evaluation using nn-ad9b42354671.nnue",
		"info depth 10 currmove e2e4 currmovenumber 1",
		"bestmove e2e4 ponder e7e5",
		"",
	} {
		if _, _, _, ok := parseInfo(line); ok {
			t.Fatalf("expected %q to be skipped", line)
		}
	}
}

func TestParseBestMove(t *testing.T) {
	best, ok := parseBestMove("bestmove e2e4 ponder e7e5")
	if !ok || best != "e2e4" {
		t.Fatalf("unexpected bestmove parse: %q %v", best, ok)
	}

	if _, ok := parseBestMove("info depth 1 score cp 0 pv e2e4"); ok {
		t.Fatalf("expected info line to not parse as bestmove")
	}
}

func TestNormalizeDeduplicatesAndSorts(t *testing.T) {
	candidates := Normalize([]Candidate{
		{Move: "g1f3", Score: 20},
		{Move: "e2e4", Score: 35},
		{Move: "E2E4", Score: 10},
		{Move: "d2d4", Score: 35},
	})

	if len(candidates) != 3 {
		t.Fatalf("expected 3 unique moves, got %d", len(candidates))
	}

	if candidates[0].Move != "d2d4" || candidates[1].Move != "e2e4" {
		t.Fatalf("expected score ties to break on move order, got %v", candidates)
	}

	if candidates[1].Score != 35 {
		t.Fatalf("expected dedupe to keep the best score, got %d", candidates[1].Score)
	}

	if candidates[2].Move != "g1f3" {
		t.Fatalf("expected g1f3 last, got %v", candidates)
	}
}

func TestFinishFallsBackToBestMove(t *testing.T) {
	candidates, best, err := finish(map[int]Candidate{}, "e2e4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if best != "e2e4" || len(candidates) != 1 || candidates[0].Move != "e2e4" {
		t.Fatalf("expected bare bestmove to become the only candidate, got %v", candidates)
	}
}

func TestFinishRejectsDeadPositions(t *testing.T) {
	for _, none := range []string{"(none)", "0000"} {
		if _, _, err := finish(map[int]Candidate{}, none); !errors.Is(err, ErrNoCandidates) {
			t.Fatalf("expected ErrNoCandidates for %q, got %v", none, err)
		}
	}
}
