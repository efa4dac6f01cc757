package random

import "testing"

func TestSeededSourceIsReproducible(t *testing.T) {
	a := NewSeeded(1337)
	b := NewSeeded(1337)

	for i := 0; i < 64; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("streams diverged at draw %d: %v != %v", i, x, y)
		}
	}
}

func TestSeededSourcesWithDifferentSeedsDiverge(t *testing.T) {
	a := NewSeeded(1)
	b := NewSeeded(2)

	same := true
	for i := 0; i < 16; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}

	if same {
		t.Fatalf("expected different seeds to produce different streams")
	}
}

func TestSeededStringMatchesItself(t *testing.T) {
	a := NewSeededString("sparring")
	b := NewSeededString("sparring")

	for i := 0; i < 16; i++ {
		if a.IntN(1000) != b.IntN(1000) {
			t.Fatalf("string-seeded streams diverged at draw %d", i)
		}
	}
}

func TestIntNStaysInRange(t *testing.T) {
	rng := NewSeeded(7)
	for i := 0; i < 256; i++ {
		if n := rng.IntN(5); n < 0 || n >= 5 {
			t.Fatalf("IntN(5) returned %d", n)
		}
	}
}

func TestWeightedIndexFavorsHeavyWeights(t *testing.T) {
	rng := NewSeeded(42)
	weights := []float64{1, 0, 99}

	counts := [3]int{}
	for i := 0; i < 1000; i++ {
		idx := WeightedIndex(rng, weights)
		if idx < 0 || idx > 2 {
			t.Fatalf("index out of range: %d", idx)
		}
		counts[idx]++
	}

	if counts[1] != 0 {
		t.Fatalf("zero-weight entry was drawn %d times", counts[1])
	}
	if counts[2] <= counts[0] {
		t.Fatalf("heavy entry drawn %d times, light entry %d", counts[2], counts[0])
	}
}

func TestWeightedIndexDegradesToUniform(t *testing.T) {
	rng := NewSeeded(9)

	if idx := WeightedIndex(rng, nil); idx != -1 {
		t.Fatalf("expected -1 for empty weights, got %d", idx)
	}

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seen[WeightedIndex(rng, []float64{0, 0, 0})] = true
	}
	for i := 0; i < 3; i++ {
		if !seen[i] {
			t.Fatalf("uniform fallback never drew index %d", i)
		}
	}
}
