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

// Package random provides the random sources used for every stochastic
// decision the opponent makes. A seeded source replays the exact same
// stream for the same seed, which is what makes picks reproducible.
package random

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
)

// Source is the interface both generators implement. Everything the
// picker randomizes goes through one of these two methods.
type Source interface {
	// Float64 returns a uniformly distributed number in [0, 1).
	Float64() float64

	// IntN returns a uniformly distributed integer in [0, n).
	IntN(n int) int
}

type seeded struct {
	r *rand.Rand
}

// NewSeeded returns a deterministic Source. The same seed always
// produces the same stream.
func NewSeeded(seed uint64) Source {
	return &seeded{r: rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))}
}

// NewSeededString hashes the given string into a seed and returns a
// deterministic Source for it.
func NewSeededString(seed string) Source {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return NewSeeded(h.Sum64())
}

func (s *seeded) Float64() float64 { return s.r.Float64() }
func (s *seeded) IntN(n int) int   { return s.r.IntN(n) }

type entropy struct{}

// NewEntropy returns a Source backed by the operating system's entropy
// pool. Used when the caller does not care about reproducibility.
func NewEntropy() Source {
	return entropy{}
}

func (entropy) Float64() float64 {
	// 53 random bits give the full double precision of the mantissa.
	return float64(read64()>>11) / (1 << 53)
}

func (entropy) IntN(n int) int {
	return int(read64() % uint64(n))
}

// Seed64 draws a fresh random seed from the entropy pool. Picks made
// without an explicit seed are seeded with one of these so that their
// decision trace stays replayable.
func Seed64() uint64 {
	return read64()
}

func read64() uint64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		// The entropy pool is unreadable; fall back to the global
		// math/rand source rather than failing the caller.
		return rand.Uint64()
	}
	return binary.BigEndian.Uint64(buf[:])
}

// WeightedIndex draws an index proportionally to the given weights. A
// non-positive total degrades to a uniform draw. Returns -1 for an
// empty slice.
func WeightedIndex(rng Source, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}

	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}

	if total <= 0 {
		return rng.IntN(len(weights))
	}

	draw := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}

		cumulative += w
		if draw < cumulative {
			return i
		}
	}

	return len(weights) - 1
}
