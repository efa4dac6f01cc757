package opponent

import (
	"math"
	"strings"

	"github.com/patzerhq/patzer/pkg/internal/random"
	"github.com/patzerhq/patzer/pkg/opponent/strength"
)

// ruleContext carries everything an imperfection rule may consult.
// pool is the tolerance-filtered candidate set and full the unfiltered
// one, both sorted best first so drops ascend.
type ruleContext struct {
	pool  []PoolCandidate
	full  []PoolCandidate
	legal []string

	rng random.Source

	band    *strength.Band
	dev     *strength.DevBand
	profile *strength.Imperfection
	inDev   bool
}

// rule is one imperfection mechanism. Rules run in a fixed priority
// order and the first one to yield a move wins; a rule that rolls its
// trigger but cannot produce a move passes without retrying.
type rule struct {
	kind string
	fire func(*ruleContext) (string, bool)
}

var rules = []rule{
	{kind: "devForced", fire: devForced},
	{kind: "devNoise", fire: devNoise},
	{kind: "imperfection", fire: profileBlunder},
}

// devForced occasionally forces the calibration band into its worst
// qualifying candidate, or a move the engine never suggested.
func devForced(rc *ruleContext) (string, bool) {
	if !rc.inDev || rc.rng.Float64() >= rc.dev.Forced.Rate {
		return "", false
	}

	worst, found := "", false
	for _, candidate := range rc.full {
		if candidate.Drop >= rc.dev.Forced.MinDrop {
			worst, found = candidate.Move, true
		}
	}

	if found {
		return worst, true
	}

	if outside := legalOutside(rc); len(outside) > 0 {
		return outside[rc.rng.IntN(len(outside))], true
	}

	return "", false
}

// devNoise samples uniformly from the calibration band's worst few
// candidates past a minimum drop.
func devNoise(rc *ruleContext) (string, bool) {
	if !rc.inDev || rc.rng.Float64() >= rc.dev.Noise.Rate {
		return "", false
	}

	var qualifying []PoolCandidate
	for _, candidate := range rc.full {
		if candidate.Drop >= rc.dev.Noise.MinDrop {
			qualifying = append(qualifying, candidate)
		}
	}

	if len(qualifying) == 0 {
		return "", false
	}

	if worst := rc.dev.Noise.Worst; len(qualifying) > worst {
		qualifying = qualifying[len(qualifying)-worst:]
	}

	return qualifying[rc.rng.IntN(len(qualifying))].Move, true
}

// profileBlunder is the Elo-keyed imperfection: with the profile's
// rate, sample a candidate from its drop window, or from the worst
// few when the window is empty, with a secondary chance of playing a
// random legal move outside the candidate set entirely.
func profileBlunder(rc *ruleContext) (string, bool) {
	if rc.profile == nil || rc.rng.Float64() >= rc.profile.Rate {
		return "", false
	}

	if rc.profile.Random > 0 && rc.rng.Float64() < rc.profile.Random {
		if outside := legalOutside(rc); len(outside) > 0 {
			return outside[rc.rng.IntN(len(outside))], true
		}
	}

	var window []PoolCandidate
	for _, candidate := range rc.full {
		if candidate.Drop >= rc.profile.Window.Lo && candidate.Drop <= rc.profile.Window.Hi {
			window = append(window, candidate)
		}
	}

	if len(window) == 0 {
		window = rc.full
		if take := rc.profile.TakeWorst; len(window) > take {
			window = window[len(window)-take:]
		}
	}

	return window[rc.rng.IntN(len(window))].Move, true
}

// sample is the terminal rule: a temperature-weighted draw over the
// pool with weight exp(-k * drop). Drops are capped at the band's
// floor so last-resort pools keep every move in play.
func sample(rc *ruleContext, k float64) string {
	weights := make([]float64, len(rc.pool))
	for i, candidate := range rc.pool {
		drop := candidate.Drop
		if drop > rc.band.FloorDrop {
			drop = rc.band.FloorDrop
		}

		weights[i] = math.Exp(-k * float64(drop))
	}

	return rc.pool[random.WeightedIndex(rc.rng, weights)].Move
}

// legalOutside lists the legal moves the engine never suggested.
func legalOutside(rc *ruleContext) []string {
	suggested := make(map[string]bool, len(rc.full))
	for _, candidate := range rc.full {
		suggested[strings.ToLower(candidate.Move)] = true
	}

	var outside []string
	for _, mov := range rc.legal {
		if !suggested[strings.ToLower(mov)] {
			outside = append(outside, mov)
		}
	}

	return outside
}
