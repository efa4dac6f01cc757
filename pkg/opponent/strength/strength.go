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

// Package strength holds the tuning tables which map a target Elo onto
// concrete search, sampling and book parameters. The tables are data,
// not code: callers may load their own to reshape the opponent without
// touching the selection algorithm.
package strength

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Supported Elo range. Requests outside it are clamped, not rejected.
const (
	MinElo = 400
	MaxElo = 2500
)

// ClampElo clamps an Elo rating to the supported range.
func ClampElo(elo int) int {
	switch {
	case elo < MinElo:
		return MinElo
	case elo > MaxElo:
		return MaxElo
	default:
		return elo
	}
}

// Range is an inclusive Elo interval, written as [lo, hi] in yaml.
type Range struct {
	Lo, Hi int
}

func (rng *Range) UnmarshalYAML(value *yaml.Node) error {
	var pair [2]int
	if err := value.Decode(&pair); err != nil {
		return err
	}

	rng.Lo, rng.Hi = pair[0], pair[1]
	return nil
}

// Contains reports whether the given Elo lies inside the range.
func (rng Range) Contains(elo int) bool {
	return elo >= rng.Lo && elo <= rng.Hi
}

// Exit is an optional chance to abandon book play before the ply cap,
// so weaker tiers wander out of theory early like their human models.
type Exit struct {
	MinPlies    int     `yaml:"min-plies"`
	Probability float64 `yaml:"probability"`
}

// Book configures opening book usage for one band.
type Book struct {
	MaxPlies int   `yaml:"max-plies"`
	TopLines int   `yaml:"top-lines"`
	Exit     *Exit `yaml:"exit,omitempty"`
}

// Widening is the progressive widening schedule: ordered extra drop
// tolerance, extra analysis lines and extra think time, each step
// consumed at most once per pick.
type Widening struct {
	Drop  []int `yaml:"drop"`
	Lines []int `yaml:"lines"`
	Time  []int `yaml:"time"`
}

// Band is the full tuning profile of one named skill tier.
type Band struct {
	Name  string `yaml:"name"`
	Range Range  `yaml:"range"`

	// MinTime floors the per-move think time in milliseconds, MaxLines
	// caps the multipv width of the initial analysis request.
	MinTime  int `yaml:"min-time"`
	MaxLines int `yaml:"max-lines"`

	// BaseDrop is the starting score-drop tolerance in centipawns and
	// FloorDrop caps the drop used when weighing last-resort pools, so
	// even hopeless moves keep a nonzero sampling weight.
	BaseDrop  int `yaml:"base-drop"`
	FloorDrop int `yaml:"floor-drop"`

	// Temperature is the sampling sharpness k in exp(-k * drop).
	Temperature float64 `yaml:"temperature"`

	FavorCommon bool `yaml:"favor-common"`

	Book  Book     `yaml:"book"`
	Widen Widening `yaml:"widen"`
}

// Scale bounds a multiplicative factor and the step it moves in.
type Scale struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// Adjust bounds an additive centipawn delta and the step it moves in.
type Adjust struct {
	Min  int `yaml:"min"`
	Max  int `yaml:"max"`
	Step int `yaml:"step"`
}

// Forced configures the calibration band's forced-blunder trigger.
type Forced struct {
	Rate    float64 `yaml:"rate"`
	MinDrop int     `yaml:"min-drop"`
}

// Noise configures the calibration band's noisy-pick trigger.
type Noise struct {
	Rate    float64 `yaml:"rate"`
	MinDrop int     `yaml:"min-drop"`
	Worst   int     `yaml:"worst"`
}

// Phase widens the early game inside the calibration band. The
// influence decays linearly to zero over the first Plies plies.
type Phase struct {
	Plies       int `yaml:"plies"`
	TimeCeiling int `yaml:"time-ceiling"`
	LineCeiling int `yaml:"line-ceiling"`
	DropRelax   int `yaml:"drop-relax"`
}

// DevBand designates the Elo range whose picks feed the self-tuning
// feedback loop, together with that loop's targets and bounds.
type DevBand struct {
	Range Range `yaml:"range"`

	TargetGap  float64 `yaml:"target-gap"`
	GapEpsilon float64 `yaml:"gap-epsilon"`

	KScale     Scale  `yaml:"k-scale"`
	DropAdjust Adjust `yaml:"drop-adjust"`

	Forced Forced `yaml:"forced-random"`
	Noise  Noise  `yaml:"noise"`

	Phase Phase `yaml:"phase"`
}

// Contains reports whether the Elo falls in the calibration range.
func (dev *DevBand) Contains(elo int) bool {
	return dev.Range.Contains(elo)
}

// Imperfection is an Elo-keyed blunder profile. With probability Rate
// a pick samples from candidates whose drop lies inside Window, or
// from the TakeWorst worst candidates when none qualify. Random is a
// secondary chance to play a legal move the engine never suggested.
type Imperfection struct {
	Range     Range   `yaml:"range"`
	Rate      float64 `yaml:"rate"`
	Window    Range   `yaml:"window"`
	TakeWorst int     `yaml:"take-worst"`
	Random    float64 `yaml:"random"`
}

// Anchor is one point of the piecewise-linear Elo to think-time curve.
type Anchor struct {
	Elo  int `yaml:"elo"`
	Time int `yaml:"time"`
}

// Config is the aggregate tuning table for the whole opponent.
type Config struct {
	// TimeCap caps every think time in milliseconds and BookPlyCap
	// caps book play regardless of what a band asks for.
	TimeCap    int `yaml:"time-cap"`
	BookPlyCap int `yaml:"book-ply-cap"`

	DefaultBand string `yaml:"default-band"`

	TimeAnchors []Anchor `yaml:"time-anchors"`

	Bands []Band `yaml:"bands"`

	Dev DevBand `yaml:"dev-band"`

	Imperfections []Imperfection `yaml:"imperfections"`
}

// BandForElo resolves the band containing the clamped Elo, falling
// back to the configured default band when no range matches.
func (config *Config) BandForElo(elo int) *Band {
	elo = ClampElo(elo)

	for i := range config.Bands {
		if config.Bands[i].Range.Contains(elo) {
			return &config.Bands[i]
		}
	}

	for i := range config.Bands {
		if config.Bands[i].Name == config.DefaultBand {
			return &config.Bands[i]
		}
	}

	return &config.Bands[0]
}

// ImperfectionForElo resolves the first blunder profile whose range
// contains the clamped Elo, or nil when none does.
func (config *Config) ImperfectionForElo(elo int) *Imperfection {
	elo = ClampElo(elo)

	for i := range config.Imperfections {
		if config.Imperfections[i].Range.Contains(elo) {
			return &config.Imperfections[i]
		}
	}

	return nil
}

// TimeBudget interpolates the per-move think time in milliseconds for
// the given Elo, clamped to the global cap and floored at the band's
// minimum.
func (config *Config) TimeBudget(elo int, band *Band) int {
	elo = ClampElo(elo)
	budget := interpolate(config.TimeAnchors, elo)

	if config.TimeCap > 0 && budget > config.TimeCap {
		budget = config.TimeCap
	}

	if budget < band.MinTime {
		budget = band.MinTime
	}

	return budget
}

// minTimePerLine is the least think time worth spending on a single
// analysis line. LineBudget sheds lines below it.
const minTimePerLine = 5

// LineBudget computes the initial multipv width for a pick, shedding
// lines when the time budget spreads too thin over them.
func (config *Config) LineBudget(timeMs int, band *Band) int {
	lines := band.MaxLines
	if lines < 1 {
		lines = 1
	}

	for lines > 2 && timeMs/lines < minTimePerLine {
		lines--
	}

	return lines
}

// BookPlies resolves the effective book depth for a band, honoring the
// global ply cap.
func (config *Config) BookPlies(band *Band) int {
	plies := band.Book.MaxPlies
	if config.BookPlyCap > 0 && plies > config.BookPlyCap {
		plies = config.BookPlyCap
	}

	return plies
}

func interpolate(anchors []Anchor, elo int) int {
	if len(anchors) == 0 {
		return 0
	}

	if elo <= anchors[0].Elo {
		return anchors[0].Time
	}

	last := anchors[len(anchors)-1]
	if elo >= last.Elo {
		return last.Time
	}

	for i := 1; i < len(anchors); i++ {
		lo, hi := anchors[i-1], anchors[i]
		if elo > hi.Elo {
			continue
		}

		span := hi.Elo - lo.Elo
		if span == 0 {
			return lo.Time
		}

		return lo.Time + (hi.Time-lo.Time)*(elo-lo.Elo)/span
	}

	return last.Time
}

// Validate checks the table for the kinds of mistakes hand-edited
// override files make. A valid table resolves a band and a sane time
// budget for every clamped Elo.
func (config *Config) Validate() error {
	if len(config.Bands) == 0 {
		return fmt.Errorf("strength: no bands configured")
	}

	if config.TimeCap <= 0 {
		return fmt.Errorf("strength: time cap must be positive")
	}

	if len(config.TimeAnchors) < 2 {
		return fmt.Errorf("strength: need at least two time anchors")
	}

	for i := 1; i < len(config.TimeAnchors); i++ {
		if config.TimeAnchors[i].Elo <= config.TimeAnchors[i-1].Elo {
			return fmt.Errorf("strength: time anchors must have ascending elo")
		}
	}

	names := make(map[string]bool, len(config.Bands))
	for i := range config.Bands {
		band := &config.Bands[i]

		if band.Name == "" {
			return fmt.Errorf("strength: band %d has no name", i)
		}

		if names[band.Name] {
			return fmt.Errorf("strength: duplicate band %q", band.Name)
		}

		names[band.Name] = true

		if band.Range.Lo > band.Range.Hi {
			return fmt.Errorf("strength: band %q has an inverted range", band.Name)
		}

		if band.MinTime <= 0 || band.MaxLines < 1 {
			return fmt.Errorf("strength: band %q has invalid budgets", band.Name)
		}

		if band.Temperature <= 0 {
			return fmt.Errorf("strength: band %q needs a positive temperature", band.Name)
		}

		if band.BaseDrop < 0 || band.FloorDrop < band.BaseDrop {
			return fmt.Errorf("strength: band %q needs 0 <= base-drop <= floor-drop", band.Name)
		}

		for j := range config.Bands {
			if i != j && band.Range.Contains(config.Bands[j].Range.Lo) {
				return fmt.Errorf("strength: bands %q and %q overlap", band.Name, config.Bands[j].Name)
			}
		}
	}

	if !names[config.DefaultBand] {
		return fmt.Errorf("strength: default band %q does not exist", config.DefaultBand)
	}

	if config.Dev.Range.Lo > config.Dev.Range.Hi {
		return fmt.Errorf("strength: dev band has an inverted range")
	}

	if config.Dev.KScale.Min > config.Dev.KScale.Max || config.Dev.KScale.Min <= 0 {
		return fmt.Errorf("strength: dev band k-scale bounds are invalid")
	}

	if config.Dev.DropAdjust.Min > config.Dev.DropAdjust.Max {
		return fmt.Errorf("strength: dev band drop-adjust bounds are invalid")
	}

	for _, chance := range []float64{
		config.Dev.Forced.Rate, config.Dev.Noise.Rate,
	} {
		if chance < 0 || chance > 1 {
			return fmt.Errorf("strength: dev band rates must lie in [0, 1]")
		}
	}

	for i := range config.Imperfections {
		profile := &config.Imperfections[i]

		if profile.Range.Lo > profile.Range.Hi || profile.Window.Lo > profile.Window.Hi {
			return fmt.Errorf("strength: imperfection %d has an inverted range", i)
		}

		if profile.Rate < 0 || profile.Rate > 1 || profile.Random < 0 || profile.Random > 1 {
			return fmt.Errorf("strength: imperfection %d rates must lie in [0, 1]", i)
		}

		if profile.TakeWorst < 1 {
			return fmt.Errorf("strength: imperfection %d must take at least one candidate", i)
		}
	}

	return nil
}
