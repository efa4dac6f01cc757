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

package opponent

import "github.com/patzerhq/patzer/pkg/opponent/strength"

// tuningState is the only cross-call mutable state in the picker: the
// calibration band's feedback loop. It is a plain value so a pick can
// work on a copy and commit it only when the pick completes, which
// keeps cancellation from leaving half-applied adjustments behind.
type tuningState struct {
	// gapEMA tracks the realized score gap between the best and the
	// chosen move. samples counts observations since the last reset.
	gapEMA  float64
	samples int

	// kScale multiplies the band temperature, dropAdjust shifts the
	// drop tolerance. Both move in configured steps inside configured
	// bounds, nudged after every weighted pick in the band.
	kScale     float64
	dropAdjust int

	// lastLen detects new games: a shrinking history resets the loop.
	lastLen int
}

func newTuningState() tuningState {
	return tuningState{kScale: 1}
}

func (state *tuningState) reset() {
	*state = newTuningState()
}

// gapSmoothing is the weight of history in the gap moving average.
const gapSmoothing = 0.9

// observe feeds one realized gap into the loop and nudges the scale
// and adjustment toward the band's target gap.
func (state *tuningState) observe(dev *strength.DevBand, gap float64) {
	if state.samples == 0 {
		state.gapEMA = gap
	} else {
		state.gapEMA = gapSmoothing*state.gapEMA + (1-gapSmoothing)*gap
	}

	state.samples++

	switch {
	case state.gapEMA-dev.TargetGap > dev.GapEpsilon:
		// playing too weak: sharpen sampling, tighten the tolerance
		state.kScale += dev.KScale.Step
		state.dropAdjust -= dev.DropAdjust.Step

	case dev.TargetGap-state.gapEMA > dev.GapEpsilon:
		// playing too strong: flatten sampling, loosen the tolerance
		state.kScale -= dev.KScale.Step
		state.dropAdjust += dev.DropAdjust.Step
	}

	state.clamp(dev)
}

func (state *tuningState) clamp(dev *strength.DevBand) {
	if state.kScale < dev.KScale.Min {
		state.kScale = dev.KScale.Min
	}

	if state.kScale > dev.KScale.Max {
		state.kScale = dev.KScale.Max
	}

	if state.dropAdjust < dev.DropAdjust.Min {
		state.dropAdjust = dev.DropAdjust.Min
	}

	if state.dropAdjust > dev.DropAdjust.Max {
		state.dropAdjust = dev.DropAdjust.Max
	}
}
