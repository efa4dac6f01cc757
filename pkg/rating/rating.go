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

// Package rating estimates playing strength from game results. It is used
// by calibration duels to check whether a synthetic opponent actually
// performs at the elo it was asked to imitate.
package rating

import "math"

// Elo returns the likely elo difference of the target player from the
// given game results, along with the p < 0.05 lower and upper bounds of
// that estimate. A Dirichlet([0.5, 0.5, 0.5]) prior keeps the estimate
// finite for one-sided results.
func Elo(wins, draws, losses int) (lower float64, elo float64, upper float64) {
	N := float64(wins+draws+losses) + 1.5 // total number of games

	w := (float64(wins) + 0.5) / N   // measured win probability
	d := (float64(draws) + 0.5) / N  // measured draw probability
	l := (float64(losses) + 0.5) / N // measured loss probability

	// empirical mean of the game score
	mu := w + d/2

	// standard deviation of the game score
	sigma := math.Sqrt(
		w*math.Pow(1-mu, 2)+
			d*math.Pow(0.5-mu, 2)+
			l*math.Pow(0-mu, 2),
	) / math.Sqrt(N)

	min := mu + phiInv(0.025)*sigma // lower bound
	max := mu + phiInv(0.975)*sigma // upper bound

	return clampElo(min), clampElo(mu), clampElo(max)
}

// SPRT does a sequential probability ratio test calculation on the given
// number of wins, draws, and losses and returns the log-likelihood ratio
// (llr) for whether elo0 or elo1 is the more likely true strength.
func SPRT(wins, draws, losses int, elo0, elo1 float64) (llr float64) {
	// Dirichlet([0.5, 0.5, 0.5]) prior
	w := float64(wins) + 0.5
	d := float64(draws) + 0.5
	l := float64(losses) + 0.5

	N := w + d + l // total number of games
	_, dlo := wdlToElo(w/N, d/N, l/N)

	w0, d0, l0 := eloToWDL(elo0, dlo) // elo0 WDL probabilities
	w1, d1, l1 := eloToWDL(elo1, dlo) // elo1 WDL probabilities

	// log-likelihood ratio (llr)
	return w*math.Log(w1/w0) +
		d*math.Log(d1/d0) +
		l*math.Log(l1/l0)
}

// StoppingBounds returns the llr bounds at which a sequential test may be
// stopped, given the desired type I and type II error probabilities. H0 is
// accepted below the lower bound and H1 above the upper one.
func StoppingBounds(alpha, beta float64) (lower float64, upper float64) {
	lower = math.Log(beta / (1 - alpha))
	upper = math.Log((1 - beta) / alpha)
	return
}

// Expected returns the expected game score of a player rated diff elo
// above their opponent.
func Expected(diff float64) float64 {
	return 1 / (1 + math.Pow(10, -diff/400))
}

func clampElo(x float64) float64 {
	switch {
	case x <= 0, x >= 1:
		return 0

	default:
		return -400 * math.Log10(1/x-1)
	}
}

// eloToWDL converts the bayesian elo to its wdl probabilities.
func eloToWDL(elo, dlo float64) (w float64, d float64, l float64) {
	w = 1 / (1 + math.Pow(10, (-elo+dlo)/400)) // win probability sigmoid
	l = 1 / (1 + math.Pow(10, (+elo+dlo)/400)) // loss probability sigmoid
	d = 1 - w - l                              // draw probability curve
	return w, d, l
}

// wdlToElo converts the wdl probabilities to it's bayesian elo.
func wdlToElo(w, d, l float64) (elo float64, dlo float64) {
	elo = 200 * math.Log10((w/l)*((1-l)/(1-w)))
	dlo = 200 * math.Log10(((1-l)/l)*((1-w)/w))
	return elo, dlo
}

func phiInv(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

func nEloToScore(nelo, r float64) float64 {
	return nelo*math.Sqrt2*r/(800/math.Ln10) + 0.5
}
