package rating

import "math"

// PentaSPRT takes game-pair results and the two elo hypotheses and returns
// a log-likelihood ratio comparing the fit of the hypotheses to the data
// under a pentanomial model. Pair results are better suited to sequential
// testing than single games because they cancel the opening bias between
// the two colors of a pair.
func PentaSPRT(lls, lds, dds, wds, wws int, elo0, elo1 float64) (llr float64) {
	N := float64(lls+lds+dds+wds+wws) + 2.5 // total number of pairs

	ll := (float64(lls) + 0.5) / N // measured loss-loss probability
	ld := (float64(lds) + 0.5) / N // measured loss-draw probability
	dd := (float64(dds) + 0.5) / N // measured win-loss/draw-draw probability
	wd := (float64(wds) + 0.5) / N // measured win-draw probability
	ww := (float64(wws) + 0.5) / N // measured win-win probability

	// empirical mean of the pair score
	mu := ww + 0.75*wd + 0.5*dd + 0.25*ld

	// standard deviation (multiplied by sqrt of N) of the pair score
	r := math.Sqrt(
		ww*math.Pow(1-mu, 2) +
			wd*math.Pow(0.75-mu, 2) +
			dd*math.Pow(0.50-mu, 2) +
			ld*math.Pow(0.25-mu, 2) +
			ll*math.Pow(0.00-mu, 2),
	)

	// convert the elo hypotheses to pair scores
	mu0 := nEloToScore(elo0, r)
	mu1 := nEloToScore(elo1, r)

	// deviation to the score bounds
	r0 := ww*math.Pow(1-mu0, 2) +
		wd*math.Pow(0.75-mu0, 2) +
		dd*math.Pow(0.50-mu0, 2) +
		ld*math.Pow(0.25-mu0, 2) +
		ll*math.Pow(0.00-mu0, 2)
	r1 := ww*math.Pow(1-mu1, 2) +
		wd*math.Pow(0.75-mu1, 2) +
		dd*math.Pow(0.50-mu1, 2) +
		ld*math.Pow(0.25-mu1, 2) +
		ll*math.Pow(0.00-mu1, 2)

	if r0 == 0 || r1 == 0 {
		return 0
	}

	// log-likelihood ratio (llr)
	// note: this is not the exact llr formula but rather a simplified yet
	// very accurate approximation. see http://hardy.uhasselt.be/Fishtest/support_MLE_multinomial.pdf
	return 0.5 * N * math.Log(r0/r1)
}

// PentaElo calculates the best fit elo for the given game-pair results
// under a pentanomial model, along with the p < 0.05 bounds of that
// estimate.
func PentaElo(lls, lds, dds, wds, wws int) (lower float64, elo float64, upper float64) {
	N := float64(lls+lds+dds+wds+wws) + 2.5 // total number of pairs

	ll := (float64(lls) + 0.5) / N // measured loss-loss probability
	ld := (float64(lds) + 0.5) / N // measured loss-draw probability
	dd := (float64(dds) + 0.5) / N // measured win-loss/draw-draw probability
	wd := (float64(wds) + 0.5) / N // measured win-draw probability
	ww := (float64(wws) + 0.5) / N // measured win-win probability

	// empirical mean of the pair score
	mu := ww + 0.75*wd + 0.5*dd + 0.25*ld

	// standard deviation of the pair score
	sigma := math.Sqrt(
		ww*math.Pow(1-mu, 2)+
			wd*math.Pow(0.75-mu, 2)+
			dd*math.Pow(0.50-mu, 2)+
			ld*math.Pow(0.25-mu, 2)+
			ll*math.Pow(0.00-mu, 2),
	) / math.Sqrt(N)

	min := mu + phiInv(0.025)*sigma // lower bound
	max := mu + phiInv(0.975)*sigma // upper bound

	// pair scores live on the same unit interval as game scores, so the
	// same logistic maps them to elo
	return clampElo(min), clampElo(mu), clampElo(max)
}
