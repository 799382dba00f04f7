package symbols

// ReelWeights is a fixed discrete distribution over the full symbol
// alphabet; values need not be normalized since rng.WeightedChoice treats
// them as relative weights.
type ReelWeights map[Symbol]float64

// BaseWeights is the per-cell symbol distribution used to sample every
// grid cell, in both BASE and FREE_SPINS mode.
var BaseWeights = ReelWeights{
	Wild:      3,
	Scatter:   2,
	Fa:        2,
	Zhong:     4,
	Bai:       6,
	Bawan:     10,
	Wusuo:     14,
	Liangtong: 19,
}

// AsSlice returns the symbols and their matching weights in a stable
// order, ready for rng.WeightedChoice.
func (w ReelWeights) AsSlice() (syms []Symbol, weights []float64) {
	syms = AllSymbols()
	weights = make([]float64, len(syms))
	for i, s := range syms {
		weights[i] = w[s]
	}
	return syms, weights
}

// WithHypeScatterMultiplier returns a new distribution where Scatter's
// weight is multiplied by mult and every other weight is rescaled
// proportionally so the distribution still sums to the original total.
func (w ReelWeights) WithHypeScatterMultiplier(mult float64) ReelWeights {
	if mult == 1 {
		return w
	}

	total := 0.0
	for _, v := range w {
		total += v
	}

	boosted := make(ReelWeights, len(w))
	boosted[Scatter] = w[Scatter] * mult
	scatterDelta := boosted[Scatter] - w[Scatter]

	remainingOld := total - w[Scatter]
	remainingNew := remainingOld - scatterDelta
	if remainingNew < 0 {
		remainingNew = 0
	}

	for sym, v := range w {
		if sym == Scatter {
			continue
		}
		if remainingOld == 0 {
			boosted[sym] = 0
			continue
		}
		boosted[sym] = v * (remainingNew / remainingOld)
	}

	return boosted
}
