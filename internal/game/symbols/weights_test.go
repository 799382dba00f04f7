package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReelWeights_AsSlice(t *testing.T) {
	syms, weights := BaseWeights.AsSlice()

	assert.Equal(t, len(AllSymbols()), len(syms))
	assert.Equal(t, len(syms), len(weights))

	for i, s := range syms {
		assert.Equal(t, BaseWeights[s], weights[i])
	}
}

func TestWithHypeScatterMultiplier_NoOpAtOne(t *testing.T) {
	boosted := BaseWeights.WithHypeScatterMultiplier(1)
	assert.Equal(t, BaseWeights, boosted)
}

func TestWithHypeScatterMultiplier_BoostsScatterPreservesTotal(t *testing.T) {
	total := func(w ReelWeights) float64 {
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		return sum
	}

	before := total(BaseWeights)
	boosted := BaseWeights.WithHypeScatterMultiplier(3)
	after := total(boosted)

	assert.Greater(t, boosted[Scatter], BaseWeights[Scatter])
	assert.InDelta(t, before, after, 1e-9)
}

func TestWithHypeScatterMultiplier_OtherWeightsShrink(t *testing.T) {
	boosted := BaseWeights.WithHypeScatterMultiplier(2)

	for sym, v := range BaseWeights {
		if sym == Scatter {
			continue
		}
		assert.Less(t, boosted[sym], v)
	}
}
