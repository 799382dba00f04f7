package confighash

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slotmachine/backend/internal/config"
)

func baseGameConfig() *config.GameConfig {
	return &config.GameConfig{
		MaxWinTotalX:          5000,
		AllowedBets:           []float64{0.10, 0.20, 0.50, 1.00},
		EnableBuyFeature:      true,
		EnableHypeModeAnteBet: false,
	}
}

func TestCompute_IsDeterministic(t *testing.T) {
	a := baseGameConfig()
	b := baseGameConfig()

	assert.Equal(t, Compute(a), Compute(b))
}

func TestCompute_Is16HexChars(t *testing.T) {
	hash := Compute(baseGameConfig())
	assert.Len(t, hash, 16)
	for _, r := range hash {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}

func TestCompute_IgnoresFieldOrderOfKeyInsertion(t *testing.T) {
	// Both configs are built with the same field values but the struct
	// literal above already orders fields differently from the source
	// definition; the hash must not depend on Go struct field order.
	a := baseGameConfig()
	b := &config.GameConfig{
		EnableHypeModeAnteBet: false,
		EnableBuyFeature:      true,
		AllowedBets:           []float64{0.10, 0.20, 0.50, 1.00},
		MaxWinTotalX:          5000,
	}
	assert.Equal(t, Compute(a), Compute(b))
}

func TestCompute_ChangesWithMaxWin(t *testing.T) {
	a := baseGameConfig()
	b := baseGameConfig()
	b.MaxWinTotalX = 10000

	assert.NotEqual(t, Compute(a), Compute(b))
}

func TestCompute_ChangesWithAllowedBets(t *testing.T) {
	a := baseGameConfig()
	b := baseGameConfig()
	b.AllowedBets = []float64{0.10, 0.20}

	assert.NotEqual(t, Compute(a), Compute(b))
}

func TestCompute_ChangesWithBuyFeatureFlag(t *testing.T) {
	a := baseGameConfig()
	b := baseGameConfig()
	b.EnableBuyFeature = false

	assert.NotEqual(t, Compute(a), Compute(b))
}

func TestCompute_IgnoresNonAuditFields(t *testing.T) {
	a := baseGameConfig()
	b := baseGameConfig()
	b.Currency = "EUR"
	b.SpotlightWildsFrequency = 0.5

	assert.Equal(t, Compute(a), Compute(b))
}
