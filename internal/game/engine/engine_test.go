package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotmachine/backend/internal/config"
	"github.com/slotmachine/backend/internal/game/symbols"
	"github.com/slotmachine/backend/internal/rng"
	"github.com/slotmachine/backend/internal/state"
)

func testConfig() *config.GameConfig {
	return &config.GameConfig{
		Currency:                "USD",
		AllowedBets:             []float64{0.10, 0.20, 0.50, 1.00},
		MaxWinTotalX:            5000,
		EnableBuyFeature:        true,
		BuyFeatureCostMult:      100,
		EnableHypeModeAnteBet:   true,
		EnableAfterpartyMeter:   true,
		HypeModeCostIncrease:    0.25,
		HypeBonusChanceMult:     2.0,
		SpotlightWildsFrequency: 0.05,
		FreeSpinsWinMultiplier:  11,
		AfterpartyMeterMax:      100,
		RageSpins:               10,
		RageMultiplier:          3,
		MeterIncOnAnyWin:        4,
		MeterIncOnWildPresent:   3,
		MeterIncOnTwoScatters:   10,
		RageCooldownSpins:       20,
		BoostTriggerSmallwins:   5,
		ExplosiveTriggerWinX:    50.0,
		BoostSpins:              5,
		ExplosiveSpins:          3,
		EventMaxRatePer100Spins: 15,
		BoostMaxRatePer100Spins: 10,
		ExplosiveMaxRatePer100:  5,
	}
}

func TestEvaluateLine_LongestLeftAnchoredRun(t *testing.T) {
	var grid Grid
	line := [reelCount]int{0, 0, 0, 0, 0}
	grid[0][0] = symbols.Fa
	grid[1][0] = symbols.Fa
	grid[2][0] = symbols.Fa
	grid[3][0] = symbols.Zhong
	grid[4][0] = symbols.Fa

	sym, run := evaluateLine(grid, line)
	assert.Equal(t, symbols.Fa, sym)
	assert.Equal(t, 3, run)
}

func TestEvaluateLine_WildSubstitutes(t *testing.T) {
	var grid Grid
	line := [reelCount]int{0, 0, 0, 0, 0}
	grid[0][0] = symbols.Wild
	grid[1][0] = symbols.Bai
	grid[2][0] = symbols.Bai
	grid[3][0] = symbols.Bai
	grid[4][0] = symbols.Wild

	sym, run := evaluateLine(grid, line)
	assert.Equal(t, symbols.Bai, sym)
	assert.Equal(t, 5, run)
}

func TestEvaluateLine_ScatterBreaksRun(t *testing.T) {
	var grid Grid
	line := [reelCount]int{0, 0, 0, 0, 0}
	grid[0][0] = symbols.Fa
	grid[1][0] = symbols.Fa
	grid[2][0] = symbols.Scatter
	grid[3][0] = symbols.Fa
	grid[4][0] = symbols.Fa

	_, run := evaluateLine(grid, line)
	assert.Equal(t, 2, run)
}

func TestEvaluateLine_AllWildsUsesLastCellAsEffectiveSymbol(t *testing.T) {
	var grid Grid
	line := [reelCount]int{0, 0, 0, 0, 0}
	for reel := 0; reel < reelCount; reel++ {
		grid[reel][0] = symbols.Wild
	}
	sym, run := evaluateLine(grid, line)
	assert.Equal(t, symbols.Wild, sym)
	assert.Equal(t, 5, run)
}

func TestClassifyWinTier(t *testing.T) {
	cases := []struct {
		winX     float64
		tier     string
		expected bool
	}{
		{0, "", false},
		{19.9, "", false},
		{20, "big", true},
		{199.9, "big", true},
		{200, "mega", true},
		{999.9, "mega", true},
		{1000, "epic", true},
	}
	for _, tc := range cases {
		tier, ok := classifyWinTier(tc.winX)
		assert.Equal(t, tc.expected, ok)
		assert.Equal(t, tc.tier, tier)
	}
}

func TestSpin_RejectsNonPositiveBet(t *testing.T) {
	_, err := Spin(SpinInput{
		State:   state.New(),
		Config:  testConfig(),
		RNG:     rng.NewSeeded(1),
		BaseBet: 0,
	})
	assert.Error(t, err)
}

func TestSpin_CapNeverExceeded(t *testing.T) {
	cfg := testConfig()
	source := rng.NewSeeded(99)
	cur := state.New()

	for i := 0; i < 2000; i++ {
		result, err := Spin(SpinInput{
			State:    cur,
			Config:   cfg,
			RNG:      source,
			BaseBet:  1.0,
			HypeMode: i%3 == 0,
			SpinMode: SpinModeNormal,
		})
		require.NoError(t, err)

		assert.LessOrEqual(t, result.TotalWinX, float64(cfg.MaxWinTotalX))
		if result.IsCapped {
			assert.Contains(t, []string{"max_win_base", "max_win_bonus"}, result.CapReason)
		} else {
			assert.Empty(t, result.CapReason)
		}
		cur = result.NextState
	}
}

func TestSpin_BuyFeatureEntersFreeSpinsImmediately(t *testing.T) {
	cfg := testConfig()
	result, err := Spin(SpinInput{
		State:    state.New(),
		Config:   cfg,
		RNG:      rng.NewSeeded(5),
		BaseBet:  1.0,
		SpinMode: SpinModeBuyFeature,
	})
	require.NoError(t, err)

	assert.True(t, result.NextState.BonusIsBought)
	foundEntry := false
	for _, ev := range result.Events {
		if ev.Type == "enterFreeSpins" {
			foundEntry = true
			assert.Equal(t, "vip_buy", ev.BonusVariant)
		}
	}
	assert.True(t, foundEntry, "expected an enterFreeSpins event on buy-feature entry")
}

func TestSpin_BuyFeatureDisabledStaysInBase(t *testing.T) {
	cfg := testConfig()
	cfg.EnableBuyFeature = false

	result, err := Spin(SpinInput{
		State:    state.New(),
		Config:   cfg,
		RNG:      rng.NewSeeded(5),
		BaseBet:  1.0,
		SpinMode: SpinModeBuyFeature,
	})
	require.NoError(t, err)
	assert.False(t, result.NextState.BonusIsBought)
}

func TestSpin_FreeSpinsProgressionDecrementsAndExits(t *testing.T) {
	cfg := testConfig()
	cur := &state.PlayerState{
		Mode:               state.ModeFreeSpins,
		FreeSpinsRemaining: 1,
		HeatLevel:          5,
	}

	result, err := Spin(SpinInput{
		State:    cur,
		Config:   cfg,
		RNG:      rng.NewSeeded(42),
		BaseBet:  1.0,
		SpinMode: SpinModeNormal,
	})
	require.NoError(t, err)

	assert.Equal(t, state.ModeBase, result.NextState.Mode)
	assert.Equal(t, 0, result.NextState.FreeSpinsRemaining)
	assert.Equal(t, 0, result.NextState.HeatLevel)

	foundEnd := false
	for _, ev := range result.Events {
		if ev.Type == "bonusEnd" {
			foundEnd = true
		}
	}
	assert.True(t, foundEnd)
}

func TestSpin_IsDeterministicForSameSeedAndState(t *testing.T) {
	cfg := testConfig()

	run := func() *SpinResult {
		source := rng.NewSeeded(777)
		result, err := Spin(SpinInput{
			State:    state.New(),
			Config:   cfg,
			RNG:      source,
			BaseBet:  2.5,
			SpinMode: SpinModeNormal,
		})
		require.NoError(t, err)
		return result
	}

	a := run()
	b := run()

	assert.Equal(t, a.Grid, b.Grid)
	assert.Equal(t, a.TotalWin, b.TotalWin)
	assert.Equal(t, a.NextState, b.NextState)
	assert.Equal(t, a.Events, b.Events)
}
