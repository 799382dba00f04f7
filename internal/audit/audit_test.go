package audit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotmachine/backend/internal/config"
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

func TestRun_RejectsNonPositiveRounds(t *testing.T) {
	_, err := Run(testConfig(), "deadbeef", "hash1", Params{Mode: ModeBase, Rounds: 0, Seed: "s"})
	assert.Error(t, err)
}

func TestRun_NeverExceedsMaxWinTotalX(t *testing.T) {
	cfg := testConfig()
	report, err := Run(cfg, "deadbeef", "hash1", Params{Mode: ModeBase, Rounds: 500, Seed: "AUDIT_TEST", Bet: 1.0})
	require.NoError(t, err)
	assert.LessOrEqual(t, report.MaxWinX, float64(cfg.MaxWinTotalX))
}

func TestRun_IsDeterministicForSameSeed(t *testing.T) {
	cfg := testConfig()
	p := Params{Mode: ModeBase, Rounds: 200, Seed: "REPEATABLE", Bet: 1.0}

	a, err := Run(cfg, "c1", "h1", p)
	require.NoError(t, err)
	b, err := Run(cfg, "c1", "h1", p)
	require.NoError(t, err)

	assert.Equal(t, a.RTP, b.RTP)
	assert.Equal(t, a.MaxWinX, b.MaxWinX)
	assert.Equal(t, a.HitFreq, b.HitFreq)
}

func TestRun_BuyModeDebitsOnlyOnEntrySpin(t *testing.T) {
	cfg := testConfig()
	report, err := Run(cfg, "c1", "h1", Params{Mode: ModeBuy, Rounds: 50, Seed: "BUY_SEED", Bet: 1.0})
	require.NoError(t, err)

	// Every audit round in buy mode pays exactly bet*buyFeatureCostMult once;
	// continuation spins inside the bonus are free.
	assert.InDelta(t, float64(cfg.BuyFeatureCostMult), report.AvgDebit, 1e-9)
}

func TestRun_HypeModeDebitsMoreThanBase(t *testing.T) {
	cfg := testConfig()
	base, err := Run(cfg, "c1", "h1", Params{Mode: ModeBase, Rounds: 50, Seed: "SAME_SEED", Bet: 1.0})
	require.NoError(t, err)
	hype, err := Run(cfg, "c1", "h1", Params{Mode: ModeHype, Rounds: 50, Seed: "SAME_SEED", Bet: 1.0})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, base.AvgDebit, 1e-9)
	assert.InDelta(t, 1.0*(1+cfg.HypeModeCostIncrease), hype.AvgDebit, 1e-9)
}

func TestWriteCSV_ThenReadCSV_RoundTrips(t *testing.T) {
	cfg := testConfig()
	report, err := Run(cfg, "abc123", "hash-xyz", Params{Mode: ModeBase, Rounds: 100, Seed: "CSV_SEED", Bet: 1.0})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, report, "2026-07-31T00:00:00Z"))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, report.GitCommit, parsed.GitCommit)
	assert.Equal(t, report.ConfigHash, parsed.ConfigHash)
	assert.Equal(t, report.Mode, parsed.Mode)
	assert.Equal(t, report.Rounds, parsed.Rounds)
	assert.Equal(t, report.Seed, parsed.Seed)
	assert.InDelta(t, report.RTP, parsed.RTP, 1e-5)
	assert.InDelta(t, report.MaxWinX, parsed.MaxWinX, 1e-2)
}

func TestReadCSV_RejectsMissingDataRow(t *testing.T) {
	_, err := ReadCSV(bytes.NewBufferString("just,a,header\n"))
	assert.Error(t, err)
}

func TestDroughts_LengthsAreNonNegative(t *testing.T) {
	cfg := testConfig()
	winDroughts, bonusDroughts, err := Droughts(cfg, Params{Mode: ModeBase, Rounds: 300, Seed: "DROUGHT_SEED", Bet: 1.0})
	require.NoError(t, err)

	for _, d := range winDroughts {
		assert.GreaterOrEqual(t, d, 0.0)
	}
	for _, d := range bonusDroughts {
		assert.GreaterOrEqual(t, d, 0.0)
	}
}

func TestSameParams(t *testing.T) {
	a := &Report{ConfigHash: "h1", Rounds: 100, Seed: "s1", Mode: ModeBase}
	b := &Report{ConfigHash: "h1", Rounds: 100, Seed: "s1", Mode: ModeBase}
	c := &Report{ConfigHash: "h2", Rounds: 100, Seed: "s1", Mode: ModeBase}

	assert.True(t, SameParams(a, b))
	assert.False(t, SameParams(a, c))
}

func TestNearlyEqual(t *testing.T) {
	assert.True(t, NearlyEqual(1.0, 1.0000001, 1e-6))
	assert.False(t, NearlyEqual(1.0, 1.1, 1e-6))
}

func TestQuantile_EmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Quantile(0.95, nil))
}
