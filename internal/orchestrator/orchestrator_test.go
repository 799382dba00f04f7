package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slotmachine/backend/internal/api/dto"
	"github.com/slotmachine/backend/internal/game/engine"
	"github.com/slotmachine/backend/internal/state"
)

func TestIsAllowedBet(t *testing.T) {
	allowed := []float64{0.10, 0.20, 0.50, 1.00}

	cases := []struct {
		name     string
		amount   float64
		expected bool
	}{
		{"exact match", 0.50, true},
		{"within epsilon", 1.0000001, true},
		{"not in list", 0.75, false},
		{"zero", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, isAllowedBet(tc.amount, allowed))
		})
	}
}

func TestHashPayload_IsDeterministic(t *testing.T) {
	req := dto.SpinRequest{BetAmount: 1.0, HypeMode: true, Mode: dto.ModeNormal}
	a := hashPayload(req)
	b := hashPayload(req)
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestHashPayload_DiffersOnBetAmount(t *testing.T) {
	a := hashPayload(dto.SpinRequest{BetAmount: 1.0, Mode: dto.ModeNormal})
	b := hashPayload(dto.SpinRequest{BetAmount: 2.0, Mode: dto.ModeNormal})
	assert.NotEqual(t, a, b)
}

func TestHashPayload_DiffersOnHypeMode(t *testing.T) {
	a := hashPayload(dto.SpinRequest{BetAmount: 1.0, HypeMode: false, Mode: dto.ModeNormal})
	b := hashPayload(dto.SpinRequest{BetAmount: 1.0, HypeMode: true, Mode: dto.ModeNormal})
	assert.NotEqual(t, a, b)
}

func TestHashPayload_DiffersOnMode(t *testing.T) {
	a := hashPayload(dto.SpinRequest{BetAmount: 1.0, Mode: dto.ModeNormal})
	b := hashPayload(dto.SpinRequest{BetAmount: 1.0, Mode: dto.ModeBuyFeature})
	assert.NotEqual(t, a, b)
}

func TestFormatAmount_FixesTwoDecimalPlaces(t *testing.T) {
	assert.Equal(t, "1.00", formatAmount(1))
	assert.Equal(t, "0.50", formatAmount(0.5))
	assert.Equal(t, "1.23", formatAmount(1.234))
}

func TestBuildSpinResponse_UncappedHasNilReason(t *testing.T) {
	r := &engine.SpinResult{
		TotalWin:  10,
		TotalWinX: 10,
		IsCapped:  false,
		NextState: &state.PlayerState{Mode: state.ModeBase},
		Events:    []engine.Event{},
	}

	resp := buildSpinResponse("round-1", "USD", r)
	assert.Equal(t, "round-1", resp.RoundID)
	assert.Equal(t, "USD", resp.Context.Currency)
	assert.Nil(t, resp.Outcome.CapReason)
	assert.False(t, resp.Outcome.IsCapped)
}

func TestBuildSpinResponse_CappedCarriesReason(t *testing.T) {
	r := &engine.SpinResult{
		TotalWin:  5000,
		TotalWinX: 5000,
		IsCapped:  true,
		CapReason: "max_win_base",
		NextState: &state.PlayerState{Mode: state.ModeBase},
		Events:    []engine.Event{},
	}

	resp := buildSpinResponse("round-2", "USD", r)
	if assert.NotNil(t, resp.Outcome.CapReason) {
		assert.Equal(t, "max_win_base", *resp.Outcome.CapReason)
	}
}

func TestBuildSpinResponse_CopiesNextStateFields(t *testing.T) {
	r := &engine.SpinResult{
		NextState: &state.PlayerState{Mode: state.ModeFreeSpins, FreeSpinsRemaining: 7, HeatLevel: 3},
		Events:    []engine.Event{},
	}

	resp := buildSpinResponse("round-3", "USD", r)
	assert.Equal(t, string(state.ModeFreeSpins), resp.NextState.Mode)
	assert.Equal(t, 7, resp.NextState.SpinsRemaining)
	assert.Equal(t, 3, resp.NextState.HeatLevel)
}

func TestBonusVariant(t *testing.T) {
	cases := []struct {
		name     string
		result   *engine.SpinResult
		expected string
	}{
		{"base mode", &engine.SpinResult{NextState: &state.PlayerState{Mode: state.ModeBase}}, ""},
		{"bought bonus", &engine.SpinResult{NextState: &state.PlayerState{Mode: state.ModeFreeSpins, BonusIsBought: true}}, "vip_buy"},
		{"standard bonus", &engine.SpinResult{NextState: &state.PlayerState{Mode: state.ModeFreeSpins, BonusIsBought: false}}, "standard"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, bonusVariant(tc.result))
		})
	}
}
