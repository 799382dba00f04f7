// Package engine implements the pure, deterministic spin engine: a single
// function from (state, configuration, RNG, bet, hype flag, spin mode) to
// a spin outcome. It never touches Redis, the clock, or any other ambient
// source — every side effect the wider system cares about is returned as
// data for the orchestrator to act on.
package engine

import (
	"fmt"

	"github.com/slotmachine/backend/internal/config"
	"github.com/slotmachine/backend/internal/game/symbols"
	"github.com/slotmachine/backend/internal/rng"
	"github.com/slotmachine/backend/internal/state"
)

const (
	reelCount = 5
	rowCount  = 3
)

// Grid is the 5x3 revealed symbol matrix, indexed [reel][row].
type Grid [reelCount][rowCount]symbols.Symbol

// SpinMode is the mode the caller requested for this spin.
type SpinMode string

const (
	SpinModeNormal     SpinMode = "normal"
	SpinModeBuyFeature SpinMode = "buy_feature"
)

// Paylines are ten fixed row-index tuples, one row per reel.
var Paylines = [10][reelCount]int{
	{1, 1, 1, 1, 1},
	{0, 0, 0, 0, 0},
	{2, 2, 2, 2, 2},
	{0, 1, 2, 1, 0},
	{2, 1, 0, 1, 2},
	{0, 0, 1, 0, 0},
	{2, 2, 1, 2, 2},
	{1, 0, 0, 0, 1},
	{1, 2, 2, 2, 1},
	{0, 1, 1, 1, 0},
}

const buyFeatureFreeSpins = 10

// SpinInput is everything the engine needs to process one spin. State is
// read but never mutated in place — the engine returns a fresh NextState.
type SpinInput struct {
	State    *state.PlayerState
	Config   *config.GameConfig
	RNG      rng.RNG
	BaseBet  float64
	HypeMode bool
	SpinMode SpinMode
}

// SpinResult is the full spin outcome the orchestrator persists and
// returns to the caller.
type SpinResult struct {
	Grid               Grid
	BaseWin            float64
	TotalWin           float64
	TotalWinX          float64
	IsCapped           bool
	CapReason          string
	Events             []Event
	NextState          *state.PlayerState
	WinTier            string
	ScatterCount       int
	WildCount          int
	SpotlightPositions []Position
}

// Spin runs one deterministic spin. It returns an error for a non-positive
// base bet or when the RNG fails (e.g. entropy source failure); both
// surface as INTERNAL_ERROR.
func Spin(in SpinInput) (*SpinResult, error) {
	if in.BaseBet <= 0 {
		return nil, fmt.Errorf("baseBet must be positive, got %v", in.BaseBet)
	}

	cfg := in.Config
	next := *in.State // copy; mutated locally, returned as NextState

	var events []Event
	var entryEvents []Event

	// Step 1: mode transition on entry for buy-feature.
	if in.SpinMode == SpinModeBuyFeature && next.Mode == state.ModeBase && cfg.EnableBuyFeature {
		next.Mode = state.ModeFreeSpins
		next.FreeSpinsRemaining = buyFeatureFreeSpins
		next.BonusIsBought = true
		next.HeatLevel = 1
		entryEvents = append(entryEvents,
			enterFreeSpinsEvent("buy_feature", "vip_buy", buyFeatureFreeSpins),
			heatUpdateEvent(1),
		)
	}
	enteredMode := next.Mode // mode this spin is actually played in, after step 1

	// Step 2: generate the 5x3 grid from the fixed discrete distribution,
	// rescaling the scatter weight under hype mode.
	weights := symbols.BaseWeights
	if in.HypeMode && cfg.EnableHypeModeAnteBet {
		weights = weights.WithHypeScatterMultiplier(cfg.HypeBonusChanceMult)
	}
	grid, err := generateGrid(in.RNG, weights)
	if err != nil {
		return nil, fmt.Errorf("grid generation failed: %w", err)
	}
	events = append(events, revealEvent())

	// Step 3: spotlight wilds.
	var spotlightPositions []Position
	spotlightRoll, err := in.RNG.Uniform()
	if err != nil {
		return nil, fmt.Errorf("spotlight roll failed: %w", err)
	}
	if spotlightRoll < cfg.SpotlightWildsFrequency {
		k, err := in.RNG.IntInclusive(1, 3)
		if err != nil {
			return nil, fmt.Errorf("spotlight count failed: %w", err)
		}
		spotlightPositions, err = pickDistinctCells(in.RNG, k)
		if err != nil {
			return nil, fmt.Errorf("spotlight placement failed: %w", err)
		}
		for _, p := range spotlightPositions {
			grid[p.Reel][p.Row] = symbols.Wild
		}
		events = append(events, spotlightWildsEvent(spotlightPositions))
	}

	// Step 4: count specials on the post-spotlight grid.
	scatterCount, wildCount := countSpecials(grid)

	// Step 5: line evaluation.
	baseWin := 0.0
	for lineID, line := range Paylines {
		sym, runLength := evaluateLine(grid, line)
		if runLength < 3 {
			continue
		}
		mult, ok := symbols.LineMultiplier[sym]
		if !ok {
			continue
		}
		amount := in.BaseBet * mult[runLength]
		if amount <= 0 {
			continue
		}
		baseWin += amount
		events = append(events, winLineEvent(lineID, amount, amount/in.BaseBet))
	}
	if scatterCount >= 3 && scatterCount <= 5 {
		amount := in.BaseBet * symbols.ScatterPay[scatterCount]
		baseWin += amount
		events = append(events, winLineEvent(-1, amount, amount/in.BaseBet))
	}

	// Step 6: apply multipliers.
	multiplier := 1
	if enteredMode == state.ModeFreeSpins && next.BonusIsBought {
		multiplier *= cfg.FreeSpinsWinMultiplier
	}
	if next.RageActive && next.RageSpinsLeft > 0 {
		multiplier *= cfg.RageMultiplier
	}
	totalWin := baseWin * float64(multiplier)

	// Step 7: cap enforcement.
	totalWinX := totalWin / in.BaseBet
	isCapped := false
	capReason := ""
	maxWinX := float64(cfg.MaxWinTotalX)
	if totalWinX > maxWinX {
		isCapped = true
		if enteredMode == state.ModeBase {
			capReason = "max_win_base"
		} else {
			capReason = "max_win_bonus"
		}
		totalWinX = maxWinX
		totalWin = totalWinX * in.BaseBet
	}

	// Step 8: afterparty meter, only in BASE when rage is not active.
	if cfg.EnableAfterpartyMeter && enteredMode == state.ModeBase && !next.RageActive {
		inc := 0
		if totalWin > 0 {
			inc += cfg.MeterIncOnAnyWin
		}
		if wildCount > 0 {
			inc += cfg.MeterIncOnWildPresent
		}
		if scatterCount == 2 {
			inc += cfg.MeterIncOnTwoScatters
		}
		if inc > 0 {
			next.AfterpartyMeter += inc
			if next.AfterpartyMeter > cfg.AfterpartyMeterMax {
				next.AfterpartyMeter = cfg.AfterpartyMeterMax
			}
			triggered := next.AfterpartyMeter >= cfg.AfterpartyMeterMax && next.RageCooldownRemaining == 0
			events = append(events, afterpartyMeterUpdateEvent(next.AfterpartyMeter, triggered))
			if triggered {
				next.RageActive = true
				next.RageSpinsLeft = cfg.RageSpins
				next.AfterpartyMeter = 0
				events = append(events, eventStartEvent("afterpartyRage", "meter_max", cfg.RageSpins))
			}
		}
	}

	// Step 9: streak counters, BASE only.
	if enteredMode == state.ModeBase {
		switch {
		case totalWin == 0:
			next.DeadspinsStreak++
			next.SmallwinsStreak = 0
		case totalWinX > 0 && totalWinX <= 2:
			next.SmallwinsStreak++
			next.DeadspinsStreak = 0
		default:
			next.DeadspinsStreak = 0
			next.SmallwinsStreak = 0
		}
	}

	// Step 10: cooldown decrement.
	if next.RageCooldownRemaining > 0 {
		next.RageCooldownRemaining--
	}

	// Step 11: rage progression. The eventEnd this can produce is only
	// appended after step 12's eventStart checks: both occupy the
	// eventStart/eventEnd ordering slot, and eventStart must precede
	// eventEnd within a spin regardless of which step computed it.
	var rageEndEvent *Event
	if in.State.RageActive {
		next.RageSpinsLeft--
		if next.RageSpinsLeft <= 0 {
			next.RageActive = false
			next.RageSpinsLeft = 0
			next.AfterpartyMeter = 0
			next.RageCooldownRemaining = cfg.RageCooldownSpins
			ev := eventEndEvent("afterpartyRage")
			rageEndEvent = &ev
		}
	}

	// Step 12: non-rage event triggers, subject to rolling-window caps.
	// The rolling window is approximated with a modulo-100 counter reset
	// rather than a true sliding window; this undercounts rate spikes that
	// straddle a window boundary but keeps the state record to four ints.
	next.SpinsInWindow = (next.SpinsInWindow + 1) % 100
	if next.EventsInWindow < cfg.EventMaxRatePer100Spins {
		if next.SmallwinsStreak >= cfg.BoostTriggerSmallwins && next.BoostInWindow < cfg.BoostMaxRatePer100Spins {
			events = append(events, eventStartEvent("boost", "smallwins", cfg.BoostSpins))
			next.SmallwinsStreak = 0
			next.EventsInWindow++
			next.BoostInWindow++
		} else if totalWinX >= cfg.ExplosiveTriggerWinX && next.ExplosiveInWindow < cfg.ExplosiveMaxRatePer100 {
			events = append(events, eventStartEvent("explosive", "win_threshold", cfg.ExplosiveSpins))
			next.EventsInWindow++
			next.ExplosiveInWindow++
		}
	}
	if next.SpinsInWindow == 0 {
		next.EventsInWindow = 0
		next.BoostInWindow = 0
		next.ExplosiveInWindow = 0
	}

	if rageEndEvent != nil {
		events = append(events, *rageEndEvent)
	}

	// entryEvents (buy-feature enterFreeSpins + heatUpdate) land in the
	// same ordering slot as the natural trigger below; step 1 already
	// performed the mode transition, this only places its events.
	events = append(events, entryEvents...)

	// Step 13: natural free-spins trigger.
	if scatterCount >= 3 && enteredMode == state.ModeBase {
		awarded := 10 + 2*(scatterCount-3)
		next.Mode = state.ModeFreeSpins
		next.FreeSpinsRemaining = awarded
		next.HeatLevel = 1
		events = append(events,
			enterFreeSpinsEvent("scatter", "standard", awarded),
			heatUpdateEvent(1),
		)
	}

	// Step 14: free-spins progression, only for spins that started in
	// FREE_SPINS (the buy-feature entry spin keeps its full budget).
	if in.State.Mode == state.ModeFreeSpins {
		next.FreeSpinsRemaining--
		if totalWin > 0 && next.HeatLevel < 10 {
			next.HeatLevel++
			events = append(events, heatUpdateEvent(next.HeatLevel))
		}
		if next.FreeSpinsRemaining <= 0 {
			var finalePath string
			switch {
			case next.HeatLevel >= 10:
				finalePath = "upgrade"
			case totalWinX >= 20:
				finalePath = "multiplier"
			default:
				finalePath = "standard"
			}

			ev := bonusEndEvent("freespins", finalePath, totalWinX)
			if next.BonusIsBought {
				ev.BonusVariant = "vip_buy"
				ev.BonusMultiplierApplied = cfg.FreeSpinsWinMultiplier
				ev.TotalWinXPreMultiplier = totalWinX / float64(cfg.FreeSpinsWinMultiplier)
			}
			events = append(events, ev)

			next.Mode = state.ModeBase
			next.FreeSpinsRemaining = 0
			next.HeatLevel = 0
			next.BonusIsBought = false
		}
	}

	// Step 15: win tier, always last when present.
	winTier := ""
	if tier, ok := classifyWinTier(totalWinX); ok {
		winTier = tier
		events = append(events, winTierEvent(tier, totalWinX))
	}

	return &SpinResult{
		Grid:               grid,
		BaseWin:            baseWin,
		TotalWin:           totalWin,
		TotalWinX:          totalWinX,
		IsCapped:           isCapped,
		CapReason:          capReason,
		Events:             events,
		NextState:          &next,
		WinTier:            winTier,
		ScatterCount:       scatterCount,
		WildCount:          wildCount,
		SpotlightPositions: spotlightPositions,
	}, nil
}

func generateGrid(r rng.RNG, weights symbols.ReelWeights) (Grid, error) {
	syms, w := weights.AsSlice()
	var grid Grid
	for reel := 0; reel < reelCount; reel++ {
		for row := 0; row < rowCount; row++ {
			idx, err := r.WeightedChoice(w)
			if err != nil {
				return grid, err
			}
			grid[reel][row] = syms[idx]
		}
	}
	return grid, nil
}

func pickDistinctCells(r rng.RNG, k int) ([]Position, error) {
	all := make([]Position, 0, reelCount*rowCount)
	for reel := 0; reel < reelCount; reel++ {
		for row := 0; row < rowCount; row++ {
			all = append(all, Position{Reel: reel, Row: row})
		}
	}
	if err := r.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] }); err != nil {
		return nil, err
	}
	return all[:k], nil
}

func countSpecials(grid Grid) (scatterCount, wildCount int) {
	for reel := 0; reel < reelCount; reel++ {
		for row := 0; row < rowCount; row++ {
			switch grid[reel][row] {
			case symbols.Scatter:
				scatterCount++
			case symbols.Wild:
				wildCount++
			}
		}
	}
	return scatterCount, wildCount
}

// evaluateLine returns the symbol and length of the longest left-anchored
// run along line, where WILD substitutes freely and SCATTER breaks the
// run outright.
func evaluateLine(grid Grid, line [reelCount]int) (symbols.Symbol, int) {
	var effective symbols.Symbol
	runLength := 0
	for reel := 0; reel < reelCount; reel++ {
		cellSym := grid[reel][line[reel]]
		if cellSym == symbols.Scatter {
			return effective, runLength
		}
		switch {
		case runLength == 0:
			effective = cellSym
			runLength = 1
		case cellSym == symbols.Wild:
			runLength++
		case effective == symbols.Wild:
			effective = cellSym
			runLength++
		case cellSym == effective:
			runLength++
		default:
			return effective, runLength
		}
	}
	return effective, runLength
}

func classifyWinTier(totalWinX float64) (string, bool) {
	switch {
	case totalWinX >= 1000:
		return "epic", true
	case totalWinX >= 200:
		return "mega", true
	case totalWinX >= 20:
		return "big", true
	default:
		return "", false
	}
}
