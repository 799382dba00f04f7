// Package audit runs headless, stateful spin simulations for regulatory
// and pacing review. It shares the exact engine the live server uses,
// driven by a deterministic Seeded RNG instead of the crypto/rand
// Production source.
package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/slotmachine/backend/internal/config"
	"github.com/slotmachine/backend/internal/game/engine"
	"github.com/slotmachine/backend/internal/game/symbols"
	"github.com/slotmachine/backend/internal/rng"
	"github.com/slotmachine/backend/internal/state"
)

// Mode is the audit run's spin mode, distinct from the protocol's
// SpinMode: "hype" reuses SpinModeNormal with HypeMode set.
type Mode string

const (
	ModeBase Mode = "base"
	ModeBuy  Mode = "buy"
	ModeHype Mode = "hype"
)

// Params fully determines a run's outcome: same Params plus same
// configuration always produces the same Report.
type Params struct {
	Mode   Mode
	Rounds int
	Seed   string
	Bet    float64
}

// Report is one CSV row: the fixed audit column set in the order the
// protocol requires readers to expect.
type Report struct {
	GitCommit    string
	ConfigHash   string
	Mode         Mode
	Rounds       int
	Seed         string
	DebitMult    float64
	ScatterBase  float64
	ScatterEff   float64
	ScatterMult  float64
	RTP          float64
	HitFreq      float64
	BonusEntry   float64
	VIPBuyBonus  float64
	StandardBonus float64
	AvgDebit     float64
	AvgCredit    float64
	P95WinX      float64
	P99WinX      float64
	MaxWinX      float64
	Rate1000x    float64
	Rate10000x   float64
	CappedRate   float64
}

// Header is the fixed, ordered CSV column set. Readers must tolerate
// trailing columns but must not rely on this order changing.
var Header = []string{
	"timestamp", "gitCommit", "configHash", "mode", "rounds", "seed",
	"debitMultiplier", "scatterChanceBase", "scatterChanceEffective", "scatterChanceMultiplier",
	"rtp", "hitFreq", "bonusEntryRate", "vipBuyBonusRate", "standardBonusRate",
	"avgDebit", "avgCredit", "p95WinX", "p99WinX", "maxWinX",
	"rate1000xPlus", "rate10000xPlus", "cappedRate",
}

// roundOutcome is one simulated round's contribution to the aggregate.
type roundOutcome struct {
	debit      float64
	credit     float64
	winX       float64
	capped     bool
	enteredBonus bool
	bonusVariant string
}

// Run drives Params.Rounds rounds of the configured mode, carrying
// player state across rounds the way a real continuous session would,
// and folds the per-round outcomes into a Report.
func Run(cfg *config.GameConfig, gitCommit, configHash string, p Params) (*Report, error) {
	if p.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", p.Rounds)
	}
	bet := p.Bet
	if bet <= 0 {
		bet = 1.0
	}

	source := rng.NewSeededFromString(p.Seed)
	cur := state.New()

	winXValues := make([]float64, 0, p.Rounds)
	var totalDebit, totalCredit float64
	var hits, cappedCount, bonusEntries, vipBuys, standardBonuses int
	var rate1000, rate10000 int

	for i := 0; i < p.Rounds; i++ {
		outcome, next, err := runRound(cfg, source, cur, bet, p.Mode)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		cur = next

		totalDebit += outcome.debit
		totalCredit += outcome.credit
		winXValues = append(winXValues, outcome.winX)
		if outcome.credit > 0 {
			hits++
		}
		if outcome.capped {
			cappedCount++
		}
		if outcome.enteredBonus {
			bonusEntries++
			switch outcome.bonusVariant {
			case "vip_buy":
				vipBuys++
			case "standard":
				standardBonuses++
			}
		}
		if outcome.winX >= 1000 {
			rate1000++
		}
		if outcome.winX >= 10000 {
			rate10000++
		}
	}

	rounds := float64(p.Rounds)
	report := &Report{
		GitCommit:     gitCommit,
		ConfigHash:    configHash,
		Mode:          p.Mode,
		Rounds:        p.Rounds,
		Seed:          p.Seed,
		DebitMult:     totalDebit / (rounds * bet),
		ScatterBase:   scatterChance(symbols.BaseWeights),
		ScatterEff:    scatterEffective(cfg, p.Mode),
		ScatterMult:   cfg.HypeBonusChanceMult,
		RTP:           safeDiv(totalCredit, totalDebit),
		HitFreq:       safeDiv(float64(hits), rounds),
		BonusEntry:    safeDiv(float64(bonusEntries), rounds),
		VIPBuyBonus:   safeDiv(float64(vipBuys), rounds),
		StandardBonus: safeDiv(float64(standardBonuses), rounds),
		AvgDebit:      totalDebit / rounds,
		AvgCredit:     totalCredit / rounds,
		P95WinX:       percentile(winXValues, 0.95),
		P99WinX:       percentile(winXValues, 0.99),
		MaxWinX:       maxOf(winXValues),
		Rate1000x:     safeDiv(float64(rate1000), rounds),
		Rate10000x:    safeDiv(float64(rate10000), rounds),
		CappedRate:    safeDiv(float64(cappedCount), rounds),
	}

	if report.MaxWinX > float64(cfg.MaxWinTotalX) {
		return report, fmt.Errorf("assertion failed: maxWinX %.2f exceeds maxWinTotalX %d", report.MaxWinX, cfg.MaxWinTotalX)
	}
	return report, nil
}

// runRound drives one audit round. In buy mode a round is a full bonus
// session: the entry spin costs bet*buyFeatureCostMultiplier and every
// continuation spin costs nothing, matching a player who bought into the
// feature once. In base and hype mode a round is exactly one spin.
func runRound(cfg *config.GameConfig, source rng.RNG, cur *state.PlayerState, bet float64, mode Mode) (roundOutcome, *state.PlayerState, error) {
	var out roundOutcome

	spinMode := engine.SpinModeNormal
	hype := mode == ModeHype
	debit := bet
	if mode == ModeHype {
		debit = bet * (1 + cfg.HypeModeCostIncrease)
	}
	if mode == ModeBuy && !cur.IsBonusContinuation() {
		spinMode = engine.SpinModeBuyFeature
		debit = bet * float64(cfg.BuyFeatureCostMult)
	} else if mode == ModeBuy {
		debit = 0
	}

	result, err := engine.Spin(engine.SpinInput{
		State:    cur,
		Config:   cfg,
		RNG:      source,
		BaseBet:  bet,
		HypeMode: hype,
		SpinMode: spinMode,
	})
	if err != nil {
		return out, nil, err
	}

	out.debit = debit
	out.credit = result.TotalWin
	out.winX = result.TotalWinX
	out.capped = result.IsCapped

	for _, ev := range result.Events {
		if ev.Type == "enterFreeSpins" {
			out.enteredBonus = true
			out.bonusVariant = ev.BonusVariant
		}
	}

	next := result.NextState
	if mode != ModeBuy {
		return out, next, nil
	}

	// Buy mode: keep spinning the bonus to completion within this round,
	// at zero additional debit, accumulating credit.
	for next.IsBonusContinuation() {
		contResult, err := engine.Spin(engine.SpinInput{
			State:    next,
			Config:   cfg,
			RNG:      source,
			BaseBet:  bet,
			HypeMode: false,
			SpinMode: engine.SpinModeNormal,
		})
		if err != nil {
			return out, nil, err
		}
		out.credit += contResult.TotalWin
		if out.winX < contResult.TotalWinX {
			out.winX = contResult.TotalWinX
		}
		out.capped = out.capped || contResult.IsCapped
		next = contResult.NextState
	}

	return out, next, nil
}

func scatterEffective(cfg *config.GameConfig, mode Mode) float64 {
	if mode == ModeHype && cfg.EnableHypeModeAnteBet {
		return scatterChance(symbols.BaseWeights.WithHypeScatterMultiplier(cfg.HypeBonusChanceMult))
	}
	return scatterChance(symbols.BaseWeights)
}

// scatterChance is the per-cell probability of drawing a Scatter under w.
func scatterChance(w symbols.ReelWeights) float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return safeDiv(w[symbols.Scatter], total)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// percentile uses gonum's empirical CDF quantile over a sorted copy.
func percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// WriteCSV writes a single-row audit CSV, header followed by the row.
func WriteCSV(w io.Writer, r *Report, timestamp string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return err
	}
	return cw.Write(r.row(timestamp))
}

func (r *Report) row(timestamp string) []string {
	f := strconv.FormatFloat
	return []string{
		timestamp, r.GitCommit, r.ConfigHash, string(r.Mode), strconv.Itoa(r.Rounds), r.Seed,
		f(r.DebitMult, 'f', 4, 64), f(r.ScatterBase, 'f', 6, 64), f(r.ScatterEff, 'f', 6, 64), f(r.ScatterMult, 'f', 4, 64),
		f(r.RTP, 'f', 6, 64), f(r.HitFreq, 'f', 6, 64), f(r.BonusEntry, 'f', 6, 64), f(r.VIPBuyBonus, 'f', 6, 64), f(r.StandardBonus, 'f', 6, 64),
		f(r.AvgDebit, 'f', 4, 64), f(r.AvgCredit, 'f', 4, 64), f(r.P95WinX, 'f', 2, 64), f(r.P99WinX, 'f', 2, 64), f(r.MaxWinX, 'f', 2, 64),
		f(r.Rate1000x, 'f', 8, 64), f(r.Rate10000x, 'f', 8, 64), f(r.CappedRate, 'f', 8, 64),
	}
}

// ReadCSV parses a single-row audit CSV previously written by WriteCSV.
func ReadCSV(r io.Reader) (*Report, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("audit csv has no data row")
	}
	row := rows[1]
	if len(row) < len(Header) {
		return nil, fmt.Errorf("audit csv row has %d columns, want at least %d", len(row), len(Header))
	}

	parse := func(s string) float64 {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	rounds, _ := strconv.Atoi(row[4])

	return &Report{
		GitCommit:     row[1],
		ConfigHash:    row[2],
		Mode:          Mode(row[3]),
		Rounds:        rounds,
		Seed:          row[5],
		DebitMult:     parse(row[6]),
		ScatterBase:   parse(row[7]),
		ScatterEff:    parse(row[8]),
		ScatterMult:   parse(row[9]),
		RTP:           parse(row[10]),
		HitFreq:       parse(row[11]),
		BonusEntry:    parse(row[12]),
		VIPBuyBonus:   parse(row[13]),
		StandardBonus: parse(row[14]),
		AvgDebit:      parse(row[15]),
		AvgCredit:     parse(row[16]),
		P95WinX:       parse(row[17]),
		P99WinX:       parse(row[18]),
		MaxWinX:       parse(row[19]),
		Rate1000x:     parse(row[20]),
		Rate10000x:    parse(row[21]),
		CappedRate:    parse(row[22]),
	}, nil
}

// Droughts replays Params.Rounds rounds and returns the lengths of every
// completed win-drought (consecutive rounds with zero credit) and
// bonus-drought (consecutive rounds without a bonus entry), for pacing
// analysis. A drought still open at the end of the run is not counted.
func Droughts(cfg *config.GameConfig, p Params) (winDroughts []float64, bonusDroughts []float64, err error) {
	if p.Rounds <= 0 {
		return nil, nil, fmt.Errorf("rounds must be positive, got %d", p.Rounds)
	}
	bet := p.Bet
	if bet <= 0 {
		bet = 1.0
	}

	source := rng.NewSeededFromString(p.Seed)
	cur := state.New()

	winStreak, bonusStreak := 0, 0
	for i := 0; i < p.Rounds; i++ {
		outcome, next, rerr := runRound(cfg, source, cur, bet, p.Mode)
		if rerr != nil {
			return nil, nil, fmt.Errorf("round %d: %w", i, rerr)
		}
		cur = next

		if outcome.credit > 0 {
			winDroughts = append(winDroughts, float64(winStreak))
			winStreak = 0
		} else {
			winStreak++
		}

		if outcome.enteredBonus {
			bonusDroughts = append(bonusDroughts, float64(bonusStreak))
			bonusStreak = 0
		} else {
			bonusStreak++
		}
	}

	return winDroughts, bonusDroughts, nil
}

// Quantile exposes gonum's empirical quantile for pacing analysis over an
// arbitrary sample, independent of a Report.
func Quantile(q float64, values []float64) float64 {
	return percentile(values, q)
}

// SameParams reports whether two reports were run with cache-equivalent
// parameters per the protocol's cache-validity rule.
func SameParams(a, b *Report) bool {
	return a.ConfigHash == b.ConfigHash && a.Rounds == b.Rounds && a.Seed == b.Seed && a.Mode == b.Mode
}

// NearlyEqual compares two floats within an absolute epsilon, used for
// determinism checks across reruns.
func NearlyEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
