// Command pacing computes win-drought and bonus-drought quantiles and
// compares them against a committed JSON baseline with looser tolerances
// than tailprogression, catching a pacing feel regression (droughts
// getting noticeably longer or shorter) without requiring byte-exact
// determinism.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/slotmachine/backend/internal/audit"
	"github.com/slotmachine/backend/internal/config"
)

// Baseline is the committed JSON shape: quantiles of win-drought and
// bonus-drought length, in rounds.
type Baseline struct {
	Mode   string  `json:"mode"`
	Rounds int     `json:"rounds"`
	Seed   string  `json:"seed"`
	WinP50 float64 `json:"winDroughtP50"`
	WinP95 float64 `json:"winDroughtP95"`
	BonP50 float64 `json:"bonusDroughtP50"`
	BonP95 float64 `json:"bonusDroughtP95"`
}

const tolerance = 0.15 // 15% relative tolerance on each quantile

func main() {
	baselinePath := flag.String("baseline", "", "path to a committed pacing baseline JSON")
	mode := flag.String("mode", "base", "simulation mode")
	rounds := flag.Int("rounds", 500000, "number of rounds to simulate")
	seed := flag.String("seed", "PACING_2026", "seed string")
	write := flag.Bool("write", false, "write a new baseline instead of comparing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pacing: %v\n", err)
		os.Exit(1)
	}

	winDroughts, bonusDroughts, err := audit.Droughts(&cfg.Game, audit.Params{
		Mode:   audit.Mode(*mode),
		Rounds: *rounds,
		Seed:   *seed,
		Bet:    1.0,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "pacing: %v\n", err)
		os.Exit(1)
	}

	current := Baseline{
		Mode:   *mode,
		Rounds: *rounds,
		Seed:   *seed,
		WinP50: audit.Quantile(0.50, winDroughts),
		WinP95: audit.Quantile(0.95, winDroughts),
		BonP50: audit.Quantile(0.50, bonusDroughts),
		BonP95: audit.Quantile(0.95, bonusDroughts),
	}

	if *write {
		if *baselinePath == "" {
			fmt.Fprintln(os.Stderr, "pacing: -baseline is required with -write")
			os.Exit(2)
		}
		f, ferr := os.Create(*baselinePath)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "pacing: %v\n", ferr)
			os.Exit(1)
		}
		defer f.Close()
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(current); err != nil {
			fmt.Fprintf(os.Stderr, "pacing: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("pacing: baseline written to %s\n", *baselinePath)
		return
	}

	if *baselinePath == "" {
		fmt.Fprintln(os.Stderr, "pacing: -baseline is required")
		os.Exit(2)
	}

	f, err := os.Open(*baselinePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pacing: %v\n", err)
		os.Exit(1)
	}
	var baseline Baseline
	err = json.NewDecoder(f).Decode(&baseline)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pacing: %v\n", err)
		os.Exit(1)
	}

	var failures []string
	check := func(name string, base, cur float64) {
		if base == 0 {
			return
		}
		rel := (cur - base) / base
		if rel > tolerance || rel < -tolerance {
			failures = append(failures, fmt.Sprintf("%s: baseline=%.2f current=%.2f (%.1f%% drift, tolerance=%.0f%%)", name, base, cur, rel*100, tolerance*100))
		}
	}
	check("winDroughtP50", baseline.WinP50, current.WinP50)
	check("winDroughtP95", baseline.WinP95, current.WinP95)
	check("bonusDroughtP50", baseline.BonP50, current.BonP50)
	check("bonusDroughtP95", baseline.BonP95, current.BonP95)

	if len(failures) > 0 {
		fmt.Fprintln(os.Stderr, "pacing: FAIL")
		for _, msg := range failures {
			fmt.Fprintf(os.Stderr, "  %s\n", msg)
		}
		os.Exit(1)
	}

	fmt.Println("pacing: PASS, drought quantiles within tolerance of baseline")
}
