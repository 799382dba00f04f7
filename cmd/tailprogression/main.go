// Command tailprogression reruns an audit simulation against a baseline
// CSV and fails if any rare-event rate has regressed beyond its
// tolerance, catching an engine change that quietly fattens or thins the
// tail without moving headline RTP.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/slotmachine/backend/internal/audit"
	"github.com/slotmachine/backend/internal/config"
	"github.com/slotmachine/backend/internal/confighash"
)

// tolerance is the maximum allowed relative regression for each tracked
// rare-event metric, expressed as a fraction of the baseline value.
const (
	rate1000xTolerance  = 0.05
	rate10000xTolerance = 0.10
	maxWinXTolerance    = 0.0 // maxWinX must never exceed the baseline's value
)

func main() {
	baselinePath := flag.String("baseline", "", "path to a baseline audit CSV")
	flag.Parse()

	if *baselinePath == "" {
		fmt.Fprintln(os.Stderr, "tailprogression: -baseline is required")
		os.Exit(2)
	}

	f, err := os.Open(*baselinePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tailprogression: %v\n", err)
		os.Exit(1)
	}
	baseline, err := audit.ReadCSV(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tailprogression: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tailprogression: %v\n", err)
		os.Exit(1)
	}
	hash := confighash.Compute(&cfg.Game)

	rerun, err := audit.Run(&cfg.Game, cfg.App.GitCommit, hash, audit.Params{
		Mode:   baseline.Mode,
		Rounds: baseline.Rounds,
		Seed:   baseline.Seed,
		Bet:    1.0,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tailprogression: rerun failed: %v\n", err)
		os.Exit(1)
	}

	var failures []string
	if regressed(baseline.Rate1000x, rerun.Rate1000x, rate1000xTolerance) {
		failures = append(failures, fmt.Sprintf("rate1000xPlus regressed: baseline=%v rerun=%v (tolerance=%.0f%%)", baseline.Rate1000x, rerun.Rate1000x, rate1000xTolerance*100))
	}
	if regressed(baseline.Rate10000x, rerun.Rate10000x, rate10000xTolerance) {
		failures = append(failures, fmt.Sprintf("rate10000xPlus regressed: baseline=%v rerun=%v (tolerance=%.0f%%)", baseline.Rate10000x, rerun.Rate10000x, rate10000xTolerance*100))
	}
	if rerun.MaxWinX > baseline.MaxWinX {
		failures = append(failures, fmt.Sprintf("maxWinX exceeded baseline: baseline=%v rerun=%v", baseline.MaxWinX, rerun.MaxWinX))
	}

	if len(failures) > 0 {
		fmt.Fprintln(os.Stderr, "tailprogression: FAIL")
		for _, msg := range failures {
			fmt.Fprintf(os.Stderr, "  %s\n", msg)
		}
		os.Exit(1)
	}

	fmt.Println("tailprogression: PASS, no rare-event regression beyond tolerance")
}

// regressed reports whether rerun moved worse than baseline by more than
// tolerance, as a fraction of baseline. A baseline of zero treats any
// positive rerun rate as a regression.
func regressed(baseline, rerun, tolerance float64) bool {
	if baseline == 0 {
		return rerun > 0
	}
	return (rerun-baseline)/baseline > tolerance
}
