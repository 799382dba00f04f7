// Command auditsim runs a headless batch of spins against the live
// engine and writes a single-row audit CSV summarizing RTP, hit
// frequency, bonus rates and tail-event rates for a given mode, round
// count and seed.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/slotmachine/backend/internal/audit"
	"github.com/slotmachine/backend/internal/config"
	"github.com/slotmachine/backend/internal/confighash"
)

func main() {
	mode := flag.String("mode", "base", "simulation mode: base, buy or hype")
	rounds := flag.Int("rounds", 1000000, "number of audit rounds to simulate")
	seed := flag.String("seed", "AUDIT_2026", "seed string for reproducibility")
	bet := flag.Float64("bet", 1.0, "bet amount per round")
	out := flag.String("out", "", "output CSV path (default: stdout)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	hash := confighash.Compute(&cfg.Game)

	fmt.Fprintf(os.Stderr, "auditsim: mode=%s rounds=%d seed=%s configHash=%s\n", *mode, *rounds, *seed, hash)

	report, err := audit.Run(&cfg.Game, cfg.App.GitCommit, hash, audit.Params{
		Mode:   audit.Mode(*mode),
		Rounds: *rounds,
		Seed:   *seed,
		Bet:    *bet,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "auditsim: %v\n", err)
		if report == nil {
			os.Exit(1)
		}
	}

	w := os.Stdout
	if *out != "" {
		f, ferr := os.Create(*out)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "failed to create output file: %v\n", ferr)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if werr := audit.WriteCSV(w, report, time.Now().UTC().Format(time.RFC3339)); werr != nil {
		fmt.Fprintf(os.Stderr, "failed to write csv: %v\n", werr)
		os.Exit(1)
	}

	if report.MaxWinX > float64(cfg.Game.MaxWinTotalX) {
		os.Exit(1)
	}
}
