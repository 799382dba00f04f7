// Package confighash computes the short, stable fingerprint of the
// audit-relevant subset of configuration attached to every telemetry event
// and audit artifact.
package confighash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/slotmachine/backend/internal/config"
)

// Compute returns the first 16 hex characters of the SHA-256 of the
// canonical serialization of cfg's audit-relevant subset: max win cap,
// allowed bets, and the buy-feature / hype-mode-ante-bet flags. Keys are
// sorted, there is no whitespace, decimals use fixed precision, booleans
// render as true/false, and lists keep source order.
func Compute(cfg *config.GameConfig) string {
	fields := map[string]string{
		"allowed_bets":         formatFloatSlice(cfg.AllowedBets),
		"enable_buy_feature":   strconv.FormatBool(cfg.EnableBuyFeature),
		"enable_hype_mode_ante_bet": strconv.FormatBool(cfg.EnableHypeModeAnteBet),
		"max_win_total_x":      strconv.Itoa(cfg.MaxWinTotalX),
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%q:%s", k, fields[k])
	}
	sb.WriteByte('}')

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])[:16]
}

func formatFloatSlice(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', 2, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
