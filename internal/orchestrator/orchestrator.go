// Package orchestrator implements the Init and Spin request flows: request
// validation, idempotency, the per-player lock, and the strict
// idempotency-before-state write ordering that keeps a crash between the
// two writes observably harmless.
package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/slotmachine/backend/internal/api/dto"
	"github.com/slotmachine/backend/internal/config"
	"github.com/slotmachine/backend/internal/confighash"
	"github.com/slotmachine/backend/internal/game/engine"
	"github.com/slotmachine/backend/internal/infra/cache"
	"github.com/slotmachine/backend/internal/pkg/errors"
	localcache "github.com/slotmachine/backend/internal/pkg/cache"
	"github.com/slotmachine/backend/internal/rng"
	"github.com/slotmachine/backend/internal/state"
	"github.com/slotmachine/backend/internal/telemetry"
)

// Orchestrator wires the pure spin engine to the state store, idempotency
// cache and telemetry sink. It holds no per-request state of its own.
type Orchestrator struct {
	cfg        *config.Config
	store      *cache.RedisClient
	local      *localcache.Cache
	telemetry  *telemetry.Sink
	configHash string
}

// New builds an Orchestrator and precomputes the config hash once, since
// configuration never changes over the lifetime of a process.
func New(cfg *config.Config, store *cache.RedisClient, local *localcache.Cache, sink *telemetry.Sink) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		store:      store,
		local:      local,
		telemetry:  sink,
		configHash: confighash.Compute(&cfg.Game),
	}
}

// ConfigHash returns the fingerprint of the audit-relevant config subset,
// used by the /health endpoint and every audit artifact.
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// Init serves GET /init: the public configuration block plus a restore
// hint for players returning mid-bonus.
func (o *Orchestrator) Init(ctx context.Context, playerID string) (*dto.InitResponse, error) {
	if playerID == "" {
		return nil, errors.InvalidRequest("missing player id")
	}

	s, err := o.store.GetPlayerState(ctx, playerID)
	if err != nil {
		return nil, errors.InternalError("failed to load player state", err)
	}

	resp := &dto.InitResponse{
		ProtocolVersion: dto.ProtocolVersion,
		Configuration: dto.Configuration{
			Currency:                 o.cfg.Game.Currency,
			AllowedBets:              o.cfg.Game.AllowedBets,
			EnableBuyFeature:         o.cfg.Game.EnableBuyFeature,
			BuyFeatureCostMultiplier: o.cfg.Game.BuyFeatureCostMult,
			EnableTurbo:              o.cfg.Game.EnableTurbo,
			EnableHypeModeAnteBet:    o.cfg.Game.EnableHypeModeAnteBet,
			HypeModeCostIncrease:     o.cfg.Game.HypeModeCostIncrease,
		},
	}

	evt := telemetry.InitServed{PlayerID: playerID, RestoreMode: string(state.ModeBase)}
	if s != nil && s.Mode == state.ModeFreeSpins && s.FreeSpinsRemaining > 0 {
		remaining := s.FreeSpinsRemaining
		resp.RestoreState = &dto.RestoreState{
			Mode:           string(state.ModeFreeSpins),
			SpinsRemaining: s.FreeSpinsRemaining,
			HeatLevel:      s.HeatLevel,
		}
		evt.RestoreStatePresent = true
		evt.RestoreMode = string(state.ModeFreeSpins)
		evt.SpinsRemaining = &remaining
	}
	o.telemetry.EmitInitServed(ctx, evt)

	return resp, nil
}

// Spin serves POST /spin.
func (o *Orchestrator) Spin(ctx context.Context, playerID string, req dto.SpinRequest) (*dto.SpinResponse, error) {
	if playerID == "" {
		return nil, errors.InvalidRequest("missing player id")
	}
	if req.ClientRequestID == "" {
		return nil, errors.InvalidRequest("missing clientRequestId")
	}

	var spinMode engine.SpinMode
	switch req.Mode {
	case dto.ModeNormal, "":
		spinMode = engine.SpinModeNormal
	case dto.ModeBuyFeature:
		spinMode = engine.SpinModeBuyFeature
	default:
		return nil, errors.InvalidRequest(fmt.Sprintf("unknown mode %q", req.Mode))
	}

	if !isAllowedBet(req.BetAmount, o.cfg.Game.AllowedBets) {
		return nil, errors.InvalidBet(fmt.Sprintf("betAmount %v is not an allowed stake", req.BetAmount))
	}
	if spinMode == engine.SpinModeBuyFeature && !o.cfg.Game.EnableBuyFeature {
		return nil, errors.FeatureDisabled("buy feature is disabled")
	}
	if req.HypeMode && !o.cfg.Game.EnableHypeModeAnteBet {
		return nil, errors.FeatureDisabled("hype mode ante bet is disabled")
	}

	payloadHash := hashPayload(req)

	// Fast-path idempotency check, no lock held: a replay of an already
	// fully processed request costs one Redis GET.
	if resp, err := o.checkCachedResponse(ctx, req.ClientRequestID, payloadHash); resp != nil || err != nil {
		return resp, err
	}

	var (
		result    *dto.SpinResponse
		resultErr error
		meta      spinMeta
	)

	metrics, lockErr := o.store.WithPlayerLock(ctx, playerID, o.cfg.Game.LockTTL, func() error {
		// Slow-path recheck: another request for the same clientRequestId
		// may have completed between the fast-path check and lock
		// acquisition.
		if resp, err := o.checkCachedResponse(ctx, req.ClientRequestID, payloadHash); resp != nil || err != nil {
			result, resultErr = resp, err
			return nil
		}

		prior, err := o.store.GetPlayerState(ctx, playerID)
		if err != nil {
			resultErr = errors.InternalError("failed to load player state", err)
			return nil
		}
		if prior == nil {
			prior = state.New()
		}

		isContinuation := prior.IsBonusContinuation()
		continuationCount := prior.BonusContinuationCount
		if isContinuation {
			continuationCount++
		}
		spinState := *prior
		spinState.BonusContinuationCount = continuationCount

		spinResult, err := engine.Spin(engine.SpinInput{
			State:    &spinState,
			Config:   &o.cfg.Game,
			RNG:      rng.NewProduction(),
			BaseBet:  req.BetAmount,
			HypeMode: req.HypeMode,
			SpinMode: spinMode,
		})
		if err != nil {
			resultErr = errors.InternalError("spin engine failure", err)
			return nil
		}

		roundID := uuid.New().String()
		resp := buildSpinResponse(roundID, o.cfg.Game.Currency, spinResult)

		respBytes, err := json.Marshal(resp)
		if err != nil {
			resultErr = errors.InternalError("failed to marshal spin response", err)
			return nil
		}

		// Idempotency write happens before the state write: the only
		// observable effect of a crash between the two is a stale
		// restoreState on the next /init, never a lost or duplicated win.
		if err := o.store.StoreIdempotency(ctx, req.ClientRequestID, payloadHash, respBytes, o.cfg.Game.IdempotencyTTL); err != nil {
			resultErr = errors.InternalError("failed to persist idempotency record", err)
			return nil
		}
		_ = o.local.Set(ctx, o.local.IdempotencyKey(req.ClientRequestID),
			localIdemEntry{PayloadHash: payloadHash, Response: respBytes}, o.cfg.Game.IdempotencyTTL)

		if spinResult.NextState.Mode == state.ModeBase || spinResult.NextState.FreeSpinsRemaining == 0 {
			err = o.store.ClearPlayerState(ctx, playerID)
		} else {
			err = o.store.SavePlayerState(ctx, playerID, spinResult.NextState, o.cfg.Game.PlayerStateTTL)
		}
		if err != nil {
			resultErr = errors.InternalError("failed to persist player state", err)
			return nil
		}

		result = resp
		meta = spinMeta{
			computed:          true,
			isContinuation:    isContinuation,
			continuationCount: continuationCount,
			bonusVariant:      bonusVariant(spinResult),
		}
		return nil
	})

	if lockErr != nil {
		if lockErr == cache.ErrRoundInProgress() {
			o.telemetry.EmitSpinRejected(ctx, telemetry.SpinRejected{
				PlayerID:        playerID,
				ClientRequestID: req.ClientRequestID,
				Reason:          "round_in_progress",
				LockAcquireMs:   metrics.AcquireMs,
				LockWaitRetries: metrics.WaitRetries,
			})
			return nil, errors.RoundInProgress()
		}
		return nil, errors.InternalError("lock acquisition failed", lockErr)
	}

	if resultErr != nil {
		return nil, resultErr
	}

	if meta.computed {
		o.telemetry.EmitSpinProcessed(ctx, telemetry.SpinProcessed{
			PlayerID:               playerID,
			ClientRequestID:        req.ClientRequestID,
			LockAcquireMs:          metrics.AcquireMs,
			LockWaitRetries:        metrics.WaitRetries,
			IsBonusContinuation:    meta.isContinuation,
			BonusContinuationCount: meta.continuationCount,
			ConfigHash:             o.configHash,
			Mode:                   telemetry.DeriveMode(spinMode == engine.SpinModeBuyFeature, req.HypeMode),
			RoundID:                result.RoundID,
			BonusVariant:           meta.bonusVariant,
		})
	}

	return result, nil
}

// spinMeta carries data the telemetry emission needs but the wire response
// does not, out of the locked closure.
type spinMeta struct {
	computed          bool
	isContinuation    bool
	continuationCount int
	bonusVariant      string
}

// localIdemEntry is what the process-local cache holds for one
// clientRequestId, ahead of the authoritative Redis record.
type localIdemEntry struct {
	PayloadHash string
	Response    json.RawMessage
}

// checkCachedResponse consults the idempotency record for requestID,
// trying the process-local cache before the authoritative Redis record. A
// nil response and nil error means "no record, proceed"; any non-nil
// return value is final and must be returned to the caller as-is.
func (o *Orchestrator) checkCachedResponse(ctx context.Context, requestID, payloadHash string) (*dto.SpinResponse, error) {
	key := o.local.IdempotencyKey(requestID)
	if cached, found := o.local.Get(ctx, key); found {
		entry, ok := cached.(localIdemEntry)
		if ok {
			if entry.PayloadHash != payloadHash {
				return nil, errors.IdempotencyConflict()
			}
			var resp dto.SpinResponse
			if err := json.Unmarshal(entry.Response, &resp); err != nil {
				return nil, errors.InternalError("cached spin response corrupt", err)
			}
			return &resp, nil
		}
	}

	status, raw, err := o.store.CheckIdempotency(ctx, requestID, payloadHash)
	if err != nil {
		return nil, errors.InternalError("idempotency lookup failed", err)
	}
	switch status {
	case cache.IdempotencyHit:
		_ = o.local.Set(ctx, key, localIdemEntry{PayloadHash: payloadHash, Response: raw}, o.cfg.Game.IdempotencyTTL)
		var resp dto.SpinResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, errors.InternalError("cached spin response corrupt", err)
		}
		return &resp, nil
	case cache.IdempotencyConflict:
		return nil, errors.IdempotencyConflict()
	default:
		return nil, nil
	}
}

func isAllowedBet(amount float64, allowed []float64) bool {
	const epsilon = 1e-6
	for _, a := range allowed {
		if math.Abs(a-amount) < epsilon {
			return true
		}
	}
	return false
}

func hashPayload(req dto.SpinRequest) string {
	canonical := fmt.Sprintf(`{"betAmount":%s,"hypeMode":%t,"mode":%q}`,
		formatAmount(req.BetAmount), req.HypeMode, req.Mode)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:16]
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func buildSpinResponse(roundID, currency string, r *engine.SpinResult) *dto.SpinResponse {
	var capReason *string
	if r.IsCapped {
		reason := r.CapReason
		capReason = &reason
	}
	return &dto.SpinResponse{
		ProtocolVersion: dto.ProtocolVersion,
		RoundID:         roundID,
		Context:         dto.Context{Currency: currency},
		Outcome: dto.Outcome{
			TotalWin:  r.TotalWin,
			TotalWinX: r.TotalWinX,
			IsCapped:  r.IsCapped,
			CapReason: capReason,
		},
		Events: r.Events,
		NextState: dto.NextState{
			Mode:           string(r.NextState.Mode),
			SpinsRemaining: r.NextState.FreeSpinsRemaining,
			HeatLevel:      r.NextState.HeatLevel,
		},
	}
}

func bonusVariant(r *engine.SpinResult) string {
	if r.NextState.Mode != state.ModeFreeSpins {
		return ""
	}
	if r.NextState.BonusIsBought {
		return "vip_buy"
	}
	return "standard"
}
