// Package telemetry emits the three spin-lifecycle events. A sink failure
// is logged but never propagated — telemetry must never be able to fail a
// real-money request. Failures are not counted.
package telemetry

import (
	"context"

	"github.com/slotmachine/backend/internal/pkg/logger"
)

// Mode is the derived BUY/HYPE/BASE label attached to spin_processed.
type Mode string

const (
	ModeBase Mode = "base"
	ModeBuy  Mode = "buy"
	ModeHype Mode = "hype"
)

// DeriveMode implements the mode label rule: BUY_FEATURE beats hype beats
// base.
func DeriveMode(isBuyFeature, isHypeMode bool) Mode {
	switch {
	case isBuyFeature:
		return ModeBuy
	case isHypeMode:
		return ModeHype
	default:
		return ModeBase
	}
}

// InitServed corresponds to a successful /init call.
type InitServed struct {
	PlayerID             string
	RestoreStatePresent  bool
	RestoreMode          string
	SpinsRemaining       *int
}

// SpinProcessed corresponds to a spin that reached and completed the
// engine. It is never emitted on an idempotent replay.
type SpinProcessed struct {
	PlayerID               string
	ClientRequestID        string
	LockAcquireMs          int64
	LockWaitRetries        int
	IsBonusContinuation    bool
	BonusContinuationCount int
	ConfigHash             string
	Mode                   Mode
	RoundID                string
	BonusVariant           string // "standard", "vip_buy", or "" for none
}

// SpinRejected corresponds to a spin rejected before reaching the engine,
// primarily on ROUND_IN_PROGRESS.
type SpinRejected struct {
	PlayerID        string
	ClientRequestID string
	Reason          string
	LockAcquireMs   int64
	LockWaitRetries int
}

// Sink is the exception-safe telemetry emitter. Build it with New; the
// zero value has no logger and is not usable.
type Sink struct {
	log *logger.Logger
}

// New builds a Sink backed by log.
func New(log *logger.Logger) *Sink {
	return &Sink{log: log}
}

func (s *Sink) recover(event string) {
	if r := recover(); r != nil {
		s.log.Error().
			Str("event", event).
			Interface("panic", r).
			Msg("telemetry sink panicked, swallowing")
	}
}

// EmitInitServed emits an init_served event. Never returns an error.
func (s *Sink) EmitInitServed(ctx context.Context, e InitServed) {
	defer s.recover("init_served")
	entry := s.log.WithTraceContext(ctx).Info().
		Str("event", "init_served").
		Str("player_id", e.PlayerID).
		Bool("restore_state_present", e.RestoreStatePresent).
		Str("restore_mode", e.RestoreMode)
	if e.SpinsRemaining != nil {
		entry = entry.Int("spins_remaining", *e.SpinsRemaining)
	}
	entry.Msg("init served")
}

// EmitSpinProcessed emits a spin_processed event. Never returns an error.
func (s *Sink) EmitSpinProcessed(ctx context.Context, e SpinProcessed) {
	defer s.recover("spin_processed")
	s.log.WithTraceContext(ctx).Info().
		Str("event", "spin_processed").
		Str("player_id", e.PlayerID).
		Str("client_request_id", e.ClientRequestID).
		Int64("lock_acquire_ms", e.LockAcquireMs).
		Int("lock_wait_retries", e.LockWaitRetries).
		Bool("is_bonus_continuation", e.IsBonusContinuation).
		Int("bonus_continuation_count", e.BonusContinuationCount).
		Str("config_hash", e.ConfigHash).
		Str("mode", string(e.Mode)).
		Str("round_id", e.RoundID).
		Str("bonus_variant", e.BonusVariant).
		Msg("spin processed")
}

// EmitSpinRejected emits a spin_rejected event. Never returns an error.
func (s *Sink) EmitSpinRejected(ctx context.Context, e SpinRejected) {
	defer s.recover("spin_rejected")
	s.log.WithTraceContext(ctx).Warn().
		Str("event", "spin_rejected").
		Str("player_id", e.PlayerID).
		Str("client_request_id", e.ClientRequestID).
		Str("reason", e.Reason).
		Int64("lock_acquire_ms", e.LockAcquireMs).
		Int("lock_wait_retries", e.LockWaitRetries).
		Msg("spin rejected")
}
