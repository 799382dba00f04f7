package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/slotmachine/backend/internal/config"
	"github.com/slotmachine/backend/internal/pkg/logger"
	"github.com/slotmachine/backend/internal/state"
)

// RedisClient wraps the Redis client backing the player state store:
// idempotency records, per-player locks and persisted round state.
type RedisClient struct {
	client *redis.Client
	logger *logger.Logger
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg *config.Config, log *logger.Logger) (*RedisClient, error) {
	if !cfg.Redis.Enabled {
		log.Info().Msg("Redis is disabled, skipping connection")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10 * runtime.GOMAXPROCS(0), // Pool size = 10 * CPU cores
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().
		Str("addr", cfg.Redis.Addr).
		Msg("Redis connection established")

	return &RedisClient{
		client: client,
		logger: log,
	}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	if r.client != nil {
		r.logger.Info().Msg("Closing Redis connection")
		return r.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// Key prefixes for the state store.
const (
	statePlayerPrefix = "state:player:"
	idemPrefix        = "idem:"
	lockPlayerPrefix  = "lock:player:"
)

// IdempotencyStatus is the result of checkIdempotency.
type IdempotencyStatus int

const (
	IdempotencyMiss IdempotencyStatus = iota
	IdempotencyHit
	IdempotencyConflict
)

type idempotencyRecord struct {
	PayloadHash string          `json:"payloadHash"`
	Response    json.RawMessage `json:"response"`
}

// CheckIdempotency looks up a prior response for requestId. Conflict is
// returned when a record exists whose payloadHash differs from payloadHash.
func (r *RedisClient) CheckIdempotency(ctx context.Context, requestID, payloadHash string) (IdempotencyStatus, json.RawMessage, error) {
	key := idemPrefix + requestID
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return IdempotencyMiss, nil, nil
	}
	if err != nil {
		return IdempotencyMiss, nil, fmt.Errorf("idempotency lookup failed: %w", err)
	}

	var rec idempotencyRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return IdempotencyMiss, nil, fmt.Errorf("idempotency record corrupt: %w", err)
	}

	if rec.PayloadHash != payloadHash {
		return IdempotencyConflict, nil, nil
	}
	return IdempotencyHit, rec.Response, nil
}

// StoreIdempotency unconditionally writes the idempotency record for
// requestId with the given TTL.
func (r *RedisClient) StoreIdempotency(ctx context.Context, requestID, payloadHash string, response json.RawMessage, ttl time.Duration) error {
	rec := idempotencyRecord{PayloadHash: payloadHash, Response: response}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}
	return r.client.Set(ctx, idemPrefix+requestID, data, ttl).Err()
}

// AcquireLock attempts to take the per-player lock, returning a random
// token on success. A zero-value ok=false means the lock is held by
// someone else.
func (r *RedisClient) AcquireLock(ctx context.Context, playerID string, ttl time.Duration) (token string, ok bool, err error) {
	token, err = randomToken()
	if err != nil {
		return "", false, err
	}

	key := lockPlayerPrefix + playerID
	ok, err = r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("lock acquire failed: %w", err)
	}
	return token, ok, nil
}

// releaseLockScript performs an atomic compare-and-delete: it never removes
// a lock unless the caller still holds the token it was issued.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// ReleaseLock releases the per-player lock iff token still matches the
// stored value. Never a plain DEL — releasing another holder's lock would
// let two spins run concurrently against the same player state.
func (r *RedisClient) ReleaseLock(ctx context.Context, playerID, token string) error {
	key := lockPlayerPrefix + playerID
	_, err := releaseLockScript.Run(ctx, r.client, []string{key}, token).Result()
	if err != nil {
		return fmt.Errorf("lock release failed: %w", err)
	}
	return nil
}

// LockMetrics reports how long a WithPlayerLock call waited to acquire.
type LockMetrics struct {
	AcquireMs   int64
	WaitRetries int
}

// WithPlayerLock runs fn while holding the per-player lock, guaranteeing
// release on every exit path including panics: it recovers, releases, and
// re-panics so the caller's own recovery (if any) still observes the
// original panic.
func (r *RedisClient) WithPlayerLock(ctx context.Context, playerID string, ttl time.Duration, fn func() error) (LockMetrics, error) {
	start := time.Now()
	token, ok, err := r.AcquireLock(ctx, playerID, ttl)
	if err != nil {
		return LockMetrics{}, err
	}
	if !ok {
		return LockMetrics{AcquireMs: time.Since(start).Milliseconds(), WaitRetries: 0}, errRoundInProgress
	}
	metrics := LockMetrics{AcquireMs: time.Since(start).Milliseconds(), WaitRetries: 0}

	defer func() {
		if rerr := recover(); rerr != nil {
			_ = r.ReleaseLock(ctx, playerID, token)
			panic(rerr)
		}
	}()

	if err := fn(); err != nil {
		_ = r.ReleaseLock(ctx, playerID, token)
		return metrics, err
	}

	if err := r.ReleaseLock(ctx, playerID, token); err != nil {
		return metrics, err
	}
	return metrics, nil
}

var errRoundInProgress = fmt.Errorf("round in progress")

// ErrRoundInProgress is returned by WithPlayerLock when the lock is held
// by a concurrent spin. Callers translate this to the ROUND_IN_PROGRESS
// error code.
func ErrRoundInProgress() error { return errRoundInProgress }

// GetPlayerState loads the persisted state for playerId. A nil result with
// no error means no state is on record (fresh player).
func (r *RedisClient) GetPlayerState(ctx context.Context, playerID string) (*state.PlayerState, error) {
	key := statePlayerPrefix + playerID
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player state: %w", err)
	}

	var s state.PlayerState
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("player state corrupt: %w", err)
	}
	return &s, nil
}

// SavePlayerState persists s for playerId with the given TTL.
func (r *RedisClient) SavePlayerState(ctx context.Context, playerID string, s *state.PlayerState, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal player state: %w", err)
	}
	return r.client.Set(ctx, statePlayerPrefix+playerID, data, ttl).Err()
}

// ClearPlayerState deletes the persisted state for playerId, used when a
// spin leaves the player back in BASE mode with no bonus to resume.
func (r *RedisClient) ClearPlayerState(ctx context.Context, playerID string) error {
	return r.client.Del(ctx, statePlayerPrefix+playerID).Err()
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
