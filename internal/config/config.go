package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Redis     RedisConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Game      GameConfig
	Storage   StorageConfig
	Audit     AuditConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Env       string
	Addr      string
	Name      string
	GitCommit string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// RateLimitConfig holds edge rate-limiting settings. This is a defensive
// ambient concern at the HTTP boundary; it never substitutes for the
// per-player lock's own ROUND_IN_PROGRESS behavior.
type RateLimitConfig struct {
	PublicRPS int
}

// GameConfig holds every tunable the spin engine and orchestrator read.
type GameConfig struct {
	Currency    string
	AllowedBets []float64

	MaxWinTotalX int

	EnableBuyFeature      bool
	BuyFeatureCostMult    int
	EnableTurbo           bool
	EnableHypeModeAnteBet bool
	EnableAfterpartyMeter bool
	HypeModeCostIncrease  float64
	HypeBonusChanceMult   float64

	SpotlightWildsFrequency float64

	FreeSpinsWinMultiplier int

	AfterpartyMeterMax        int
	RageSpins                 int
	RageMultiplier            int
	MeterIncOnAnyWin          int
	MeterIncOnWildPresent     int
	MeterIncOnTwoScatters     int
	RageCooldownSpins         int

	BoostTriggerSmallwins    int
	ExplosiveTriggerWinX     float64
	BoostSpins               int
	ExplosiveSpins           int
	EventMaxRatePer100Spins  int
	BoostMaxRatePer100Spins  int
	ExplosiveMaxRatePer100   int

	PlayerStateTTL time.Duration
	IdempotencyTTL time.Duration
	LockTTL        time.Duration
}

// StorageConfig holds S3/MinIO/GCS storage settings for audit artifacts.
type StorageConfig struct {
	// Provider can be "none", "minio" or "gcs"
	Provider        string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PublicURL       string
}

// AuditConfig holds settings for the audit-run history sink.
type AuditConfig struct {
	// HistoryDSN is a GORM DSN. Empty disables the history sink.
	HistoryDSN string
	// HistoryDriver is "sqlite" or "postgres".
	HistoryDriver string
}

// Load loads configuration from environment variables, prefixed RGS_.
func Load() (*Config, error) {
	if os.Getenv("RGS_APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:       getEnv("RGS_APP_ENV", "development"),
			Addr:      getEnv("RGS_APP_ADDR", ":8080"),
			Name:      getEnv("RGS_APP_NAME", "rgs-core"),
			GitCommit: getEnv("RGS_GIT_COMMIT", "unknown"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("RGS_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("RGS_REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("RGS_REDIS_DB", 0),
			Enabled:  getEnvAsBool("RGS_REDIS_ENABLED", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("RGS_LOG_LEVEL", "info"),
			Format: getEnv("RGS_LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("RGS_CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("RGS_CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("RGS_CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,X-Player-Id,X-Trace-ID"),
		},
		RateLimit: RateLimitConfig{
			PublicRPS: getEnvAsInt("RGS_RATE_LIMIT_PUBLIC_RPS", 50),
		},
		Game: GameConfig{
			Currency:    getEnv("RGS_CURRENCY", "USD"),
			AllowedBets: getEnvAsFloatSlice("RGS_ALLOWED_BETS", []float64{0.10, 0.20, 0.50, 1.00, 2.00, 5.00, 10.00}),

			MaxWinTotalX: getEnvAsInt("RGS_MAX_WIN_TOTAL_X", 25000),

			EnableBuyFeature:      getEnvAsBool("RGS_ENABLE_BUY_FEATURE", true),
			BuyFeatureCostMult:    getEnvAsInt("RGS_BUY_FEATURE_COST_MULTIPLIER", 100),
			EnableTurbo:           getEnvAsBool("RGS_ENABLE_TURBO", true),
			EnableHypeModeAnteBet: getEnvAsBool("RGS_ENABLE_HYPE_MODE_ANTE_BET", true),
			EnableAfterpartyMeter: getEnvAsBool("RGS_ENABLE_AFTERPARTY_METER", true),
			HypeModeCostIncrease:  getEnvAsFloat("RGS_HYPE_MODE_COST_INCREASE", 0.25),
			HypeBonusChanceMult:   getEnvAsFloat("RGS_HYPE_BONUS_CHANCE_MULTIPLIER", 2.0),

			SpotlightWildsFrequency: getEnvAsFloat("RGS_SPOTLIGHT_WILDS_FREQUENCY", 0.05),

			FreeSpinsWinMultiplier: getEnvAsInt("RGS_FREE_SPINS_WIN_MULTIPLIER", 11),

			AfterpartyMeterMax:    getEnvAsInt("RGS_AFTERPARTY_METER_MAX", 100),
			RageSpins:             getEnvAsInt("RGS_RAGE_SPINS", 10),
			RageMultiplier:        getEnvAsInt("RGS_RAGE_MULTIPLIER", 3),
			MeterIncOnAnyWin:      getEnvAsInt("RGS_METER_INC_ON_ANY_WIN", 4),
			MeterIncOnWildPresent: getEnvAsInt("RGS_METER_INC_ON_WILD_PRESENT", 3),
			MeterIncOnTwoScatters: getEnvAsInt("RGS_METER_INC_ON_TWO_SCATTERS", 10),
			RageCooldownSpins:     getEnvAsInt("RGS_RAGE_COOLDOWN_SPINS", 20),

			BoostTriggerSmallwins:   getEnvAsInt("RGS_BOOST_TRIGGER_SMALLWINS", 5),
			ExplosiveTriggerWinX:    getEnvAsFloat("RGS_EXPLOSIVE_TRIGGER_WIN_X", 50.0),
			BoostSpins:              getEnvAsInt("RGS_BOOST_SPINS", 5),
			ExplosiveSpins:          getEnvAsInt("RGS_EXPLOSIVE_SPINS", 3),
			EventMaxRatePer100Spins: getEnvAsInt("RGS_EVENT_MAX_RATE_PER_100_SPINS", 15),
			BoostMaxRatePer100Spins: getEnvAsInt("RGS_BOOST_MAX_RATE_PER_100_SPINS", 10),
			ExplosiveMaxRatePer100:  getEnvAsInt("RGS_EXPLOSIVE_MAX_RATE_PER_100_SPINS", 5),

			PlayerStateTTL: getEnvAsDuration("RGS_PLAYER_STATE_TTL", 24*time.Hour),
			IdempotencyTTL: getEnvAsDuration("RGS_IDEMPOTENCY_TTL", time.Hour),
			LockTTL:        getEnvAsDuration("RGS_LOCK_TTL", 30*time.Second),
		},
		Storage: StorageConfig{
			Provider:        getEnv("RGS_AUDIT_STORAGE_PROVIDER", "none"),
			Endpoint:        getEnv("RGS_AUDIT_STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("RGS_AUDIT_STORAGE_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("RGS_AUDIT_STORAGE_SECRET_KEY", ""),
			BucketName:      getEnv("RGS_AUDIT_STORAGE_BUCKET", "rgs-audit-artifacts"),
			UseSSL:          getEnvAsBool("RGS_AUDIT_STORAGE_USE_SSL", false),
			PublicURL:       getEnv("RGS_AUDIT_STORAGE_PUBLIC_URL", "http://localhost:9000"),
		},
		Audit: AuditConfig{
			HistoryDSN:    getEnv("RGS_AUDIT_HISTORY_DSN", ""),
			HistoryDriver: getEnv("RGS_AUDIT_HISTORY_DRIVER", "sqlite"),
		},
	}

	if cfg.App.Env == "production" {
		if cfg.Redis.Password == "" && cfg.Redis.Enabled {
			return nil, fmt.Errorf("RGS_REDIS_PASSWORD must be set in production")
		}
		if cfg.Storage.Provider != "none" && cfg.Storage.AccessKeyID == "" {
			return nil, fmt.Errorf("RGS_AUDIT_STORAGE_ACCESS_KEY must be set in production when storage is enabled")
		}
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatSlice(key string, defaultValue []float64) []float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	result := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return defaultValue
		}
		result = append(result, v)
	}
	return result
}
