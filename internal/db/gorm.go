package db

import (
	"fmt"
	"time"

	"github.com/slotmachine/backend/internal/config"
	"github.com/slotmachine/backend/internal/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGormDB opens the audit-run history sink described by cfg.Audit. A blank
// HistoryDSN means the history sink is disabled; callers should treat a nil,
// nil-error return as "no history available" rather than an error.
func NewGormDB(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	if cfg.Audit.HistoryDSN == "" {
		return nil, nil
	}

	var gormLogLevel gormlogger.LogLevel
	switch cfg.Logging.Level {
	case "debug", "info":
		gormLogLevel = gormlogger.Info
	case "warn":
		gormLogLevel = gormlogger.Warn
	default:
		gormLogLevel = gormlogger.Error
	}

	customLogger := NewGormLogger(log, 200*time.Millisecond, false, gormLogLevel)

	gormConfig := &gorm.Config{
		Logger: customLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true,
	}

	var dialector gorm.Dialector
	switch cfg.Audit.HistoryDriver {
	case "postgres":
		dialector = postgres.Open(cfg.Audit.HistoryDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Audit.HistoryDSN)
	default:
		return nil, fmt.Errorf("unsupported audit history driver: %q", cfg.Audit.HistoryDriver)
	}

	database, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit history store: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping audit history store: %w", err)
	}

	log.Info().
		Str("driver", cfg.Audit.HistoryDriver).
		Msg("audit history store connection established")

	return database, nil
}

// Close closes the database connection
func Close(db *gorm.DB, log *logger.Logger) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Info().Msg("audit history store connection closed")
	return nil
}
