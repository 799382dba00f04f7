// Package bootstrap wires the concrete dependency graph together. It
// stands in for the generated Wire injector: cmd/server/wire.go documents
// the intended provider sets, but this is the code that actually runs.
package bootstrap

import (
	"github.com/gofiber/fiber/v2"
	"github.com/slotmachine/backend/internal/api/handler"
	"github.com/slotmachine/backend/internal/api/middleware"
	"github.com/slotmachine/backend/internal/config"
	"github.com/slotmachine/backend/internal/db"
	"github.com/slotmachine/backend/internal/infra/cache"
	"github.com/slotmachine/backend/internal/infra/storage"
	"github.com/slotmachine/backend/internal/orchestrator"
	localcache "github.com/slotmachine/backend/internal/pkg/cache"
	"github.com/slotmachine/backend/internal/pkg/logger"
	"github.com/slotmachine/backend/internal/server"
	"github.com/slotmachine/backend/internal/telemetry"
	"gorm.io/gorm"
)

// cacheChannel is the pub/sub channel local caches use to invalidate each
// other's copy of an idempotency record across instances.
const cacheChannel = "rgs:cache:invalidate"

// Application bundles every long-lived component main.go needs to start
// and stop the server.
type Application struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *cache.RedisClient
	History     *gorm.DB
	Storage     storage.Storage
	LocalCache  *localcache.Cache
	Telemetry   *telemetry.Sink
	Orchestrator *orchestrator.Orchestrator
	RateLimiter *middleware.RateLimiter
	GameHandler *handler.GameHandler
	App         *fiber.App
}

// InitializeApplication constructs the full dependency graph. Every
// component that fails to construct aborts startup; optional components
// (history store, storage backend) are allowed to come back nil.
func InitializeApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	redisClient, err := cache.NewRedisClient(cfg, log)
	if err != nil {
		return nil, err
	}

	historyDB, err := db.NewGormDB(cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(&cfg.Storage)
	if err != nil {
		return nil, err
	}

	var bus localcache.EventBus
	if redisClient != nil {
		if rdb := redisClient.GetClient(); rdb != nil {
			if b := localcache.NewRedisEventBus(rdb); b != nil {
				bus = b
			}
		}
	}

	// redisClient may be a nil *cache.RedisClient (Redis disabled); wrapping
	// that directly in the RedisCloser interface would produce a non-nil
	// interface holding a nil pointer, so only assign it when non-nil.
	var redisCloser localcache.RedisCloser
	if redisClient != nil {
		redisCloser = redisClient
	}

	local := localcache.NewCache(localcache.NewCacheParams{
		Bus:         bus,
		Channel:     cacheChannel,
		Config:      cfg,
		RedisClient: redisCloser,
	})

	sink := telemetry.New(log)

	orch := orchestrator.New(cfg, redisClient, local, sink)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		PublicRPS: cfg.RateLimit.PublicRPS,
	}, log)

	gameHandler := handler.NewGameHandler(orch, log)

	app := server.NewFiberApp(cfg, log)
	server.SetupRoutes(app, rateLimiter, gameHandler)

	return &Application{
		Config:       cfg,
		Logger:       log,
		Redis:        redisClient,
		History:      historyDB,
		Storage:      store,
		LocalCache:   local,
		Telemetry:    sink,
		Orchestrator: orch,
		RateLimiter:  rateLimiter,
		GameHandler:  gameHandler,
		App:          app,
	}, nil
}

// Shutdown releases every resource opened by InitializeApplication, in
// reverse dependency order.
func (a *Application) Shutdown() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.LocalCache != nil {
		a.LocalCache.Close()
	}
	if a.Redis != nil {
		record(a.Redis.Close())
	}
	if a.History != nil {
		record(db.Close(a.History, a.Logger))
	}

	return firstErr
}
