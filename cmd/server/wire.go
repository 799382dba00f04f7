//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/slotmachine/backend/internal/api/handler"
	"github.com/slotmachine/backend/internal/api/middleware"
	"github.com/slotmachine/backend/internal/bootstrap"
	"github.com/slotmachine/backend/internal/config"
	"github.com/slotmachine/backend/internal/infra/cache"
	"github.com/slotmachine/backend/internal/infra/storage"
	"github.com/slotmachine/backend/internal/orchestrator"
	"github.com/slotmachine/backend/internal/pkg/logger"
	"github.com/slotmachine/backend/internal/server"
	"github.com/slotmachine/backend/internal/telemetry"
)

// This file documents the provider graph bootstrap.InitializeApplication
// hand-wires. It is never built (wireinject is never a real build tag) and
// exists so the dependency shape stays legible without running wire.

var applicationSet = wire.NewSet(
	config.Load,
	logger.ProviderSet,
	cache.NewRedisClient,
	storage.New,
	telemetry.New,
	orchestrator.New,
	handler.NewGameHandler,
	middleware.NewRateLimiter,
	server.NewFiberApp,
	wire.Struct(new(bootstrap.Application), "*"),
)

func initializeApplication() (*bootstrap.Application, error) {
	wire.Build(applicationSet)
	return nil, nil
}
