package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/slotmachine/backend/internal/bootstrap"
)

func main() {
	application, err := bootstrap.InitializeApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	log := application.Logger
	cfg := application.Config

	log.Info().
		Str("env", cfg.App.Env).
		Str("addr", cfg.App.Addr).
		Str("configHash", application.Orchestrator.ConfigHash()).
		Msg("Starting RGS core server")

	go func() {
		log.Info().Str("addr", cfg.App.Addr).Msg("Server listening")
		if err := application.App.Listen(cfg.App.Addr); err != nil {
			log.Error().Err(err).Msg("Failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if err := application.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
		os.Exit(1)
	}

	log.Info().Msg("Server stopped")
}
