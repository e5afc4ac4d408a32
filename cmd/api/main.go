// Package main provides the entry point for the Mera Room server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/meraroom/meraroom-server/internal/di"
	"github.com/meraroom/meraroom-server/internal/di/providers"
	"github.com/meraroom/meraroom-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Pending assistant replies are dropped and sessions closed first so
	// open event streams end before the HTTP server waits on them.
	if err := do.Shutdown[*providers.SessionServiceHandle](injector); err != nil {
		log.Error("Failed to stop session service", "error", err)
	}
	if err := do.Shutdown[*providers.SessionManagerHandle](injector); err != nil {
		log.Error("Failed to close sessions", "error", err)
	}

	// The DI container handles the remaining shutdown order
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Server stopped")
}
