package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/orden-vaciado/internal/core"
	"github.com/mikey/orden-vaciado/internal/di"
	"github.com/mikey/orden-vaciado/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	poller ports.OrderPoller,
	lots core.LotSource,
) error {
	defer logger.Sync()

	// Start the poller
	if err := poller.Start(); err != nil {
		logger.Error("Failed to start poller", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := poller.Stop(); err != nil {
		logger.Error("Failed to stop poller", zap.Error(err))
	}

	// Close the lot database if there is one
	if closer, ok := lots.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close lot source", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
