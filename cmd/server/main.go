package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trygglabs/trygg/internal/api"
	"github.com/trygglabs/trygg/internal/classify"
	"github.com/trygglabs/trygg/internal/setup"
	"github.com/trygglabs/trygg/internal/setup/config"
	"github.com/trygglabs/trygg/internal/setup/telemetry"
	"go.uber.org/zap"
)

// ServerLogDir specifies where API server log files are stored.
const ServerLogDir = "logs/server_logs"

func main() {
	ctx := context.Background()

	// Initialize application with required dependencies
	app, err := setup.InitializeApp(ctx, telemetry.ServiceServer, ServerLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(ctx)

	// The wordlist is optional; without one the keyword engine runs on
	// its built-in terms only.
	wordlist, err := config.LoadWordlist(app.ConfigDir)
	if err != nil && !errors.Is(err, config.ErrWordlistNotFound) {
		app.Logger.Fatal("Failed to load wordlist", zap.Error(err))
	}

	classifier, err := classify.NewClassifier(&app.Config.Common, wordlist, app.GenAIClient, app.Logger)
	if err != nil {
		app.Logger.Fatal("Failed to build classifier", zap.Error(err))
	}

	screener := classify.NewScreener(classifier, app.DB.Model().Audit(), &app.Config.Common.Classify, app.Logger)

	// Create server
	srv := api.NewServer(
		&app.Config.Server,
		app.DB.Service().User(),
		app.DB.Service().Consent(),
		app.DB.Service().Safety(),
		app.DB.Model().Audit(),
		screener,
		app.Logger,
	)

	// Start server in a goroutine
	go func() {
		log.Printf("API server started on %s:%d", app.Config.Server.Host, app.Config.Server.Port)

		if err := srv.Start(); err != nil {
			app.Logger.Error("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	app.Logger.Info("Shutting down API server...")

	// Create shutdown context with timeout
	shutdownTimeout := time.Duration(app.Config.Server.ShutdownTimeout) * time.Millisecond
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	app.Logger.Info("Server gracefully stopped")
}
