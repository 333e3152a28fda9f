package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskroom/auth"
	"taskroom/bus"
	"taskroom/httpapi"
	"taskroom/moderation"
	"taskroom/realtime"
	"taskroom/repositories"
	"taskroom/runtime/workers"
	"taskroom/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and manages the server lifecycle, so that
// every defer (database close included) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load() // a missing .env file is fine, the environment wins
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Auth
	users := repositories.NewUserRepository(db)
	projects, err := repositories.NewProjectRepository(db)
	if err != nil {
		return fmt.Errorf("project repository setup failed: %w", err)
	}
	defer func() { _ = projects.Close() }()

	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	resolver := auth.NewResolver(tokens, users, log)

	// 4. Broadcast bus, moderation & services
	registry := bus.NewGroupRegistry(log)
	moderator, err := moderation.NewModeratorFromEmbedded(config.ModerationCharReplacement, log)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	notifier := services.NewNotifier(registry, log)
	authService := services.NewAuthService(users, tokens)
	projectService := services.NewProjectService(projects, notifier, log)
	chat := realtime.NewHandler(registry, resolver, moderator, config.ConnectionBufferSize, log)

	// 5. HTTP server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := httpapi.NewServer(address, authService, projectService, resolver, chat, log)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewTelemetryWorker(log, config.TelemetryInterval, registry))
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
