package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"safe-space/auth"
	"safe-space/infrastructure/grpc/server"
	httpserver "safe-space/infrastructure/http/server"
	"safe-space/infrastructure/storage"
	"safe-space/internal"
	"safe-space/runtime/workers"
	"safe-space/services"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

// run wires storage, services and transports, then blocks until a signal
// or a transport failure. Deferred cleanups run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	messageRepository, err := storage.NewMessageRepository(db, log)
	if err != nil {
		return exitRuntime, fmt.Errorf("message store failed to open: %w", err)
	}
	// Registered after db.Close so the sequence lease is released first.
	defer func() { _ = messageRepository.Close() }()
	userRepository := storage.NewUserRepository(db)
	caseNoteRepository := storage.NewCaseNoteRepository(db)

	// 3. Services
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	directory := services.NewDirectory(userRepository)
	authService := services.NewAuthService(log, userRepository, tokens)
	chatService := services.NewChatService(log, messageRepository, directory)
	caseNoteService := services.NewCaseNoteService(log, caseNoteRepository, directory)

	if config.AdminEmail != "" {
		if err = authService.SeedAdmin(config.AdminName, config.AdminEmail, config.AdminPassword); err != nil {
			return exitRuntime, fmt.Errorf("admin seeding failed: %w", err)
		}
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervision
	healthServer := server.NewHealthServer()
	healthWorker := workers.NewHealthWorker(log, messageRepository, healthServer, server.StoreService, config.HealthInterval)
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(healthWorker)
	supervisorCtx, stopSupervisor := context.WithCancel(ctx)
	defer stopSupervisor()
	supervisorDone := make(chan struct{})
	go func() {
		supervisor.Run(supervisorCtx)
		close(supervisorDone)
	}()

	// 6. Transports
	router := httpserver.NewRouter(log, tokens, httpserver.Handlers{
		Auth:      httpserver.NewAuthHandler(log, authService, directory),
		Chat:      httpserver.NewChatHandler(log, chatService),
		CaseNotes: httpserver.NewCaseNoteHandler(log, caseNoteService),
		Health:    httpserver.NewHealthHandler(messageRepository, healthWorker.Latest),
	})
	httpServer := httpserver.NewHTTPServer(config.HTTPAddress(), router, config.ReadTimeout, config.WriteTimeout)

	listener, err := net.Listen("tcp", config.GRPCAddress())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.GRPCAddress(), err)
	}
	grpcServer := server.NewGRPCServer(log, healthServer)

	errChan := make(chan error, 2)
	go func() {
		log.Info("Starting HTTP server", "address", config.HTTPAddress(), "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		log.Info("Starting gRPC server", "address", config.GRPCAddress())
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	var debugServer *http.Server
	if config.DebugPort != 0 {
		debugServer = internal.StartDebugServer(log, db, fmt.Sprintf("127.0.0.1:%d", config.DebugPort), "/inspect",
			internal.DefaultMapper, func() map[string]any {
				snapshot := healthWorker.Latest()
				return map[string]any{
					"Serving": snapshot.Serving,
					"RAM":     humanize.Bytes(snapshot.RAMBytes),
					"CPU":     fmt.Sprintf("%.1f%%", snapshot.CPUPercent),
				}
			})
	}

	// 7. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	if debugServer != nil {
		_ = debugServer.Shutdown(shutdownCtx)
	}
	grpcServer.GracefulStop()
	stopSupervisor()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return code, runErr
}
