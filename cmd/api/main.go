package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/lorrc/ticket-board/internal/adapters/primary/http"
	mw "github.com/lorrc/ticket-board/internal/adapters/primary/http/middleware"
	"github.com/lorrc/ticket-board/internal/adapters/primary/websocket"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/storage"
	"github.com/lorrc/ticket-board/internal/config"
	"github.com/lorrc/ticket-board/internal/core/services"
	"github.com/lorrc/ticket-board/internal/infrastructure/clock"
	"github.com/lorrc/ticket-board/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"storage_driver", cfg.Storage.Driver,
	)

	// 3. Open Ticket Storage
	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open ticket storage", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	// 4. Core Services
	clk := clock.Real()
	ticketStore := services.NewTicketStore(backend.Store, clk, logger)
	if err := ticketStore.Load(ctx); err != nil {
		// The store keeps running in memory; readiness reports the problem.
		logger.Warn("starting with an empty ticket list", "error", err)
	}
	boardService := services.NewBoardService(ticketStore, clk)

	// 5. Real-time Components & Rate Limiting
	hub := websocket.NewHub(logger)

	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		defer rateLimiter.Close()
	}

	// 6. Setup Router
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Tickets:        ticketStore,
		Board:          boardService,
		Storage:        backend,
		Hub:            hub,
		RateLimiter:    rateLimiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		WebSocket: httpAdapter.WebSocketConfig{
			AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			IsDevelopment:   cfg.IsDevelopment(),
		},
		Version: cfg.App.Version,
		Logger:  logger,
	})

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not closed by Shutdown.
	hub.CloseAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		exitCode = 1
	}

	logger.Info("server shutdown complete")
	if exitCode != 0 {
		// os.Exit skips deferred calls.
		backend.Close()
		os.Exit(exitCode)
	}
}
