package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lorrc/ticket-board/internal/adapters/secondary/storage"
	"github.com/lorrc/ticket-board/internal/cli"
	"github.com/lorrc/ticket-board/internal/config"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/infrastructure/clock"
	"github.com/lorrc/ticket-board/internal/infrastructure/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ticketctl:", err)
		os.Exit(1)
	}

	// Diagnostics go to stderr so --json output stays parseable.
	level := cfg.Logging.Level
	if os.Getenv("LOG_LEVEL") == "" {
		level = "error"
	}
	logger := logging.NewLogger(logging.Config{
		Level:       level,
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "ticketctl",
		Environment: cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := cli.Deps{
		Open: func(ctx context.Context) (ports.TicketSnapshotStore, func(), error) {
			backend, err := storage.Open(ctx, cfg, logger)
			if err != nil {
				return nil, nil, err
			}
			return backend.Store, backend.Close, nil
		},
		Clock:  clock.Real(),
		Logger: logger,
	}

	// Execute has released the storage by the time it returns.
	if err := cli.Execute(ctx, deps, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", cli.FormatError(err))
		stop()
		os.Exit(1)
	}
}
