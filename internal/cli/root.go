// Package cli implements the ticketctl command line client. Every command
// runs against the same ticket store the HTTP service uses.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/services"
	"github.com/lorrc/ticket-board/internal/infrastructure/clock"
)

// OpenFunc opens the configured snapshot store. The returned func releases it.
type OpenFunc func(ctx context.Context) (ports.TicketSnapshotStore, func(), error)

// Deps are the collaborators of the command tree.
type Deps struct {
	Open   OpenFunc
	Clock  clock.Clock
	Logger *slog.Logger
}

// app holds per-invocation state shared by the subcommands.
type app struct {
	deps       Deps
	jsonOutput bool

	tickets *services.TicketStore
	board   ports.BoardService
	release func()
}

// Execute runs ticketctl with args. The storage opened for the command is
// released once it returns, including when the command failed.
func Execute(ctx context.Context, deps Deps, args []string, stdout, stderr io.Writer) error {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	a := &app{deps: deps}
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ticketctl",
		Short:         "Manage support tickets",
		Long:          "ticketctl lists, creates and updates support tickets in the configured ticket storage.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.open(cmd)
		},
	}

	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Print JSON instead of tables")

	root.AddCommand(
		a.listCommand(),
		a.addCommand(),
		a.showCommand(),
		a.statusCommand(),
		a.deleteCommand(),
		a.commentCommand(),
		a.boardCommand(),
		a.metricsCommand(),
	)

	return root
}

func (a *app) open(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	snapshots, release, err := a.deps.Open(ctx)
	if err != nil {
		return fmt.Errorf("opening ticket storage: %w", err)
	}
	a.release = release

	a.tickets = services.NewTicketStore(snapshots, a.deps.Clock, a.deps.Logger)
	// An unreachable store still lets the command run. The store does not
	// write until it has read the stored list, and the warning says so.
	if err := a.tickets.Load(ctx); err != nil {
		a.deps.Logger.WarnContext(ctx, "ticket list not loaded", "error", err)
	}
	a.board = services.NewBoardService(a.tickets, a.deps.Clock)
	a.printWarning(cmd)
	return nil
}

func (a *app) close() {
	if a.release != nil {
		a.release()
		a.release = nil
	}
}

// printWarning reports a pending storage warning on stderr.
func (a *app) printWarning(cmd *cobra.Command) {
	if msg, ok := a.tickets.PersistenceWarning(); ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", msg)
	}
}
