package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

func (a *app) commentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comment",
		Aliases: []string{"comments"},
		Short:   "Add or delete ticket comments",
	}

	cmd.AddCommand(a.commentAddCommand(), a.commentDeleteCommand())
	return cmd
}

func (a *app) commentAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <text>",
		Short: "Append a comment to a ticket",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTicketID(a.tickets.ListTickets(cmd.Context()), args[0])
			if err != nil {
				return err
			}

			err = a.tickets.AddComment(cmd.Context(), ports.AddCommentParams{
				TicketID: id,
				Body:     strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}
			a.printWarning(cmd)

			return a.printComments(cmd, id)
		},
	}
}

func (a *app) commentDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id> <index>",
		Short: "Delete the comment at a position (as shown by show)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 {
				return fmt.Errorf("comment index must be a non-negative integer, got %q", args[1])
			}

			id, err := resolveTicketID(a.tickets.ListTickets(cmd.Context()), args[0])
			if err != nil {
				return err
			}

			err = a.tickets.DeleteComment(cmd.Context(), ports.DeleteCommentParams{
				TicketID: id,
				Index:    index,
			})
			if err != nil {
				return err
			}
			a.printWarning(cmd)

			return a.printComments(cmd, id)
		},
	}
}

func (a *app) printComments(cmd *cobra.Command, id string) error {
	ticket, err := a.tickets.GetTicket(cmd.Context(), id)
	if err != nil {
		return err
	}

	if a.jsonOutput {
		return printJSON(cmd.OutOrStdout(), domain.NewTicketSnapshot(ticket))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Comments on %s (%d)\n", shortID(ticket.ID), len(ticket.Comments))
	for i, c := range ticket.Comments {
		fmt.Fprintf(out, "  [%d] %s\n", i, c)
	}
	return nil
}
