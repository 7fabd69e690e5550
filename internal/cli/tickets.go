package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/query"
)

func (a *app) listCommand() *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tickets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := query.ParseCriteria(filters.status, filters.priority, filters.search)
			if err != nil {
				return err
			}

			tickets := a.board.FilterTickets(cmd.Context(), criteria)

			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), domain.NewTicketSnapshots(tickets))
			}

			if len(tickets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tickets found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tTITLE\tCOMMENTS\tCREATED")
			for _, t := range tickets {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					shortID(t.ID), t.Status, t.Priority, truncateStr(t.Title, 40),
					len(t.Comments), t.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	filters.register(cmd.Flags(), true)
	return cmd
}

func (a *app) addCommand() *cobra.Command {
	var description, priority string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := domain.ParsePriority(priority)
			if err != nil {
				return err
			}

			ticket, err := a.tickets.CreateTicket(cmd.Context(), ports.CreateTicketParams{
				Title:       args[0],
				Description: description,
				Priority:    p,
			})
			if err != nil {
				return err
			}
			a.printWarning(cmd)

			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), domain.NewTicketSnapshot(ticket))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created ticket %q (id: %s)\n", ticket.Title, shortID(ticket.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Ticket description")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(domain.DefaultPriority), "Priority (Low, Medium, High)")
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a ticket and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTicketID(a.tickets.ListTickets(cmd.Context()), args[0])
			if err != nil {
				return err
			}

			ticket, err := a.tickets.GetTicket(cmd.Context(), id)
			if err != nil {
				return err
			}

			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), domain.NewTicketSnapshot(ticket))
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%s\n", ticket.ID)
			fmt.Fprintf(w, "Title:\t%s\n", ticket.Title)
			fmt.Fprintf(w, "Status:\t%s\n", ticket.Status)
			fmt.Fprintf(w, "Priority:\t%s\n", ticket.Priority)
			fmt.Fprintf(w, "Created:\t%s\n", ticket.CreatedAt.Local().Format(time.RFC1123))
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\n%s\n", ticket.Description)

			fmt.Fprintf(out, "\nComments (%d)\n", len(ticket.Comments))
			for i, c := range ticket.Comments {
				fmt.Fprintf(out, "  [%d] %s\n", i, c)
			}
			return nil
		},
	}
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a ticket to another status",
		Long:  "Move a ticket to Open, In Progress or Resolved. Multi-word statuses may be quoted or written as in_progress.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseStatus(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			id, err := resolveTicketID(a.tickets.ListTickets(cmd.Context()), args[0])
			if err != nil {
				return err
			}

			err = a.tickets.UpdateStatus(cmd.Context(), ports.UpdateStatusParams{
				TicketID: id,
				Status:   status,
				Source:   ports.UpdateSourceExplicit,
			})
			if err != nil {
				return err
			}
			a.printWarning(cmd)

			if a.jsonOutput {
				ticket, err := a.tickets.GetTicket(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), domain.NewTicketSnapshot(ticket))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Ticket %s is now %s\n", shortID(id), status)
			return nil
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a ticket permanently",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTicketID(a.tickets.ListTickets(cmd.Context()), args[0])
			if err != nil {
				return err
			}

			if err := a.tickets.DeleteTicket(cmd.Context(), id); err != nil {
				return err
			}
			a.printWarning(cmd)

			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": id})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted ticket %s\n", shortID(id))
			return nil
		},
	}
}
