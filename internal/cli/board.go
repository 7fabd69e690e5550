package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/query"
)

type columnJSON struct {
	Status  string                  `json:"status"`
	Tickets []domain.TicketSnapshot `json:"tickets"`
}

type metricsJSON struct {
	Total           int `json:"total"`
	ResolvedPercent int `json:"resolvedPercent"`
	OpenCount       int `json:"openCount"`
	NewTodayCount   int `json:"newTodayCount"`
}

func (a *app) boardCommand() *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show tickets grouped by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := query.ParseCriteria("", filters.priority, filters.search)
			if err != nil {
				return err
			}

			columns := a.board.Board(cmd.Context(), criteria)

			if a.jsonOutput {
				out := make([]columnJSON, 0, len(columns))
				for _, col := range columns {
					out = append(out, columnJSON{
						Status:  string(col.Status),
						Tickets: domain.NewTicketSnapshots(col.Tickets),
					})
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			out := cmd.OutOrStdout()
			for i, col := range columns {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s (%d)\n", col.Status, len(col.Tickets))

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, t := range col.Tickets {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", shortID(t.ID), t.Priority, truncateStr(t.Title, 50))
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}

	filters.register(cmd.Flags(), false)
	return cmd
}

func (a *app) metricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.board.Metrics(cmd.Context())

			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), metricsJSON{
					Total:           m.Total,
					ResolvedPercent: m.ResolvedPercent,
					OpenCount:       m.OpenCount,
					NewTodayCount:   m.NewTodayCount,
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Total tickets:\t%d\n", m.Total)
			fmt.Fprintf(w, "Resolved:\t%d%%\n", m.ResolvedPercent)
			fmt.Fprintf(w, "Open:\t%d\n", m.OpenCount)
			fmt.Fprintf(w, "New today:\t%d\n", m.NewTodayCount)
			return w.Flush()
		},
	}
}
