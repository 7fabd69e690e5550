package services

import (
	"context"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/query"
	"github.com/lorrc/ticket-board/internal/infrastructure/clock"
)

// BoardService derives read-only views from the current ticket list.
type BoardService struct {
	ticketSvc ports.TicketService
	clock     clock.Clock
}

var _ ports.BoardService = (*BoardService)(nil)

// NewBoardService creates a new view service.
func NewBoardService(ticketSvc ports.TicketService, clk clock.Clock) ports.BoardService {
	if clk == nil {
		clk = clock.Real()
	}
	return &BoardService{
		ticketSvc: ticketSvc,
		clock:     clk,
	}
}

// FilterTickets returns the tickets matching criteria in list order.
func (s *BoardService) FilterTickets(ctx context.Context, criteria query.Criteria) []*domain.Ticket {
	return query.Filter(s.ticketSvc.ListTickets(ctx), criteria)
}

// Board groups the matching tickets into status columns.
func (s *BoardService) Board(ctx context.Context, criteria query.Criteria) []domain.BoardColumn {
	// Columns are the grouping; a status restriction would only empty two of them.
	criteria.Status = ""
	return query.Board(s.FilterTickets(ctx, criteria))
}

// Metrics computes the dashboard counters at the current instant.
func (s *BoardService) Metrics(ctx context.Context) domain.Metrics {
	return query.Compute(s.ticketSvc.ListTickets(ctx), s.clock.Now())
}
