package query

import (
	"github.com/lorrc/ticket-board/internal/core/domain"
)

// GroupByStatus partitions tickets into the three status buckets. Every
// bucket is present, possibly empty, and keeps the input order.
func GroupByStatus(tickets []*domain.Ticket) map[domain.TicketStatus][]*domain.Ticket {
	groups := make(map[domain.TicketStatus][]*domain.Ticket, len(domain.Statuses))
	for _, status := range domain.Statuses {
		groups[status] = []*domain.Ticket{}
	}
	for _, ticket := range tickets {
		if _, ok := groups[ticket.Status]; ok {
			groups[ticket.Status] = append(groups[ticket.Status], ticket)
		}
	}
	return groups
}

// Board returns the status buckets as columns in board order.
func Board(tickets []*domain.Ticket) []domain.BoardColumn {
	groups := GroupByStatus(tickets)
	columns := make([]domain.BoardColumn, 0, len(domain.Statuses))
	for _, status := range domain.Statuses {
		columns = append(columns, domain.BoardColumn{
			Status:  status,
			Tickets: groups[status],
		})
	}
	return columns
}
