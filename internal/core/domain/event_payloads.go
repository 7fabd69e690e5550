package domain

import (
	"time"
)

// TicketSnapshot is the serialized shape of a ticket. It is shared by the
// persisted ticket list, the WebSocket replies and the HTTP responses.
type TicketSnapshot struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	Comments    []string  `json:"comments"`
}

// NewTicketSnapshot builds a snapshot from a domain ticket.
func NewTicketSnapshot(ticket *Ticket) TicketSnapshot {
	comments := make([]string, len(ticket.Comments))
	copy(comments, ticket.Comments)

	return TicketSnapshot{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Priority:    string(ticket.Priority),
		Status:      string(ticket.Status),
		CreatedAt:   ticket.CreatedAt.UTC(),
		Comments:    comments,
	}
}

// NewTicketSnapshots maps a list of tickets, preserving order.
func NewTicketSnapshots(tickets []*Ticket) []TicketSnapshot {
	snapshots := make([]TicketSnapshot, 0, len(tickets))
	for _, ticket := range tickets {
		snapshots = append(snapshots, NewTicketSnapshot(ticket))
	}
	return snapshots
}

// ToTicket converts the snapshot back into a domain ticket.
func (s TicketSnapshot) ToTicket() *Ticket {
	comments := make([]string, len(s.Comments))
	copy(comments, s.Comments)

	return &Ticket{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Priority:    TicketPriority(s.Priority),
		Status:      TicketStatus(s.Status),
		CreatedAt:   s.CreatedAt.UTC(),
		Comments:    comments,
	}
}
