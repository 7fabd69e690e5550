package ports

import (
	"context"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/query"
)

// UpdateSource identifies which gesture produced a status change.
type UpdateSource string

const (
	UpdateSourceExplicit UpdateSource = "explicit"
	UpdateSourceDrag     UpdateSource = "drag"
)

// CreateTicketParams defines the required input for creating a new ticket.
type CreateTicketParams struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// UpdateStatusParams defines the input for changing a ticket's status.
type UpdateStatusParams struct {
	TicketID string
	Status   domain.TicketStatus
	Source   UpdateSource
}

// AddCommentParams defines the input for appending a comment.
type AddCommentParams struct {
	TicketID string
	Body     string
}

// DeleteCommentParams defines the input for removing a comment by position.
type DeleteCommentParams struct {
	TicketID string
	Index    int
}

// PersistenceStatus describes the health of the ticket storage.
type PersistenceStatus struct {
	Available   bool
	LastError   string
	LastSavedAt *time.Time
}

// TicketService defines the operations on the canonical ticket list.
// Mutations that reference a missing ticket or comment are no-ops.
type TicketService interface {
	CreateTicket(ctx context.Context, params CreateTicketParams) (*domain.Ticket, error)
	GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListTickets(ctx context.Context) []*domain.Ticket
	UpdateStatus(ctx context.Context, params UpdateStatusParams) error
	DeleteTicket(ctx context.Context, ticketID string) error
	AddComment(ctx context.Context, params AddCommentParams) error
	DeleteComment(ctx context.Context, params DeleteCommentParams) error

	// PersistenceWarning returns a user-facing warning the first time storage
	// fails during a degraded episode, and false on every later call.
	PersistenceWarning() (string, bool)
	PersistenceStatus() PersistenceStatus
}

// BoardService defines the read-only views over the ticket list.
type BoardService interface {
	FilterTickets(ctx context.Context, criteria query.Criteria) []*domain.Ticket
	Board(ctx context.Context, criteria query.Criteria) []domain.BoardColumn
	Metrics(ctx context.Context) domain.Metrics
}
