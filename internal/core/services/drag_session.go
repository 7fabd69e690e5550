package services

import (
	"context"
	"errors"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// Reasons reported when a drop does not change anything.
const (
	DropReasonNoDrag        = "no drag in progress"
	DropReasonInvalidTarget = "drop target is not a status column"
	DropReasonCancelled     = "drag cancelled"
	DropReasonTicketGone    = "ticket no longer exists"
)

// DropResult is the outcome of a finished gesture.
type DropResult struct {
	Applied  bool
	TicketID string
	Ticket   *domain.Ticket
	Reason   string
}

// DragSession collapses one connection's start/move/drop gestures into a
// single status update at drop time. Moves have no effect on the ticket
// list. It is not safe for concurrent use.
type DragSession struct {
	tickets  ports.TicketService
	ticketID string
	over     string
}

// NewDragSession creates an idle session.
func NewDragSession(tickets ports.TicketService) *DragSession {
	return &DragSession{tickets: tickets}
}

// Active returns the id of the ticket being dragged, or "".
func (d *DragSession) Active() string {
	return d.ticketID
}

// Start begins dragging a ticket, replacing any unfinished drag.
func (d *DragSession) Start(ctx context.Context, ticketID string) error {
	if _, err := d.tickets.GetTicket(ctx, ticketID); err != nil {
		return err
	}
	d.ticketID = ticketID
	d.over = ""
	return nil
}

// Move records the column currently under the pointer.
func (d *DragSession) Move(over string) {
	if d.ticketID == "" {
		return
	}
	d.over = over
}

// Drop ends the gesture over the given column. An empty over falls back to
// the last Move target. Dropping anywhere other than a status column
// performs no mutation.
func (d *DragSession) Drop(ctx context.Context, over string) (DropResult, error) {
	ticketID := d.ticketID
	if over == "" {
		over = d.over
	}
	d.reset()

	if ticketID == "" {
		return DropResult{Reason: DropReasonNoDrag}, nil
	}

	status, err := domain.ParseStatus(over)
	if err != nil {
		return DropResult{TicketID: ticketID, Reason: DropReasonInvalidTarget}, nil
	}

	err = d.tickets.UpdateStatus(ctx, ports.UpdateStatusParams{
		TicketID: ticketID,
		Status:   status,
		Source:   ports.UpdateSourceDrag,
	})
	if err != nil {
		return DropResult{}, err
	}

	ticket, err := d.tickets.GetTicket(ctx, ticketID)
	if errors.Is(err, apperrors.ErrTicketNotFound) {
		return DropResult{TicketID: ticketID, Reason: DropReasonTicketGone}, nil
	}
	if err != nil {
		return DropResult{}, err
	}

	return DropResult{Applied: true, TicketID: ticketID, Ticket: ticket}, nil
}

// Cancel abandons the gesture. It returns the ticket that was being dragged.
func (d *DragSession) Cancel() (string, bool) {
	ticketID := d.ticketID
	d.reset()
	return ticketID, ticketID != ""
}

func (d *DragSession) reset() {
	d.ticketID = ""
	d.over = ""
}
