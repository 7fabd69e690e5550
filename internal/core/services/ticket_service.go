package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/infrastructure/clock"
)

// PersistenceWarningMessage is shown to the user when storage first fails.
const PersistenceWarningMessage = "Ticket storage is unavailable. Changes are kept in memory only and will be lost on restart."

// TicketStore owns the canonical ticket list and mirrors it to a snapshot
// store after every mutation. All operations are serialized.
type TicketStore struct {
	mu        sync.Mutex
	tickets   []*domain.Ticket
	snapshots ports.TicketSnapshotStore
	clock     clock.Clock
	logger    *slog.Logger

	// loaded is false until the stored list has been read once. Saving
	// before that would replace tickets this process has never seen.
	loaded         bool
	degraded       bool
	warningPending bool
	lastErr        error
	lastSavedAt    *time.Time
}

var _ ports.TicketService = (*TicketStore)(nil)

// NewTicketStore creates an empty store. Call Load to read the persisted list.
func NewTicketStore(snapshots ports.TicketSnapshotStore, clk clock.Clock, logger *slog.Logger) *TicketStore {
	if clk == nil {
		clk = clock.Real()
	}
	return &TicketStore{
		tickets:   []*domain.Ticket{},
		snapshots: snapshots,
		clock:     clk,
		logger:    logger.With("component", "ticket_store"),
	}
}

// Load replaces the in-memory list with the persisted one. When storage is
// unreachable the store starts empty, stays usable, and the error wraps
// ErrPersistenceUnavailable. Until a later read succeeds nothing is saved.
func (s *TicketStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.snapshots.Load(ctx)
	if err != nil {
		s.tickets = []*domain.Ticket{}
		s.markDegraded(err)
		return fmt.Errorf("%w: %v", apperrors.ErrPersistenceUnavailable, err)
	}

	s.tickets = s.sanitize(tickets)
	s.loaded = true
	s.logger.Info("ticket list loaded", "count", len(s.tickets))
	return nil
}

// recoverStored reads the stored list after a failed Load and puts the tickets
// created since then after the stored ones.
func (s *TicketStore) recoverStored(ctx context.Context) error {
	stored, err := s.snapshots.Load(ctx)
	if err != nil {
		return err
	}

	merged := s.sanitize(stored)
	seen := make(map[string]bool, len(merged))
	for _, ticket := range merged {
		seen[ticket.ID] = true
	}
	added := 0
	for _, ticket := range s.tickets {
		if !seen[ticket.ID] {
			merged = append(merged, ticket)
			added++
		}
	}

	s.tickets = merged
	s.loaded = true
	s.logger.Info("stored ticket list recovered",
		"stored", len(merged)-added,
		"unsaved", added,
	)
	return nil
}

// sanitize enforces the list invariants on data read from storage: unique
// non-empty ids, known status and priority, non-nil comments.
func (s *TicketStore) sanitize(tickets []*domain.Ticket) []*domain.Ticket {
	seen := make(map[string]bool, len(tickets))
	clean := make([]*domain.Ticket, 0, len(tickets))
	dropped, repaired := 0, 0

	for _, ticket := range tickets {
		if ticket == nil || ticket.ID == "" || seen[ticket.ID] {
			dropped++
			continue
		}
		seen[ticket.ID] = true

		if !ticket.Status.IsValid() {
			ticket.Status = domain.StatusOpen
			repaired++
		}
		if !ticket.Priority.IsValid() {
			ticket.Priority = domain.DefaultPriority
			repaired++
		}
		if ticket.Comments == nil {
			ticket.Comments = []string{}
		}
		clean = append(clean, ticket)
	}

	if dropped > 0 || repaired > 0 {
		s.logger.Warn("stored ticket list contained invalid records",
			"dropped", dropped,
			"repaired_fields", repaired,
		)
	}
	return clean
}

// CreateTicket handles the use case for submitting a new ticket
func (s *TicketStore) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticketParams := domain.TicketParams{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
	}

	ticket, err := domain.NewTicket(ticketParams, s.newTicketID(), s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.tickets = append(s.tickets, ticket)
	s.persist(ctx)

	s.logger.Debug("ticket created", "ticket_id", ticket.ID, "priority", ticket.Priority)
	return ticket.Clone(), nil
}

// newTicketID returns a random id not used by any ticket in the list.
func (s *TicketStore) newTicketID() string {
	for {
		id := uuid.NewString()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

// GetTicket resolves a ticket id against the current list.
func (s *TicketStore) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ticketID)
	if i < 0 {
		return nil, apperrors.ErrTicketNotFound
	}
	return s.tickets[i].Clone(), nil
}

// ListTickets returns copies of every ticket in list order.
func (s *TicketStore) ListTickets(ctx context.Context) []*domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets := make([]*domain.Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		tickets = append(tickets, ticket.Clone())
	}
	return tickets
}

// UpdateStatus moves a ticket to another column. The selector in the detail
// view and a board drop both end here with identical semantics.
func (s *TicketStore) UpdateStatus(ctx context.Context, params ports.UpdateStatusParams) error {
	if !params.Status.IsValid() {
		return apperrors.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(params.TicketID)
	if i < 0 {
		s.logger.Debug("status update for unknown ticket ignored", "ticket_id", params.TicketID)
		return nil
	}

	if err := s.tickets[i].SetStatus(params.Status); err != nil {
		return err
	}
	s.persist(ctx)

	s.logger.Debug("ticket status updated",
		"ticket_id", params.TicketID,
		"status", params.Status,
		"source", params.Source,
	)
	return nil
}

// DeleteTicket removes a ticket permanently.
func (s *TicketStore) DeleteTicket(ctx context.Context, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(ticketID)
	if i < 0 {
		s.logger.Debug("delete for unknown ticket ignored", "ticket_id", ticketID)
		return nil
	}

	s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
	s.persist(ctx)

	s.logger.Debug("ticket deleted", "ticket_id", ticketID)
	return nil
}

// AddComment appends a comment to a ticket.
func (s *TicketStore) AddComment(ctx context.Context, params ports.AddCommentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(params.TicketID)
	if i < 0 {
		// Blank input is still reported so the caller can show the message.
		if err := (&domain.Ticket{}).AddComment(params.Body); err != nil {
			return err
		}
		s.logger.Debug("comment for unknown ticket ignored", "ticket_id", params.TicketID)
		return nil
	}

	ticket := s.tickets[i]
	if err := ticket.AddComment(params.Body); err != nil {
		return err
	}
	s.persist(ctx)

	s.logger.Debug("comment added",
		"ticket_id", params.TicketID,
		"comment_count", len(ticket.Comments),
	)
	return nil
}

// DeleteComment removes the comment at the given position.
func (s *TicketStore) DeleteComment(ctx context.Context, params ports.DeleteCommentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(params.TicketID)
	if i < 0 {
		return nil
	}

	if !s.tickets[i].DeleteComment(params.Index) {
		s.logger.Debug("comment delete out of range ignored",
			"ticket_id", params.TicketID,
			"index", params.Index,
		)
		return nil
	}
	s.persist(ctx)
	return nil
}

// PersistenceWarning hands out the storage warning once per degraded episode.
func (s *TicketStore) PersistenceWarning() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.warningPending {
		return "", false
	}
	s.warningPending = false
	return PersistenceWarningMessage, true
}

// PersistenceStatus reports whether the last storage operation succeeded.
func (s *TicketStore) PersistenceStatus() ports.PersistenceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := ports.PersistenceStatus{Available: !s.degraded}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	if s.lastSavedAt != nil {
		savedAt := *s.lastSavedAt
		status.LastSavedAt = &savedAt
	}
	return status
}

func (s *TicketStore) indexOf(ticketID string) int {
	for i, ticket := range s.tickets {
		if ticket.ID == ticketID {
			return i
		}
	}
	return -1
}

// persist writes the whole list. Failures never abort the mutation: the
// store keeps serving from memory and reports the problem once.
func (s *TicketStore) persist(ctx context.Context) {
	// A caller that goes away mid-request must not leave storage behind.
	ctx = context.WithoutCancel(ctx)

	if !s.loaded {
		if err := s.recoverStored(ctx); err != nil {
			s.markDegraded(err)
			return
		}
	}

	if err := s.snapshots.Save(ctx, s.tickets); err != nil {
		s.markDegraded(err)
		return
	}

	if s.degraded {
		s.logger.Info("ticket storage recovered")
	}
	s.degraded = false
	s.warningPending = false
	s.lastErr = nil
	now := s.clock.Now()
	s.lastSavedAt = &now
}

func (s *TicketStore) markDegraded(err error) {
	s.lastErr = err
	if s.degraded {
		return
	}
	s.degraded = true
	s.warningPending = true
	s.logger.Warn("ticket storage unavailable, continuing in memory", "error", err)
}
