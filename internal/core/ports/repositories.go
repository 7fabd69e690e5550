package ports

import (
	"context"

	"github.com/lorrc/ticket-board/internal/core/domain"
)

// TicketSnapshotStore persists the complete ticket list as one value under a
// single storage key. Save always writes the whole list. Load returns an
// empty list when nothing has been stored yet or the stored value cannot be
// decoded; it returns an error only when the storage itself is unreachable.
type TicketSnapshotStore interface {
	Load(ctx context.Context) ([]*domain.Ticket, error)
	Save(ctx context.Context, tickets []*domain.Ticket) error
}
