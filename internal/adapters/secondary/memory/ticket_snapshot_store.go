// Package memory keeps the serialized ticket list in process memory. It
// backs STORAGE_DRIVER=memory and the tests.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/ticket-board/internal/adapters/secondary/snapshot"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// TicketSnapshotStore implements ports.TicketSnapshotStore.
type TicketSnapshotStore struct {
	mu     sync.Mutex
	data   []byte
	logger *slog.Logger
}

var _ ports.TicketSnapshotStore = (*TicketSnapshotStore)(nil)

// NewTicketSnapshotStore creates an empty store.
func NewTicketSnapshotStore(logger *slog.Logger) *TicketSnapshotStore {
	return NewTicketSnapshotStoreWithData(nil, logger)
}

// NewTicketSnapshotStoreWithData creates a store whose stored value is data,
// as if a previous session had written it.
func NewTicketSnapshotStoreWithData(data []byte, logger *slog.Logger) *TicketSnapshotStore {
	return &TicketSnapshotStore{
		data:   data,
		logger: logger.With("component", "memory_store"),
	}
}

func (s *TicketSnapshotStore) Load(ctx context.Context) ([]*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.DecodeOrEmpty(s.data, s.logger), nil
}

func (s *TicketSnapshotStore) Save(ctx context.Context, tickets []*domain.Ticket) error {
	data, err := snapshot.Encode(tickets)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

// Data returns a copy of the stored value.
func (s *TicketSnapshotStore) Data() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}
