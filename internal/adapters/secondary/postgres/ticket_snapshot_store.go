package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/ticket-board/internal/adapters/secondary/snapshot"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// TicketSnapshotStore is the secondary adapter that keeps the ticket list as
// one JSONB row keyed by the storage key.
type TicketSnapshotStore struct {
	pool   *pgxpool.Pool
	key    string
	logger *slog.Logger
}

// Ensure TicketSnapshotStore implements the ports.TicketSnapshotStore interface.
var _ ports.TicketSnapshotStore = (*TicketSnapshotStore)(nil)

// NewTicketSnapshotStore creates a new snapshot store.
func NewTicketSnapshotStore(pool *pgxpool.Pool, key string, logger *slog.Logger) *TicketSnapshotStore {
	return &TicketSnapshotStore{
		pool:   pool,
		key:    key,
		logger: logger.With("component", "postgres_store"),
	}
}

// Load reads the stored list.
func (s *TicketSnapshotStore) Load(ctx context.Context) ([]*domain.Ticket, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM ticket_snapshots WHERE key = $1`, s.key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return []*domain.Ticket{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket list: %w", err)
	}
	return snapshot.DecodeOrEmpty(payload, s.logger), nil
}

// Save replaces the stored list.
func (s *TicketSnapshotStore) Save(ctx context.Context, tickets []*domain.Ticket) error {
	payload, err := snapshot.Encode(tickets)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO ticket_snapshots (key, payload, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		s.key, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save ticket list: %w", err)
	}
	return nil
}
