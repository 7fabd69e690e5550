// Package sqlite stores the serialized ticket list in a key/value table of
// a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/lorrc/ticket-board/internal/adapters/secondary/snapshot"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// TicketSnapshotStore implements ports.TicketSnapshotStore.
type TicketSnapshotStore struct {
	conn   *sql.DB
	key    string
	logger *slog.Logger
}

var _ ports.TicketSnapshotStore = (*TicketSnapshotStore)(nil)

// Open opens (creating if needed) the database at path and prepares the
// snapshot table.
func Open(path, key string, logger *slog.Logger) (*TicketSnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &TicketSnapshotStore{
		conn:   conn,
		key:    key,
		logger: logger.With("component", "sqlite_store"),
	}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *TicketSnapshotStore) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS ticket_snapshots (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating ticket_snapshots table: %w", err)
	}
	return nil
}

func (s *TicketSnapshotStore) Close() error {
	return s.conn.Close()
}

// Ping reports whether the database is reachable.
func (s *TicketSnapshotStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *TicketSnapshotStore) Load(ctx context.Context) ([]*domain.Ticket, error) {
	var payload string
	err := s.conn.QueryRowContext(ctx,
		"SELECT payload FROM ticket_snapshots WHERE key = ?", s.key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []*domain.Ticket{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading ticket list: %w", err)
	}
	return snapshot.DecodeOrEmpty([]byte(payload), s.logger), nil
}

func (s *TicketSnapshotStore) Save(ctx context.Context, tickets []*domain.Ticket) error {
	data, err := snapshot.Encode(tickets)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO ticket_snapshots (key, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, s.key, string(data))
	if err != nil {
		return fmt.Errorf("saving ticket list: %w", err)
	}
	return nil
}

// SaveRaw stores payload verbatim. Used to seed data written by other tools.
func (s *TicketSnapshotStore) SaveRaw(ctx context.Context, payload string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO ticket_snapshots (key, payload) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload
	`, s.key, payload)
	if err != nil {
		return fmt.Errorf("saving raw ticket list: %w", err)
	}
	return nil
}
