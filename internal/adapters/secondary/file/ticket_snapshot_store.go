// Package file stores the ticket list as one JSON document on disk,
// replaced atomically on every save.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/lorrc/ticket-board/internal/adapters/secondary/snapshot"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// TicketSnapshotStore implements ports.TicketSnapshotStore.
type TicketSnapshotStore struct {
	path   string
	logger *slog.Logger
}

var _ ports.TicketSnapshotStore = (*TicketSnapshotStore)(nil)

// NewTicketSnapshotStore stores the list under dir, in a file named after
// the storage key.
func NewTicketSnapshotStore(dir, key string, logger *slog.Logger) *TicketSnapshotStore {
	return &TicketSnapshotStore{
		path:   filepath.Join(dir, key+".json"),
		logger: logger.With("component", "file_store"),
	}
}

// Path returns the location of the stored document.
func (s *TicketSnapshotStore) Path() string {
	return s.path
}

func (s *TicketSnapshotStore) Load(ctx context.Context) ([]*domain.Ticket, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*domain.Ticket{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket file: %w", err)
	}
	return snapshot.DecodeOrEmpty(data, s.logger), nil
}

func (s *TicketSnapshotStore) Save(ctx context.Context, tickets []*domain.Ticket) error {
	data, err := snapshot.Encode(tickets)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerms); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write ticket file: %w", err)
	}

	// atomic.WriteFile doesn't set permissions for new files
	if err := os.Chmod(s.path, filePerms); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	return nil
}
