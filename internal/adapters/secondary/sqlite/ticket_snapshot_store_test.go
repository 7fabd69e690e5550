package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/ticket-board/internal/adapters/secondary/snapshot/snapshottest"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/sqlite"
)

func openTestStore(t *testing.T, path, key string) *sqlite.TicketSnapshotStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := sqlite.Open(path, key, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTicketSnapshotStore_RoundTrip(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tickets.db"), "tickets")
	snapshottest.RoundTrip(t, store)
}

func TestTicketSnapshotStore_SaveDoesNotRetain(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tickets.db"), "tickets")
	snapshottest.SaveDoesNotRetain(t, store)
}

func TestTicketSnapshotStore_LoadNothingStored(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "tickets.db"), "tickets")

	tickets, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, tickets)
	assert.Empty(t, tickets)
}

func TestTicketSnapshotStore_LoadUnparsable(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "tickets.db"), "tickets")
	require.NoError(t, store.SaveRaw(ctx, "not json"))

	tickets, err := store.Load(ctx)

	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestTicketSnapshotStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tickets.db")
	first := openTestStore(t, path, "first")
	second := openTestStore(t, path, "second")

	require.NoError(t, first.Save(ctx, snapshottest.Lists()["many"]))

	tickets, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tickets)

	tickets, err = first.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 3)
}

func TestTicketSnapshotStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tickets.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.Open(path, "tickets", logger)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, snapshottest.Lists()["many"]))
	require.NoError(t, store.Close())

	reopened := openTestStore(t, path, "tickets")
	tickets, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshottest.Lists()["many"], tickets)
}
