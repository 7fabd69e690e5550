// Package snapshottest provides a conformance check shared by the
// ports.TicketSnapshotStore implementations.
package snapshottest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// Lists returns ticket lists covering zero, one and many tickets with zero,
// one and many comments.
func Lists() map[string][]*domain.Ticket {
	created := time.Date(2024, time.March, 5, 9, 30, 15, 123456789, time.UTC)

	many := make([]*domain.Ticket, 0, 3)
	for i, status := range domain.Statuses {
		comments := make([]string, i)
		for j := range comments {
			comments[j] = fmt.Sprintf("comment %d on ticket %d", j, i)
		}
		many = append(many, &domain.Ticket{
			ID:          fmt.Sprintf("ticket-%d", i),
			Title:       fmt.Sprintf("Ticket number %d", i),
			Description: "Something is broken again",
			Priority:    domain.Priorities[i],
			Status:      status,
			CreatedAt:   created.Add(time.Duration(i) * time.Hour),
			Comments:    comments,
		})
	}

	return map[string][]*domain.Ticket{
		"empty": {},
		"single without comments": {{
			ID:          "only",
			Title:       "Printer jam",
			Description: "Tray 2 stuck",
			Priority:    domain.PriorityHigh,
			Status:      domain.StatusOpen,
			CreatedAt:   created,
			Comments:    []string{},
		}},
		"single with one comment": {{
			ID:          "commented",
			Title:       "VPN drops",
			Description: "Disconnects every hour",
			Priority:    domain.PriorityMedium,
			Status:      domain.StatusInProgress,
			CreatedAt:   created,
			Comments:    []string{"  keeps surrounding spaces  "},
		}},
		"many": many,
	}
}

// RoundTrip saves every list from Lists and checks that loading it back
// yields an equal list, field for field.
func RoundTrip(t *testing.T, store ports.TicketSnapshotStore) {
	t.Helper()
	ctx := context.Background()

	for name, tickets := range Lists() {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, tickets))

			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tickets, loaded)
		})
	}
}

// SaveDoesNotRetain checks that mutating a list after Save leaves the stored
// copy untouched.
func SaveDoesNotRetain(t *testing.T, store ports.TicketSnapshotStore) {
	t.Helper()
	ctx := context.Background()

	tickets := Lists()["single with one comment"]
	require.NoError(t, store.Save(ctx, tickets))

	tickets[0].Status = domain.StatusResolved
	tickets[0].Comments[0] = "changed"

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, domain.StatusInProgress, loaded[0].Status)
	assert.Equal(t, "  keeps surrounding spaces  ", loaded[0].Comments[0])
}
