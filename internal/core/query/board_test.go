package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/query"
)

func TestGroupByStatus(t *testing.T) {
	tickets := []*domain.Ticket{
		newTicket("1", "a", domain.StatusResolved, domain.PriorityLow),
		newTicket("2", "b", domain.StatusOpen, domain.PriorityLow),
		newTicket("3", "c", domain.StatusOpen, domain.PriorityHigh),
	}

	groups := query.GroupByStatus(tickets)

	assert.Len(t, groups, 3)
	assert.Equal(t, []string{"2", "3"}, ids(groups[domain.StatusOpen]))
	assert.Empty(t, groups[domain.StatusInProgress])
	assert.NotNil(t, groups[domain.StatusInProgress])
	assert.Equal(t, []string{"1"}, ids(groups[domain.StatusResolved]))
}

func TestGroupByStatus_EveryTicketInExactlyOneBucket(t *testing.T) {
	tickets := sampleTickets()

	groups := query.GroupByStatus(tickets)

	seen := map[string]int{}
	for status, bucket := range groups {
		for _, ticket := range bucket {
			assert.Equal(t, status, ticket.Status)
			seen[ticket.ID]++
		}
	}
	assert.Len(t, seen, len(tickets))
	for id, count := range seen {
		assert.Equal(t, 1, count, "ticket %s", id)
	}
}

func TestGroupByStatus_Empty(t *testing.T) {
	groups := query.GroupByStatus(nil)

	for _, status := range domain.Statuses {
		bucket, ok := groups[status]
		assert.True(t, ok)
		assert.Empty(t, bucket)
	}
}

func TestBoard_ColumnOrder(t *testing.T) {
	columns := query.Board(sampleTickets())

	var statuses []domain.TicketStatus
	for _, column := range columns {
		statuses = append(statuses, column.Status)
		assert.Len(t, column.Tickets, 3)
	}
	assert.Equal(t, domain.Statuses, statuses)
}
