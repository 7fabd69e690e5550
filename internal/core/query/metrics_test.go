package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/query"
)

func withStatuses(statuses ...domain.TicketStatus) []*domain.Ticket {
	tickets := make([]*domain.Ticket, 0, len(statuses))
	for i, status := range statuses {
		tickets = append(tickets, newTicket(string(rune('a'+i)), "title", status, domain.PriorityLow))
	}
	return tickets
}

func TestCompute(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		tickets []*domain.Ticket
		want    domain.Metrics
	}{
		{
			name:    "empty list",
			tickets: nil,
			want:    domain.Metrics{},
		},
		{
			name:    "two open one resolved",
			tickets: withStatuses(domain.StatusOpen, domain.StatusOpen, domain.StatusResolved),
			want:    domain.Metrics{Total: 3, ResolvedPercent: 33, OpenCount: 2},
		},
		{
			name:    "rounds half up",
			tickets: withStatuses(domain.StatusResolved, domain.StatusOpen, domain.StatusInProgress, domain.StatusInProgress, domain.StatusInProgress, domain.StatusInProgress, domain.StatusInProgress, domain.StatusInProgress),
			want:    domain.Metrics{Total: 8, ResolvedPercent: 13, OpenCount: 1},
		},
		{
			name:    "two of three resolved",
			tickets: withStatuses(domain.StatusResolved, domain.StatusResolved, domain.StatusInProgress),
			want:    domain.Metrics{Total: 3, ResolvedPercent: 67},
		},
		{
			name:    "all resolved",
			tickets: withStatuses(domain.StatusResolved, domain.StatusResolved),
			want:    domain.Metrics{Total: 2, ResolvedPercent: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, query.Compute(tt.tickets, now))
		})
	}
}

func TestCompute_ResolvedPercentInRange(t *testing.T) {
	now := time.Now()
	statuses := []domain.TicketStatus{domain.StatusOpen, domain.StatusInProgress, domain.StatusResolved}

	var tickets []*domain.Ticket
	for i := 0; i < 50; i++ {
		tickets = append(tickets, newTicket(string(rune('A'+i)), "t", statuses[(i*7)%3], domain.PriorityLow))
		percent := query.Compute(tickets, now).ResolvedPercent
		assert.GreaterOrEqual(t, percent, 0)
		assert.LessOrEqual(t, percent, 100)
	}
}

func TestCompute_NewToday(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, time.June, 10, 0, 30, 0, 0, loc)

	created := []time.Time{
		time.Date(2024, time.June, 10, 0, 0, 0, 0, loc),      // start of today
		time.Date(2024, time.June, 10, 23, 59, 59, 0, loc),   // end of today
		time.Date(2024, time.June, 9, 23, 59, 59, 0, loc),    // yesterday
		time.Date(2024, time.June, 10, 4, 0, 0, 0, time.UTC), // 23:00 yesterday in loc
		time.Date(2024, time.June, 10, 5, 0, 0, 0, time.UTC), // 00:00 today in loc
		time.Date(2023, time.June, 10, 12, 0, 0, 0, loc),     // same day, other year
		time.Date(2024, time.July, 10, 12, 0, 0, 0, loc),     // same day, other month
	}

	var tickets []*domain.Ticket
	for i, c := range created {
		ticket := newTicket(string(rune('a'+i)), "t", domain.StatusOpen, domain.PriorityLow)
		ticket.CreatedAt = c
		tickets = append(tickets, ticket)
	}

	assert.Equal(t, 3, query.Compute(tickets, now).NewTodayCount)

	// One day later nothing counts as new.
	assert.Equal(t, 0, query.Compute(tickets, now.Add(24*time.Hour)).NewTodayCount)
}

func TestSameDay(t *testing.T) {
	now := time.Date(2024, time.March, 31, 23, 59, 59, 999999999, time.UTC)

	assert.True(t, query.SameDay(time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), now))
	assert.False(t, query.SameDay(now.Add(time.Nanosecond), now))
	assert.False(t, query.SameDay(time.Date(2024, time.March, 30, 23, 59, 59, 0, time.UTC), now))
}
