package query

import (
	"math"
	"time"

	"github.com/lorrc/ticket-board/internal/core/domain"
)

// Compute derives the dashboard counters. NewTodayCount depends on now, so
// the same list yields different results on different days.
func Compute(tickets []*domain.Ticket, now time.Time) domain.Metrics {
	metrics := domain.Metrics{Total: len(tickets)}

	resolved := 0
	for _, ticket := range tickets {
		switch ticket.Status {
		case domain.StatusResolved:
			resolved++
		case domain.StatusOpen:
			metrics.OpenCount++
		}
		if SameDay(ticket.CreatedAt, now) {
			metrics.NewTodayCount++
		}
	}

	if metrics.Total > 0 {
		metrics.ResolvedPercent = int(math.Round(100 * float64(resolved) / float64(metrics.Total)))
	}

	return metrics
}

// SameDay reports whether t falls on the same calendar day as now, judged in
// now's location.
func SameDay(t, now time.Time) bool {
	ty, tm, td := t.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}
