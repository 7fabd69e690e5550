// Package query derives views and dashboard metrics from a ticket list.
// Every function is pure: inputs are never modified and results depend only
// on the arguments.
package query

import (
	"strings"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// All is the filter value some clients send to mean "no restriction".
const All = "All"

// Criteria selects tickets. A zero field places no restriction.
type Criteria struct {
	Status     domain.TicketStatus
	Priority   domain.TicketPriority
	SearchText string
}

// ParseCriteria builds Criteria from raw user input. Empty values and "All"
// mean no restriction.
func ParseCriteria(status, priority, searchText string) (Criteria, error) {
	var criteria Criteria
	errs := apperrors.NewValidationErrors()

	if !isAll(status) {
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			errs.Add("status", "Must be one of: All, Open, In Progress, Resolved")
		}
		criteria.Status = parsed
	}

	if !isAll(priority) {
		parsed, err := domain.ParsePriority(priority)
		if err != nil {
			errs.Add("priority", "Must be one of: All, Low, Medium, High")
		}
		criteria.Priority = parsed
	}

	criteria.SearchText = searchText

	if errs.HasErrors() {
		return Criteria{}, errs
	}
	return criteria, nil
}

func isAll(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, All)
}

// Matches reports whether the ticket satisfies every restriction.
func (c Criteria) Matches(ticket *domain.Ticket) bool {
	if c.Status != "" && ticket.Status != c.Status {
		return false
	}
	if c.Priority != "" && ticket.Priority != c.Priority {
		return false
	}
	if c.SearchText != "" &&
		!strings.Contains(strings.ToLower(ticket.Title), strings.ToLower(c.SearchText)) {
		return false
	}
	return true
}

// Filter returns the tickets matching criteria in their original order.
func Filter(tickets []*domain.Ticket, criteria Criteria) []*domain.Ticket {
	filtered := make([]*domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if criteria.Matches(ticket) {
			filtered = append(filtered, ticket)
		}
	}
	return filtered
}
