package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

// Field length limits enforced by NewTicket and AddComment.
const (
	MinTitleLength       = 3
	MaxTitleLength       = 255
	MinDescriptionLength = 5
	MaxDescriptionLength = 10000
	MaxCommentBodyLength = 5000
)

// TicketStatus represents the board column a ticket sits in.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "Open"
	StatusInProgress TicketStatus = "In Progress"
	StatusResolved   TicketStatus = "Resolved"
)

// Statuses lists every status in board column order.
var Statuses = []TicketStatus{StatusOpen, StatusInProgress, StatusResolved}

// IsValid reports whether s is one of the known statuses.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

func (s TicketStatus) String() string {
	return string(s)
}

// ParseStatus resolves user input such as "in progress", "IN_PROGRESS" or
// "in-progress" to a status.
func ParseStatus(s string) (TicketStatus, error) {
	normalized := normalizeEnumInput(s)
	for _, status := range Statuses {
		if strings.EqualFold(normalized, string(status)) {
			return status, nil
		}
	}
	return "", apperrors.ErrInvalidStatus
}

// TicketPriority represents the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "Low"
	PriorityMedium TicketPriority = "Medium"
	PriorityHigh   TicketPriority = "High"
)

// DefaultPriority is used when the caller does not choose one.
const DefaultPriority = PriorityLow

// Priorities lists every priority from lowest to highest.
var Priorities = []TicketPriority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid reports whether p is one of the known priorities.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p TicketPriority) String() string {
	return string(p)
}

// ParsePriority resolves case-insensitive user input to a priority.
func ParsePriority(s string) (TicketPriority, error) {
	normalized := normalizeEnumInput(s)
	for _, priority := range Priorities {
		if strings.EqualFold(normalized, string(priority)) {
			return priority, nil
		}
	}
	return "", apperrors.ErrInvalidPriority
}

func normalizeEnumInput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ReplaceAll(s, "-", " ")
}

// Ticket is the core domain entity.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	Comments    []string
}

// TicketParams holds the user-supplied fields of a new ticket.
type TicketParams struct {
	Title       string
	Description string
	Priority    TicketPriority
}

// Validate checks the user-supplied fields and reports every problem at once.
func (p TicketParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	title := strings.TrimSpace(p.Title)
	switch {
	case title == "":
		errs.Add("title", apperrors.ErrTitleRequired.Error())
	case utf8.RuneCountInString(title) < MinTitleLength:
		errs.Add("title", apperrors.ErrTitleTooShort.Error())
	case utf8.RuneCountInString(title) > MaxTitleLength:
		errs.Add("title", apperrors.ErrTitleTooLong.Error())
	}

	description := strings.TrimSpace(p.Description)
	switch {
	case utf8.RuneCountInString(description) < MinDescriptionLength:
		errs.Add("description", apperrors.ErrDescriptionTooShort.Error())
	case utf8.RuneCountInString(description) > MaxDescriptionLength:
		errs.Add("description", apperrors.ErrDescriptionTooLong.Error())
	}

	if !p.Priority.IsValid() {
		errs.Add("priority", apperrors.ErrInvalidPriority.Error())
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewTicket is a factory function to create a valid new ticket. The id and
// creation time are assigned by the owner of the ticket list. Title and
// description are validated without surrounding whitespace but kept as typed.
func NewTicket(params TicketParams, id string, createdAt time.Time) (*Ticket, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Ticket{
		ID:          id,
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		Status:      StatusOpen,
		CreatedAt:   createdAt.UTC(),
		Comments:    []string{},
	}, nil
}

// SetStatus moves the ticket to another column. Every status is reachable
// from every other status.
func (t *Ticket) SetStatus(status TicketStatus) error {
	if !status.IsValid() {
		return apperrors.ErrInvalidStatus
	}
	t.Status = status
	return nil
}

// AddComment appends a comment. Blank comments are rejected.
func (t *Ticket) AddComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.ErrCommentBodyRequired
	}
	if utf8.RuneCountInString(text) > MaxCommentBodyLength {
		return apperrors.ErrCommentBodyTooLong
	}
	t.Comments = append(t.Comments, text)
	return nil
}

// DeleteComment removes the comment at index and reports whether anything
// was removed.
func (t *Ticket) DeleteComment(index int) bool {
	if index < 0 || index >= len(t.Comments) {
		return false
	}
	t.Comments = append(t.Comments[:index], t.Comments[index+1:]...)
	return true
}

// Clone returns a deep copy that shares no memory with t.
func (t *Ticket) Clone() *Ticket {
	clone := *t
	clone.Comments = make([]string, len(t.Comments))
	copy(clone.Comments, t.Comments)
	return &clone
}
