// Package snapshot holds the serialized form of the ticket list shared by
// every storage adapter: a JSON array of ticket records with no version
// field.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lorrc/ticket-board/internal/core/domain"
)

// Encode serializes the whole ticket list.
func Encode(tickets []*domain.Ticket) ([]byte, error) {
	data, err := json.Marshal(domain.NewTicketSnapshots(tickets))
	if err != nil {
		return nil, fmt.Errorf("encode ticket list: %w", err)
	}
	return data, nil
}

// Decode parses a stored ticket list. Empty input and a JSON null both
// decode to an empty list.
func Decode(data []byte) ([]*domain.Ticket, error) {
	tickets := []*domain.Ticket{}
	if len(bytes.TrimSpace(data)) == 0 {
		return tickets, nil
	}

	var snapshots []domain.TicketSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("decode ticket list: %w", err)
	}

	for _, s := range snapshots {
		tickets = append(tickets, s.ToTicket())
	}
	return tickets, nil
}

// DecodeOrEmpty is Decode for the load path: an unparsable value is logged
// and treated as an empty list.
func DecodeOrEmpty(data []byte, logger *slog.Logger) []*domain.Ticket {
	tickets, err := Decode(data)
	if err != nil {
		logger.Warn("stored ticket list is unreadable, starting empty",
			"error", err,
			"bytes", len(data),
		)
		return []*domain.Ticket{}
	}
	return tickets
}
