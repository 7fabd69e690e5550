package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
)

const shortIDLength = 8

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func truncateStr(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// resolveTicketID accepts a full id or a unique prefix of at least four
// characters.
func resolveTicketID(tickets []*domain.Ticket, prefix string) (string, error) {
	var matches []string
	for _, t := range tickets {
		if t.ID == prefix {
			return t.ID, nil
		}
		if len(prefix) >= 4 && strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", apperrors.ErrTicketNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous ticket id %q matches %d tickets; use more characters", prefix, len(matches))
	}
}

// FormatError renders an error for the terminal, listing every field of a
// validation failure.
func FormatError(err error) string {
	var validationErrs *apperrors.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	fields := make([]string, 0, len(validationErrs.Errors))
	for field := range validationErrs.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("invalid input:")
	for _, field := range fields {
		for _, msg := range validationErrs.Errors[field] {
			fmt.Fprintf(&b, "\n  %s: %s", field, msg)
		}
	}
	return b.String()
}
