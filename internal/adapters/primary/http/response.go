package http

import (
	"encoding/json"
	"net/http"

	mw "github.com/lorrc/ticket-board/internal/adapters/primary/http/middleware"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// StorageWarningHeader carries the one-shot persistence warning.
const StorageWarningHeader = mw.StorageWarningHeader

// PaginatedResponse wraps paginated data with metadata
type PaginatedResponse[T any] struct {
	Data       []T                `json:"data"`
	Pagination PaginationMetadata `json:"pagination"`
}

// PaginationMetadata contains pagination information
type PaginationMetadata struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	TotalCount int  `json:"totalCount"`
	HasMore    bool `json:"hasMore"`
}

// ListResponse wraps a list of items (non-paginated)
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The header has already been sent, nothing useful can be done on error.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteCreated writes a created response
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a no content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WritePaginated pages through an in-memory result set.
func WritePaginated[T any](w http.ResponseWriter, data []T, limit, offset int) {
	total := len(data)

	start := min(offset, total)
	end := min(start+limit, total)

	WriteJSON(w, http.StatusOK, PaginatedResponse[T]{
		Data: data[start:end],
		Pagination: PaginationMetadata{
			Limit:      limit,
			Offset:     offset,
			TotalCount: total,
			HasMore:    end < total,
		},
	})
}

// WriteList writes a simple list response
func WriteList[T any](w http.ResponseWriter, data []T) {
	response := ListResponse[T]{
		Data:  data,
		Count: len(data),
	}

	WriteJSON(w, http.StatusOK, response)
}

// attachWarning moves a pending storage warning onto the response headers
// and returns it so handlers with a body can echo it in a warning field.
// It must run before the status line is written.
func attachWarning(w http.ResponseWriter, tickets ports.TicketService) string {
	warning, ok := tickets.PersistenceWarning()
	if !ok {
		return ""
	}
	w.Header().Set(StorageWarningHeader, warning)
	return warning
}
