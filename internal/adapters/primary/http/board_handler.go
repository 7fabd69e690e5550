package http

import (
	"log/slog"
	"net/http"

	"github.com/lorrc/ticket-board/internal/adapters/primary/validation"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/query"
	"github.com/lorrc/ticket-board/internal/core/services"
)

// BoardHandler serves the board columns, drops and dashboard metrics.
type BoardHandler struct {
	ticketService ports.TicketService
	boardService  ports.BoardService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(
	ticketService ports.TicketService,
	boardService ports.BoardService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *BoardHandler {
	return &BoardHandler{
		ticketService: ticketService,
		boardService:  boardService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "board"),
	}
}

// BoardColumnDTO is one status column.
type BoardColumnDTO struct {
	Status  string      `json:"status"`
	Count   int         `json:"count"`
	Tickets []TicketDTO `json:"tickets"`
}

// BoardResponse lists the columns in board order.
type BoardResponse struct {
	Columns []BoardColumnDTO `json:"columns"`
}

// MetricsDTO defines the JSON response for the dashboard counters.
type MetricsDTO struct {
	Total           int `json:"total"`
	ResolvedPercent int `json:"resolvedPercent"`
	OpenCount       int `json:"openCount"`
	NewTodayCount   int `json:"newTodayCount"`
}

// MoveTicketRequest is a one-shot drag: the ticket and the column it was
// dropped on.
type MoveTicketRequest struct {
	TicketID string `json:"ticketId"`
	To       string `json:"to"`
}

// Validate validates the move request. The target column is not checked
// here: dropping outside a column is a legal no-op.
func (r *MoveTicketRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("ticketId", r.TicketID)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// MoveTicketResponse reports what a drop did.
type MoveTicketResponse struct {
	Applied  bool       `json:"applied"`
	TicketID string     `json:"ticketId"`
	Ticket   *TicketDTO `json:"ticket,omitempty"`
	Reason   string     `json:"reason,omitempty"`
	Warning  string     `json:"warning,omitempty"`
}

func toBoardResponse(columns []domain.BoardColumn) BoardResponse {
	response := BoardResponse{Columns: make([]BoardColumnDTO, 0, len(columns))}
	for _, column := range columns {
		response.Columns = append(response.Columns, BoardColumnDTO{
			Status:  string(column.Status),
			Count:   len(column.Tickets),
			Tickets: toTicketDTOs(column.Tickets),
		})
	}
	return response
}

// HandleBoard handles GET /board
func (h *BoardHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria, err := query.ParseCriteria("", q.Get("priority"), q.Get("search"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toBoardResponse(h.boardService.Board(r.Context(), criteria)))
}

// HandleMoveTicket handles POST /board/moves
func (h *BoardHandler) HandleMoveTicket(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[MoveTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	session := services.NewDragSession(h.ticketService)
	if err := session.Start(r.Context(), req.TicketID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := session.Drop(r.Context(), req.To)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := MoveTicketResponse{
		Applied:  result.Applied,
		TicketID: result.TicketID,
		Reason:   result.Reason,
	}
	if result.Ticket != nil {
		dto := toTicketDTO(result.Ticket)
		response.Ticket = &dto
	}
	if result.Applied {
		response.Warning = attachWarning(w, h.ticketService)
		h.logger.InfoContext(r.Context(), "ticket moved",
			"ticket_id", result.TicketID,
			"new_status", result.Ticket.Status,
		)
	}

	WriteJSON(w, http.StatusOK, response)
}

// HandleMetrics handles GET /metrics
func (h *BoardHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	m := h.boardService.Metrics(r.Context())

	WriteJSON(w, http.StatusOK, MetricsDTO{
		Total:           m.Total,
		ResolvedPercent: m.ResolvedPercent,
		OpenCount:       m.OpenCount,
		NewTodayCount:   m.NewTodayCount,
	})
}
