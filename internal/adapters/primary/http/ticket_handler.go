package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/ticket-board/internal/adapters/primary/validation"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/query"
)

const maxTicketsPerPage = 100

var (
	priorityNames = []string{"Low", "Medium", "High"}
	statusNames   = []string{"Open", "In Progress", "Resolved"}
)

// TicketHandler handles HTTP requests for tickets
type TicketHandler struct {
	ticketService  ports.TicketService
	boardService   ports.BoardService
	commentHandler *CommentHandler
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(
	ticketService ports.TicketService,
	boardService ports.BoardService,
	commentHandler *CommentHandler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TicketHandler {
	return &TicketHandler{
		ticketService:  ticketService,
		boardService:   boardService,
		commentHandler: commentHandler,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "ticket"),
	}
}

// RegisterRoutes sets up the routing for all ticket endpoints.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTickets)
	r.Post("/", h.HandleCreateTicket)

	r.Route("/{ticketID}", func(r chi.Router) {
		r.Get("/", h.HandleGetTicket)
		r.Delete("/", h.HandleDeleteTicket)
		r.Patch("/status", h.HandleUpdateTicketStatus)

		if h.commentHandler != nil {
			r.Mount("/comments", h.commentHandler.Router())
		}
	})
}

// --- Request/Response DTOs ---

// CreateTicketRequest defines the expected JSON body for creating a ticket
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Validate validates the create ticket request
func (r *CreateTicketRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("title", r.Title).
		MinLength("title", r.Title, domain.MinTitleLength).
		MaxLength("title", r.Title, domain.MaxTitleLength)

	v.Required("description", r.Description).
		MinLength("description", r.Description, domain.MinDescriptionLength).
		MaxLength("description", r.Description, domain.MaxDescriptionLength)

	// Priority is optional and defaults to Low.
	v.OneOf("priority", strings.TrimSpace(r.Priority), priorityNames)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

func (r *CreateTicketRequest) priority() domain.TicketPriority {
	if strings.TrimSpace(r.Priority) == "" {
		return domain.DefaultPriority
	}
	priority, err := domain.ParsePriority(r.Priority)
	if err != nil {
		return domain.DefaultPriority
	}
	return priority
}

// UpdateStatusRequest defines the expected JSON body for status updates
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate validates the update status request
func (r *UpdateStatusRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("status", r.Status)
	if r.Status != "" {
		_, err := domain.ParseStatus(r.Status)
		v.Custom("status", err == nil, "Must be one of: "+strings.Join(statusNames, ", "))
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// TicketDTO defines the JSON response for tickets.
type TicketDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"createdAt"`
	Comments    []string `json:"comments"`
}

// CreateTicketResponse is the created ticket plus any storage warning.
type CreateTicketResponse struct {
	TicketDTO
	Warning string `json:"warning,omitempty"`
}

func toTicketDTO(ticket *domain.Ticket) TicketDTO {
	comments := ticket.Comments
	if comments == nil {
		comments = []string{}
	}

	return TicketDTO{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Priority:    string(ticket.Priority),
		Status:      string(ticket.Status),
		CreatedAt:   ticket.CreatedAt.UTC().Format(time.RFC3339Nano),
		Comments:    comments,
	}
}

func toTicketDTOs(tickets []*domain.Ticket) []TicketDTO {
	response := make([]TicketDTO, 0, len(tickets))
	for _, ticket := range tickets {
		response = append(response, toTicketDTO(ticket))
	}
	return response
}

// --- Handlers ---

// HandleListTickets handles GET /tickets
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	pagination := validation.ParsePagination(r, maxTicketsPerPage)

	q := r.URL.Query()
	criteria, err := query.ParseCriteria(q.Get("status"), q.Get("priority"), q.Get("search"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	tickets := h.boardService.FilterTickets(r.Context(), criteria)

	WritePaginated(w, toTicketDTOs(tickets), pagination.Limit, pagination.Offset)
}

// HandleCreateTicket handles POST /tickets
func (h *TicketHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[CreateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.CreateTicketParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.priority(),
	}

	ticket, err := h.ticketService.CreateTicket(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket created",
		"ticket_id", ticket.ID,
		"priority", ticket.Priority,
	)

	WriteCreated(w, CreateTicketResponse{
		TicketDTO: toTicketDTO(ticket),
		Warning:   attachWarning(w, h.ticketService),
	})
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.ticketService.GetTicket(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleUpdateTicketStatus handles PATCH /tickets/{ticketID}/status
func (h *TicketHandler) HandleUpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	req, err := validation.DecodeAndValidate[UpdateStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.UpdateStatusParams{
		TicketID: ticketID,
		Status:   status,
		Source:   ports.UpdateSourceExplicit,
	}

	if err := h.ticketService.UpdateStatus(r.Context(), params); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket status updated",
		"ticket_id", ticketID,
		"new_status", status,
	)

	attachWarning(w, h.ticketService)
	WriteNoContent(w)
}

// HandleDeleteTicket handles DELETE /tickets/{ticketID}
func (h *TicketHandler) HandleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	if err := h.ticketService.DeleteTicket(r.Context(), ticketID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket deleted", "ticket_id", ticketID)

	attachWarning(w, h.ticketService)
	WriteNoContent(w)
}
