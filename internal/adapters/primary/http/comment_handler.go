package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/ticket-board/internal/adapters/primary/validation"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// CommentHandler handles HTTP requests for comments.
type CommentHandler struct {
	ticketService ports.TicketService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(
	ticketService ports.TicketService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *CommentHandler {
	return &CommentHandler{
		ticketService: ticketService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "comment"),
	}
}

// Router sets up a new chi Router for comment routes.
func (h *CommentHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the comment-specific endpoints.
// These routes are relative to /api/v1/tickets/{ticketID}/comments
func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListComments)
	r.Post("/", h.HandleCreateComment)
	r.Delete("/{index}", h.HandleDeleteComment)
}

// CreateCommentRequest defines the expected JSON body for creating a comment
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// Validate validates the create comment request
func (r *CreateCommentRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("body", r.Body).
		MaxLength("body", r.Body, domain.MaxCommentBodyLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// CommentDTO is one comment. Comments are addressed by position.
type CommentDTO struct {
	Index int    `json:"index"`
	Body  string `json:"body"`
}

func toCommentDTOs(comments []string) []CommentDTO {
	response := make([]CommentDTO, 0, len(comments))
	for i, body := range comments {
		response = append(response, CommentDTO{Index: i, Body: body})
	}
	return response
}

// HandleListComments handles GET /tickets/{ticketID}/comments
func (h *CommentHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.ticketService.GetTicket(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toCommentDTOs(ticket.Comments))
}

// HandleCreateComment handles POST /tickets/{ticketID}/comments
func (h *CommentHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	req, err := validation.DecodeAndValidate[CreateCommentRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.AddCommentParams{
		TicketID: ticketID,
		Body:     req.Body,
	}

	if err := h.ticketService.AddComment(r.Context(), params); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "comment added", "ticket_id", ticketID)

	attachWarning(w, h.ticketService)
	WriteNoContent(w)
}

// HandleDeleteComment handles DELETE /tickets/{ticketID}/comments/{index}
func (h *CommentHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	index, err := validation.ParseIndexParam("index", chi.URLParam(r, "index"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.DeleteCommentParams{
		TicketID: ticketID,
		Index:    index,
	}

	if err := h.ticketService.DeleteComment(r.Context(), params); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "comment deleted",
		"ticket_id", ticketID,
		"index", index,
	)

	attachWarning(w, h.ticketService)
	WriteNoContent(w)
}
