package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/ticket-board/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/lorrc/ticket-board/internal/adapters/primary/websocket"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// RouterDeps are the collaborators the HTTP API is built from.
type RouterDeps struct {
	Tickets ports.TicketService
	Board   ports.BoardService
	Storage HealthChecker
	Hub     *wsAdapter.Hub

	// RateLimiter is optional.
	RateLimiter *mw.RateLimiter

	// AllowedOrigins for browser clients. Empty allows any origin.
	AllowedOrigins []string
	WebSocket      WebSocketConfig

	Version string
	Logger  *slog.Logger
}

// NewRouter wires the handlers into a chi router.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger

	errorHandler := NewErrorHandler(logger)
	commentHandler := NewCommentHandler(deps.Tickets, errorHandler, logger)
	ticketHandler := NewTicketHandler(deps.Tickets, deps.Board, commentHandler, errorHandler, logger)
	boardHandler := NewBoardHandler(deps.Tickets, deps.Board, errorHandler, logger)

	var connections ConnectionCounter
	if deps.Hub != nil {
		connections = deps.Hub
	}
	healthHandler := NewHealthHandler(deps.Storage, deps.Tickets, connections, deps.Version)

	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders: []string{mw.RequestIDHeader, StorageWarningHeader},
		MaxAge:         300,
	}))

	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware(errorHandler.Handle))
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tickets", ticketHandler.RegisterRoutes)

		r.Route("/board", func(r chi.Router) {
			r.Get("/", boardHandler.HandleBoard)
			r.Post("/moves", boardHandler.HandleMoveTicket)
			if deps.Hub != nil {
				wsHandler := NewWebSocketHandler(deps.Hub, deps.Tickets, deps.WebSocket, logger)
				r.Get("/ws", wsHandler.ServeHTTP)
			}
		})

		r.Get("/metrics", boardHandler.HandleMetrics)
	})

	return r
}
