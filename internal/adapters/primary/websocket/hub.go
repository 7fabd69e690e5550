package websocket

import (
	"log/slog"
	"sync"
)

// Hub tracks the live drag connections. Connections never talk to each
// other: every reply goes back to the client that sent the gesture.
type Hub struct {
	clients map[*Client]struct{}

	// mu protects the clients map
	mu sync.RWMutex

	logger *slog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With("component", "websocket_hub"),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = struct{}{}

	h.logger.Info("client registered",
		"client_id", client.ID,
		"total_connections", len(h.clients),
	)
}

// Unregister removes a client from the hub and stops its writer.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	remaining := len(h.clients)
	h.mu.Unlock()

	client.Close()

	if ok {
		h.logger.Info("client unregistered",
			"client_id", client.ID,
			"total_connections", remaining,
		)
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll asks every client to close its connection. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.Close()
	}

	if len(clients) > 0 {
		h.logger.Info("closing websocket connections", "count", len(clients))
	}
}
