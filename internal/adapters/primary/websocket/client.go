package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lorrc/ticket-board/internal/core/domain"
	apperrors "github.com/lorrc/ticket-board/internal/core/errors"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/services"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	sendBufferSize = 16
)

// Client is a middleman between one websocket connection and its drag
// session.
type Client struct {
	ID string

	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan domain.Event

	// done is closed when the client should shut down.
	done      chan struct{}
	closeOnce sync.Once

	tickets ports.TicketService
	session *services.DragSession

	logger *slog.Logger
}

// NewClient creates a new WebSocket client with an idle drag session.
func NewClient(hub *Hub, conn *websocket.Conn, tickets ports.TicketService, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		ID:      id,
		hub:     hub,
		conn:    conn,
		send:    make(chan domain.Event, sendBufferSize),
		done:    make(chan struct{}),
		tickets: tickets,
		session: services.NewDragSession(tickets),
		logger:  logger.With("client_id", id),
	}
}

// Close stops the write pump, which closes the connection. It is safe to
// call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ReadPump reads gestures from the connection and applies them in order.
// This method runs in its own goroutine.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		if ticketID, ok := c.session.Cancel(); ok {
			c.logger.Debug("drag abandoned by disconnect", "ticket_id", ticketID)
		}
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		c.handleIncomingMessage(ctx, message)
	}
}

// WritePump pumps replies to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing")
			if err := c.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
				c.logger.Debug("failed to send close message", "error", err)
			}
			return

		case event := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// reply queues a message for this connection only.
func (c *Client) reply(event domain.Event) {
	select {
	case <-c.done:
	case c.send <- event:
	default:
		c.logger.Warn("send buffer full, dropping reply", "event_type", event.Type)
	}
}

// --- Incoming Message Handling ---

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    domain.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

// DragStartPayload names the ticket being picked up.
type DragStartPayload struct {
	TicketID string `json:"ticketId"`
}

// OverPayload names the column under the pointer.
type OverPayload struct {
	Over string `json:"over"`
}

// DropAppliedPayload carries the updated ticket.
type DropAppliedPayload struct {
	Ticket  domain.TicketSnapshot `json:"ticket"`
	Warning string                `json:"warning,omitempty"`
}

// DropCancelledPayload explains why a gesture changed nothing.
type DropCancelledPayload struct {
	TicketID string `json:"ticketId,omitempty"`
	Reason   string `json:"reason"`
}

// ErrorPayload describes a rejected message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// handleIncomingMessage processes messages received from the client
func (c *Client) handleIncomingMessage(ctx context.Context, message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		c.replyError("malformed message")
		return
	}

	switch msg.Type {
	case domain.EventDragStart:
		c.handleDragStart(ctx, msg.Payload)

	case domain.EventDragMove:
		var p OverPayload
		if len(msg.Payload) > 0 && json.Unmarshal(msg.Payload, &p) != nil {
			c.replyError("malformed payload")
			return
		}
		c.session.Move(p.Over)

	case domain.EventDrop:
		c.handleDrop(ctx, msg.Payload)

	case domain.EventDragCancel:
		if ticketID, ok := c.session.Cancel(); ok {
			c.reply(domain.Event{
				Type:     domain.EventDropCancelled,
				TicketID: ticketID,
				Payload:  DropCancelledPayload{TicketID: ticketID, Reason: services.DropReasonCancelled},
			})
		}

	case domain.EventPing:
		c.reply(domain.Event{Type: domain.EventPong})

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
		c.replyError("unknown message type")
	}
}

func (c *Client) handleDragStart(ctx context.Context, payload json.RawMessage) {
	var p DragStartPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.TicketID == "" {
		c.replyError("ticketId is required")
		return
	}

	if err := c.session.Start(ctx, p.TicketID); err != nil {
		if errors.Is(err, apperrors.ErrTicketNotFound) {
			c.replyError("ticket not found")
			return
		}
		c.logger.Error("failed to start drag", "ticket_id", p.TicketID, "error", err)
		c.replyError("could not start drag")
		return
	}

	c.logger.Debug("drag started", "ticket_id", p.TicketID)
}

func (c *Client) handleDrop(ctx context.Context, payload json.RawMessage) {
	var p OverPayload
	if len(payload) > 0 && json.Unmarshal(payload, &p) != nil {
		c.session.Cancel()
		c.replyError("malformed payload")
		return
	}

	result, err := c.session.Drop(ctx, p.Over)
	if err != nil {
		c.logger.Error("failed to apply drop", "ticket_id", result.TicketID, "error", err)
		c.replyError("could not apply drop")
		return
	}

	if !result.Applied {
		c.reply(domain.Event{
			Type:     domain.EventDropCancelled,
			TicketID: result.TicketID,
			Payload:  DropCancelledPayload{TicketID: result.TicketID, Reason: result.Reason},
		})
		return
	}

	warning, _ := c.tickets.PersistenceWarning()
	c.reply(domain.Event{
		Type:     domain.EventDropApplied,
		TicketID: result.TicketID,
		Payload: DropAppliedPayload{
			Ticket:  domain.NewTicketSnapshot(result.Ticket),
			Warning: warning,
		},
	})
	c.logger.Info("ticket dropped", "ticket_id", result.TicketID, "status", result.Ticket.Status)
}

func (c *Client) replyError(message string) {
	c.reply(domain.Event{Type: domain.EventError, Payload: ErrorPayload{Message: message}})
}
