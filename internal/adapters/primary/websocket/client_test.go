package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/ticket-board/internal/adapters/secondary/memory"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/services"
	"github.com/lorrc/ticket-board/internal/infrastructure/clock"
)

type reply struct {
	Type     domain.EventType `json:"type"`
	TicketID string           `json:"ticketId"`
	Payload  json.RawMessage  `json:"payload"`
}

type testBoard struct {
	hub    *Hub
	store  *services.TicketStore
	server *httptest.Server
}

func newTestBoard(t *testing.T) *testBoard {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := services.NewTicketStore(
		memory.NewTicketSnapshotStore(logger),
		clock.Fake(time.Date(2024, time.June, 10, 9, 15, 0, 0, time.UTC)),
		logger,
	)
	require.NoError(t, store.Load(context.Background()))

	hub := NewHub(logger)
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, store, logger)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump(context.Background())
	}))
	t.Cleanup(func() {
		hub.CloseAll()
		server.Close()
	})

	return &testBoard{hub: hub, store: store, server: server}
}

func (b *testBoard) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(b.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (b *testBoard) createTicket(t *testing.T, title string) *domain.Ticket {
	t.Helper()
	ticket, err := b.store.CreateTicket(context.Background(), ports.CreateTicketParams{
		Title:       title,
		Description: "Something needs attention",
		Priority:    domain.PriorityLow,
	})
	require.NoError(t, err)
	return ticket
}

func send(t *testing.T, conn *websocket.Conn, msgType domain.EventType, payload any) {
	t.Helper()
	msg := map[string]any{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func receive(t *testing.T, conn *websocket.Conn) reply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var r reply
	require.NoError(t, conn.ReadJSON(&r))
	return r
}

func TestClient_DragAndDrop(t *testing.T) {
	board := newTestBoard(t)
	ticket := board.createTicket(t, "Printer jam")
	conn := board.dial(t)

	send(t, conn, domain.EventDragStart, DragStartPayload{TicketID: ticket.ID})
	send(t, conn, domain.EventDragMove, OverPayload{Over: "In Progress"})
	send(t, conn, domain.EventDragMove, OverPayload{Over: "Resolved"})
	send(t, conn, domain.EventDrop, OverPayload{})

	r := receive(t, conn)
	require.Equal(t, domain.EventDropApplied, r.Type)
	assert.Equal(t, ticket.ID, r.TicketID)

	var payload DropAppliedPayload
	require.NoError(t, json.Unmarshal(r.Payload, &payload))
	assert.Equal(t, "Resolved", payload.Ticket.Status)
	assert.Equal(t, ticket.Title, payload.Ticket.Title)
	assert.Empty(t, payload.Warning)

	stored, err := board.store.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, stored.Status)
}

func TestClient_DropOutsideBoard(t *testing.T) {
	board := newTestBoard(t)
	ticket := board.createTicket(t, "Printer jam")
	conn := board.dial(t)

	send(t, conn, domain.EventDragStart, DragStartPayload{TicketID: ticket.ID})
	send(t, conn, domain.EventDrop, OverPayload{Over: "sidebar"})

	r := receive(t, conn)
	require.Equal(t, domain.EventDropCancelled, r.Type)

	var payload DropCancelledPayload
	require.NoError(t, json.Unmarshal(r.Payload, &payload))
	assert.Equal(t, ticket.ID, payload.TicketID)
	assert.Equal(t, services.DropReasonInvalidTarget, payload.Reason)

	stored, err := board.store.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, stored.Status)
}

func TestClient_Cancel(t *testing.T) {
	board := newTestBoard(t)
	ticket := board.createTicket(t, "Printer jam")
	conn := board.dial(t)

	send(t, conn, domain.EventDragStart, DragStartPayload{TicketID: ticket.ID})
	send(t, conn, domain.EventDragMove, OverPayload{Over: "Resolved"})
	send(t, conn, domain.EventDragCancel, nil)

	r := receive(t, conn)
	require.Equal(t, domain.EventDropCancelled, r.Type)
	assert.Equal(t, ticket.ID, r.TicketID)

	// A drop after cancel has nothing to apply.
	send(t, conn, domain.EventDrop, OverPayload{Over: "Resolved"})
	r = receive(t, conn)
	require.Equal(t, domain.EventDropCancelled, r.Type)

	var payload DropCancelledPayload
	require.NoError(t, json.Unmarshal(r.Payload, &payload))
	assert.Equal(t, services.DropReasonNoDrag, payload.Reason)

	stored, err := board.store.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, stored.Status)
}

func TestClient_Errors(t *testing.T) {
	board := newTestBoard(t)
	conn := board.dial(t)

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"malformed json", "{nope", "malformed message"},
		{"unknown type", `{"type":"RESIZE"}`, "unknown message type"},
		{"missing ticket id", `{"type":"DRAG_START","payload":{}}`, "ticketId is required"},
		{"unknown ticket", `{"type":"DRAG_START","payload":{"ticketId":"missing"}}`, "ticket not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.message)))

			r := receive(t, conn)
			require.Equal(t, domain.EventError, r.Type)

			var payload ErrorPayload
			require.NoError(t, json.Unmarshal(r.Payload, &payload))
			assert.Equal(t, tt.want, payload.Message)
		})
	}
}

func TestClient_PingPong(t *testing.T) {
	board := newTestBoard(t)
	conn := board.dial(t)

	send(t, conn, domain.EventPing, nil)

	assert.Equal(t, domain.EventPong, receive(t, conn).Type)
}

func TestHub_TracksConnections(t *testing.T) {
	board := newTestBoard(t)

	first := board.dial(t)
	board.dial(t)

	assert.Eventually(t, func() bool { return board.hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, first.Close())
	assert.Eventually(t, func() bool { return board.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	board.hub.CloseAll()
	assert.Eventually(t, func() bool { return board.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
