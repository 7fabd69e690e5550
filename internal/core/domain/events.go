package domain

// EventType defines the type of a board gesture message.
type EventType string

// Client -> server gesture messages.
const (
	EventDragStart  EventType = "DRAG_START"
	EventDragMove   EventType = "DRAG_MOVE"
	EventDrop       EventType = "DROP"
	EventDragCancel EventType = "DRAG_CANCEL"
	EventPing       EventType = "PING"
)

// Server -> client replies.
const (
	EventDropApplied   EventType = "DROP_APPLIED"
	EventDropCancelled EventType = "DROP_CANCELLED"
	EventError         EventType = "ERROR"
	EventPong          EventType = "PONG"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type     EventType   `json:"type"`
	Payload  interface{} `json:"payload,omitempty"`
	TicketID string      `json:"ticketId,omitempty"`
}
