package models

import "time"

// NATS subjects
const (
	EventTicketReserved = "ticket.reserved"
	EventTicketReleased = "ticket.released"
	EventOrderCompleted = "order.completed"
)

// TicketReservedEvent is published after a ticket is locked into a basket.
type TicketReservedEvent struct {
	TicketID   int64     `json:"ticket_id"`
	EventID    int64     `json:"event_id"`
	Category   string    `json:"category"`
	SessionID  string    `json:"session_id"`
	ReservedTo time.Time `json:"reserved_to"`
	Timestamp  time.Time `json:"timestamp"`
}

// TicketReleasedEvent is published after a ticket is released from a basket.
type TicketReleasedEvent struct {
	TicketID  int64     `json:"ticket_id"`
	EventID   int64     `json:"event_id"`
	Category  string    `json:"category"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCompletedEvent is published after a basket purchase commits.
type OrderCompletedEvent struct {
	OrderID     int64     `json:"order_id"`
	TicketIDs   []int64   `json:"ticket_ids"`
	TotalAmount string    `json:"total_amount"`
	Currency    string    `json:"currency"`
	SessionID   string    `json:"session_id"`
	Timestamp   time.Time `json:"timestamp"`
}
