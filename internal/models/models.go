package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEventRequest - payload for creating an event
type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,max=255"`
	TimeAndDate time.Time `json:"time_and_date" binding:"required"`
}

// CreateEventResponse - response for a created event
type CreateEventResponse struct {
	ID int64 `json:"id"`
}

// CreateTicketsRequest - payload for seeding tickets of one category
type CreateTicketsRequest struct {
	Category TicketCategory `json:"category" binding:"required"`
	Price    string         `json:"price" binding:"required"`
	Count    int            `json:"count" binding:"required,min=1"`
}

// CreateTicketsResponse - ids of the tickets created
type CreateTicketsResponse struct {
	TicketIDs []int64 `json:"ticket_ids"`
}

// ListEventsResponseItem - one upcoming event with its free-ticket count
type ListEventsResponseItem struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	TimeAndDate      time.Time `json:"time_and_date"`
	AvailableTickets int64     `json:"available_tickets"`
}

// ListEventsResponse - list of upcoming events
type ListEventsResponse []ListEventsResponseItem

// EventDetailResponse - one event with per-category availability
type EventDetailResponse struct {
	ID           int64                    `json:"id"`
	Name         string                   `json:"name"`
	TimeAndDate  time.Time                `json:"time_and_date"`
	Reservations int64                    `json:"reservations"`
	Availability map[TicketCategory]int64 `json:"availability"`
}

// ReserveTicketRequest - payload for reserving one ticket into the basket
type ReserveTicketRequest struct {
	Category TicketCategory `json:"category" binding:"required"`
}

// ReserveTicketResponse - the ticket that was locked into the basket
type ReserveTicketResponse struct {
	TicketID   int64     `json:"ticket_id"`
	EventID    int64     `json:"event_id"`
	Category   string    `json:"category"`
	Price      string    `json:"price"`
	ReservedTo time.Time `json:"reserved_to"`
}

// RemoveTicketRequest - payload for releasing one ticket from the basket
type RemoveTicketRequest struct {
	EventID  int64          `json:"event_id" binding:"required"`
	Category TicketCategory `json:"category" binding:"required"`
}

// BasketEventLine - basket summary for one event
type BasketEventLine struct {
	EventID    int64                         `json:"event_id"`
	EventName  string                        `json:"event_name"`
	Counts     map[TicketCategory]int        `json:"counts"`
	TotalPrice decimal.Decimal               `json:"total_price"`
	ExpiresAt  map[TicketCategory]time.Time  `json:"expires_at"`
}

// BasketResponse - the session basket grouped by event
type BasketResponse struct {
	Lines       []BasketEventLine `json:"lines"`
	TotalPrice  string            `json:"total_price"`
	TicketCount int               `json:"ticket_count"`
}

// CheckoutRequest - the validated payment form
type CheckoutRequest struct {
	Name     string `json:"name" binding:"required,max=30"`
	Surname  string `json:"surname" binding:"required,max=30"`
	Currency string `json:"currency" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
}

// CheckoutResponse - result of a checkout attempt. PaymentError carries the
// recoverable form message when the amount does not match the basket total.
type CheckoutResponse struct {
	OrderID      int64  `json:"order_id,omitempty"`
	TicketsSold  int    `json:"tickets_sold,omitempty"`
	PaymentError string `json:"payment_error,omitempty"`
}

// EventStatsItem - per-event reporting line
type EventStatsItem struct {
	EventID        int64           `json:"event_id"`
	Name           string          `json:"name"`
	TotalTickets   int64           `json:"total_tickets"`
	Reservations   int64           `json:"reservations"`
	SoldTickets    int64           `json:"sold_tickets"`
	Profit         decimal.Decimal `json:"profit"`
	PossibleProfit decimal.Decimal `json:"possible_profit"`
}

// DailyPoint - one day of a per-day series
type DailyPoint struct {
	Date   string          `json:"date"`
	Orders int64           `json:"orders"`
	Profit decimal.Decimal `json:"profit"`
}

// StatsResponse - aggregate reporting over events, tickets and orders
type StatsResponse struct {
	TotalEvents       int64            `json:"total_events"`
	TotalTickets      int64            `json:"total_tickets"`
	TotalReservations int64            `json:"total_reservations"`
	TotalSoldTickets  int64            `json:"total_sold_tickets"`
	TotalProfit       decimal.Decimal  `json:"total_profit"`
	PossibleProfit    decimal.Decimal  `json:"possible_profit"`
	Events            []EventStatsItem `json:"events,omitempty"`
	PerDay            []DailyPoint     `json:"per_day,omitempty"`
}
