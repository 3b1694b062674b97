package repository

import (
	"bilet/internal/database"
)

// Repositories aggregates all repository instances
type Repositories struct {
	Events  *EventRepository
	Tickets *TicketRepository
	Orders  *OrderRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:  NewEventRepository(db),
		Tickets: NewTicketRepository(db),
		Orders:  NewOrderRepository(db),
	}
}
