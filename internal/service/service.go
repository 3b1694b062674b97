package service

import (
	"time"

	"bilet/internal/basket"
	"bilet/internal/messaging"
	"bilet/internal/repository"
	"bilet/internal/search"
)

// Services aggregates all service instances
type Services struct {
	Events  *EventService
	Baskets *BasketService
	Stats   *StatsService
}

func NewServices(repos *repository.Repositories, store basket.Store, natsClient *messaging.NATSClient, searchClient *search.Client, hold time.Duration) *Services {
	return &Services{
		Events:  NewEventService(repos.Events, repos.Tickets, searchClient),
		Baskets: NewBasketService(repos.Tickets, repos.Events, store, natsClient, hold),
		Stats:   NewStatsService(repos.Orders),
	}
}
