package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "bilet/internal/errors"
	"bilet/internal/logger"
	"bilet/internal/models"
	"bilet/internal/repository"
	"bilet/internal/search"
)

type EventService struct {
	eventRepo    *repository.EventRepository
	ticketRepo   *repository.TicketRepository
	searchClient *search.Client
}

func NewEventService(eventRepo *repository.EventRepository, ticketRepo *repository.TicketRepository, searchClient *search.Client) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		searchClient: searchClient,
	}
}

func (s *EventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.CreateEventResponse, error) {
	event := &models.Event{
		Name:        req.Name,
		TimeAndDate: req.TimeAndDate,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	// Catalog indexing is best effort; the event is already durable
	if s.searchClient != nil {
		if err := s.searchClient.IndexEvent(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("Failed to index event",
				"error", err, "event_id", event.ID)
		}
	}

	return &models.CreateEventResponse{ID: event.ID}, nil
}

// List returns upcoming events with their free-ticket counts. With a
// non-empty query and search enabled, the catalog index narrows the result.
func (s *EventService) List(ctx context.Context, query string) (models.ListEventsResponse, error) {
	events, err := s.eventRepo.ListUpcoming(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	if query != "" && s.searchClient != nil {
		ids, err := s.searchClient.SearchIDs(ctx, query, 100)
		if err != nil {
			return nil, fmt.Errorf("failed to search events: %w", err)
		}
		matched := make(map[int64]bool, len(ids))
		for _, id := range ids {
			matched[id] = true
		}

		filtered := events[:0]
		for _, event := range events {
			if matched[event.ID] {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}

	result := make(models.ListEventsResponse, 0, len(events))
	for _, event := range events {
		available, err := s.eventRepo.CountAvailable(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count available tickets: %w", err)
		}

		result = append(result, models.ListEventsResponseItem{
			ID:               event.ID,
			Name:             event.Name,
			TimeAndDate:      event.TimeAndDate,
			AvailableTickets: available,
		})
	}

	return result, nil
}

func (s *EventService) Detail(ctx context.Context, eventID int64) (*models.EventDetailResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}

	availability, err := s.eventRepo.CountAvailableByCategory(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count availability: %w", err)
	}

	return &models.EventDetailResponse{
		ID:           event.ID,
		Name:         event.Name,
		TimeAndDate:  event.TimeAndDate,
		Reservations: event.Reservations,
		Availability: availability,
	}, nil
}

// CreateTickets seeds count tickets of one category and price for an event.
func (s *EventService) CreateTickets(ctx context.Context, eventID int64, req *models.CreateTicketsRequest) (*models.CreateTicketsResponse, error) {
	if !req.Category.Valid() {
		return nil, apperrors.ErrInvalidCategory
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", req.Price, err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}

	ids, err := s.ticketRepo.CreateBatch(ctx, eventID, req.Category, price.StringFixed(2), req.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to create tickets: %w", err)
	}

	return &models.CreateTicketsResponse{TicketIDs: ids}, nil
}
