package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bilet/internal/basket"
	apperrors "bilet/internal/errors"
	"bilet/internal/logger"
	"bilet/internal/messaging"
	"bilet/internal/models"
	"bilet/internal/monitoring"
)

// TicketInventory is the basket inventory port plus the atomic
// find-and-lock used by the reserve flow. *repository.TicketRepository
// satisfies it.
type TicketInventory interface {
	basket.Inventory
	LockLastAvailable(ctx context.Context, eventID int64, category models.TicketCategory, hold time.Duration) (*models.Ticket, error)
}

type BasketService struct {
	ticketRepo TicketInventory
	eventRepo  basket.EventDirectory
	store      basket.Store
	natsClient *messaging.NATSClient
	hold       time.Duration
}

func NewBasketService(ticketRepo TicketInventory, eventRepo basket.EventDirectory, store basket.Store, natsClient *messaging.NATSClient, hold time.Duration) *BasketService {
	return &BasketService{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		store:      store,
		natsClient: natsClient,
		hold:       hold,
	}
}

func (s *BasketService) load(ctx context.Context, sessionID string) (*basket.Basket, error) {
	return basket.Load(ctx, sessionID, s.store, s.ticketRepo, s.eventRepo, s.hold)
}

// Get returns the session basket grouped by event.
func (s *BasketService) Get(ctx context.Context, sessionID string) (*models.BasketResponse, error) {
	b, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	lines, err := b.Summary(ctx)
	if err != nil {
		return nil, err
	}

	return &models.BasketResponse{
		Lines:       lines,
		TotalPrice:  b.TotalPrice().StringFixed(2),
		TicketCount: b.Len(),
	}, nil
}

// Reserve locks the most-recently-created available ticket of the event and
// category into the session basket. The find-and-lock is one atomic
// repository operation, so two sessions racing for the last ticket cannot
// both win.
func (s *BasketService) Reserve(ctx context.Context, sessionID string, eventID int64, category models.TicketCategory) (*models.ReserveTicketResponse, error) {
	if !category.Valid() {
		return nil, apperrors.ErrInvalidCategory
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}

	b, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.ticketRepo.LockLastAvailable(ctx, eventID, category, s.hold)
	if err != nil {
		monitoring.RecordReservation(string(category), "rejected")
		return nil, err
	}

	if err := b.Add(ctx, ticket); err != nil {
		monitoring.RecordReservation(string(category), "failed")
		if releaseErr := s.ticketRepo.ReleaseHold(ctx, ticket.ID); releaseErr != nil {
			logger.WithSessionID(sessionID).Error("Failed to release ticket after add failure",
				"error", releaseErr, "ticket_id", ticket.ID)
		}
		return nil, err
	}

	monitoring.RecordReservation(string(category), "reserved")
	s.publish(ctx, models.EventTicketReserved, models.TicketReservedEvent{
		TicketID:   ticket.ID,
		EventID:    ticket.EventID,
		Category:   string(ticket.Category),
		SessionID:  sessionID,
		ReservedTo: ticket.ReservationTime,
		Timestamp:  time.Now(),
	})

	return &models.ReserveTicketResponse{
		TicketID:   ticket.ID,
		EventID:    ticket.EventID,
		Category:   string(ticket.Category),
		Price:      ticket.Price.StringFixed(2),
		ReservedTo: ticket.ReservationTime,
	}, nil
}

// Remove releases one held ticket of the event and category back into
// availability.
func (s *BasketService) Remove(ctx context.Context, sessionID string, eventID int64, category models.TicketCategory) error {
	b, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	ticket, err := b.Remove(ctx, eventID, category)
	if err != nil {
		return err
	}

	monitoring.RecordRelease(string(category))
	s.publish(ctx, models.EventTicketReleased, models.TicketReleasedEvent{
		TicketID:  ticket.ID,
		EventID:   ticket.EventID,
		Category:  string(ticket.Category),
		SessionID: sessionID,
		Timestamp: time.Now(),
	})

	return nil
}

// Checkout runs the amount-equality payment check and, when it passes,
// converts the basket into an order. A mismatched amount is not an error:
// it comes back as a recoverable form message and nothing changes.
func (s *BasketService) Checkout(ctx context.Context, sessionID string, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	b, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if req.Currency != models.OrderCurrency {
		monitoring.RecordPaymentMismatch()
		return &models.CheckoutResponse{
			PaymentError: paymentErrorMessage(req.Currency, req.Amount),
		}, nil
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.Equal(b.TotalPrice()) {
		monitoring.RecordPaymentMismatch()
		return &models.CheckoutResponse{
			PaymentError: paymentErrorMessage(req.Currency, req.Amount),
		}, nil
	}

	ticketIDs := b.TicketIDs()
	ticketCount := b.Len()
	total := b.TotalPrice()

	order, err := b.Buy(ctx, req.Name, req.Surname)
	if err != nil {
		return nil, err
	}
	if order == nil {
		// Empty basket: the purchase is a no-op
		return &models.CheckoutResponse{}, nil
	}

	monitoring.RecordOrder(ticketCount)
	s.publish(ctx, models.EventOrderCompleted, models.OrderCompletedEvent{
		OrderID:     order.ID,
		TicketIDs:   ticketIDs,
		TotalAmount: total.StringFixed(2),
		Currency:    order.Currency,
		SessionID:   sessionID,
		Timestamp:   time.Now(),
	})

	return &models.CheckoutResponse{
		OrderID:     order.ID,
		TicketsSold: ticketCount,
	}, nil
}

func (s *BasketService) publish(ctx context.Context, subject string, data interface{}) {
	if err := s.natsClient.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err, "subject", subject)
	}
}

func paymentErrorMessage(currency, amount string) string {
	return fmt.Sprintf("%s %s is not valid amount. Please, provide a proper amount in %s.", amount, currency, currency)
}
