package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilet/internal/basket"
	apperrors "bilet/internal/errors"
	"bilet/internal/messaging"
	"bilet/internal/models"
)

// fakeStore keeps baskets in memory.
type fakeStore struct {
	data map[string]map[string]basket.Item
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]map[string]basket.Item)}
}

func (s *fakeStore) Load(_ context.Context, sessionID string) (map[string]basket.Item, error) {
	items := make(map[string]basket.Item, len(s.data[sessionID]))
	for k, v := range s.data[sessionID] {
		items[k] = v
	}
	return items, nil
}

func (s *fakeStore) Save(_ context.Context, sessionID string, items map[string]basket.Item) error {
	copied := make(map[string]basket.Item, len(items))
	for k, v := range items {
		copied[k] = v
	}
	s.data[sessionID] = copied
	return nil
}

func (s *fakeStore) Clear(_ context.Context, sessionID string) error {
	delete(s.data, sessionID)
	return nil
}

// fakeInventory mirrors the repository contract in memory.
type fakeInventory struct {
	tickets     map[int64]*models.Ticket
	orders      []*models.Order
	nextOrderID int64
}

func newFakeInventory(tickets ...*models.Ticket) *fakeInventory {
	inv := &fakeInventory{tickets: make(map[int64]*models.Ticket), nextOrderID: 1}
	for _, t := range tickets {
		inv.tickets[t.ID] = t
	}
	return inv
}

func (f *fakeInventory) GetByIDs(_ context.Context, ids []int64) ([]models.Ticket, error) {
	var result []models.Ticket
	for _, id := range ids {
		if t, ok := f.tickets[id]; ok {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (f *fakeInventory) ExtendHold(_ context.Context, ticketID int64, hold time.Duration) error {
	t, ok := f.tickets[ticketID]
	if !ok || t.IsSold {
		return apperrors.ErrTicketUnavailable
	}
	t.ReserveAt(time.Now(), hold)
	return nil
}

func (f *fakeInventory) ReleaseHold(_ context.Context, ticketID int64) error {
	if t, ok := f.tickets[ticketID]; ok && !t.IsSold {
		t.ReleaseAt(time.Now())
	}
	return nil
}

func (f *fakeInventory) LastHeld(_ context.Context, ids []int64, eventID int64, category models.TicketCategory) (*models.Ticket, error) {
	var last *models.Ticket
	for _, id := range ids {
		t, ok := f.tickets[id]
		if ok && t.EventID == eventID && t.Category == category {
			if last == nil || t.ID > last.ID {
				last = t
			}
		}
	}
	if last == nil {
		return nil, nil
	}
	copied := *last
	return &copied, nil
}

func (f *fakeInventory) SellTickets(_ context.Context, order *models.Order, ids []int64) error {
	for _, id := range ids {
		t, ok := f.tickets[id]
		if !ok || t.IsSold {
			return apperrors.ErrTicketUnavailable
		}
	}

	order.ID = f.nextOrderID
	order.CreatedAt = time.Now()
	f.nextOrderID++
	f.orders = append(f.orders, order)

	for _, id := range ids {
		t := f.tickets[id]
		t.IsSold = true
		oid := order.ID
		t.OrderID = &oid
		t.ReleaseAt(time.Now())
	}
	return nil
}

func (f *fakeInventory) LockLastAvailable(_ context.Context, eventID int64, category models.TicketCategory, hold time.Duration) (*models.Ticket, error) {
	now := time.Now()
	var last *models.Ticket
	for _, t := range f.tickets {
		if t.EventID == eventID && t.Category == category && t.AvailableAt(now) {
			if last == nil || t.ID > last.ID {
				last = t
			}
		}
	}
	if last == nil {
		return nil, apperrors.ErrTicketUnavailable
	}
	last.ReserveAt(now, hold)
	copied := *last
	return &copied, nil
}

// fakeEvents is an in-memory event directory.
type fakeEvents struct {
	events     map[int64]*models.Event
	increments map[int64]int
}

func newFakeEvents(events ...*models.Event) *fakeEvents {
	dir := &fakeEvents{events: make(map[int64]*models.Event), increments: make(map[int64]int)}
	for _, e := range events {
		dir.events[e.ID] = e
	}
	return dir
}

func (d *fakeEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	e, ok := d.events[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (d *fakeEvents) IncrementReservations(_ context.Context, id int64) error {
	d.increments[id]++
	return nil
}

func newService(inv *fakeInventory, events *fakeEvents, store *fakeStore) *BasketService {
	nats, _ := messaging.NewNATSClient(messaging.Config{Enabled: false})
	return NewBasketService(inv, events, store, nats, models.ReservationHold)
}

func available(id, eventID int64, category models.TicketCategory, p string) *models.Ticket {
	return &models.Ticket{
		ID:              id,
		EventID:         eventID,
		Category:        category,
		ReservationTime: time.Now().Add(-time.Minute),
		Price:           decimal.RequireFromString(p),
	}
}

func TestReserveLocksLastAvailableIntoBasket(t *testing.T) {
	ctx := context.Background()
	inv := newFakeInventory(
		available(1, 10, models.CategoryVIP, "30.00"),
		available(2, 10, models.CategoryVIP, "30.00"),
	)
	events := newFakeEvents(&models.Event{ID: 10, Name: "Concert"})
	store := newFakeStore()
	svc := newService(inv, events, store)

	resp, err := svc.Reserve(ctx, "s1", 10, models.CategoryVIP)
	require.NoError(t, err)

	// Most-recently-created ticket wins the reservation
	assert.Equal(t, int64(2), resp.TicketID)
	assert.Equal(t, "30.00", resp.Price)
	assert.False(t, inv.tickets[2].IsReservationExpired())
	assert.Equal(t, 1, events.increments[10])
	assert.Contains(t, store.data["s1"], "2")
}

func TestReserveUnknownEvent(t *testing.T) {
	svc := newService(newFakeInventory(), newFakeEvents(), newFakeStore())

	_, err := svc.Reserve(context.Background(), "s1", 99, models.CategoryNormal)

	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestReserveInvalidCategory(t *testing.T) {
	svc := newService(newFakeInventory(), newFakeEvents(&models.Event{ID: 10}), newFakeStore())

	_, err := svc.Reserve(context.Background(), "s1", 10, models.TicketCategory("Student"))

	assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)
}

func TestReserveNoAvailableTickets(t *testing.T) {
	sold := available(1, 10, models.CategoryNormal, "10.00")
	sold.IsSold = true
	svc := newService(newFakeInventory(sold), newFakeEvents(&models.Event{ID: 10}), newFakeStore())

	_, err := svc.Reserve(context.Background(), "s1", 10, models.CategoryNormal)

	assert.ErrorIs(t, err, apperrors.ErrTicketUnavailable)
}

func TestCheckoutAmountMismatchIsRecoverable(t *testing.T) {
	ctx := context.Background()
	inv := newFakeInventory(available(1, 10, models.CategoryNormal, "10.00"))
	events := newFakeEvents(&models.Event{ID: 10})
	store := newFakeStore()
	svc := newService(inv, events, store)

	_, err := svc.Reserve(ctx, "s1", 10, models.CategoryNormal)
	require.NoError(t, err)

	resp, err := svc.Checkout(ctx, "s1", &models.CheckoutRequest{
		Name: "A", Surname: "B", Currency: "EUR", Amount: "9.99",
	})
	require.NoError(t, err)

	assert.Equal(t, "9.99 EUR is not valid amount. Please, provide a proper amount in EUR.", resp.PaymentError)
	assert.Zero(t, resp.OrderID)
	// Nothing changed: no order, ticket still reserved and unsold
	assert.Empty(t, inv.orders)
	assert.False(t, inv.tickets[1].IsSold)
	assert.False(t, inv.tickets[1].IsReservationExpired())
}

func TestCheckoutWrongCurrency(t *testing.T) {
	ctx := context.Background()
	inv := newFakeInventory(available(1, 10, models.CategoryNormal, "10.00"))
	svc := newService(inv, newFakeEvents(&models.Event{ID: 10}), newFakeStore())

	_, err := svc.Reserve(ctx, "s1", 10, models.CategoryNormal)
	require.NoError(t, err)

	resp, err := svc.Checkout(ctx, "s1", &models.CheckoutRequest{
		Name: "A", Surname: "B", Currency: "USD", Amount: "10.00",
	})
	require.NoError(t, err)

	assert.Contains(t, resp.PaymentError, "USD")
	assert.Empty(t, inv.orders)
}

func TestCheckoutSuccess(t *testing.T) {
	ctx := context.Background()
	inv := newFakeInventory(
		available(1, 10, models.CategoryNormal, "10.00"),
		available(2, 10, models.CategoryPremium, "20.00"),
		available(3, 10, models.CategoryVIP, "30.00"),
	)
	events := newFakeEvents(&models.Event{ID: 10, Name: "Concert"})
	store := newFakeStore()
	svc := newService(inv, events, store)

	for _, c := range models.Categories {
		_, err := svc.Reserve(ctx, "s1", 10, c)
		require.NoError(t, err)
	}

	resp, err := svc.Checkout(ctx, "s1", &models.CheckoutRequest{
		Name: "A", Surname: "B", Currency: "EUR", Amount: "60.00",
	})
	require.NoError(t, err)

	assert.Empty(t, resp.PaymentError)
	assert.Equal(t, int64(1), resp.OrderID)
	assert.Equal(t, 3, resp.TicketsSold)
	require.Len(t, inv.orders, 1)
	assert.Equal(t, "A", inv.orders[0].Name)
	assert.Equal(t, "B", inv.orders[0].Surname)

	for id := int64(1); id <= 3; id++ {
		assert.True(t, inv.tickets[id].IsSold)
	}

	// The session basket is gone after a successful checkout
	assert.NotContains(t, store.data, "s1")

	again, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.TicketCount)
}

func TestCheckoutEmptyBasketNoOp(t *testing.T) {
	inv := newFakeInventory()
	svc := newService(inv, newFakeEvents(), newFakeStore())

	resp, err := svc.Checkout(context.Background(), "s1", &models.CheckoutRequest{
		Name: "A", Surname: "B", Currency: "EUR", Amount: "0",
	})
	require.NoError(t, err)

	assert.Zero(t, resp.OrderID)
	assert.Empty(t, resp.PaymentError)
	assert.Empty(t, inv.orders)
}

func TestRemoveReleasesTicket(t *testing.T) {
	ctx := context.Background()
	inv := newFakeInventory(available(1, 10, models.CategoryVIP, "30.00"))
	svc := newService(inv, newFakeEvents(&models.Event{ID: 10}), newFakeStore())

	_, err := svc.Reserve(ctx, "s1", 10, models.CategoryVIP)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "s1", 10, models.CategoryVIP))

	assert.True(t, inv.tickets[1].IsReservationExpired())

	resp, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.TicketCount)
}

func TestRemoveFromEmptyBasket(t *testing.T) {
	svc := newService(newFakeInventory(), newFakeEvents(), newFakeStore())

	err := svc.Remove(context.Background(), "s1", 42, models.CategoryNormal)

	var noTicket *apperrors.NoTicketToRemoveError
	require.ErrorAs(t, err, &noTicket)
	assert.Equal(t, "Event with id 42 hasn't tickets for category: Normal.", noTicket.Error())
}

func TestGetGroupsBasketByEvent(t *testing.T) {
	ctx := context.Background()
	inv := newFakeInventory(
		available(1, 10, models.CategoryNormal, "10.00"),
		available(2, 20, models.CategoryVIP, "30.00"),
	)
	events := newFakeEvents(
		&models.Event{ID: 10, Name: "Concert"},
		&models.Event{ID: 20, Name: "Opera"},
	)
	svc := newService(inv, events, newFakeStore())

	_, err := svc.Reserve(ctx, "s1", 10, models.CategoryNormal)
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, "s1", 20, models.CategoryVIP)
	require.NoError(t, err)

	resp, err := svc.Get(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TicketCount)
	assert.Equal(t, "40.00", resp.TotalPrice)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "Concert", resp.Lines[0].EventName)
	assert.Equal(t, "Opera", resp.Lines[1].EventName)
}
