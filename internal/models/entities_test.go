package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTicket(id int64) *Ticket {
	return &Ticket{
		ID:              id,
		EventID:         1,
		Category:        CategoryNormal,
		ReservationTime: base,
		Price:           decimal.RequireFromString("10.00"),
	}
}

func TestIsReservationExpiredIgnoresIsSold(t *testing.T) {
	tests := []struct {
		name        string
		reservation time.Time
		isSold      bool
		expired     bool
	}{
		{"available", base.Add(-time.Minute), false, true},
		{"reserved", base.Add(time.Minute), false, false},
		{"sold after release", base.Add(-time.Minute), true, true},
		{"sold with future hold", base.Add(time.Minute), true, false},
		{"hold lapses exactly now", base, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := newTicket(1)
			ticket.ReservationTime = tt.reservation
			ticket.IsSold = tt.isSold

			assert.Equal(t, tt.expired, ticket.IsReservationExpiredAt(base))
		})
	}
}

func TestReserveArmsFifteenMinuteHold(t *testing.T) {
	ticket := newTicket(1)

	ticket.ReserveAt(base, ReservationHold)

	assert.False(t, ticket.IsReservationExpiredAt(base))
	assert.False(t, ticket.IsReservationExpiredAt(base.Add(ReservationHold-time.Second)))
	assert.True(t, ticket.IsReservationExpiredAt(base.Add(ReservationHold)))
	assert.True(t, ticket.IsReservationExpiredAt(base.Add(ReservationHold+time.Hour)))
}

func TestReserveRearmsInsteadOfExtending(t *testing.T) {
	ticket := newTicket(1)

	ticket.ReserveAt(base, ReservationHold)
	ticket.ReserveAt(base.Add(5*time.Minute), ReservationHold)

	// The second reserve restarts the window from its own now
	assert.Equal(t, base.Add(5*time.Minute+ReservationHold), ticket.ReservationTime)
}

func TestReleaseDropsHold(t *testing.T) {
	ticket := newTicket(1)
	ticket.ReserveAt(base, ReservationHold)

	ticket.ReleaseAt(base.Add(time.Minute))

	assert.True(t, ticket.IsReservationExpiredAt(base.Add(time.Minute)))
	assert.True(t, ticket.AvailableAt(base.Add(time.Minute)))
}

func TestBuyMarksSoldAndReleases(t *testing.T) {
	ticket := newTicket(1)
	ticket.ReserveAt(base, ReservationHold)
	order := &Order{ID: 7, Currency: OrderCurrency}

	now := base.Add(time.Minute)
	require.NoError(t, ticket.BuyAt(order, now))

	assert.True(t, ticket.IsSold)
	require.NotNil(t, ticket.OrderID)
	assert.Equal(t, int64(7), *ticket.OrderID)

	// The terminal release resets the hold, so the expiry predicate alone
	// cannot tell Sold from Available; IsSold has to be checked first.
	assert.True(t, ticket.IsReservationExpiredAt(now))
	assert.False(t, ticket.AvailableAt(now))
}

func TestBuyTwiceFails(t *testing.T) {
	ticket := newTicket(1)
	order := &Order{ID: 7}

	require.NoError(t, ticket.BuyAt(order, base))
	assert.Error(t, ticket.BuyAt(&Order{ID: 8}, base))
	assert.Equal(t, int64(7), *ticket.OrderID)
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid())
	}
	assert.False(t, TicketCategory("Student").Valid())
	assert.False(t, TicketCategory("").Valid())
}
