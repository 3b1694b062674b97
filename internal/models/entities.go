package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReservationHold is how long a ticket stays soft-locked after it is added
// to a basket. Re-adding the same ticket re-arms the hold from scratch.
const ReservationHold = 15 * time.Minute

// OrderCurrency is the only currency orders are settled in.
const OrderCurrency = "EUR"

// TicketCategory is the fixed set of ticket classes sold per event.
type TicketCategory string

const (
	CategoryNormal  TicketCategory = "Normal"
	CategoryPremium TicketCategory = "Premium"
	CategoryVIP     TicketCategory = "VIP"
)

// Categories lists all ticket categories in display order.
var Categories = []TicketCategory{CategoryNormal, CategoryPremium, CategoryVIP}

// Valid reports whether c is one of the known categories.
func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryNormal, CategoryPremium, CategoryVIP:
		return true
	}
	return false
}

// Event represents a sellable event. Reservations is a monotonic counter of
// reservation attempts, bumped every time a ticket is added to a basket.
type Event struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	TimeAndDate  time.Time `json:"time_and_date" db:"time_and_date"`
	Reservations int64     `json:"reservations" db:"reservations"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Order is the immutable record of a completed purchase. It is only ever
// created inside the purchase transaction, never standalone.
type Order struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Surname   string    `json:"surname" db:"surname"`
	Currency  string    `json:"currency" db:"currency"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Ticket represents one sellable ticket of an event.
//
// A ticket is available iff it is not sold and its reservation_time is now
// or earlier. IsSold is monotonic and is always the authoritative
// discriminator: a sold ticket also has reservation_time in the past (see
// BuyAt), so the time predicate alone cannot tell Sold from Available.
type Ticket struct {
	ID              int64           `json:"id" db:"id"`
	EventID         int64           `json:"event_id" db:"event_id"`
	OrderID         *int64          `json:"order_id" db:"order_id"`
	Category        TicketCategory  `json:"category" db:"category"`
	IsSold          bool            `json:"is_sold" db:"is_sold"`
	ReservationTime time.Time       `json:"reservation_time" db:"reservation_time"`
	Price           decimal.Decimal `json:"price" db:"price"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ReserveAt arms the soft lock until now+hold. Valid from both Available and
// Reserved: re-reserving refreshes the window, it does not extend it.
func (t *Ticket) ReserveAt(now time.Time, hold time.Duration) {
	t.ReservationTime = now.Add(hold)
}

// Reserve arms the default 15-minute hold from the current time.
func (t *Ticket) Reserve() {
	t.ReserveAt(time.Now(), ReservationHold)
}

// ReleaseAt drops the soft lock by moving reservation_time to now.
func (t *Ticket) ReleaseAt(now time.Time) {
	t.ReservationTime = now
}

// Release drops the soft lock immediately.
func (t *Ticket) Release() {
	t.ReleaseAt(time.Now())
}

// IsReservationExpiredAt reports whether the ticket is not soft-locked at
// the given instant. It deliberately ignores IsSold: it answers "is this
// ticket currently held", not "was it ever held".
func (t *Ticket) IsReservationExpiredAt(now time.Time) bool {
	return !t.ReservationTime.After(now)
}

// IsReservationExpired reports whether the soft lock has lapsed.
func (t *Ticket) IsReservationExpired() bool {
	return t.IsReservationExpiredAt(time.Now())
}

// AvailableAt reports whether the ticket can be reserved at the given
// instant: never sold, and any previous hold has lapsed.
func (t *Ticket) AvailableAt(now time.Time) bool {
	return !t.IsSold && t.IsReservationExpiredAt(now)
}

// Available reports whether the ticket can be reserved right now.
func (t *Ticket) Available() bool {
	return t.AvailableAt(time.Now())
}

// BuyAt marks the ticket sold and attaches it to the order. The final
// release resets reservation_time to now, so a sold ticket also satisfies
// IsReservationExpiredAt; callers must check IsSold first.
func (t *Ticket) BuyAt(order *Order, now time.Time) error {
	if t.IsSold {
		return fmt.Errorf("ticket %d is already sold", t.ID)
	}
	t.IsSold = true
	t.OrderID = &order.ID
	t.ReleaseAt(now)
	return nil
}

// Buy marks the ticket sold as of the current time.
func (t *Ticket) Buy(order *Order) error {
	return t.BuyAt(order, time.Now())
}
