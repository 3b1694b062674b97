// Package basket implements the session-scoped reservation basket: a
// snapshot of ticket ids the session believes it is holding, persisted in
// an external session store. The ticket rows in the inventory stay the
// single source of truth; every load re-checks them and prunes entries
// whose hold has lapsed.
package basket

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	apperrors "bilet/internal/errors"
	"bilet/internal/models"
)

// Item is the per-ticket snapshot captured at add time. Price is the price
// at that moment; later repricing of the ticket does not change it.
type Item struct {
	Price    string `json:"price"`
	Category string `json:"category"`
}

// Store is the session persistence port. Implementations hold one opaque
// string-keyed mapping per session.
type Store interface {
	Load(ctx context.Context, sessionID string) (map[string]Item, error)
	Save(ctx context.Context, sessionID string, items map[string]Item) error
	Clear(ctx context.Context, sessionID string) error
}

// Inventory is the ticket storage port, satisfied by the ticket repository.
type Inventory interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Ticket, error)
	ExtendHold(ctx context.Context, ticketID int64, hold time.Duration) error
	ReleaseHold(ctx context.Context, ticketID int64) error
	LastHeld(ctx context.Context, ids []int64, eventID int64, category models.TicketCategory) (*models.Ticket, error)
	SellTickets(ctx context.Context, order *models.Order, ids []int64) error
}

// EventDirectory is the event storage port, satisfied by the event
// repository.
type EventDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	IncrementReservations(ctx context.Context, id int64) error
}

// Basket is the working set of tickets one session intends to purchase.
type Basket struct {
	sessionID string
	items     map[string]Item
	store     Store
	inventory Inventory
	events    EventDirectory
	hold      time.Duration
	now       func() time.Time
}

// Load reconstructs the session basket from the store and immediately runs
// the expiry sweep, so callers never observe entries whose hold has lapsed.
func Load(ctx context.Context, sessionID string, store Store, inventory Inventory, events EventDirectory, hold time.Duration) (*Basket, error) {
	items, err := store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load basket for session %s: %w", sessionID, err)
	}
	if items == nil {
		items = make(map[string]Item)
	}

	b := &Basket{
		sessionID: sessionID,
		items:     items,
		store:     store,
		inventory: inventory,
		events:    events,
		hold:      hold,
		now:       time.Now,
	}

	if err := b.sweep(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// sweep prunes stale entries: tickets that no longer exist, tickets sold in
// the meantime (dropped without a release round-trip, the sale already
// reset their hold), and tickets whose reservation has expired (released
// back into availability).
func (b *Basket) sweep(ctx context.Context) error {
	if len(b.items) == 0 {
		return nil
	}

	tickets, err := b.inventory.GetByIDs(ctx, b.TicketIDs())
	if err != nil {
		return fmt.Errorf("failed to sweep basket for session %s: %w", b.sessionID, err)
	}

	seen := make(map[string]bool, len(tickets))
	changed := false

	for i := range tickets {
		t := &tickets[i]
		key := strconv.FormatInt(t.ID, 10)
		seen[key] = true

		switch {
		case t.IsSold:
			delete(b.items, key)
			changed = true
		case t.IsReservationExpiredAt(b.now()):
			if err := b.inventory.ReleaseHold(ctx, t.ID); err != nil {
				slog.Warn("Failed to release expired ticket during sweep",
					"error", err, "ticket_id", t.ID, "session_id", b.sessionID)
			}
			delete(b.items, key)
			changed = true
		}
	}

	for key := range b.items {
		if !seen[key] {
			delete(b.items, key)
			changed = true
		}
	}

	if changed {
		if err := b.store.Save(ctx, b.sessionID, b.items); err != nil {
			return fmt.Errorf("failed to save swept basket: %w", err)
		}
	}
	return nil
}

// Add puts a ticket into the basket and (re)arms its hold. The snapshot is
// idempotent: re-adding an id keeps the original price snapshot. The event
// reservation counter is fire-and-forget telemetry and never blocks the
// add.
func (b *Basket) Add(ctx context.Context, ticket *models.Ticket) error {
	if ticket == nil || ticket.IsSold {
		return apperrors.ErrTicketUnavailable
	}

	if err := b.events.IncrementReservations(ctx, ticket.EventID); err != nil {
		slog.Warn("Failed to increment event reservation counter",
			"error", err, "event_id", ticket.EventID)
	}

	key := strconv.FormatInt(ticket.ID, 10)
	inserted := false
	if _, ok := b.items[key]; !ok {
		b.items[key] = Item{
			Price:    ticket.Price.StringFixed(2),
			Category: string(ticket.Category),
		}
		inserted = true
	}

	if err := b.inventory.ExtendHold(ctx, ticket.ID, b.hold); err != nil {
		if inserted {
			delete(b.items, key)
		}
		return fmt.Errorf("failed to reserve ticket %d: %w", ticket.ID, err)
	}
	ticket.ReserveAt(b.now(), b.hold)

	if err := b.store.Save(ctx, b.sessionID, b.items); err != nil {
		return fmt.Errorf("failed to save basket: %w", err)
	}
	return nil
}

// Remove releases the most-recently-created held ticket matching the event
// and category and drops its entry. A missing match yields
// NoTicketToRemoveError; storage failures propagate as themselves.
func (b *Basket) Remove(ctx context.Context, eventID int64, category models.TicketCategory) (*models.Ticket, error) {
	ticket, err := b.inventory.LastHeld(ctx, b.TicketIDs(), eventID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ticket to remove: %w", err)
	}
	if ticket == nil {
		return nil, &apperrors.NoTicketToRemoveError{EventID: eventID, Category: string(category)}
	}

	if err := b.inventory.ReleaseHold(ctx, ticket.ID); err != nil {
		return nil, fmt.Errorf("failed to release ticket %d: %w", ticket.ID, err)
	}
	ticket.ReleaseAt(b.now())

	delete(b.items, strconv.FormatInt(ticket.ID, 10))
	if err := b.store.Save(ctx, b.sessionID, b.items); err != nil {
		return nil, fmt.Errorf("failed to save basket: %w", err)
	}
	return ticket, nil
}

// Buy converts the basket into one order with every held ticket sold, as a
// single all-or-nothing transaction, then clears the session basket. An
// empty basket is a no-op returning a nil order.
func (b *Basket) Buy(ctx context.Context, name, surname string) (*models.Order, error) {
	ids := b.TicketIDs()
	if len(ids) == 0 {
		return nil, nil
	}

	order := &models.Order{
		Name:     name,
		Surname:  surname,
		Currency: models.OrderCurrency,
	}

	if err := b.inventory.SellTickets(ctx, order, ids); err != nil {
		return nil, fmt.Errorf("failed to purchase basket: %w", err)
	}

	b.items = make(map[string]Item)
	if err := b.store.Clear(ctx, b.sessionID); err != nil {
		// The purchase is committed; a dangling session entry will be
		// swept as sold on the next load.
		slog.Warn("Failed to clear basket after purchase",
			"error", err, "session_id", b.sessionID, "order_id", order.ID)
	}
	return order, nil
}

// TotalPrice sums the price snapshots of all entries. It deliberately uses
// the add-time snapshots, not fresh ticket lookups.
func (b *Basket) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			slog.Warn("Skipping unparsable price snapshot", "price", item.Price)
			continue
		}
		total = total.Add(price)
	}
	return total
}

// Len returns the number of distinct ticket ids held.
func (b *Basket) Len() int {
	return len(b.items)
}

// TicketIDs returns the held ticket ids in ascending order. Entries with
// non-numeric keys cannot occur through Add and are ignored.
func (b *Basket) TicketIDs() []int64 {
	ids := make([]int64, 0, len(b.items))
	for key := range b.items {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Summary groups the held tickets per event, in order of first encounter
// while walking tickets by ascending id: per-category counts, a running
// total of live ticket prices, and the latest hold expiry per category.
func (b *Basket) Summary(ctx context.Context) ([]models.BasketEventLine, error) {
	tickets, err := b.inventory.GetByIDs(ctx, b.TicketIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load basket tickets: %w", err)
	}

	var lines []models.BasketEventLine
	index := make(map[int64]int)

	for i := range tickets {
		t := &tickets[i]

		pos, ok := index[t.EventID]
		if !ok {
			event, err := b.events.GetByID(ctx, t.EventID)
			if err != nil {
				return nil, fmt.Errorf("failed to load event %d: %w", t.EventID, err)
			}

			line := models.BasketEventLine{
				EventID:    t.EventID,
				Counts:     make(map[models.TicketCategory]int, len(models.Categories)),
				TotalPrice: decimal.Zero,
				ExpiresAt:  make(map[models.TicketCategory]time.Time),
			}
			for _, c := range models.Categories {
				line.Counts[c] = 0
			}
			if event != nil {
				line.EventName = event.Name
			}

			pos = len(lines)
			index[t.EventID] = pos
			lines = append(lines, line)
		}

		line := &lines[pos]
		line.Counts[t.Category]++
		line.TotalPrice = line.TotalPrice.Add(t.Price)

		if expiry, ok := line.ExpiresAt[t.Category]; !ok || expiry.Before(t.ReservationTime) {
			line.ExpiresAt[t.Category] = t.ReservationTime
		}
	}

	return lines, nil
}
