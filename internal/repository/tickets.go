package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"bilet/internal/database"
	apperrors "bilet/internal/errors"
	"bilet/internal/models"
)

// availablePredicate is the one live availability check. Cached "reserved"
// flags do not exist: a lapsed hold makes the row available again without
// any background process touching it.
const availablePredicate = `is_sold = FALSE AND reservation_time <= NOW()`

const ticketColumns = `id, event_id, order_id, category, is_sold, reservation_time, price, created_at, updated_at`

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func scanTicket(row interface {
	Scan(dest ...interface{}) error
}) (*models.Ticket, error) {
	t := &models.Ticket{}
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.OrderID,
		&t.Category,
		&t.IsSold,
		&t.ReservationTime,
		&t.Price,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateBatch inserts count tickets of one category and price for an event.
func (r *TicketRepository) CreateBatch(ctx context.Context, eventID int64, category models.TicketCategory, price string, count int) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tickets (event_id, category, price, reservation_time)
		VALUES ($1, $2, $3, NOW())
		RETURNING id`

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		var id int64
		if err := tx.QueryRowContext(ctx, query, eventID, category, price).Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to insert ticket: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetByID returns one ticket or nil when it does not exist.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ticket, err
}

// GetByIDs returns the tickets for the given ids in ascending id order.
// Ids with no matching row are silently absent from the result.
func (r *TicketRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ANY($1) ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}

	return tickets, rows.Err()
}

// LockLastAvailable atomically finds the most-recently-created available
// ticket of the event and category and arms its hold, all inside one
// transaction. SKIP LOCKED makes two concurrent sessions land on different
// rows instead of one of them blocking and double-reserving.
func (r *TicketRepository) LockLastAvailable(ctx context.Context, eventID int64, category models.TicketCategory, hold time.Duration) (*models.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	selectQuery := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1 AND category = $2 AND ` + availablePredicate + `
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`

	ticket, err := scanTicket(tx.QueryRowContext(ctx, selectQuery, eventID, category))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrTicketUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find available ticket: %w", err)
	}

	updateQuery := `
		UPDATE tickets
		SET reservation_time = NOW() + $2::interval, updated_at = NOW()
		WHERE id = $1
		RETURNING reservation_time`

	interval := fmt.Sprintf("%d seconds", int(hold.Seconds()))
	if err := tx.QueryRowContext(ctx, updateQuery, ticket.ID, interval).Scan(&ticket.ReservationTime); err != nil {
		return nil, fmt.Errorf("failed to arm reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ExtendHold re-arms the hold on a ticket already held by a basket. The row
// lock serializes concurrent re-arms; a sold ticket is rejected.
func (r *TicketRepository) ExtendHold(ctx context.Context, ticketID int64, hold time.Duration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var isSold bool
	checkQuery := `SELECT is_sold FROM tickets WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, checkQuery, ticketID).Scan(&isSold); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.ErrTicketUnavailable
		}
		return fmt.Errorf("failed to lock ticket: %w", err)
	}
	if isSold {
		return apperrors.ErrTicketUnavailable
	}

	updateQuery := `
		UPDATE tickets
		SET reservation_time = NOW() + $2::interval, updated_at = NOW()
		WHERE id = $1`

	interval := fmt.Sprintf("%d seconds", int(hold.Seconds()))
	if _, err := tx.ExecContext(ctx, updateQuery, ticketID, interval); err != nil {
		return fmt.Errorf("failed to extend hold: %w", err)
	}

	return tx.Commit()
}

// ReleaseHold drops the soft lock so the ticket becomes available again.
// Releasing a sold ticket is a no-op: is_sold keeps it out of availability.
func (r *TicketRepository) ReleaseHold(ctx context.Context, ticketID int64) error {
	query := `
		UPDATE tickets
		SET reservation_time = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_sold = FALSE`

	_, err := r.db.ExecContext(ctx, query, ticketID)
	return err
}

// LastHeld returns the most-recently-created ticket among the given held ids
// matching the event and category, or nil when none matches.
func (r *TicketRepository) LastHeld(ctx context.Context, ids []int64, eventID int64, category models.TicketCategory) (*models.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = ANY($1) AND event_id = $2 AND category = $3
		ORDER BY id DESC
		LIMIT 1`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, pq.Array(ids), eventID, category))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ticket, err
}

// SellTickets converts a basket purchase into one order plus sold tickets in
// a single transaction. Every ticket row is locked first; if any ticket is
// missing or already sold the whole purchase rolls back, order included.
// The final release quirk is kept: sold rows get reservation_time = NOW().
func (r *TicketRepository) SellTickets(ctx context.Context, order *models.Order, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (name, surname, currency)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := tx.QueryRowContext(ctx, orderQuery, order.Name, order.Surname, order.Currency).Scan(&order.ID, &order.CreatedAt); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	lockQuery := `SELECT id, is_sold FROM tickets WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	rows, err := tx.QueryContext(ctx, lockQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to lock tickets: %w", err)
	}

	locked := 0
	for rows.Next() {
		var id int64
		var isSold bool
		if err := rows.Scan(&id, &isSold); err != nil {
			rows.Close()
			return err
		}
		if isSold {
			rows.Close()
			return fmt.Errorf("ticket %d: %w", id, apperrors.ErrTicketUnavailable)
		}
		locked++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if locked != len(ids) {
		return fmt.Errorf("only %d of %d tickets exist: %w", locked, len(ids), apperrors.ErrTicketUnavailable)
	}

	sellQuery := `
		UPDATE tickets
		SET is_sold = TRUE, order_id = $2, reservation_time = NOW(), updated_at = NOW()
		WHERE id = ANY($1)`

	if _, err := tx.ExecContext(ctx, sellQuery, pq.Array(ids), order.ID); err != nil {
		return fmt.Errorf("failed to mark tickets sold: %w", err)
	}

	return tx.Commit()
}
