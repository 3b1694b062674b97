package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bilet/internal/database"
	"bilet/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, time_and_date)
		VALUES ($1, $2)
		RETURNING id, reservations, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		event.Name,
		event.TimeAndDate,
	).Scan(&event.ID, &event.Reservations, &event.CreatedAt, &event.UpdatedAt)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, name, time_and_date, reservations, created_at, updated_at
		FROM events
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.TimeAndDate,
		&event.Reservations,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return event, err
}

// ListUpcoming returns events that have not started yet, most distant first.
func (r *EventRepository) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT id, name, time_and_date, reservations, created_at, updated_at
		FROM events
		WHERE time_and_date > NOW()
		ORDER BY time_and_date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.TimeAndDate,
			&event.Reservations,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// IncrementReservations bumps the monotonic reservation-attempt counter.
func (r *EventRepository) IncrementReservations(ctx context.Context, id int64) error {
	query := `UPDATE events SET reservations = reservations + 1, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("event %d not found", id)
	}
	return nil
}

// CountAvailable returns the number of currently available tickets of the
// event, using the live availability predicate.
func (r *EventRepository) CountAvailable(ctx context.Context, eventID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE event_id = $1 AND ` + availablePredicate

	var count int64
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count)
	return count, err
}

// CountAvailableByCategory returns available-ticket counts per category.
// Categories with no available tickets are present with a zero count.
func (r *EventRepository) CountAvailableByCategory(ctx context.Context, eventID int64) (map[models.TicketCategory]int64, error) {
	query := `
		SELECT category, COUNT(*)
		FROM tickets
		WHERE event_id = $1 AND ` + availablePredicate + `
		GROUP BY category`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.TicketCategory]int64, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = 0
	}

	for rows.Next() {
		var category models.TicketCategory
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}

	return counts, rows.Err()
}
