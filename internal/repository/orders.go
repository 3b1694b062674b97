package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"bilet/internal/database"
	"bilet/internal/models"
)

type OrderRepository struct {
	db *database.DB
}

func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT id, name, surname, currency, created_at FROM orders WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.Name,
		&order.Surname,
		&order.Currency,
		&order.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return order, err
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

// Totals returns the headline reporting numbers in one round trip.
func (r *OrderRepository) Totals(ctx context.Context) (*models.StatsResponse, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM tickets),
			(SELECT COALESCE(SUM(reservations), 0) FROM events),
			(SELECT COUNT(*) FROM tickets WHERE is_sold = TRUE),
			(SELECT COALESCE(SUM(price), 0) FROM tickets WHERE is_sold = TRUE),
			(SELECT COALESCE(SUM(price), 0) FROM tickets)`

	stats := &models.StatsResponse{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalEvents,
		&stats.TotalTickets,
		&stats.TotalReservations,
		&stats.TotalSoldTickets,
		&stats.TotalProfit,
		&stats.PossibleProfit,
	)
	return stats, err
}

// EventSummaries returns one reporting line per event.
func (r *OrderRepository) EventSummaries(ctx context.Context) ([]models.EventStatsItem, error) {
	query := `
		SELECT
			e.id,
			e.name,
			COUNT(t.id),
			e.reservations,
			COUNT(t.id) FILTER (WHERE t.is_sold),
			COALESCE(SUM(t.price) FILTER (WHERE t.is_sold), 0),
			COALESCE(SUM(t.price), 0)
		FROM events e
		LEFT JOIN tickets t ON t.event_id = e.id
		GROUP BY e.id, e.name, e.reservations
		ORDER BY e.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.EventStatsItem
	for rows.Next() {
		var item models.EventStatsItem
		err := rows.Scan(
			&item.EventID,
			&item.Name,
			&item.TotalTickets,
			&item.Reservations,
			&item.SoldTickets,
			&item.Profit,
			&item.PossibleProfit,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// PerDay returns the number of orders and the profit of each day between
// the first and last order, gap days included with zeroes.
func (r *OrderRepository) PerDay(ctx context.Context) ([]models.DailyPoint, error) {
	query := `
		SELECT
			d.day::date,
			COUNT(DISTINCT o.id),
			COALESCE(SUM(t.price), 0)
		FROM generate_series(
			(SELECT MIN(created_at)::date FROM orders),
			(SELECT MAX(created_at)::date FROM orders),
			'1 day'::interval
		) AS d(day)
		LEFT JOIN orders o ON o.created_at::date = d.day::date
		LEFT JOIN tickets t ON t.order_id = o.id
		GROUP BY d.day
		ORDER BY d.day`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.DailyPoint
	for rows.Next() {
		var day sql.NullTime
		var orders int64
		var profit decimal.Decimal
		if err := rows.Scan(&day, &orders, &profit); err != nil {
			return nil, err
		}
		if !day.Valid {
			continue
		}
		points = append(points, models.DailyPoint{
			Date:   day.Time.Format("2006-01-02"),
			Orders: orders,
			Profit: profit,
		})
	}

	return points, rows.Err()
}
