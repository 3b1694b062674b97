package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createEventsTable,
		createOrdersTable,
		createTicketsTable,
		createTicketsAvailabilityIndex,
		createTicketsOrderIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    time_and_date TIMESTAMPTZ NOT NULL,
    reservations BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(30) NOT NULL,
    surname VARCHAR(30) NOT NULL,
    currency VARCHAR(3) NOT NULL DEFAULT 'EUR',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (currency IN ('EUR'))
);`

// ON DELETE RESTRICT: an event cannot be deleted while tickets reference it.
const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id BIGSERIAL PRIMARY KEY,
    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE RESTRICT,
    order_id BIGINT REFERENCES orders(id),
    category VARCHAR(20) NOT NULL,
    is_sold BOOLEAN NOT NULL DEFAULT FALSE,
    reservation_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    price DECIMAL(10,2) NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (category IN ('Normal', 'Premium', 'VIP')),
    CHECK (price >= 0)
);`

const createTicketsAvailabilityIndex = `
CREATE INDEX IF NOT EXISTS idx_tickets_availability
ON tickets (event_id, category, id DESC)
WHERE is_sold = FALSE;`

const createTicketsOrderIndex = `
CREATE INDEX IF NOT EXISTS idx_tickets_order
ON tickets (order_id)
WHERE order_id IS NOT NULL;`
