package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_reservations_total",
			Help: "Ticket reservation attempts by category and outcome",
		},
		[]string{"category", "status"},
	)

	releases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_releases_total",
			Help: "Tickets released from baskets by category",
		},
		[]string{"category"},
	)

	ticketsSold = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Tickets sold through completed checkouts",
		},
	)

	ordersCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_completed_total",
			Help: "Completed orders",
		},
	)

	paymentMismatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_amount_mismatches_total",
			Help: "Checkout attempts rejected by the amount equality check",
		},
	)
)

func RecordReservation(category, status string) {
	reservations.WithLabelValues(category, status).Inc()
}

func RecordRelease(category string) {
	releases.WithLabelValues(category).Inc()
}

func RecordOrder(tickets int) {
	ordersCompleted.Inc()
	ticketsSold.Add(float64(tickets))
}

func RecordPaymentMismatch() {
	paymentMismatches.Inc()
}
