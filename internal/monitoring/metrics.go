// Package monitoring exposes Prometheus instrumentation for the booking
// and payment workflows. Metrics are registered through promauto at
// package load; services record observations through the helper
// functions below and the HTTP layer serves them on /metrics.
package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsBooked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_booked_total",
			Help: "Seats booked per event",
		},
		[]string{"event_id"},
	)

	bookingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_failures_total",
			Help: "Booking attempts rejected, by reason",
		},
		[]string{"reason"},
	)

	bookingsRolledBack = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_rolled_back_total",
			Help: "Seats restored by compensating rollbacks per event",
		},
		[]string{"event_id"},
	)

	paymentsVerified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_verified_total",
			Help: "Gateway callback verifications, by result",
		},
		[]string{"result"},
	)

	availableSeats = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_available_seats",
			Help: "Remaining aggregate capacity per event",
		},
		[]string{"event_id"},
	)

	bookingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_duration_seconds",
			Help:    "End-to-end duration of booking creation",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)

// TrackBooking records a successful booking of seats for an event.
func TrackBooking(eventID uint64, seats int) {
	ticketsBooked.WithLabelValues(strconv.FormatUint(eventID, 10)).Add(float64(seats))
}

// TrackBookingFailure records a rejected booking attempt.
func TrackBookingFailure(reason string) {
	bookingFailures.WithLabelValues(reason).Inc()
}

// TrackRollback records seats restored by a compensating rollback.
func TrackRollback(eventID uint64, seats int) {
	bookingsRolledBack.WithLabelValues(strconv.FormatUint(eventID, 10)).Add(float64(seats))
}

// TrackPayment records a verification outcome ("completed" or "failed").
func TrackPayment(result string) {
	paymentsVerified.WithLabelValues(result).Inc()
}

// SetAvailableSeats updates the capacity gauge for an event.
func SetAvailableSeats(eventID uint64, seats int64) {
	availableSeats.WithLabelValues(strconv.FormatUint(eventID, 10)).Set(float64(seats))
}

// ObserveBookingDuration records how long a booking took end to end.
func ObserveBookingDuration(d time.Duration) {
	bookingDuration.Observe(d.Seconds())
}
