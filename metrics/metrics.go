package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsAdmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courtbook",
			Name:      "bookings_admitted_total",
			Help:      "Bookings that passed admission and entered PENDING_PAYMENT.",
		},
	)

	admissionConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtbook",
			Name:      "admission_conflicts_total",
			Help:      "Booking admissions rejected, by reason.",
		},
		[]string{"reason"},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtbook",
			Name:      "webhook_events_total",
			Help:      "Payment gateway webhook deliveries, by event and result.",
		},
		[]string{"event", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingsAdmitted, admissionConflicts, webhookEvents)
	})
}

// IncBookingAdmitted counts a successful admission.
func IncBookingAdmitted() {
	bookingsAdmitted.Inc()
}

// IncAdmissionConflict counts a rejected admission. reason is one of
// "overlap", "lock_timeout", "pricing_gap", "validation".
func IncAdmissionConflict(reason string) {
	admissionConflicts.WithLabelValues(reason).Inc()
}

// IncWebhookEvent counts a webhook delivery by event name and handling result.
func IncWebhookEvent(event, result string) {
	webhookEvents.WithLabelValues(event, result).Inc()
}
