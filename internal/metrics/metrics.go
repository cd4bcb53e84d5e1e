package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MembershipsSoldTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_memberships_sold_total",
			Help: "Total number of memberships sold, by plan",
		},
		[]string{"plan"},
	)

	MembershipsRenewedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_memberships_renewed_total",
			Help: "Total number of membership renewals",
		},
	)

	MembershipTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_membership_transitions_total",
			Help: "Membership lifecycle transitions by target status",
		},
		[]string{"to"},
	)

	PaymentsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_payments_recorded_total",
			Help: "Total number of payments recorded, by method",
		},
		[]string{"method"},
	)

	RefundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_refunds_total",
			Help: "Total number of refunds issued",
		},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_class_bookings_total",
			Help: "Class booking outcomes (confirmed or waitlisted)",
		},
		[]string{"outcome"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_waitlist_promotions_total",
			Help: "Total number of waitlist promotions",
		},
	)

	NotifyQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymdesk_notify_queue_length",
			Help: "Current length of the outbound event queue",
		},
	)

	NotifyEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_notify_events_total",
			Help: "Outbound events emitted, by type and status",
		},
		[]string{"type", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordMembershipSold(plan string) {
	MembershipsSoldTotal.WithLabelValues(plan).Inc()
}

func RecordMembershipTransition(to string) {
	MembershipTransitionsTotal.WithLabelValues(to).Inc()
}

func RecordPayment(method string) {
	PaymentsRecordedTotal.WithLabelValues(method).Inc()
}

func RecordBooking(outcome string) {
	BookingsTotal.WithLabelValues(outcome).Inc()
}

func RecordNotifyEvent(eventType, status string) {
	NotifyEventsTotal.WithLabelValues(eventType, status).Inc()
}
