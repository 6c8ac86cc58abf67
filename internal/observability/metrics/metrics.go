package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for booking flows.
type SchedulingMetrics struct {
	bookingsTotal     *prometheus.CounterVec
	conflictsTotal    *prometheus.CounterVec
	slotSearchLatency *prometheus.HistogramVec
	recurrenceTotal   *prometheus.CounterVec
	outboxTotal       *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naijabook",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking operations by outcome",
		}, []string{"operation", "outcome"}),
		conflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naijabook",
			Subsystem: "scheduling",
			Name:      "conflicts_total",
			Help:      "Appointment conflicts detected",
		}, []string{"operation"}),
		slotSearchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "naijabook",
			Subsystem: "scheduling",
			Name:      "slot_search_seconds",
			Help:      "Latency of availability searches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		recurrenceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naijabook",
			Subsystem: "scheduling",
			Name:      "recurrence_occurrences_total",
			Help:      "Recurring series occurrences by result",
		}, []string{"result"}),
		outboxTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naijabook",
			Subsystem: "scheduling",
			Name:      "outbox_deliveries_total",
			Help:      "Outbox delivery attempts by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.conflictsTotal, m.slotSearchLatency, m.recurrenceTotal, m.outboxTotal)
	return m
}

func (m *SchedulingMetrics) ObserveBooking(operation, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *SchedulingMetrics) ObserveConflict(operation string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(operation).Inc()
}

func (m *SchedulingMetrics) ObserveSlotSearch(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.slotSearchLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *SchedulingMetrics) ObserveRecurrence(result string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.recurrenceTotal.WithLabelValues(result).Add(float64(count))
}

func (m *SchedulingMetrics) ObserveOutboxDelivery(outcome string) {
	if m == nil {
		return
	}
	m.outboxTotal.WithLabelValues(outcome).Inc()
}
