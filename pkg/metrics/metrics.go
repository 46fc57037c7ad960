package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Queue metrics
	QueueOccupancy     *prometheus.GaugeVec
	QueueOccupancyPct  *prometheus.GaugeVec
	QueueWaitMinutes   *prometheus.GaugeVec
	QueueOverCapacity  *prometheus.GaugeVec
	SnapshotFetches    *prometheus.CounterVec
	SnapshotFetchError prometheus.Counter

	// Visit lifecycle metrics
	VisitTransitions *prometheus.CounterVec
	VisitConflicts   prometheus.Counter

	// Booking metrics
	BookingsAllocated prometheus.Counter
	BookingsRejected  *prometheus.CounterVec
	BookingsCancelled prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		QueueOccupancy: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_occupancy",
			Help:      "Current number of patients queued per department",
		}, []string{"department"}),
		QueueOccupancyPct: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_occupancy_percent",
			Help:      "Queue occupancy as a percentage of department capacity",
		}, []string{"department"}),
		QueueWaitMinutes: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_wait_minutes",
			Help:      "Average wait time per department in minutes",
		}, []string{"department"}),
		QueueOverCapacity: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_over_capacity",
			Help:      "1 when department occupancy exceeds capacity, 0 otherwise",
		}, []string{"department"}),
		SnapshotFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "snapshot_fetches_total",
			Help:      "Total number of queue snapshot fetches",
		}, []string{"department", "status"}),
		SnapshotFetchError: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "snapshot_fetch_errors_total",
			Help:      "Total number of failed queue snapshot fetches",
		}),

		VisitTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "visit_transitions_total",
			Help:      "Total number of visit status transitions",
		}, []string{"from", "to"}),
		VisitConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "visit_transition_conflicts_total",
			Help:      "Total number of concurrent transitions rejected per patient",
		}),

		BookingsAllocated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bookings_allocated_total",
			Help:      "Total number of committed bookings",
		}),
		BookingsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bookings_rejected_total",
			Help:      "Total number of rejected allocation requests",
		}, []string{"reason"}),
		BookingsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bookings_cancelled_total",
			Help:      "Total number of cancelled bookings",
		}),
	}
}
