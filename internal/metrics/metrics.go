package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ledger operation outcomes.
const (
	OutcomeChanged  = "changed"
	OutcomeNoop     = "noop"
	OutcomeRejected = "rejected"
)

var (
	ledgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_ledger_operations_total",
			Help: "Ledger operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	activeRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "room_ledger_active_rooms",
			Help: "Number of rooms with an open bill",
		},
	)

	sideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_ledger_side_effect_failures_total",
			Help: "Failed persistence, publish and print side effects",
		},
		[]string{"effect"},
	)

	commitQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "room_ledger_commit_queue_depth",
			Help: "Pending order commits waiting for the store",
		},
	)
)

// ObserveOperation counts one ledger operation
func ObserveOperation(operation, outcome string) {
	ledgerOperations.WithLabelValues(operation, outcome).Inc()
}

// SetActiveRooms records the number of rooms with an open bill
func SetActiveRooms(n int) {
	activeRooms.Set(float64(n))
}

// SideEffectFailed counts a failed side effect such as "commit" or "publish"
func SideEffectFailed(effect string) {
	sideEffectFailures.WithLabelValues(effect).Inc()
}

// SetCommitQueueDepth records the commit backlog
func SetCommitQueueDepth(n int) {
	commitQueueDepth.Set(float64(n))
}
