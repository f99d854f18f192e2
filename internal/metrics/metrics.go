package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Durable writes issued by the habit store, by operation
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitkit_store_writes_total",
			Help: "Total number of durable habit writes attempted",
		},
		[]string{"op"}, // op: add, delete, toggle
	)

	// Durable writes that failed; in-memory state is kept
	StoreWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitkit_store_write_failures_total",
			Help: "Total number of durable habit writes that failed",
		},
		[]string{"op"},
	)

	// Snapshot loads by outcome
	StoreLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitkit_store_loads_total",
			Help: "Total number of habit snapshot loads",
		},
		[]string{"status"}, // status: success, failed
	)

	// Reminder scheduler calls by operation and outcome
	ReminderOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitkit_reminder_ops_total",
			Help: "Total number of reminder schedule/cancel calls",
		},
		[]string{"op", "status"}, // status: success, failed, denied
	)

	// Reminders delivered to the notifier
	RemindersFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitkit_reminders_fired_total",
			Help: "Total number of reminder notifications delivered",
		},
		[]string{"backend"}, // backend: native, polled
	)
)

// RecordStoreWrite counts a durable write and its failure, if any
func RecordStoreWrite(op string, err error) {
	StoreWrites.WithLabelValues(op).Inc()
	if err != nil {
		StoreWriteFailures.WithLabelValues(op).Inc()
	}
}

// RecordStoreLoad counts a snapshot load
func RecordStoreLoad(err error) {
	StoreLoads.WithLabelValues(status(err)).Inc()
}

// RecordReminderOp counts a reminder schedule or cancel call
func RecordReminderOp(op, status string) {
	ReminderOps.WithLabelValues(op, status).Inc()
}

// RecordReminderFired counts a delivered notification
func RecordReminderFired(backend string) {
	RemindersFired.WithLabelValues(backend).Inc()
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
