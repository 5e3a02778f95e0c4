// Package services – broker metrics
//
// Prometheus counters for the message lifecycle. Queue id is the only label:
// it is bounded by the number of queues, unlike sender or subscription ids.
package services

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// mqPublished counts original messages accepted from producers.
	mqPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mq_messages_published_total",
			Help: "Total number of messages published.",
		},
		[]string{"queue"},
	)

	// mqFanout counts per-subscription copies materialized at publish time.
	mqFanout = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mq_fanout_copies_total",
			Help: "Total number of fan-out copies created.",
		},
		[]string{"queue"},
	)

	// mqReserved counts successful reservations (including re-reservations
	// of lapsed leases).
	mqReserved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mq_messages_reserved_total",
			Help: "Total number of successful message reservations.",
		},
		[]string{"queue"},
	)

	// mqReserveConflicts counts reservations lost to a concurrent consumer.
	// A non-zero rate is normal under contention.
	mqReserveConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mq_reserve_conflicts_total",
			Help: "Total number of reservation attempts that lost the race.",
		},
		[]string{"queue"},
	)

	// mqAcked counts acknowledged (soft-deleted) messages.
	mqAcked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mq_messages_acked_total",
			Help: "Total number of acknowledged messages.",
		},
	)
)

func init() {
	prometheus.MustRegister(mqPublished, mqFanout, mqReserved, mqReserveConflicts, mqAcked)
}

// queueLabel renders a queue id as a metric label value.
func queueLabel(id int64) string { return strconv.FormatInt(id, 10) }
