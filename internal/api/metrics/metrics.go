// Package metrics defines and registers all custom Prometheus metrics for the
// proofwork ledger. It is the single source of truth for metric names, labels,
// and help strings; registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "proofwork"

// ── Lifecycle metrics ─────────────────────────────────────────────────────────

// JobsPostedTotal counts newly posted jobs.
var JobsPostedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_posted_total",
		Help:      "Total number of jobs posted.",
	},
)

// PaymentsReleasedTotal counts approvals that paid out escrow to a freelancer.
var PaymentsReleasedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_released_total",
		Help:      "Total number of escrow payouts released to freelancers.",
	},
)

// RefundsTotal counts cancellations that refunded escrow to the client.
var RefundsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refunds_total",
		Help:      "Total number of escrow refunds issued on cancellation.",
	},
)

// TransferFailuresTotal counts external transfers that failed and forced a
// rollback of the enclosing operation.
// Label:
//   - operation: "approve" or "cancel"
var TransferFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfer_failures_total",
		Help:      "Total number of failed escrow transfers, by operation.",
	},
	[]string{"operation"},
)

// OperationDuration tracks end-to-end latency of ledger operations.
// Label:
//   - operation: "post", "update", "cancel", "submit", "approve", "reject"
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of ledger operations in seconds.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts events flushed to the audit stream.
// Label:
//   - type: ledger event type (e.g. "job_posted")
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events appended to the ledger stream.",
	},
	[]string{"type"},
)

// AuditQueueDepth tracks the number of events waiting in each dispatcher
// worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
