// Package metrics defines and registers the portal's custom Prometheus
// metrics. It is the single source of truth for metric names, labels and help
// strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionsEndedTotal counts sessions torn down.
// Label:
//   - reason: "logout", "unauthorized" or "expired"
var SessionsEndedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_ended_total",
		Help:      "Total number of sessions ended, by reason.",
	},
	[]string{"reason"},
)

// ── Wizard metrics ────────────────────────────────────────────────────────────

// WizardsActive tracks wizards currently held in memory.
// Label:
//   - kind: "demand_qualification" or "supply_registration"
var WizardsActive = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "wizards_active",
		Help:      "Number of wizards currently open.",
	},
	[]string{"kind"},
)

// WizardTransitionsTotal counts wizard operations.
// Labels:
//   - kind: wizard variant
//   - op: "edit", "next", "previous", "preview", "add_entry", "remove_entry"
//   - result: "ok", "invalid", "rejected"
var WizardTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wizard_transitions_total",
		Help:      "Total number of wizard operations, by kind, operation and result.",
	},
	[]string{"kind", "op", "result"},
)

// SubmissionsTotal counts submit attempts.
// Labels:
//   - kind: wizard variant
//   - outcome: "submitted", "blocked", "invalid", "failed", "stale"
var SubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Total number of wizard submit attempts, by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

// SubmissionCompleteness records the completeness score at submit time.
var SubmissionCompleteness = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "submission_completeness",
		Help:      "Completeness score of drafts at submit time.",
		Buckets:   []float64{20, 40, 60, 70, 80, 90, 100},
	},
	[]string{"kind"},
)

// ── Marketplace API metrics ───────────────────────────────────────────────────

// MarketplaceRequestDuration measures remote API latency.
// Labels:
//   - op: client operation, e.g. "get_enterprise"
//   - status: HTTP status code, or "error" on transport failure
var MarketplaceRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "marketplace_request_duration_seconds",
		Help:      "Duration of marketplace API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op", "status"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks records waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit records pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts audit records dropped because a worker was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of audit records dropped because the queue was full.",
	},
)
