// Package metrics holds the prometheus collectors of the ledger, registered on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// EntriesTotal counts lifecycle transitions of journal entries by reference kind.
	EntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_journal_entries_total",
			Help: "Journal entries posted, cancelled or reversed",
		},
		[]string{"action", "reference_kind"},
	)

	// PostingFailures counts rejected postings by error class.
	PostingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_posting_failures_total",
			Help: "Rejected postings by reason",
		},
		[]string{"reason"},
	)

	TamperDetections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_tamper_detections_total",
			Help: "Chain verifications that found tampering",
		},
	)

	// LastChainVerification is the unix time of the last verification per temple and its outcome (1 valid, 0 not).
	LastChainVerification = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ledger_chain_last_verification_timestamp_seconds",
			Help: "Unix time of the last chain verification",
		},
		[]string{"temple", "valid"},
	)

	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_reconciliations_total",
			Help: "Reconciliation runs by resulting status",
		},
		[]string{"status"},
	)

	ReconciliationMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_reconciliation_matches_total",
			Help: "Statement matches by tie-break tier",
		},
		[]string{"tier"},
	)

	PeriodTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_period_transitions_total",
			Help: "Financial period status changes",
		},
		[]string{"status"},
	)
)
