// Package metrics exposes Prometheus collectors for the API and background workers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fanpicks"

// Label values shared by the worker collectors.
const (
	ResultOK       = "ok"
	ResultFailed   = "failed"
	ResultSkipped  = "skipped"
	ResultAdmitted = "admitted"
	ResultRejected = "rejected"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		},
	)
)

// Settlement metrics
var (
	SettlementEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_events_total",
			Help:      "Decoded program events by name and processing outcome.",
		},
		[]string{"event", "outcome"},
	)

	SettlementDecodeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_decode_errors_total",
			Help:      "Program data lines that failed to decode.",
		},
	)

	SettlementCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "settlement_signature_cache_entries",
			Help:      "Signatures held in the in-memory dedup cache.",
		},
	)

	SettlementReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_ws_reconnects_total",
			Help:      "Log subscription reconnect attempts.",
		},
	)
)

// Sweep metrics
var (
	SweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Completion sweep runs by result.",
		},
		[]string{"result"},
	)

	SweepMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_matches_total",
			Help:      "Matches processed by the completion sweep.",
		},
		[]string{"result"},
	)
)

// PredictionAdmissions counts admission decisions for new predictions.
var PredictionAdmissions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_admissions_total",
		Help:      "Prediction admission decisions by result.",
	},
	[]string{"result"},
)

// OutboxPublished counts relayed outbox rows.
var OutboxPublished = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_published_total",
		Help:      "Outbox rows relayed to the broker.",
	},
)

// OutboxBacklog is the number of outbox rows waiting to be relayed.
var OutboxBacklog = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "outbox_backlog",
		Help:      "Outbox rows not yet relayed to the broker.",
	},
)
