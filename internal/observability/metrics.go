// Package observability holds the Prometheus collectors of the dashboard.
package observability

import "github.com/prometheus/client_golang/prometheus"

const namespace = "absentee"

// Upload outcomes
const (
	UploadAccepted = "accepted"
	UploadRejected = "rejected"
)

var (
	// UploadsTotal counts dataset uploads by outcome
	UploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "loader",
		Name:      "uploads_total",
		Help:      "Dataset uploads, labeled by outcome (accepted or rejected).",
	}, []string{"outcome"})

	// VerdictsTotal counts verdicts by hypothesis and status
	VerdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hypothesis",
		Name:      "verdicts_total",
		Help:      "Hypothesis verdicts computed, labeled by hypothesis and status.",
	}, []string{"hypothesis", "status"})

	// ActiveSessions tracks the number of sessions held in memory
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Sessions currently held in memory.",
	})

	// RequestDuration observes HTTP handling time per route
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent handling dashboard HTTP requests, labeled by route and status code.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"route", "code"})
)

func init() {
	prometheus.MustRegister(UploadsTotal, VerdictsTotal, ActiveSessions, RequestDuration)
}
