// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for report_requests_total.
const (
	OutcomePreflight        = "preflight"
	OutcomeForbiddenOrigin  = "forbidden_origin"
	OutcomeMethodNotAllowed = "method_not_allowed"
	OutcomeBadRequest       = "bad_request"
	OutcomeNotConfigured    = "not_configured"
	OutcomeRelayFailed      = "relay_failed"
	OutcomeOK               = "ok"
)

func init() {
	register(
		reportRequestsTotal,
		telegramSendTotal,
		telegramSendDuration,
	)
}

var (
	reportRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_requests_total",
			Help: "Report submissions by terminal outcome.",
		},
		[]string{"outcome"},
	)

	telegramSendTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_send_total",
			Help: "Outbound sendMessage calls by result (ok|fail).",
		},
		[]string{"result"},
	)

	telegramSendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telegram_send_duration_seconds",
			Help:    "Latency of outbound sendMessage calls in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"result"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}

func IncReportOutcome(outcome string) {
	reportRequestsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveTelegramSend(ok bool, elapsed time.Duration) {
	r := result(ok)
	telegramSendTotal.WithLabelValues(r).Inc()
	telegramSendDuration.WithLabelValues(r).Observe(elapsed.Seconds())
}
