package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AlertsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_dispatched_total",
			Help: "Total number of alerts routed to a channel (count)",
		},
		[]string{"severity", "status"},
	)

	ChannelSendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "channel_send_duration_ms",
			Help:    "Duration of channel send calls in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"channel", "status"},
	)

	ChannelFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_fallback_total",
			Help: "Total number of fallback deliveries after a primary channel failure (count)",
		},
		[]string{"from", "to"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"operation"},
	)

	SuppressionRuleMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suppression_rule_matches_total",
			Help: "Total number of alerts suppressed by a rule (count)",
		},
		[]string{"rule"},
	)

	DedupLedgerSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dedup_ledger_size",
			Help: "Number of entries currently held by the deduplication ledger (count)",
		},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_requests_total",
			Help: "HTTP requests seen by the ingestion rate limiter (count)",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func init() {
	prometheus.MustRegister(
		AlertsDispatchedTotal,
		ChannelSendDuration,
		ChannelFallbackTotal,
		RetryAttemptsTotal,
		SuppressionRuleMatchesTotal,
		DedupLedgerSize,
		RateLimitRequestsTotal,
		CircuitBreakerState,
	)
}

func ObserveChannelSend(channel string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ChannelSendDuration.WithLabelValues(channel, status).Observe(float64(duration.Milliseconds()))
}
