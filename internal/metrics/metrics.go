// Package metrics exposes the Prometheus counters and histograms the draw
// and redeem paths are instrumented with.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DrawOutcomesTotal counts every resolved draw by its distinguished
	// outcome: issued, residual, quota_exhausted, already_drawn, not_found,
	// internal_error.
	DrawOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draw_outcomes_total",
			Help: "Count of draw requests by outcome",
		},
		[]string{"outcome"},
	)

	// DrawDuration tracks the latency of the draw path end to end.
	DrawDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "draw_duration_seconds",
			Help: "Duration of draw requests in seconds",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
			},
		},
	)

	// RedeemOutcomesTotal counts every resolved redeem by outcome: redeemed,
	// conflict, internal_error.
	RedeemOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redeem_outcomes_total",
			Help: "Count of redeem requests by outcome",
		},
		[]string{"outcome"},
	)

	// RedeemDuration tracks the latency of the redeem path end to end.
	RedeemDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "redeem_duration_seconds",
			Help: "Duration of redeem requests in seconds",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
			},
		},
	)
)

// RecordDraw records the outcome and latency of a single draw request.
func RecordDraw(outcome string, seconds float64) {
	DrawOutcomesTotal.WithLabelValues(outcome).Inc()
	DrawDuration.Observe(seconds)
}

// RecordRedeem records the outcome and latency of a single redeem request.
func RecordRedeem(outcome string, seconds float64) {
	RedeemOutcomesTotal.WithLabelValues(outcome).Inc()
	RedeemDuration.Observe(seconds)
}
