// Package metrics exposes the process's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

var (
	// PaymentsExpired counts sessions transitioned to expired, split by the
	// path that performed the transition (sweep or lazy read).
	PaymentsExpired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tapmove_payments_expired_total",
		Help: "Payment sessions transitioned to expired.",
	}, []string{"source"})

	// SettlementsProcessed counts settlement attempts by outcome.
	SettlementsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tapmove_settlements_total",
		Help: "Settlement attempts by outcome (confirmed, failed, error).",
	}, []string{"outcome"})

	// WebhookDeliveries counts outbound webhook attempts by result.
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tapmove_webhook_deliveries_total",
		Help: "Webhook delivery attempts by result (sent, skipped, failed).",
	}, []string{"result"})

	// CleanupCandidates tracks terminal sessions past the retention window.
	// The retention scan is observability-only; nothing is deleted.
	CleanupCandidates = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tapmove_cleanup_candidates",
		Help: "Terminal payment sessions older than the retention threshold.",
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
