package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics tracks outbound webhook delivery outcomes.
type WebhookMetrics struct {
	duration  *prometheus.HistogramVec
	delivered *prometheus.CounterVec
	failed    *prometheus.CounterVec
	skipped   prometheus.Counter
}

// NewWebhookMetrics registers the delivery metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "enlacehub",
		Name:      "webhook_delivery_duration_seconds",
		Help:      "Duration of outbound webhook POSTs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event"})
	delivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "enlacehub",
		Name:      "webhook_delivery_success",
		Help:      "Outbound webhook deliveries acknowledged with a 2xx.",
	}, []string{"event"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "enlacehub",
		Name:      "webhook_delivery_failure",
		Help:      "Outbound webhook deliveries that errored or got a non-2xx.",
	}, []string{"event"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "enlacehub",
		Name:      "webhook_delivery_skipped",
		Help:      "Trigger attempts on missing or inactive webhooks.",
	})
	reg.MustRegister(duration, delivered, failed, skipped)
	return &WebhookMetrics{
		duration:  duration,
		delivered: delivered,
		failed:    failed,
		skipped:   skipped,
	}
}

// ObserveDelivery records one delivery attempt for the given event type.
func (w *WebhookMetrics) ObserveDelivery(event string, duration time.Duration, ok bool) {
	if w == nil || w.duration == nil {
		return
	}
	label := normalizeLabel(event)
	w.duration.WithLabelValues(label).Observe(duration.Seconds())
	if ok {
		w.delivered.WithLabelValues(label).Inc()
		return
	}
	w.failed.WithLabelValues(label).Inc()
}

// IncSkipped counts a trigger that matched no active webhook.
func (w *WebhookMetrics) IncSkipped() {
	if w == nil || w.skipped == nil {
		return
	}
	w.skipped.Inc()
}
