package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records gateway event dispatch outcomes plus the
// inventory conditions that were logged for manual correction.
type WebhookMetrics struct {
	events    *prometheus.CounterVec
	manualFix *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided
// registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Gateway webhook events by kind and outcome.",
	}, []string{"kind", "outcome"})
	manualFix := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_manual_fix_total",
		Help: "Inventory conditions logged for manual correction.",
	}, []string{"reason"})
	reg.MustRegister(events, manualFix)
	return &WebhookMetrics{
		events:    events,
		manualFix: manualFix,
	}
}

// ObserveEvent counts one dispatched event with the given outcome.
func (m *WebhookMetrics) ObserveEvent(kind, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// ObserveManualFix counts one inventory condition requiring manual
// correction.
func (m *WebhookMetrics) ObserveManualFix(reason string) {
	if m == nil || m.manualFix == nil {
		return
	}
	m.manualFix.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
