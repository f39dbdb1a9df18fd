package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the prometheus-backed observability sink injected into the
// dispatcher. It satisfies dispatch.Observer.
type Metrics struct {
	DispatchTotal *prometheus.CounterVec
	DeliveryTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_dispatch_total",
				Help: "Number of dispatched notification events by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		DeliveryTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_push_delivery_total",
				Help: "Number of individual push sends by status",
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.DispatchTotal, m.DeliveryTotal)
	return m
}

// DispatchHandled counts one handled dispatch per event kind.
func (m *Metrics) DispatchHandled(kind string, success bool) {
	outcome := "recorded"
	if !success {
		outcome = "failed"
	}
	m.DispatchTotal.WithLabelValues(kind, outcome).Inc()
}

// DeliverySettled counts the settled per-token sends of one fan-out.
func (m *Metrics) DeliverySettled(succeeded, failed int) {
	if succeeded > 0 {
		m.DeliveryTotal.WithLabelValues("success").Add(float64(succeeded))
	}
	if failed > 0 {
		m.DeliveryTotal.WithLabelValues("failure").Add(float64(failed))
	}
}
