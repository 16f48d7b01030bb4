// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventcounter"

// Metrics groups the collectors updated by the service and jobs. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Ops        *prometheus.CounterVec
	Events     prometheus.Gauge
	WALAppends prometheus.Counter
	Published  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_total",
			Help:      "Tree operations served, by operation.",
		}, []string{"op"}),
		Events: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events",
			Help:      "Distinct event ids currently held.",
		}),
		WALAppends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wal_appends_total",
			Help:      "Records appended to the entry WAL.",
		}),
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox publish attempts, by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.Ops, m.Events, m.WALAppends, m.Published)
	return m
}

func (m *Metrics) ObserveOp(op string) {
	if m == nil {
		return
	}
	m.Ops.WithLabelValues(op).Inc()
}

func (m *Metrics) SetEvents(n int) {
	if m == nil {
		return
	}
	m.Events.Set(float64(n))
}

func (m *Metrics) ObserveWALAppend() {
	if m == nil {
		return
	}
	m.WALAppends.Inc()
}

func (m *Metrics) ObservePublish(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.Published.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
