package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"promptkit/core"
	"promptkit/engine"
)

// Metrics counts lifecycle events and live core instances.
type Metrics struct {
	LifecycleEvents *prometheus.CounterVec
	LiveCores       prometheus.Gauge
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		LifecycleEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "promptkit_lifecycle_events_total",
			Help: "Lifecycle events handled, by event type and whether state changed",
		}, []string{"event", "changed"}),
		LiveCores: f.NewGauge(prometheus.GaugeOpts{
			Name: "promptkit_live_cores",
			Help: "Core instances constructed and not yet destroyed",
		}),
	}
}

// Observe updates the collectors for one event.
func (m *Metrics) Observe(e core.Event) {
	switch e.Type {
	case core.EventCoreCreated:
		m.LiveCores.Inc()
	case core.EventCoreDestroyed:
		m.LiveCores.Dec()
	default:
		changed := "false"
		if e.Changed {
			changed = "true"
		}
		m.LifecycleEvents.WithLabelValues(string(e.Type), changed).Inc()
	}
}

// Attach subscribes the collectors to bus. Returns unsubscribe func.
func (m *Metrics) Attach(bus *engine.EventBus) func() {
	return bus.SubscribeAll(func(_ context.Context, e core.Event) { m.Observe(e) })
}
