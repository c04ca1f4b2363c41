package session

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/listfuse/internal/fusion"
)

type metrics struct {
	operations *prometheus.CounterVec
	plans      *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listfuse",
			Subsystem: "flush",
			Name:      "operations_total",
			Help:      "Physical operations emitted by flushed plans.",
		}, []string{"kind"}),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listfuse",
			Subsystem: "flush",
			Name:      "plans_total",
			Help:      "Flushed plans by strategy.",
		}, []string{"strategy"}),
	}
	if reg == nil {
		return m
	}
	m.operations = register(reg, m.operations)
	m.plans = register(reg, m.plans)
	return m
}

// register reuses an already registered collector so several sessions can
// share one registry.
func register(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) observe(plan *fusion.Plan) {
	m.operations.WithLabelValues("remove").Add(float64(plan.RemoveCount()))
	m.operations.WithLabelValues("add").Add(float64(plan.AddCount()))
	m.operations.WithLabelValues("update").Add(float64(plan.UpdateCount()))
	m.plans.WithLabelValues(string(plan.Strategy())).Inc()
}
