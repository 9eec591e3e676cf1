package simulation

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "coopmas"
	metricsSubsystem = "simulation"
)

// Metrics are the run's prometheus collectors, registered on the registry the
// caller supplies so tests and multiple runs keep independent registries.
type Metrics struct {
	Rounds         prometheus.Counter
	Turns          prometheus.Counter
	MaxCriticality prometheus.Gauge
}

// NewMetrics builds and registers the simulation collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "rounds_total",
			Help:      "Decision rounds completed.",
		}),
		Turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "turns_total",
			Help:      "Actions applied across all agents.",
		}),
		MaxCriticality: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "max_criticality",
			Help:      "Largest criticality observed in the last round.",
		}),
	}

	for _, collector := range []prometheus.Collector{
		m.Rounds, m.Turns, m.MaxCriticality,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}
