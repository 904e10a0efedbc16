package distribution

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK      = "ok"
	resultTimeout = "timeout"
	resultError   = "error"
)

type Metrics struct {
	Runs *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "distribution_runs_total",
				Help: "Total number of selector runs by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.Runs)
	return m
}

func (m *Metrics) trackRun(result string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(result).Inc()
}
