package selector

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	errorKindFile    = "file"
	errorKindEntropy = "entropy"
	errorKindIndex   = "index"
)

// Metrics contains the prometheus metrics for the selector. A nil
// *Metrics records nothing.
type Metrics struct {
	Draws        *prometheus.CounterVec
	DrawDuration prometheus.Histogram
	Picks        *prometheus.CounterVec
	Errors       *prometheus.CounterVec
}

// NewMetrics creates and registers the selector metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Draws: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selector_draws_total",
				Help: "Total number of draws requested from the entropy source",
			},
			[]string{"result"},
		),

		DrawDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "selector_draw_duration_seconds",
				Help:    "Time spent waiting for the entropy source",
				Buckets: prometheus.DefBuckets,
			},
		),

		Picks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selector_picks_total",
				Help: "Total number of picks by list index",
			},
			[]string{"index"},
		),

		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selector_errors_total",
				Help: "Total number of failed picks by kind",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.Draws,
		m.DrawDuration,
		m.Picks,
		m.Errors,
	)

	return m
}

func (m *Metrics) trackDraw(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Draws.WithLabelValues(result).Inc()
	m.DrawDuration.Observe(d.Seconds())
}

func (m *Metrics) trackPick(idx int) {
	if m == nil {
		return
	}
	m.Picks.WithLabelValues(strconv.Itoa(idx)).Inc()
}

func (m *Metrics) trackError(kind string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(kind).Inc()
}
