package transpiler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for runa_transpile_total.
const (
	OutcomeOK         = "ok"
	OutcomeLexError   = "lex_error"
	OutcomeParseError = "parse_error"
	OutcomeSemantic   = "semantic_error"
	OutcomeGenerator  = "generator_error"
)

// Metrics counts transpilations and times each stage.
type Metrics struct {
	transpiles  *prometheus.CounterVec
	stages      *prometheus.HistogramVec
	diagnostics *prometheus.CounterVec
}

// NewMetrics registers the transpiler collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		transpiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runa",
			Name:      "transpile_total",
			Help:      "Total number of transpilations by target and outcome",
		}, []string{"target", "outcome"}),

		stages: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "runa",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each compiler stage in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"stage"}),

		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runa",
			Name:      "diagnostics_total",
			Help:      "Total number of diagnostics reported by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) observeStage(stage string, start time.Time) {
	m.stages.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) recordTranspile(target, outcome string) {
	m.transpiles.WithLabelValues(target, outcome).Inc()
}

func (m *Metrics) recordDiagnostics(kind string, n int) {
	if n > 0 {
		m.diagnostics.WithLabelValues(kind).Add(float64(n))
	}
}
