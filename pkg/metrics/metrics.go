package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const (
	namespace = "formcheck"
	subsystem = "engine"
)

// Collector records validation run metrics. A nil *Collector is valid and
// records nothing.
//
// Metrics:
//   - formcheck_engine_runs_total: runs by operation (form, group, component, server)
//   - formcheck_engine_pass_duration_seconds: pass latency by pass name
//   - formcheck_engine_messages_total: produced messages by pass and severity
//   - formcheck_engine_invalid_data_types_total: runs that hit a type-level violation
type Collector struct {
	runs          *prometheus.CounterVec
	passDuration  *prometheus.HistogramVec
	messages      *prometheus.CounterVec
	invalidTypes  prometheus.Counter
	compileErrors prometheus.Counter
}

// NewCollector creates the collectors and registers them with registerer.
// A nil registerer gets a fresh private registry.
func NewCollector(registerer prometheus.Registerer) *Collector {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	c := &Collector{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_total",
				Help:      "Validation runs by operation",
			},
			[]string{"operation"},
		),
		passDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pass_duration_seconds",
				Help:      "Duration of a single validation pass",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"pass"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "messages_total",
				Help:      "Validation messages produced by pass and severity",
			},
			[]string{"pass", "severity"},
		),
		invalidTypes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "invalid_data_types_total",
			Help:      "Runs that found a type-level schema violation",
		}),
		compileErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "compile_errors_total",
			Help:      "Schema validators that failed to compile",
		}),
	}
	registerer.MustRegister(c.runs, c.passDuration, c.messages, c.invalidTypes, c.compileErrors)
	return c
}

// Run counts one validation run.
func (c *Collector) Run(operation string) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(operation).Inc()
}

// Pass records the duration of a pass and the messages it produced, keyed
// by severity label.
func (c *Collector) Pass(pass string, elapsed time.Duration, counts map[string]int) {
	if c == nil {
		return
	}
	c.passDuration.WithLabelValues(pass).Observe(elapsed.Seconds())
	for severity, n := range counts {
		if n > 0 {
			c.messages.WithLabelValues(pass, severity).Add(float64(n))
		}
	}
}

// InvalidDataTypes counts a run that found a type-level violation.
func (c *Collector) InvalidDataTypes() {
	if c == nil {
		return
	}
	c.invalidTypes.Inc()
}

// CompileError counts a schema compilation failure.
func (c *Collector) CompileError() {
	if c == nil {
		return
	}
	c.compileErrors.Inc()
}

// WriteText writes every metric family gatherer holds to w in the
// Prometheus text exposition format.
func WriteText(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("metrics: write %s: %w", family.GetName(), err)
		}
	}
	return nil
}
