// Package metrics provides Prometheus metrics for the concrete strength
// prediction service: prediction counts, latency, the distribution of
// predicted values, and history/export bookkeeping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	PredictionsTotal   prometheus.Counter   // Total successful predictions
	PredictionFailures prometheus.Counter   // Total failed prediction attempts
	PredictionLatency  prometheus.Histogram // End-to-end prediction latency in seconds
	PredictedStrength  prometheus.Histogram // Distribution of predicted strength values
	ModelAge           prometheus.Gauge     // Age of the loaded model artifact in seconds
	HistorySize        prometheus.Gauge     // Current number of history records
	HistoryExports     prometheus.Counter   // Total CSV exports performed
	ErrorsTotal        prometheus.Counter   // Total errors encountered
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for
// tests, which need isolated registration).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful strength predictions",
		}),
		PredictionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed prediction attempts",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Prediction latency in seconds (end-to-end)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		PredictedStrength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "predicted_strength_kg_cm2",
			Help:    "Distribution of predicted compressive strength values",
			Buckets: prometheus.LinearBuckets(0, 70, 11),
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the loaded model artifact in seconds",
		}),
		HistorySize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "history_size",
			Help: "Current number of prediction history records",
		}),
		HistoryExports: factory.NewCounter(prometheus.CounterOpts{
			Name: "history_exports_total",
			Help: "Total number of history CSV exports",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}

// Model handler hooks. These satisfy model.MetricsInterface without the
// model package importing prometheus directly.

func (m *Metrics) PredictionsInc()           { m.PredictionsTotal.Inc() }
func (m *Metrics) FailuresInc()              { m.PredictionFailures.Inc() }
func (m *Metrics) LatencyObserve(v float64)  { m.PredictionLatency.Observe(v) }
func (m *Metrics) StrengthObserve(v float64) { m.PredictedStrength.Observe(v) }
func (m *Metrics) ModelAgeSet(v float64)     { m.ModelAge.Set(v) }

// History hooks.

func (m *Metrics) HistorySizeSet(n int) { m.HistorySize.Set(float64(n)) }
func (m *Metrics) ExportsInc()          { m.HistoryExports.Inc() }
