// Package metrics holds the prometheus collectors of the forecasting engine
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qforecast"

// Metrics holds the counters, gauges and histograms updated while training models, running
// ensemble predictions and producing forecasts. A nil *Metrics records nothing.
type Metrics struct {
	ModelsTrained    *prometheus.CounterVec
	TrainingErrors   *prometheus.CounterVec
	Predictions      prometheus.Counter
	MemberFailures   *prometheus.CounterVec
	Forecasts        prometheus.Counter
	ForecastErrors   prometheus.Counter
	ForecastDuration prometheus.Histogram
	RegisteredModels prometheus.Gauge
	EvictedModels    prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves the collectors
// unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ModelsTrained: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "models_trained_total",
				Help:      "Number of models trained per model type",
			},
			[]string{"type"},
		),
		TrainingErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "training_errors_total",
				Help:      "Number of failed model trainings per model type",
			},
			[]string{"type"},
		),
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ensemble_predictions_total",
			Help:      "Number of ensemble predictions produced",
		}),
		MemberFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ensemble_member_failures_total",
				Help:      "Number of ensemble members skipped during prediction per reason",
			},
			[]string{"reason"},
		),
		Forecasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_total",
			Help:      "Number of forecasts produced",
		}),
		ForecastErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_errors_total",
			Help:      "Number of forecasts that returned an error",
		}),
		ForecastDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Time spent producing a forecast",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		RegisteredModels: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_models",
			Help:      "Number of models currently held in the registry",
		}),
		EvictedModels: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evicted_models_total",
			Help:      "Number of models evicted from the registry by age",
		}),
	}
}

func (m *Metrics) ObserveTraining(modelType string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.TrainingErrors.WithLabelValues(modelType).Inc()
		return
	}
	m.ModelsTrained.WithLabelValues(modelType).Inc()
}

func (m *Metrics) ObservePrediction() {
	if m == nil {
		return
	}
	m.Predictions.Inc()
}

// ObserveMemberFailure counts an ensemble member skipped for reason
func (m *Metrics) ObserveMemberFailure(reason string) {
	if m == nil {
		return
	}
	m.MemberFailures.WithLabelValues(reason).Inc()
}

// ObserveForecast records the outcome and latency of a forecast started at start
func (m *Metrics) ObserveForecast(start time.Time, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ForecastErrors.Inc()
		return
	}
	m.Forecasts.Inc()
	m.ForecastDuration.Observe(time.Since(start).Seconds())
}

// ObserveRegistry sets the registry size and adds any evictions
func (m *Metrics) ObserveRegistry(size, evicted int) {
	if m == nil {
		return
	}
	m.RegisteredModels.Set(float64(size))
	if evicted > 0 {
		m.EvictedModels.Add(float64(evicted))
	}
}
