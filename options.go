package forecaster

import (
	"fmt"

	"github.com/aouyang1/go-ensemble-forecaster/models"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MinForecastObservations is the fewest observations accepted by Forecast
	MinForecastObservations = 8

	// DefaultIntervalZScore scales the spread of the member predictions into the forecast
	// interval
	DefaultIntervalZScore = 1.96
)

// Options configures the forecaster
type Options struct {
	// ModelOptions is used when training every estimator
	ModelOptions *models.Options

	// DisableExplanation omits the explanation block from ensemble predictions
	DisableExplanation bool

	// IntervalZScore multiplies the population standard deviation of the member predictions
	// to produce the half width of each forecast interval
	IntervalZScore float64

	// Registerer receives the forecaster metrics. Metrics are kept unregistered if nil.
	Registerer prometheus.Registerer
}

// NewDefaultOptions returns the default forecaster options
func NewDefaultOptions() *Options {
	return &Options{
		ModelOptions:   models.NewDefaultOptions(),
		IntervalZScore: DefaultIntervalZScore,
	}
}

// Validate fills in defaults for any unset option
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	mopt, err := o.ModelOptions.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid model options, %w", err)
	}
	o.ModelOptions = mopt
	if o.IntervalZScore <= 0 {
		o.IntervalZScore = DefaultIntervalZScore
	}
	return o, nil
}
