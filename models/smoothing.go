package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-ensemble-forecaster/feature"
)

var (
	ErrInvalidAlpha   = errors.New("smoothing factor must be in (0, 1]")
	ErrNonFiniteError = errors.New("one step error is not finite")
)

// MinSmoothingObservations is the fewest values needed to score a smoothing factor
const MinSmoothingObservations = 2

// ExponentialSmoothing is simple exponential smoothing of the raw series. Its forecast for
// every future step is the final smoothed level, independent of any feature row.
type ExponentialSmoothing struct {
	artifact

	alpha     float64
	lastLevel float64
}

// TrainExponentialSmoothing grid searches the smoothing factor minimizing the mean squared
// one step error between smoothed[t-1] and values[t]. Ties keep the smaller factor.
func TrainExponentialSmoothing(values []float64, opt *Options) (*ExponentialSmoothing, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if len(values) < MinSmoothingObservations {
		return nil, fmt.Errorf("need at least %d values for exponential smoothing, got %d, %w",
			MinSmoothingObservations, len(values), feature.ErrInsufficientData)
	}

	bestMSE := math.Inf(1)
	var best *ExponentialSmoothing
	var bestPredicted []float64
	for _, alpha := range opt.Alphas {
		smoothed := smooth(values, alpha)
		predicted := smoothed[:len(smoothed)-1]

		mse, err := MSE(predicted, values[1:])
		if err != nil {
			return nil, err
		}
		if mse < bestMSE {
			bestMSE = mse
			bestPredicted = predicted
			best = &ExponentialSmoothing{
				alpha:     alpha,
				lastLevel: smoothed[len(smoothed)-1],
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no finite error across %d smoothing factors, %w", len(opt.Alphas), ErrNonFiniteError)
	}

	perf, err := NewPerformance(bestPredicted, values[1:])
	if err != nil {
		return nil, err
	}
	best.artifact = newArtifact(opt, perf)
	return best, nil
}

// smooth returns the smoothed levels where level[0] = values[0]
func smooth(values []float64, alpha float64) []float64 {
	levels := make([]float64, len(values))
	levels[0] = values[0]
	for t := 1; t < len(values); t++ {
		levels[t] = alpha*values[t] + (1-alpha)*levels[t-1]
	}
	return levels
}

func (e *ExponentialSmoothing) Type() ModelType {
	return ModelTypeExponentialSmoothing
}

// Predict returns the last smoothed level. The feature row is ignored.
func (e *ExponentialSmoothing) Predict(_ []float64) (float64, float64, error) {
	return e.lastLevel, e.confidence(), nil
}

func (e *ExponentialSmoothing) Alpha() float64 {
	return e.alpha
}

func (e *ExponentialSmoothing) LastLevel() float64 {
	return e.lastLevel
}

func (e *ExponentialSmoothing) Params() map[string]float64 {
	return map[string]float64{
		"alpha":      e.alpha,
		"last_level": e.lastLevel,
	}
}
