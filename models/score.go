package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-ensemble-forecaster/stats"
	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Performance tracks the fit scores of a model against its training targets
type Performance struct {
	MSE float64 `json:"mse"`
	R2  float64 `json:"r2"`
}

// NewPerformance calculates the fit scores given the predicted and actual input slice values
func NewPerformance(predicted, actual []float64) (Performance, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return Performance{}, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	rs, err := RSquared(predicted, actual)
	if err != nil {
		return Performance{}, fmt.Errorf("unable to compute r-squared, %w", err)
	}
	return Performance{
		MSE: mse,
		R2:  rs,
	}, nil
}

// MSE computes the mean squared error, sum((y-yhat)^2)/n.
// A score of 0 means a perfect match with no errors.
func MSE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return 0, nil
	}

	mse := 0.0
	for i := 0; i < len(actual); i++ {
		mse += math.Pow(actual[i]-predicted[i], 2.0)
	}
	mse /= float64(len(actual))
	return mse, nil
}

// RSquared computes the r squared value between the predicted and actual bounded to [0, 1]
// where 1.0 means perfect fit and 0 represents no relationship. A constant target that is
// predicted exactly scores 1.
func RSquared(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return 0, nil
	}

	r2 := stat.RSquaredFrom(predicted, actual, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return stats.Clamp(r2, 0, 1), nil
}

func clampConfidence(r2 float64) float64 {
	return stats.Clamp(r2, MinConfidence, MaxConfidence)
}
