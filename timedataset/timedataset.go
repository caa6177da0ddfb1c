// Package timedataset holds validated quarterly observation series and synthetic series
// generators used to exercise the forecaster.
package timedataset

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aouyang1/go-ensemble-forecaster/period"
)

var (
	ErrNoObservations     = errors.New("no observations")
	ErrDuplicatePeriod    = errors.New("duplicate observation period")
	ErrNonFiniteValue     = errors.New("observation value is not finite")
	ErrDatasetLenMismatch = errors.New("periods have a different length than observations")
)

// Observation is a single quarterly measurement as supplied by an upstream data source
type Observation struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// TimeDataset represents a quarterly series sorted ascending by period. Both slices are of
// the same length.
type TimeDataset struct {
	Periods []period.Quarter
	Y       []float64
}

// NewQuarterlyDataset parses, validates and sorts the observations by period. The input slice
// is left untouched.
func NewQuarterlyDataset(obs []Observation) (*TimeDataset, error) {
	if len(obs) == 0 {
		return nil, ErrNoObservations
	}

	periods := make([]period.Quarter, 0, len(obs))
	values := make([]float64, 0, len(obs))
	for i, o := range obs {
		q, err := period.Parse(o.Period)
		if err != nil {
			return nil, fmt.Errorf("observation %d, %w", i, err)
		}
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return nil, fmt.Errorf("observation %d at %s, %w", i, q, ErrNonFiniteValue)
		}
		periods = append(periods, q)
		values = append(values, o.Value)
	}
	return NewUnivariateDataset(periods, values)
}

// NewUnivariateDataset returns an instance of a TimeDataset given a period and value slice.
// The pairs are sorted by period and duplicate periods are rejected.
func NewUnivariateDataset(p []period.Quarter, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoObservations
	}
	if len(p) != len(y) {
		return nil, fmt.Errorf(
			"periods have length of %d, but values has a length of %d, %w",
			len(p), len(y), ErrDatasetLenMismatch,
		)
	}

	idx := make([]int, len(p))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return p[idx[i]].Before(p[idx[j]])
	})

	td := &TimeDataset{
		Periods: make([]period.Quarter, len(p)),
		Y:       make([]float64, len(p)),
	}
	for i, src := range idx {
		if i > 0 && p[src] == td.Periods[i-1] {
			return nil, fmt.Errorf("period %s, %w", p[src], ErrDuplicatePeriod)
		}
		td.Periods[i] = p[src]
		td.Y[i] = y[src]
	}
	return td, nil
}

// Len returns the number of observations
func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.Y)
}

// LastPeriod returns the final period of the series
func (td *TimeDataset) LastPeriod() period.Quarter {
	if td.Len() == 0 {
		return period.Quarter{}
	}
	return td.Periods[len(td.Periods)-1]
}

// Tail returns a copy of the last n values, or all values if the series is shorter
func (td *TimeDataset) Tail(n int) []float64 {
	if n > td.Len() {
		n = td.Len()
	}
	out := make([]float64, n)
	copy(out, td.Y[td.Len()-n:])
	return out
}
