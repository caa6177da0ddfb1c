// Package seasonality splits a quarterly series into additive trend, seasonal and residual
// components and scores how much of the detrended variation is seasonal.
package seasonality

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aouyang1/go-ensemble-forecaster/period"
	"github.com/aouyang1/go-ensemble-forecaster/stats"
	"github.com/aouyang1/go-ensemble-forecaster/timedataset"
)

// StrengthThreshold is the seasonal strength above which a series is considered seasonal
const StrengthThreshold = 0.1

var ErrInvalidPeriod = errors.New("seasonal period must be at least 2")

// PatternEntry is the mean seasonal offset of a single quarter
type PatternEntry struct {
	Period     string  `json:"period"`
	Multiplier float64 `json:"multiplier"`
}

// Result is the additive decomposition value = trend + seasonal + residual
type Result struct {
	HasSeasonality    bool           `json:"has_seasonality"`
	SeasonalPeriod    int            `json:"seasonal_period"`
	SeasonalStrength  float64        `json:"seasonal_strength"`
	SeasonalPattern   []PatternEntry `json:"seasonal_pattern"`
	TrendComponent    []float64      `json:"trend_component"`
	SeasonalComponent []float64      `json:"seasonal_component"`
	ResidualComponent []float64      `json:"residual_component"`
}

// Decomposer performs classical additive decomposition with a fixed seasonal period
type Decomposer struct {
	Period int
}

// NewDecomposer returns a decomposer using the quarterly period
func NewDecomposer() *Decomposer {
	return &Decomposer{Period: period.QuartersPerYear}
}

// Decompose decomposes the values of a sorted quarterly dataset
func (d *Decomposer) Decompose(td *timedataset.TimeDataset) (*Result, error) {
	if td.Len() == 0 {
		return nil, timedataset.ErrNoObservations
	}
	return d.DecomposeValues(td.Y, td.Periods[0])
}

// DecomposeValues decomposes values whose first element was observed in the start quarter.
// A series shorter than two full periods is reported as non seasonal with the values as the
// trend.
func (d *Decomposer) DecomposeValues(values []float64, start period.Quarter) (*Result, error) {
	if d == nil {
		d = NewDecomposer()
	}
	if d.Period < 2 {
		return nil, fmt.Errorf("got period %d, %w", d.Period, ErrInvalidPeriod)
	}

	n := len(values)
	res := &Result{
		SeasonalPeriod:    d.Period,
		TrendComponent:    make([]float64, n),
		SeasonalComponent: make([]float64, n),
		ResidualComponent: make([]float64, n),
	}
	copy(res.TrendComponent, values)

	if n < 2*d.Period {
		slog.Debug("series too short for seasonal decomposition", "observations", n, "period", d.Period)
		return res, nil
	}

	res.TrendComponent = d.trend(values)

	means := d.positionMeans(values, res.TrendComponent)
	for i := 0; i < n; i++ {
		res.SeasonalComponent[i] = means[i%d.Period]
		res.ResidualComponent[i] = values[i] - res.TrendComponent[i] - res.SeasonalComponent[i]
	}

	res.SeasonalStrength = strength(res.SeasonalComponent, res.ResidualComponent)
	res.HasSeasonality = res.SeasonalStrength > StrengthThreshold
	res.SeasonalPattern = d.pattern(means, start)
	return res, nil
}

// trend is the centered moving average over [i-period/2, i+period/2) with the raw value
// kept for the first and last period/2 indices.
func (d *Decomposer) trend(values []float64) []float64 {
	n := len(values)
	half := d.Period / 2

	trend := make([]float64, n)
	copy(trend, values)
	for i := half; i < n-half; i++ {
		var sum float64
		for j := i - half; j < i-half+d.Period; j++ {
			sum += values[j]
		}
		trend[i] = sum / float64(d.Period)
	}
	return trend
}

// positionMeans averages the detrended values of each position index mod period
func (d *Decomposer) positionMeans(values, trend []float64) []float64 {
	sums := make([]float64, d.Period)
	counts := make([]int, d.Period)
	for i := range values {
		pos := i % d.Period
		sums[pos] += values[i] - trend[i]
		counts[pos]++
	}
	for pos := range sums {
		if counts[pos] > 0 {
			sums[pos] /= float64(counts[pos])
		}
	}
	return sums
}

// pattern labels each position with the quarter observed there and orders the entries Q1..Q4
func (d *Decomposer) pattern(means []float64, start period.Quarter) []PatternEntry {
	type labelled struct {
		q     period.Quarter
		entry PatternEntry
	}
	entries := make([]labelled, 0, len(means))
	for pos, m := range means {
		q := start.Add(pos)
		entries = append(entries, labelled{
			q:     q,
			entry: PatternEntry{Period: q.Label(), Multiplier: m},
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].q.Q < entries[j].q.Q
	})

	pattern := make([]PatternEntry, 0, len(entries))
	for _, e := range entries {
		pattern = append(pattern, e.entry)
	}
	return pattern
}

// strength is Var(seasonal) / (Var(seasonal) + Var(residual)), 0 when both are 0
func strength(seasonal, residual []float64) float64 {
	sv := stats.PopVariance(seasonal)
	rv := stats.PopVariance(residual)
	if sv+rv == 0 {
		return 0
	}
	return stats.Clamp(sv/(sv+rv), 0, 1)
}
