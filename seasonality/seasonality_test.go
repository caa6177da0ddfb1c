package seasonality

import (
	"testing"

	"github.com/aouyang1/go-ensemble-forecaster/period"
	"github.com/aouyang1/go-ensemble-forecaster/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeShortSeries(t *testing.T) {
	values := []float64{100, 102, 99, 105, 108, 104, 110}

	res, err := NewDecomposer().DecomposeValues(values, period.MustParse("2023-Q1"))
	require.Nil(t, err)

	assert.False(t, res.HasSeasonality)
	assert.Equal(t, period.QuartersPerYear, res.SeasonalPeriod)
	assert.Equal(t, 0.0, res.SeasonalStrength)
	assert.Equal(t, values, res.TrendComponent)
	assert.Equal(t, make([]float64, len(values)), res.SeasonalComponent)
	assert.Equal(t, make([]float64, len(values)), res.ResidualComponent)
	assert.Empty(t, res.SeasonalPattern)
}

func TestDecomposeWave(t *testing.T) {
	amp := 10.0

	testData := map[string]struct {
		start    string
		expected map[string]float64
	}{
		"starting in Q1": {
			start:    "2015-Q1",
			expected: map[string]float64{"Q1": 0, "Q2": 0.9 * amp, "Q3": 0, "Q4": -0.9 * amp},
		},
		"starting in Q3": {
			start:    "2015-Q3",
			expected: map[string]float64{"Q1": 0, "Q2": -0.9 * amp, "Q3": 0, "Q4": 0.9 * amp},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			y := timedataset.GenerateConstY(40, 100).Add(timedataset.GenerateWaveY(40, amp, 4, 0))

			res, err := NewDecomposer().DecomposeValues(y, period.MustParse(td.start))
			require.Nil(t, err)

			assert.True(t, res.HasSeasonality)
			assert.InDelta(t, 0.9, res.SeasonalStrength, 1e-6)

			require.Len(t, res.SeasonalPattern, 4)
			for i, entry := range res.SeasonalPattern {
				assert.Equal(t, period.Quarter{Q: i + 1}.Label(), entry.Period)
				assert.InDelta(t, td.expected[entry.Period], entry.Multiplier, 1e-6, entry.Period)
			}

			for i := range y {
				sum := res.TrendComponent[i] + res.SeasonalComponent[i] + res.ResidualComponent[i]
				assert.InDelta(t, y[i], sum, 1e-9)
			}
		})
	}
}

func TestDecomposeConstant(t *testing.T) {
	y := timedataset.GenerateConstY(12, 50)

	res, err := NewDecomposer().DecomposeValues(y, period.MustParse("2020-Q1"))
	require.Nil(t, err)

	assert.False(t, res.HasSeasonality)
	assert.Equal(t, 0.0, res.SeasonalStrength)
	assert.InDeltaSlice(t, []float64(y), res.TrendComponent, 1e-12)
	assert.InDeltaSlice(t, make([]float64, 12), res.SeasonalComponent, 1e-12)
	require.Len(t, res.SeasonalPattern, 4)
}

func TestDecomposeDataset(t *testing.T) {
	y := timedataset.GenerateLinearY(16, 10, 2).Add(timedataset.GenerateWaveY(16, 5, 4, 0))
	td, err := timedataset.NewQuarterlyDataset(y.Observations(period.MustParse("2019-Q2")))
	require.Nil(t, err)

	res, err := NewDecomposer().Decompose(td)
	require.Nil(t, err)
	assert.Len(t, res.TrendComponent, 16)
	assert.GreaterOrEqual(t, res.SeasonalStrength, 0.0)
	assert.LessOrEqual(t, res.SeasonalStrength, 1.0)
	assert.True(t, res.HasSeasonality)

	_, err = NewDecomposer().Decompose(&timedataset.TimeDataset{})
	assert.ErrorIs(t, err, timedataset.ErrNoObservations)

	_, err = (&Decomposer{Period: 1}).DecomposeValues(y, period.MustParse("2019-Q2"))
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
