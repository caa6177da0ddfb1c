package feature

import (
	"math"
	"testing"

	"github.com/aouyang1/go-ensemble-forecaster/period"
	"github.com/aouyang1/go-ensemble-forecaster/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleDataset(t *testing.T) *timedataset.TimeDataset {
	t.Helper()
	y := timedataset.Series{100, 102, 99, 105, 108, 104, 110, 115}
	td, err := timedataset.NewQuarterlyDataset(y.Observations(period.MustParse("2023-Q1")))
	require.Nil(t, err)
	return td
}

func TestBuild(t *testing.T) {
	td := exampleDataset(t)

	tbl, err := Build(td, nil)
	require.Nil(t, err)

	require.Equal(t, 5, tbl.Rows())
	assert.Equal(t, BaseWidth, tbl.Width())
	assert.Equal(t, []float64{105, 108, 104, 110, 115}, tbl.Y)
	assert.Equal(t, "2023-Q4", tbl.Periods[0].String())
	assert.Equal(t, "2024-Q4", tbl.Periods[4].String())

	expected := []float64{
		99, 102, 100,
		5.0 / 3.0,
		math.Sqrt(14.0 / 9.0),
		0, 0, 0, 1,
		3,
	}
	assert.InDeltaSlice(t, expected, tbl.X[0], 1e-9)

	// 2024-Q1 row
	assert.Equal(t, []float64{1, 0, 0, 0}, tbl.X[1][IdxQ1:IdxQ4+1])
	assert.Equal(t, 4.0, tbl.X[1][IdxTimeIndex])

	lag1, err := tbl.Column(LabelLag1)
	require.Nil(t, err)
	assert.Equal(t, []float64{99, 105, 108, 104, 110}, lag1)

	_, err = tbl.Column("missing")
	assert.ErrorIs(t, err, ErrUnknownFeature)

	assert.Equal(t, 5, tbl.Rows())
	assert.Equal(t, BaseWidth, tbl.Width())
	assert.Equal(t, []string{
		LabelLag1, LabelLag2, LabelLag3, LabelTrend, LabelVolatility,
		LabelQ1, LabelQ2, LabelQ3, LabelQ4, LabelTimeIndex,
	}, tbl.Labels.Names())
}

func TestBuildInsufficientData(t *testing.T) {
	testData := map[string]struct {
		n int
	}{
		"empty dataset":  {0},
		"one":            {1},
		"three seeds":    {3},
		"minimum passes": {4},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			var ds *timedataset.TimeDataset
			if td.n > 0 {
				var err error
				ds, err = timedataset.NewQuarterlyDataset(
					timedataset.GenerateLinearY(td.n, 1, 1).Observations(period.MustParse("2020-Q1")),
				)
				require.Nil(t, err)
			}
			tbl, err := Build(ds, nil)
			if td.n < MinObservations {
				assert.ErrorIs(t, err, ErrInsufficientData)
				assert.Nil(t, tbl)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.n-SeedLags, tbl.Rows())
		})
	}
}

func TestBuildWithExtra(t *testing.T) {
	td := exampleDataset(t)
	extra := Extra{
		"2023-Q4": {"promo": 1, "headcount": 12},
		"2024-Q2": {"headcount": 14},
	}

	tbl, err := Build(td, extra)
	require.Nil(t, err)

	assert.Equal(t, BaseWidth+2, tbl.Width())
	assert.Equal(t, []string{"headcount", "promo"}, tbl.ExtraNames())
	assert.Equal(t, []float64{12, 1}, tbl.X[0][BaseWidth:])
	assert.Equal(t, []float64{0, 0}, tbl.X[1][BaseWidth:])
	assert.Equal(t, []float64{14, 0}, tbl.X[2][BaseWidth:])

	idx, exists := tbl.Labels.Index("promo")
	assert.True(t, exists)
	assert.Equal(t, BaseWidth+1, idx)
}

func TestFutureRow(t *testing.T) {
	window := [SeedLags]float64{104, 110, 115}
	extra := Extra{"2025-Q1": {"promo": 3}}

	row := FutureRow(window, period.MustParse("2025-Q1"), 9, extra, []string{"promo"})

	expected := []float64{
		115, 110, 104,
		5.5,
		math.Sqrt((math.Pow(104-329.0/3, 2) + math.Pow(110-329.0/3, 2) + math.Pow(115-329.0/3, 2)) / 3),
		1, 0, 0, 0,
		9,
		3,
	}
	assert.InDeltaSlice(t, expected, row, 1e-9)
}

func TestExtraNamesAndValues(t *testing.T) {
	e := Extra{"2024-Q1": {"b": 2, "a": 1}, "2024-Q2": {"a": 3}}
	assert.Equal(t, []string{"a", "b"}, e.Names())
	assert.Equal(t, []float64{1, 2}, e.Values(period.MustParse("2024-Q1"), []string{"a", "b"}))
	assert.Equal(t, []float64{0, 0}, e.Values(period.MustParse("2025-Q1"), []string{"a", "b"}))
	assert.Equal(t, []float64{3, 0}, e.Values(period.MustParse("2024-Q2"), []string{"a", "b"}))
}
