package timedataset

import (
	"testing"

	"github.com/aouyang1/go-ensemble-forecaster/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuarterlyDataset(t *testing.T) {
	testData := map[string]struct {
		obs      []Observation
		expected *TimeDataset
		err      error
	}{
		"no observations": {
			err: ErrNoObservations,
		},
		"invalid period": {
			obs: []Observation{{"2024-Q1", 1}, {"2024-M2", 2}},
			err: period.ErrInvalidPeriod,
		},
		"duplicate period": {
			obs: []Observation{{"2024-Q1", 1}, {"2024-Q2", 2}, {"2024-Q1", 3}},
			err: ErrDuplicatePeriod,
		},
		"sorted input": {
			obs: []Observation{{"2023-Q4", 1}, {"2024-Q1", 2}},
			expected: &TimeDataset{
				Periods: []period.Quarter{{Year: 2023, Q: 4}, {Year: 2024, Q: 1}},
				Y:       []float64{1, 2},
			},
		},
		"unsorted input": {
			obs: []Observation{{"2024-Q2", 3}, {"2023-Q4", 1}, {"2024-Q1", 2}},
			expected: &TimeDataset{
				Periods: []period.Quarter{{Year: 2023, Q: 4}, {Year: 2024, Q: 1}, {Year: 2024, Q: 2}},
				Y:       []float64{1, 2, 3},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ds, err := NewQuarterlyDataset(td.obs)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, ds)
		})
	}
}

func TestNewUnivariateDatasetLenMismatch(t *testing.T) {
	_, err := NewUnivariateDataset([]period.Quarter{{Year: 2024, Q: 1}}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrDatasetLenMismatch)
}

func TestDatasetAccessors(t *testing.T) {
	obs := []Observation{{"2024-Q1", 1}, {"2024-Q2", 2}, {"2024-Q3", 3}, {"2024-Q4", 4}}
	ds, err := NewQuarterlyDataset(obs)
	require.Nil(t, err)

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, period.Quarter{Year: 2024, Q: 4}, ds.LastPeriod())
	assert.Equal(t, []float64{2, 3, 4}, ds.Tail(3))
	assert.Equal(t, []float64{1, 2, 3, 4}, ds.Tail(10))
}
