package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testData := map[string]struct {
		label    string
		expected Quarter
		err      error
	}{
		"valid":            {"2024-Q3", Quarter{2024, 3}, nil},
		"lowercase suffix": {"2023-q1", Quarter{2023, 1}, nil},
		"padded":           {" 2025-Q4 ", Quarter{2025, 4}, nil},
		"quarter zero":     {"2024-Q0", Quarter{}, ErrInvalidPeriod},
		"quarter five":     {"2024-Q5", Quarter{}, ErrInvalidPeriod},
		"no separator":     {"2024Q1", Quarter{}, ErrInvalidPeriod},
		"month label":      {"2024-03", Quarter{}, ErrInvalidPeriod},
		"bad year":         {"20x4-Q1", Quarter{}, ErrInvalidPeriod},
		"empty":            {"", Quarter{}, ErrInvalidPeriod},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			q, err := Parse(td.label)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, q)
		})
	}
}

func TestAdd(t *testing.T) {
	testData := map[string]struct {
		start    string
		n        int
		expected string
	}{
		"zero":              {"2024-Q2", 0, "2024-Q2"},
		"same year":         {"2024-Q1", 2, "2024-Q3"},
		"roll over":         {"2024-Q4", 1, "2025-Q1"},
		"multiple years":    {"2024-Q3", 9, "2026-Q4"},
		"backwards":         {"2024-Q1", -1, "2023-Q4"},
		"backwards by year": {"2024-Q2", -8, "2022-Q2"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, MustParse(td.start).Add(td.n).String())
		})
	}
}

func TestOrderingAndBounds(t *testing.T) {
	q := MustParse("2024-Q2")
	assert.True(t, MustParse("2024-Q1").Before(q))
	assert.False(t, q.Before(q))
	assert.True(t, q.Before(MustParse("2025-Q1")))

	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), q.Start())
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), q.End())
	assert.Equal(t, "Q2", q.Label())
	assert.Equal(t, [QuartersPerYear]float64{0, 1, 0, 0}, q.OneHot())
}
