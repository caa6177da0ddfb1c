package timedataset

import (
	"math"
	"math/rand/v2"

	"github.com/aouyang1/go-ensemble-forecaster/period"
	"gonum.org/v1/gonum/floats"
)

// GeneratePeriods returns n consecutive quarters beginning at start
func GeneratePeriods(n int, start period.Quarter) []period.Quarter {
	p := make([]period.Quarter, 0, n)
	for i := 0; i < n; i++ {
		p = append(p, start.Add(i))
	}
	return p
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// SetConst overwrites values in the index range [start, end)
func (s Series) SetConst(val float64, start, end int) Series {
	for i := max(start, 0); i < min(end, len(s)); i++ {
		s[i] = val
	}
	return s
}

// Observations pairs the series with consecutive quarters starting at start
func (s Series) Observations(start period.Quarter) []Observation {
	obs := make([]Observation, 0, len(s))
	for i, v := range s {
		obs = append(obs, Observation{Period: start.Add(i).String(), Value: v})
	}
	return obs
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateLinearY produces bias + slope*i
func GenerateLinearY(n int, bias, slope float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, bias+slope*float64(i))
	}
	return Series(y)
}

// GenerateWaveY produces amp*sin(2*pi*(i+offset)/periodLen). A periodLen of 4 yields a
// quarterly seasonal pattern.
func GenerateWaveY(n int, amp, periodLen, offset float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, amp*math.Sin(2.0*math.Pi/periodLen*(float64(i)+offset)))
	}
	return Series(y)
}

// GenerateNoise produces normally distributed noise with the given scale. The seed makes
// the sequence reproducible.
func GenerateNoise(n int, noiseScale float64, seed uint64) Series {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, rng.NormFloat64()*noiseScale)
	}
	return Series(y)
}
