package feature

import (
	"errors"
	"fmt"
	"sort"

	mat_ "github.com/aouyang1/go-ensemble-forecaster/mat"
	"github.com/aouyang1/go-ensemble-forecaster/period"
	"github.com/aouyang1/go-ensemble-forecaster/stats"
	"github.com/aouyang1/go-ensemble-forecaster/timedataset"
)

// SeedLags is the number of leading observations consumed as lags before the first row
const SeedLags = 3

// MinObservations is the fewest observations that produce at least one feature row
const MinObservations = SeedLags + 1

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnknownFeature   = errors.New("unknown feature")
)

// Extra is an auxiliary side table of numeric features keyed by period label and then by
// feature name.
type Extra map[string]map[string]float64

// Names returns the sorted union of feature names across every period
func (e Extra) Names() []string {
	set := make(map[string]struct{})
	for _, feats := range e {
		for name := range feats {
			set[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns the values of names for the period. Missing entries are 0.
func (e Extra) Values(p period.Quarter, names []string) []float64 {
	vals := make([]float64, len(names))
	feats, exists := e[p.String()]
	if !exists {
		return vals
	}
	for i, name := range names {
		vals[i] = feats[name]
	}
	return vals
}

// Table is the supervised learning view of a series. Row i of X predicts Y[i] observed at
// Periods[i].
type Table struct {
	X       [][]float64
	Y       []float64
	Periods []period.Quarter
	Labels  *Labels

	extraNames []string
}

// Rows returns the number of training rows
func (t *Table) Rows() int {
	if t == nil {
		return 0
	}
	return len(t.Y)
}

// Width returns the number of columns of each row
func (t *Table) Width() int {
	return t.Labels.Len()
}

// ExtraNames returns the names of the extra columns appended after the base features
func (t *Table) ExtraNames() []string {
	names := make([]string, len(t.extraNames))
	copy(names, t.extraNames)
	return names
}

// Column returns a copy of the named column
func (t *Table) Column(name string) ([]float64, error) {
	idx, exists := t.Labels.Index(name)
	if !exists {
		return nil, fmt.Errorf("column %s, %w", name, ErrUnknownFeature)
	}
	return mat_.Column(t.X, idx)
}

// Build converts the sorted series into feature rows. The first SeedLags observations only
// serve as lags. Fewer than MinObservations observations returns ErrInsufficientData.
func Build(td *timedataset.TimeDataset, extra Extra) (*Table, error) {
	if td.Len() < MinObservations {
		return nil, fmt.Errorf("need at least %d observations to build features, got %d, %w",
			MinObservations, td.Len(), ErrInsufficientData)
	}

	extraNames := extra.Names()
	labels := BaseFeatures()
	for _, name := range extraNames {
		labels = append(labels, Feature{Name: name, Type: FeatureTypeExtra})
	}

	n := td.Len()
	tbl := &Table{
		X:          make([][]float64, 0, n-SeedLags),
		Y:          make([]float64, 0, n-SeedLags),
		Periods:    make([]period.Quarter, 0, n-SeedLags),
		Labels:     NewLabels(labels),
		extraNames: extraNames,
	}

	v := td.Y
	for i := SeedLags; i < n; i++ {
		row := make([]float64, BaseWidth, BaseWidth+len(extraNames))
		row[IdxLag1] = v[i-1]
		row[IdxLag2] = v[i-2]
		row[IdxLag3] = v[i-3]
		row[IdxTrend] = (v[i] - v[i-3]) / 3.0
		row[IdxVolatility] = stats.PopStdDev(v[i-1], v[i-2], v[i-3])
		setQuarter(row, td.Periods[i])
		row[IdxTimeIndex] = float64(i)
		row = append(row, extra.Values(td.Periods[i], extraNames)...)

		tbl.X = append(tbl.X, row)
		tbl.Y = append(tbl.Y, v[i])
		tbl.Periods = append(tbl.Periods, td.Periods[i])
	}
	return tbl, nil
}

// FutureRow builds the synthetic row used when predicting past the end of a series. window
// holds the three most recent known or predicted values, oldest first.
func FutureRow(window [SeedLags]float64, q period.Quarter, timeIndex int, extra Extra, extraNames []string) []float64 {
	lag1, lag2, lag3 := window[2], window[1], window[0]

	row := make([]float64, BaseWidth, BaseWidth+len(extraNames))
	row[IdxLag1] = lag1
	row[IdxLag2] = lag2
	row[IdxLag3] = lag3
	row[IdxTrend] = (lag1 - lag3) / 2.0
	row[IdxVolatility] = stats.PopStdDev(window[:]...)
	setQuarter(row, q)
	row[IdxTimeIndex] = float64(timeIndex)
	return append(row, extra.Values(q, extraNames)...)
}

func setQuarter(row []float64, q period.Quarter) {
	flags := q.OneHot()
	copy(row[IdxQ1:IdxQ4+1], flags[:])
}
