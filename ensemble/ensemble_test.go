package ensemble

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-ensemble-forecaster/feature"
	"github.com/aouyang1/go-ensemble-forecaster/metrics"
	"github.com/aouyang1/go-ensemble-forecaster/models"
	"github.com/aouyang1/go-ensemble-forecaster/period"
	"github.com/aouyang1/go-ensemble-forecaster/registry"
	"github.com/aouyang1/go-ensemble-forecaster/timedataset"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func modelOptions(id string) *models.Options {
	return &models.Options{
		NowFunc: func() time.Time { return now },
		IDFunc:  func() string { return id },
	}
}

func flatModel(t *testing.T, id string, level float64) *models.ExponentialSmoothing {
	t.Helper()
	m, err := models.TrainExponentialSmoothing([]float64{level, level, level, level}, modelOptions(id))
	require.Nil(t, err)
	return m
}

type unknownModel struct{}

func (unknownModel) ID() string                      { return "unknown" }
func (unknownModel) Type() models.ModelType          { return models.ModelType(99) }
func (unknownModel) TrainedAt() time.Time            { return now }
func (unknownModel) Params() map[string]float64      { return nil }
func (unknownModel) Performance() models.Performance { return models.Performance{R2: 1} }
func (unknownModel) Predict(x []float64) (float64, float64, error) {
	return 1, 1, nil
}

func TestPredictWeighting(t *testing.T) {
	testData := map[string]struct {
		scoreLow  float64
		scoreHigh float64
		expected  float64
	}{
		"score weighted":          {0.75, 0.25, 12.5},
		"zero weights average":    {0, 0, 15},
		"missing score uses half": {math.NaN(), 0.5, 15},
		"single weighted member":  {1, 0, 10},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			reg := registry.New(func() time.Time { return now })
			require.Nil(t, reg.Register(flatModel(t, "low", 10), td.scoreLow))
			require.Nil(t, reg.Register(flatModel(t, "high", 20), td.scoreHigh))

			p, err := New(reg, nil)
			require.Nil(t, err)

			res, err := p.Predict([]string{"low", "high"}, []float64{1, 2, 3})
			require.Nil(t, err)

			assert.InDelta(t, td.expected, res.Predicted, 1e-9)
			assert.InDelta(t, models.MaxConfidence, res.Confidence, 1e-9)
			assert.Equal(t, ModelName, res.Model)
			assert.Equal(t, []float64{1, 2, 3}, res.Features)
			assert.Equal(t, []float64{10, 20}, res.MemberValues())
			require.NotNil(t, res.Explanation)
			assert.Equal(t, ConfidenceHigh, res.Explanation.ConfidenceLevel)
		})
	}
}

func TestPredictConfidenceFloor(t *testing.T) {
	reg := registry.New(func() time.Time { return now })
	for id, values := range map[string][]float64{
		"even": {0, 10, 0, 10, 0, 10, 0, 10},
		"odd":  {10, 0, 10, 0, 10, 0, 10, 0},
	} {
		m, err := models.TrainExponentialSmoothing(values, modelOptions(id))
		require.Nil(t, err)
		require.Equal(t, 0.0, m.Performance().R2, id)
		require.Nil(t, reg.Register(m, m.Performance().R2))
	}

	p, err := New(reg, nil)
	require.Nil(t, err)

	res, err := p.Predict([]string{"even", "odd"}, []float64{1})
	require.Nil(t, err)
	require.Len(t, res.Members, 2)
	for _, m := range res.Members {
		assert.Equal(t, models.MinConfidence, m.Confidence, m.ID)
	}
	assert.InDelta(t, models.MinConfidence, res.Confidence, 1e-12)
	require.NotNil(t, res.Explanation)
	assert.Equal(t, ConfidenceLow, res.Explanation.ConfidenceLevel)
}

func TestPredictTrainedModels(t *testing.T) {
	y := timedataset.GenerateLinearY(12, 100, 3)
	td, err := timedataset.NewQuarterlyDataset(y.Observations(period.MustParse("2022-Q1")))
	require.Nil(t, err)
	tbl, err := feature.Build(td, nil)
	require.Nil(t, err)

	reg := registry.New(func() time.Time { return now })
	lin, err := models.TrainLinear(tbl, modelOptions("linear"))
	require.Nil(t, err)
	poly, err := models.TrainPolynomial(tbl, modelOptions("poly"))
	require.Nil(t, err)
	es, err := models.TrainExponentialSmoothing(td.Y, modelOptions("es"))
	require.Nil(t, err)
	for _, m := range []models.Model{lin, poly, es} {
		require.Nil(t, reg.Register(m, m.Performance().R2))
	}

	p, err := New(reg, &Options{DisableExplanation: true})
	require.Nil(t, err)

	x := feature.FutureRow([3]float64{127, 130, 133}, period.MustParse("2025-Q1"), 12, nil, nil)
	res, err := p.Predict([]string{"linear", "poly", "es"}, x)
	require.Nil(t, err)

	assert.Nil(t, res.Explanation)
	require.Len(t, res.Members, 3)
	assert.InDelta(t, 136.0, res.Members[0].Predicted, 1e-6)
	assert.InDelta(t, 136.0, res.Members[1].Predicted, 1e-6)
	assert.Equal(t, es.LastLevel(), res.Members[2].Predicted)
	assert.GreaterOrEqual(t, res.Confidence, models.MinConfidence)
	assert.LessOrEqual(t, res.Confidence, models.MaxConfidence)
}

func TestPredictSkipsFailingMembers(t *testing.T) {
	reg := registry.New(func() time.Time { return now })
	require.Nil(t, reg.Register(flatModel(t, "ok", 42), 0.9))
	require.Nil(t, reg.Register(unknownModel{}, 0.9))

	p, err := New(reg, nil)
	require.Nil(t, err)

	res, err := p.Predict([]string{"missing", "unknown", "ok"}, []float64{1})
	require.Nil(t, err)
	require.Len(t, res.Members, 1)
	assert.Equal(t, "ok", res.Members[0].ID)
	assert.Equal(t, 42.0, res.Predicted)
}

func TestPredictEmptyEnsemble(t *testing.T) {
	testData := map[string]struct {
		ids       []string
		memberErr error
	}{
		"no ids":           {nil, nil},
		"all missing":      {[]string{"a", "b"}, registry.ErrModelNotFound},
		"unsupported type": {[]string{"unknown"}, ErrUnsupportedModelType},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			reg := registry.New(func() time.Time { return now })
			require.Nil(t, reg.Register(unknownModel{}, 1))

			p, err := New(reg, nil)
			require.Nil(t, err)

			_, err = p.Predict(td.ids, []float64{1})
			assert.ErrorIs(t, err, ErrEmptyEnsemble)
			if td.memberErr != nil {
				assert.ErrorIs(t, err, td.memberErr)
			}
		})
	}
}

func TestPredictAfterCleanup(t *testing.T) {
	reg := registry.New(func() time.Time { return now })
	require.Nil(t, reg.Register(flatModel(t, "m", 5), 1))
	assert.Equal(t, 1, reg.Cleanup(0))

	p, err := New(reg, nil)
	require.Nil(t, err)
	_, err = p.Predict([]string{"m"}, []float64{5})
	assert.ErrorIs(t, err, ErrEmptyEnsemble)
	assert.ErrorIs(t, err, registry.ErrModelNotFound)
}

func TestPredictMetrics(t *testing.T) {
	reg := registry.New(func() time.Time { return now })
	require.Nil(t, reg.Register(flatModel(t, "ok", 1), 1))

	m := metrics.New(prometheus.NewRegistry())
	p, err := New(reg, &Options{Metrics: m})
	require.Nil(t, err)

	for i := 0; i < 3; i++ {
		_, err := p.Predict([]string{"ok", fmt.Sprintf("gone-%d", i)}, nil)
		require.Nil(t, err)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Predictions))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MemberFailures.WithLabelValues("not_found")))
}

func TestNoRegistry(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNoRegistry)
}

func TestLevelOf(t *testing.T) {
	testData := map[string]struct {
		confidence float64
		expected   ConfidenceLevel
	}{
		"max":             {0.95, ConfidenceHigh},
		"high boundary":   {0.8, ConfidenceMedium},
		"medium":          {0.7, ConfidenceMedium},
		"medium boundary": {0.6, ConfidenceLow},
		"min":             {0.1, ConfidenceLow},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, LevelOf(td.confidence))
		})
	}
}

func TestExplanationIsFixed(t *testing.T) {
	a := NewExplanation(0.9)
	b := NewExplanation(0.2)

	assert.Equal(t, a.FeatureImportance, b.FeatureImportance)
	assert.Equal(t, a.Assumptions, b.Assumptions)
	assert.Equal(t, a.Limitations, b.Limitations)

	var total float64
	for _, fi := range a.FeatureImportance {
		total += fi.Importance
	}
	assert.InDelta(t, 1.0, total, 1e-12)
}
