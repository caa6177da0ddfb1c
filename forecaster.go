// Package forecaster produces multi-step quarterly forecasts from an ensemble of freshly
// trained estimators along with a seasonal decomposition of the history.
package forecaster

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-ensemble-forecaster/ensemble"
	"github.com/aouyang1/go-ensemble-forecaster/feature"
	"github.com/aouyang1/go-ensemble-forecaster/metrics"
	"github.com/aouyang1/go-ensemble-forecaster/models"
	"github.com/aouyang1/go-ensemble-forecaster/registry"
	"github.com/aouyang1/go-ensemble-forecaster/seasonality"
	"github.com/aouyang1/go-ensemble-forecaster/stats"
	"github.com/aouyang1/go-ensemble-forecaster/timedataset"
	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientData is the same error value as feature.ErrInsufficientData
	ErrInsufficientData = feature.ErrInsufficientData
	ErrInvalidHorizon   = errors.New("periods ahead must be at least 1")
)

// Forecaster owns a model registry and trains, registers and combines estimators
type Forecaster struct {
	opt *Options

	reg        *registry.Registry
	ensemble   *ensemble.Predictor
	decomposer *seasonality.Decomposer
	metrics    *metrics.Metrics
}

// New creates a new instance of a Forecaster using the provided options. If no options are
// provided a default is used.
func New(opt *Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	f := &Forecaster{
		opt:        opt,
		reg:        registry.New(opt.ModelOptions.NowFunc),
		decomposer: seasonality.NewDecomposer(),
		metrics:    metrics.New(opt.Registerer),
	}

	f.ensemble, err = ensemble.New(f.reg, &ensemble.Options{
		DisableExplanation: opt.DisableExplanation,
		Metrics:            f.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize ensemble predictor, %w", err)
	}
	return f, nil
}

// Forecast predicts periodsAhead quarters past the last observation
func (f *Forecaster) Forecast(obs []timedataset.Observation, periodsAhead int) (*Results, error) {
	return f.ForecastWithFeatures(obs, nil, periodsAhead)
}

// ForecastWithFeatures predicts periodsAhead quarters past the last observation using extra
// per period features. Extra features of future quarters are looked up by their period label.
// Each step feeds its prediction back as the lag1 of the following step.
func (f *Forecaster) ForecastWithFeatures(obs []timedataset.Observation, extra feature.Extra, periodsAhead int) (res *Results, err error) {
	start := time.Now()
	defer func() {
		f.metrics.ObserveForecast(start, err)
	}()

	if periodsAhead < 1 {
		return nil, fmt.Errorf("got %d, %w", periodsAhead, ErrInvalidHorizon)
	}
	td, err := timedataset.NewQuarterlyDataset(obs)
	if err != nil {
		return nil, fmt.Errorf("unable to create training dataset, %w", err)
	}
	if td.Len() < MinForecastObservations {
		return nil, fmt.Errorf("need at least %d observations to forecast, got %d, %w",
			MinForecastObservations, td.Len(), ErrInsufficientData)
	}

	tbl, err := feature.Build(td, extra)
	if err != nil {
		return nil, fmt.Errorf("unable to build features, %w", err)
	}

	trained, err := f.trainAll(tbl, td.Y)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(trained))
	r2 := make([]float64, 0, len(trained))
	for _, m := range trained {
		ids = append(ids, m.ID())
		r2 = append(r2, m.Performance().R2)
	}

	seas, err := f.decomposer.Decompose(td)
	if err != nil {
		return nil, fmt.Errorf("unable to decompose seasonality, %w", err)
	}

	predictions, err := f.rollForward(td, tbl, extra, ids, periodsAhead)
	if err != nil {
		return nil, err
	}

	res = &Results{
		Predictions:   predictions,
		ModelAccuracy: int(decimal.NewFromFloat(100.0 * stats.Mean(r2)).Round(0).IntPart()),
		ModelType:     ensemble.ModelName,
		TrainingData: TrainingData{
			Samples:      tbl.Rows(),
			Periods:      td.Len(),
			Features:     tbl.Width(),
			FeatureNames: tbl.Labels.Names(),
		},
		Metadata: Metadata{
			GeneratedAt:      f.opt.ModelOptions.NowFunc(),
			LastPeriod:       td.LastPeriod().String(),
			PeriodsAhead:     periodsAhead,
			ModelIDs:         ids,
			HasSeasonality:   seas.HasSeasonality,
			SeasonalStrength: seas.SeasonalStrength,
			SeasonalPattern:  seas.SeasonalPattern,
		},
	}
	return res, nil
}

// rollForward runs the ensemble one quarter at a time over a window of the last three known
// or predicted values
func (f *Forecaster) rollForward(td *timedataset.TimeDataset, tbl *feature.Table, extra feature.Extra, ids []string, periodsAhead int) ([]Prediction, error) {
	var window [feature.SeedLags]float64
	copy(window[:], td.Tail(feature.SeedLags))

	last := td.LastPeriod()
	extraNames := tbl.ExtraNames()

	predictions := make([]Prediction, 0, periodsAhead)
	for s := 1; s <= periodsAhead; s++ {
		q := last.Add(s)
		x := feature.FutureRow(window, q, td.Len()+s, extra, extraNames)

		pred, err := f.ensemble.Predict(ids, x)
		if err != nil {
			return nil, fmt.Errorf("unable to predict %s, %w", q, err)
		}

		halfWidth := f.opt.IntervalZScore * stats.PopStdDev(pred.MemberValues()...)
		predictions = append(predictions, Prediction{
			Period:    q.String(),
			Predicted: round(pred.Predicted),
			Confidence: Interval{
				Low:  round(pred.Predicted - halfWidth),
				High: round(pred.Predicted + halfWidth),
			},
			Probability: pred.Confidence,
		})

		window[0], window[1], window[2] = window[1], window[2], pred.Predicted
	}
	return predictions, nil
}

// trainAll fits every estimator before registering any of them so a failed fit leaves the
// registry untouched
func (f *Forecaster) trainAll(tbl *feature.Table, values []float64) ([]models.Model, error) {
	lin, err := f.trainLinear(tbl)
	if err != nil {
		return nil, err
	}
	poly, err := f.trainPolynomial(tbl)
	if err != nil {
		return nil, err
	}
	es, err := f.trainExponentialSmoothing(values)
	if err != nil {
		return nil, err
	}

	trained := []models.Model{lin, poly, es}
	for _, m := range trained {
		if err := f.register(m); err != nil {
			return nil, err
		}
	}
	return trained, nil
}

func (f *Forecaster) trainLinear(tbl *feature.Table) (models.Model, error) {
	m, err := models.TrainLinear(tbl, f.opt.ModelOptions)
	f.metrics.ObserveTraining(models.ModelTypeLinear.String(), err)
	if err != nil {
		return nil, fmt.Errorf("unable to train linear model, %w", err)
	}
	return m, nil
}

func (f *Forecaster) trainPolynomial(tbl *feature.Table) (models.Model, error) {
	m, err := models.TrainPolynomial(tbl, f.opt.ModelOptions)
	f.metrics.ObserveTraining(models.ModelTypePolynomial.String(), err)
	if err != nil {
		return nil, fmt.Errorf("unable to train polynomial model, %w", err)
	}
	return m, nil
}

func (f *Forecaster) trainExponentialSmoothing(values []float64) (models.Model, error) {
	m, err := models.TrainExponentialSmoothing(values, f.opt.ModelOptions)
	f.metrics.ObserveTraining(models.ModelTypeExponentialSmoothing.String(), err)
	if err != nil {
		return nil, fmt.Errorf("unable to train exponential smoothing model, %w", err)
	}
	return m, nil
}

// register stores the model scored by its r-squared
func (f *Forecaster) register(m models.Model) error {
	if err := f.reg.Register(m, m.Performance().R2); err != nil {
		return fmt.Errorf("unable to register model, %w", err)
	}
	f.metrics.ObserveRegistry(f.reg.Len(), 0)
	return nil
}

func trainingTable(obs []timedataset.Observation) (*feature.Table, error) {
	td, err := timedataset.NewQuarterlyDataset(obs)
	if err != nil {
		return nil, fmt.Errorf("unable to create training dataset, %w", err)
	}
	tbl, err := feature.Build(td, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build features, %w", err)
	}
	return tbl, nil
}

// TrainLinear trains and registers a linear model returning its id
func (f *Forecaster) TrainLinear(obs []timedataset.Observation) (string, error) {
	tbl, err := trainingTable(obs)
	if err != nil {
		return "", err
	}
	m, err := f.trainLinear(tbl)
	if err != nil {
		return "", err
	}
	if err := f.register(m); err != nil {
		return "", err
	}
	return m.ID(), nil
}

// TrainPolynomial trains and registers a polynomial model returning its id
func (f *Forecaster) TrainPolynomial(obs []timedataset.Observation) (string, error) {
	tbl, err := trainingTable(obs)
	if err != nil {
		return "", err
	}
	m, err := f.trainPolynomial(tbl)
	if err != nil {
		return "", err
	}
	if err := f.register(m); err != nil {
		return "", err
	}
	return m.ID(), nil
}

// TrainExponentialSmoothing trains and registers an exponential smoothing model on the raw
// values returning its id
func (f *Forecaster) TrainExponentialSmoothing(obs []timedataset.Observation) (string, error) {
	td, err := timedataset.NewQuarterlyDataset(obs)
	if err != nil {
		return "", fmt.Errorf("unable to create training dataset, %w", err)
	}
	m, err := f.trainExponentialSmoothing(td.Y)
	if err != nil {
		return "", err
	}
	if err := f.register(m); err != nil {
		return "", err
	}
	return m.ID(), nil
}

// Predict runs an ensemble prediction over the registered models in ids
func (f *Forecaster) Predict(ids []string, x []float64) (*ensemble.Prediction, error) {
	return f.ensemble.Predict(ids, x)
}

// Decompose returns the seasonal decomposition of the observations
func (f *Forecaster) Decompose(obs []timedataset.Observation) (*seasonality.Result, error) {
	td, err := timedataset.NewQuarterlyDataset(obs)
	if err != nil {
		return nil, fmt.Errorf("unable to create dataset, %w", err)
	}
	return f.decomposer.Decompose(td)
}

// ListModels summarizes the registered models, best score first
func (f *Forecaster) ListModels() []registry.Summary {
	return f.reg.List()
}

// Cleanup evicts models older than maxAge and returns the number evicted
func (f *Forecaster) Cleanup(maxAge time.Duration) int {
	evicted := f.reg.Cleanup(maxAge)
	f.metrics.ObserveRegistry(f.reg.Len(), evicted)
	return evicted
}

// Registry returns the model registry backing the forecaster
func (f *Forecaster) Registry() *registry.Registry {
	return f.reg
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
