// Package models is the collection of estimators the ensemble draws from. Each trained model
// is a self contained artifact carrying its fitted parameters and fit scores.
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	// MinConfidence and MaxConfidence bound the confidence any model reports
	MinConfidence = 0.1
	MaxConfidence = 0.95
)

var (
	ErrNoFeatures  = errors.New("no features for prediction")
	ErrInvalidType = errors.New("invalid model type")
)

// ModelType identifies the estimator that produced a model
type ModelType int

const (
	ModelTypeLinear ModelType = iota + 1
	ModelTypePolynomial
	ModelTypeExponentialSmoothing
)

func (t ModelType) String() string {
	switch t {
	case ModelTypeLinear:
		return "linear"
	case ModelTypePolynomial:
		return "polynomial"
	case ModelTypeExponentialSmoothing:
		return "exponential_smoothing"
	default:
		return "unknown"
	}
}

func (t ModelType) MarshalText() ([]byte, error) {
	if t.String() == "unknown" {
		return nil, ErrInvalidType
	}
	return []byte(t.String()), nil
}

func (t *ModelType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "linear":
		*t = ModelTypeLinear
	case "polynomial":
		*t = ModelTypePolynomial
	case "exponential_smoothing":
		*t = ModelTypeExponentialSmoothing
	default:
		return ErrInvalidType
	}
	return nil
}

// Model is a trained artifact that can produce a point prediction and a confidence for a
// feature row.
type Model interface {
	ID() string
	Type() ModelType
	Predict(x []float64) (value float64, confidence float64, err error)
	Performance() Performance
	TrainedAt() time.Time
	Params() map[string]float64
}

// Options controls identity and time stamping of trained models along with estimator
// hyperparameters.
type Options struct {
	NowFunc func() time.Time
	IDFunc  func() string

	// PolynomialOrder is the highest power of lag1 fit by the polynomial estimator
	PolynomialOrder int

	// Alphas is the smoothing factor grid searched by the exponential smoothing estimator
	Alphas []float64
}

const DefaultPolynomialOrder = 2

// DefaultAlphas returns the grid 0.1, 0.2, ... 0.9
func DefaultAlphas() []float64 {
	alphas := make([]float64, 0, 9)
	for i := 1; i <= 9; i++ {
		alphas = append(alphas, float64(i)/10.0)
	}
	return alphas
}

// NewDefaultOptions returns options using the wall clock and random uuids
func NewDefaultOptions() *Options {
	return &Options{
		NowFunc:         time.Now,
		IDFunc:          uuid.NewString,
		PolynomialOrder: DefaultPolynomialOrder,
		Alphas:          DefaultAlphas(),
	}
}

// Validate fills in defaults for any unset option
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.NowFunc == nil {
		o.NowFunc = time.Now
	}
	if o.IDFunc == nil {
		o.IDFunc = uuid.NewString
	}
	if o.PolynomialOrder < 1 {
		o.PolynomialOrder = DefaultPolynomialOrder
	}
	if len(o.Alphas) == 0 {
		o.Alphas = DefaultAlphas()
	}
	for _, a := range o.Alphas {
		if a <= 0 || a > 1 {
			return nil, ErrInvalidAlpha
		}
	}
	return o, nil
}

type artifact struct {
	id        string
	trainedAt time.Time
	perf      Performance
}

func newArtifact(opt *Options, perf Performance) artifact {
	return artifact{
		id:        opt.IDFunc(),
		trainedAt: opt.NowFunc(),
		perf:      perf,
	}
}

func (a artifact) ID() string {
	return a.id
}

func (a artifact) TrainedAt() time.Time {
	return a.trainedAt
}

func (a artifact) Performance() Performance {
	return a.perf
}

// confidence maps the fit r-squared into the allowed confidence range
func (a artifact) confidence() float64 {
	return clampConfidence(a.perf.R2)
}
