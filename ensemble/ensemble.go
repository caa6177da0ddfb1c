// Package ensemble combines the point predictions of registered models into a single
// prediction weighted by each model's registered score.
package ensemble

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/aouyang1/go-ensemble-forecaster/metrics"
	"github.com/aouyang1/go-ensemble-forecaster/models"
	"github.com/aouyang1/go-ensemble-forecaster/registry"
	"github.com/aouyang1/go-ensemble-forecaster/stats"
)

const (
	// ModelName is reported as the model of every ensemble prediction
	ModelName = "ensemble"

	// DefaultWeight is used for a member whose registered score is unavailable
	DefaultWeight = 0.5
)

var (
	ErrNoRegistry           = errors.New("no model registry")
	ErrUnsupportedModelType = errors.New("unsupported model type")
	ErrNonFinitePrediction  = errors.New("non-finite member prediction")
	ErrEmptyEnsemble        = errors.New("no ensemble member produced a prediction")
)

// Options configures the predictor
type Options struct {
	// DisableExplanation omits the explanation block from predictions
	DisableExplanation bool

	Metrics *metrics.Metrics
}

func NewDefaultOptions() *Options {
	return &Options{}
}

// Member is the contribution of a single model to an ensemble prediction
type Member struct {
	ID         string           `json:"id"`
	Type       models.ModelType `json:"type"`
	Predicted  float64          `json:"predicted"`
	Confidence float64          `json:"confidence"`
	Weight     float64          `json:"weight"`
}

// Prediction is the combined output for a single feature row
type Prediction struct {
	Predicted   float64      `json:"predicted"`
	Confidence  float64      `json:"confidence"`
	Model       string       `json:"model"`
	Features    []float64    `json:"features"`
	Members     []Member     `json:"members"`
	Explanation *Explanation `json:"explanation,omitempty"`
}

// MemberValues returns the raw point prediction of each contributing member
func (p *Prediction) MemberValues() []float64 {
	if p == nil {
		return nil
	}
	vals := make([]float64, 0, len(p.Members))
	for _, m := range p.Members {
		vals = append(vals, m.Predicted)
	}
	return vals
}

// Predictor runs ensemble predictions against models held in a registry
type Predictor struct {
	reg *registry.Registry
	opt *Options
}

func New(reg *registry.Registry, opt *Options) (*Predictor, error) {
	if reg == nil {
		return nil, ErrNoRegistry
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Predictor{reg: reg, opt: opt}, nil
}

// Predict combines the predictions of the models in ids for the feature row x. Members that
// are missing, of an unknown type or fail to predict are skipped. ErrEmptyEnsemble is
// returned, joined with every member error, when no member succeeds.
func (p *Predictor) Predict(ids []string, x []float64) (*Prediction, error) {
	members := make([]Member, 0, len(ids))
	var memberErrs []error
	for _, id := range ids {
		member, err := p.predictMember(id, x)
		if err != nil {
			slog.Warn("skipping ensemble member", "id", id, "error", err.Error())
			p.opt.Metrics.ObserveMemberFailure(failureReason(err))
			memberErrs = append(memberErrs, err)
			continue
		}
		members = append(members, member)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%d requested models, %w", len(ids), errors.Join(append([]error{ErrEmptyEnsemble}, memberErrs...)...))
	}

	var totalWeight float64
	for _, m := range members {
		totalWeight += m.Weight
	}
	if totalWeight == 0 {
		for i := range members {
			members[i].Weight = 1.0
		}
		totalWeight = float64(len(members))
	}

	var predicted, confidence float64
	for _, m := range members {
		predicted += m.Predicted * m.Weight
		confidence += m.Confidence * m.Weight
	}
	predicted /= totalWeight
	confidence = stats.Clamp(confidence/totalWeight, models.MinConfidence, models.MaxConfidence)

	features := make([]float64, len(x))
	copy(features, x)

	res := &Prediction{
		Predicted:  predicted,
		Confidence: confidence,
		Model:      ModelName,
		Features:   features,
		Members:    members,
	}
	if !p.opt.DisableExplanation {
		res.Explanation = NewExplanation(confidence)
	}
	p.opt.Metrics.ObservePrediction()
	return res, nil
}

func (p *Predictor) predictMember(id string, x []float64) (Member, error) {
	m, err := p.reg.Get(id)
	if err != nil {
		return Member{}, err
	}

	val, conf, err := dispatch(m, x)
	if err != nil {
		return Member{}, fmt.Errorf("unable to predict with model %s, %w", id, err)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return Member{}, fmt.Errorf("model %s predicted %f, %w", id, val, ErrNonFinitePrediction)
	}

	weight, err := p.reg.Score(id)
	if err != nil || math.IsNaN(weight) {
		weight = DefaultWeight
	}

	return Member{
		ID:         id,
		Type:       m.Type(),
		Predicted:  val,
		Confidence: stats.Clamp(conf, models.MinConfidence, models.MaxConfidence),
		Weight:     math.Max(weight, 0),
	}, nil
}

// dispatch runs the point prediction for each known estimator
func dispatch(m models.Model, x []float64) (float64, float64, error) {
	switch mdl := m.(type) {
	case *models.Linear:
		return mdl.Predict(x)
	case *models.Polynomial:
		return mdl.Predict(x)
	case *models.ExponentialSmoothing:
		return mdl.Predict(x)
	default:
		return 0, 0, fmt.Errorf("model %s of type %s, %w", m.ID(), m.Type(), ErrUnsupportedModelType)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, registry.ErrModelNotFound):
		return "not_found"
	case errors.Is(err, ErrUnsupportedModelType):
		return "unsupported_type"
	case errors.Is(err, ErrNonFinitePrediction):
		return "non_finite"
	default:
		return "predict_error"
	}
}
