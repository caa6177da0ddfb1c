package models

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-ensemble-forecaster/feature"
	"github.com/aouyang1/go-ensemble-forecaster/linearmodel"
	"github.com/aouyang1/go-ensemble-forecaster/stats"
	"gonum.org/v1/gonum/mat"
)

// Linear models the target as intercept + slope*lag1. Only the first column of a feature
// row is used.
type Linear struct {
	artifact

	intercept float64
	slope     float64
}

// TrainLinear fits the lag1 regression by ordinary least squares. A constant lag1 column
// leaves only the intercept, the mean of the targets.
func TrainLinear(tbl *feature.Table, opt *Options) (*Linear, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if tbl.Rows() == 0 {
		return nil, fmt.Errorf("no training rows for linear regression, %w", feature.ErrInsufficientData)
	}

	x, err := tbl.Column(feature.LabelLag1)
	if err != nil {
		return nil, err
	}

	l := &Linear{}
	fit, err := fitLag1Polynomial(x, tbl.Y, 1)
	switch {
	case errors.Is(err, linearmodel.ErrRankDeficient), errors.Is(err, linearmodel.ErrUnderdetermined):
		slog.Warn("linear regression degenerate, using intercept only", "rows", tbl.Rows(), "error", err.Error())
		l.intercept = stats.Mean(tbl.Y)
		fit = constantFit(l.intercept, len(x))
	case err != nil:
		return nil, fmt.Errorf("unable to fit linear regression, %w", err)
	default:
		l.intercept = fit.intercept
		l.slope = fit.coef[0]
	}

	perf, err := NewPerformance(fit.fitted, tbl.Y)
	if err != nil {
		return nil, err
	}
	l.artifact = newArtifact(opt, perf)
	return l, nil
}

func (l *Linear) predict(lag1 float64) float64 {
	return l.intercept + l.slope*lag1
}

func (l *Linear) Type() ModelType {
	return ModelTypeLinear
}

// Predict applies the fitted line to x[0], the lag1 feature
func (l *Linear) Predict(x []float64) (float64, float64, error) {
	if len(x) == 0 {
		return 0, 0, ErrNoFeatures
	}
	return l.predict(x[feature.IdxLag1]), l.confidence(), nil
}

func (l *Linear) Intercept() float64 {
	return l.intercept
}

func (l *Linear) Slope() float64 {
	return l.slope
}

func (l *Linear) Params() map[string]float64 {
	return map[string]float64{
		"intercept": l.intercept,
		"slope":     l.slope,
	}
}

// lag1Fit is a least squares polynomial of lag1 along with its in-sample predictions
type lag1Fit struct {
	intercept float64
	coef      []float64
	fitted    []float64
}

func constantFit(level float64, n int) *lag1Fit {
	fitted := make([]float64, n)
	for i := range fitted {
		fitted[i] = level
	}
	return &lag1Fit{intercept: level, fitted: fitted}
}

// fitLag1Polynomial fits y ~ c0 + c1*x + ... + c_order*x^order by QR least squares
func fitLag1Polynomial(x, y []float64, order int) (*lag1Fit, error) {
	design, err := vandermonde(x, order)
	if err != nil {
		return nil, err
	}
	target := make([]float64, len(y))
	copy(target, y)

	ols, err := linearmodel.NewOLSRegression(linearmodel.NewDefaultOLSOptions())
	if err != nil {
		return nil, err
	}
	if err := ols.Fit(design, mat.NewDense(len(target), 1, target)); err != nil {
		return nil, err
	}
	fitted, err := ols.Predict(design)
	if err != nil {
		return nil, fmt.Errorf("unable to compute in-sample predictions, %w", err)
	}
	return &lag1Fit{
		intercept: ols.Intercept(),
		coef:      ols.Coef(),
		fitted:    fitted,
	}, nil
}
