package models

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aouyang1/go-ensemble-forecaster/feature"
	"github.com/aouyang1/go-ensemble-forecaster/linearmodel"
	mat_ "github.com/aouyang1/go-ensemble-forecaster/mat"
	"github.com/aouyang1/go-ensemble-forecaster/stats"
	"gonum.org/v1/gonum/mat"
)

// Polynomial models the target as P(lag1). The polynomial is evaluated on lag1 centered on
// its training mean.
type Polynomial struct {
	artifact

	requestedOrder int
	center         float64
	coef           []float64 // coef[p] multiplies (lag1-center)^p
}

// TrainPolynomial fits a least squares polynomial of lag1. When the design cannot support the
// requested order, the highest solvable order is used instead.
func TrainPolynomial(tbl *feature.Table, opt *Options) (*Polynomial, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if tbl.Rows() == 0 {
		return nil, fmt.Errorf("no training rows for polynomial regression, %w", feature.ErrInsufficientData)
	}

	lag1, err := tbl.Column(feature.LabelLag1)
	if err != nil {
		return nil, err
	}

	p := &Polynomial{
		requestedOrder: opt.PolynomialOrder,
		center:         stats.Mean(lag1),
	}
	x := make([]float64, len(lag1))
	for i, v := range lag1 {
		x[i] = v - p.center
	}

	var fit *lag1Fit
	for order := opt.PolynomialOrder; order >= 1; order-- {
		fit, err = fitLag1Polynomial(x, tbl.Y, order)
		if errors.Is(err, linearmodel.ErrRankDeficient) || errors.Is(err, linearmodel.ErrUnderdetermined) {
			slog.Warn("reducing polynomial order", "order", order, "rows", tbl.Rows(), "error", err.Error())
			fit = nil
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("unable to fit polynomial regression of order %d, %w", order, err)
		}
		break
	}
	if fit == nil {
		fit = constantFit(stats.Mean(tbl.Y), len(x))
	}
	p.coef = append([]float64{fit.intercept}, fit.coef...)

	perf, err := NewPerformance(fit.fitted, tbl.Y)
	if err != nil {
		return nil, err
	}
	p.artifact = newArtifact(opt, perf)
	return p, nil
}

func (p *Polynomial) predict(lag1 float64) float64 {
	x := lag1 - p.center
	var res float64
	for i := len(p.coef) - 1; i >= 0; i-- {
		res = res*x + p.coef[i]
	}
	return res
}

func (p *Polynomial) Type() ModelType {
	return ModelTypePolynomial
}

// Predict evaluates the polynomial at x[0], the lag1 feature
func (p *Polynomial) Predict(x []float64) (float64, float64, error) {
	if len(x) == 0 {
		return 0, 0, ErrNoFeatures
	}
	return p.predict(x[feature.IdxLag1]), p.confidence(), nil
}

// Order returns the order of the fitted polynomial, which may be lower than requested
func (p *Polynomial) Order() int {
	return len(p.coef) - 1
}

// RequestedOrder returns the order the polynomial was configured with
func (p *Polynomial) RequestedOrder() int {
	return p.requestedOrder
}

// Coef returns the coefficients of the centered polynomial, lowest power first
func (p *Polynomial) Coef() []float64 {
	c := make([]float64, len(p.coef))
	copy(c, p.coef)
	return c
}

func (p *Polynomial) Center() float64 {
	return p.center
}

func (p *Polynomial) Params() map[string]float64 {
	params := map[string]float64{
		"order":           float64(p.Order()),
		"requested_order": float64(p.RequestedOrder()),
		"center":          p.center,
	}
	for i, c := range p.coef {
		params["c"+strconv.Itoa(i)] = c
	}
	return params
}

func vandermonde(x []float64, order int) (*mat.Dense, error) {
	if len(x) == 0 {
		return nil, feature.ErrInsufficientData
	}
	return mat_.Vandermonde(x, order)
}
