// Package mat contains helpers for building gonum dense matrices from the row oriented
// slices produced by the feature builder.
package mat

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch    = errors.New("column size mismatch")
	ErrInvalidOrder   = errors.New("polynomial order must be positive")
	ErrColOutOfBounds = errors.New("column is out of bounds")
)

// NewDenseFromArray builds an m x n dense matrix from m rows of equal length n. Empty input
// panics inside gonum with mat.ErrZeroLength.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n < 0 {
		n = 0
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// Column extracts column j from row oriented data
func Column(x [][]float64, j int) ([]float64, error) {
	col := make([]float64, 0, len(x))
	for i, row := range x {
		if j < 0 || j >= len(row) {
			return nil, fmt.Errorf("column %d at row %d, %w", j, i, ErrColOutOfBounds)
		}
		col = append(col, row[j])
	}
	return col, nil
}

// Vandermonde returns the len(x) x order design matrix with columns x^1 .. x^order. The
// constant column is left to the regression's intercept.
func Vandermonde(x []float64, order int) (*mat.Dense, error) {
	if order < 1 {
		return nil, ErrInvalidOrder
	}
	rows := make([][]float64, len(x))
	for i, v := range x {
		row := make([]float64, order)
		for p := 1; p <= order; p++ {
			row[p-1] = math.Pow(v, float64(p))
		}
		rows[i] = row
	}
	return NewDenseFromArray(rows)
}
