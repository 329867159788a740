package main

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrNotConverged = errors.New("nnls did not converge")

// LinearModel is y = sum(coef_i * x_i) without intercept.
type LinearModel struct {
	Features     []string
	Coefficients []float64
}

func (m LinearModel) Predict(x []float64) float64 {
	return floats.Dot(m.Coefficients, x)
}

func (m LinearModel) PredictAll(rows [][]float64) []float64 {
	predictions := make([]float64, len(rows))
	for i, row := range rows {
		predictions[i] = m.Predict(row)
	}
	return predictions
}

// Score is the coefficient of determination of the model on the given
// samples.
func (m LinearModel) Score(rows [][]float64, y []float64) float64 {
	return stat.RSquaredFrom(m.PredictAll(rows), y, nil)
}

// FitNonNegative fits a no-intercept linear model with non-negative
// coefficients.
func FitNonNegative(features []string, rows [][]float64, y []float64) (LinearModel, error) {
	if len(rows) == 0 {
		return LinearModel{}, fmt.Errorf("%w: no samples to fit", ErrNoInputs)
	}
	if len(features) == 0 {
		return LinearModel{}, fmt.Errorf("no features to fit")
	}
	if len(rows) != len(y) {
		return LinearModel{}, fmt.Errorf("%v samples, %v targets", len(rows), len(y))
	}
	a := mat.NewDense(len(rows), len(features), nil)
	for i, row := range rows {
		if len(row) != len(features) {
			return LinearModel{}, fmt.Errorf("sample %v has %v features, expected %v", i, len(row), len(features))
		}
		a.SetRow(i, row)
	}
	coefficients, err := NNLS(a, y, 30*len(features))
	if err != nil {
		return LinearModel{}, err
	}
	return LinearModel{Features: features, Coefficients: coefficients}, nil
}

// NNLS solves min ||Ax - b|| subject to x >= 0 with the Lawson-Hanson active
// set method.
func NNLS(a *mat.Dense, b []float64, maxIter int) ([]float64, error) {
	rows, cols := a.Dims()
	if rows != len(b) {
		return nil, fmt.Errorf("nnls: %v rows, %v targets", rows, len(b))
	}
	target := mat.NewVecDense(rows, b)
	tol := 10 * (math.Nextafter(1, 2) - 1) * mat.Norm(a, 1) * float64(max(rows, cols))

	x := make([]float64, cols)
	passive := make([]bool, cols)
	for iter := 0; iter < maxIter; iter++ {
		w := nnlsGradient(a, target, x)
		j, best := -1, tol
		for k := range w {
			if !passive[k] && w[k] > best {
				j, best = k, w[k]
			}
		}
		if j < 0 {
			return x, nil
		}
		passive[j] = true

		for {
			s, err := solvePassive(a, target, passive)
			if err != nil {
				return nil, fmt.Errorf("nnls: %w", err)
			}
			feasible := true
			alpha := math.Inf(1)
			for k := range s {
				if passive[k] && s[k] <= 0 {
					feasible = false
					alpha = math.Min(alpha, x[k]/(x[k]-s[k]))
				}
			}
			if feasible {
				x = s
				break
			}
			scale := math.Max(1, floats.Max(x))
			for k := range x {
				x[k] += alpha * (s[k] - x[k])
				if passive[k] && x[k] <= 1e-12*scale {
					passive[k] = false
					x[k] = 0
				}
			}
		}
	}
	return nil, ErrNotConverged
}

// nnlsGradient is A^T (b - Ax).
func nnlsGradient(a *mat.Dense, b *mat.VecDense, x []float64) []float64 {
	rows, cols := a.Dims()
	var ax mat.VecDense
	ax.MulVec(a, mat.NewVecDense(cols, x))
	residual := mat.NewVecDense(rows, nil)
	residual.SubVec(b, &ax)
	var w mat.VecDense
	w.MulVec(a.T(), residual)
	return mat.Col(nil, 0, &w)
}

// solvePassive solves the unconstrained least squares problem over the
// passive columns; other coefficients are zero.
func solvePassive(a *mat.Dense, b *mat.VecDense, passive []bool) ([]float64, error) {
	rows, cols := a.Dims()
	index := make([]int, 0, cols)
	for k, ok := range passive {
		if ok {
			index = append(index, k)
		}
	}
	result := make([]float64, cols)
	if len(index) == 0 {
		return result, nil
	}
	sub := mat.NewDense(rows, len(index), nil)
	for c, k := range index {
		sub.SetCol(c, mat.Col(nil, k, a))
	}
	var solution mat.VecDense
	if err := solution.SolveVec(sub, b); err != nil {
		var condition mat.Condition
		if !errors.As(err, &condition) {
			return nil, err
		}
		Logger.Debugf("ill-conditioned least squares step: %v", err)
	}
	for c, k := range index {
		result[k] = solution.AtVec(c)
	}
	return result, nil
}
