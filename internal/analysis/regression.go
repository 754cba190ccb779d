package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// RegressionResult is an ordinary least-squares fit of y on x.
type RegressionResult struct {
	N         int     `json:"n"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	R         float64 `json:"r"` // signed: sqrt(R²) carrying the slope's sign
	TStat     float64 `json:"t"`
	P         float64 `json:"p"` // two-tailed, H0: slope = 0
}

// LinearBias fits the trial-sequence bias regression: x is the global trial
// sequence, y the per-trial metric value. A flat slope means no drift in
// ranking quality as the study progresses.
func LinearBias(x, y []float64) (RegressionResult, error) {
	if len(x) != len(y) {
		return RegressionResult{}, fmt.Errorf("regression: x has %d points, y has %d", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return RegressionResult{}, fmt.Errorf("regression: need at least 3 points, got %d", n)
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, intercept, slope)

	r := math.Sqrt(math.Abs(r2))
	if slope < 0 {
		r = -r
	}

	// Residual and x sums for the slope's standard error.
	xMean := Mean(x)
	sse, sxx := 0.0, 0.0
	for i := range x {
		resid := y[i] - (intercept + slope*x[i])
		sse += resid * resid
		dx := x[i] - xMean
		sxx += dx * dx
	}
	if sxx == 0 {
		return RegressionResult{}, fmt.Errorf("regression: x has zero variance")
	}

	res := RegressionResult{
		N:         n,
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
		R:         r,
	}

	se := math.Sqrt(sse / float64(n-2) / sxx)
	if se > 0 {
		res.TStat = slope / se
		tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
		res.P = 2 * (1 - tdist.CDF(math.Abs(res.TStat)))
		if res.P > 1 {
			res.P = 1
		}
	}
	return res, nil
}
