//-------------------------------------------------------------------------
//
// pgEdge Sales Forecast
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package forecast

import "math"

// fitOLS fits revenue = intercept + slope*x by ordinary least squares.
// A degenerate series (fewer than two points, or zero variance in x) fits a
// flat line through the mean.
func fitOLS(xs, ys []float64) (intercept, slope float64) {
	n := float64(len(xs))
	if len(xs) == 0 {
		return 0, 0
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return meanY, 0
	}

	slope = sxy / sxx
	intercept = meanY - slope*meanX
	return intercept, slope
}

// meanSquaredError evaluates a fitted line on a holdout set. An empty
// holdout yields zero; evaluation is informational only.
func meanSquaredError(intercept, slope float64, xs, ys []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for i := range xs {
		residual := ys[i] - (intercept + slope*xs[i])
		sum += residual * residual
	}
	return sum / float64(len(xs))
}

// sampleStdDev returns the sample standard deviation of ys, zero for fewer
// than two observations.
func sampleStdDev(ys []float64) float64 {
	if len(ys) < 2 {
		return 0
	}
	var sum float64
	for _, y := range ys {
		sum += y
	}
	mean := sum / float64(len(ys))

	var ss float64
	for _, y := range ys {
		d := y - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(ys)-1))
}

// PercentChange returns the relative change from prev to cur in percent.
// A zero baseline is special-cased: 0% when both are zero, 100% otherwise,
// so month-over-month summaries never divide by zero.
func PercentChange(prev, cur float64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return (cur - prev) / prev * 100
}
