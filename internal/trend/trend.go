// Package trend fits least-squares lines over time-ordered samples.
package trend

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Direction of a fitted trend.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

// DefaultThreshold is the slope magnitude below which a trend is stable.
const DefaultThreshold = 0.05

// Result summarises a series.
type Result struct {
	Slope     float64   `json:"slope"`
	Mean      float64   `json:"mean"`
	Current   float64   `json:"current"`
	Samples   int       `json:"samples"`
	Direction Direction `json:"direction"`
}

// Slope returns the least-squares slope of values against x = 0..n-1.
// Fewer than two samples have no slope.
func Slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	xMean, _ := stats.Mean(xs)
	yMean, _ := stats.Mean(values)

	var num, den float64
	for i, y := range values {
		dx := xs[i] - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	s := num / den
	if math.Abs(s) < 1e-12 {
		return 0
	}
	return s
}

// Classify maps a slope to a direction using threshold.
func Classify(slope, threshold float64) Direction {
	switch {
	case slope > threshold:
		return Increasing
	case slope < -threshold:
		return Decreasing
	default:
		return Stable
	}
}

// Analyze fits values with DefaultThreshold.
func Analyze(values []float64) Result {
	return AnalyzeWithThreshold(values, DefaultThreshold)
}

// AnalyzeWithThreshold fits values and classifies the slope with threshold.
func AnalyzeWithThreshold(values []float64, threshold float64) Result {
	r := Result{Samples: len(values), Direction: Stable}
	if len(values) == 0 {
		return r
	}
	r.Mean, _ = stats.Mean(values)
	r.Current = values[len(values)-1]
	r.Slope = Slope(values)
	r.Direction = Classify(r.Slope, threshold)
	return r
}

// RelativeSlope is the slope as a fraction of the series mean; zero when the
// mean is zero.
func (r Result) RelativeSlope() float64 {
	if r.Mean == 0 {
		return 0
	}
	return r.Slope / math.Abs(r.Mean)
}
