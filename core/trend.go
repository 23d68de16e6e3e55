package core

import "math"

// TrendDirection classifies the sign of a fitted slope.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// TrendResult is a least-squares line fitted to a metric series.
type TrendResult struct {
	Direction  TrendDirection `json:"direction"`
	Slope      float64        `json:"slope"`
	StartValue float64        `json:"start_value"`
	EndValue   float64        `json:"end_value"`
	Change     float64        `json:"change"`
}

// EstimateTrend fits an ordinary least-squares line to values.
//
// The x axis is the sample index 0..N-1, not wall-clock time, so the slope is
// in "metric units per sample". With irregular collection intervals the slope
// is not time-normalized.
//
// Fewer than config.MinSamples values yield a stable trend with zero slope.
func EstimateTrend(values []float64, config TrendConfig) TrendResult {
	result := TrendResult{Direction: TrendStable}
	if len(values) > 0 {
		result.StartValue = values[0]
		result.EndValue = values[len(values)-1]
		result.Change = result.EndValue - result.StartValue
	}
	if len(values) < config.MinSamples {
		return result
	}

	result.Slope = olsSlope(values)
	switch {
	case math.Abs(result.Slope) < config.StableSlope:
		result.Direction = TrendStable
	case result.Slope > 0:
		result.Direction = TrendIncreasing
	default:
		result.Direction = TrendDecreasing
	}
	return result
}

// olsSlope returns the least-squares slope of values against their index.
// A zero denominator (a single value) yields 0.
func olsSlope(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	xMean := (n - 1) / 2
	yMean := mean(values)

	var num, den float64
	for i, y := range values {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}
