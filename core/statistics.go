package core

import (
	"fmt"
	"math"
	"sort"
)

// SeriesStats holds descriptive statistics of a numeric series.
type SeriesStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// ComputeStats returns mean, max, min, median and sample standard deviation
// (divisor N-1) of values. StdDev is 0 for a single value.
func ComputeStats(values []float64) (SeriesStats, error) {
	n := len(values)
	if n == 0 {
		return SeriesStats{}, fmt.Errorf("statistics: %w", ErrInsufficientData)
	}

	stats := SeriesStats{
		Count: n,
		Max:   values[0],
		Min:   values[0],
	}

	var sum float64
	for _, v := range values {
		sum += v
		if v > stats.Max {
			stats.Max = v
		}
		if v < stats.Min {
			stats.Min = v
		}
	}
	stats.Mean = sum / float64(n)
	stats.Median = median(values)
	stats.StdDev = stdDev(values, stats.Mean)

	return stats, nil
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

// mean is a convenience wrapper for series already known to be non-empty.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentAbove returns the share (0-100) of values strictly above threshold.
func percentAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values)) * 100
}
