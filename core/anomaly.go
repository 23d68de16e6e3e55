package core

import (
	"math"
	"time"
)

// AnomalyKind tells which rule flagged a sample.
type AnomalyKind string

const (
	AnomalyThresholdExceeded    AnomalyKind = "threshold_exceeded"
	AnomalyStatisticalDeviation AnomalyKind = "statistical_deviation"
)

// Severity ranks anomalies and recommendations.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Anomaly is a single sample flagged as abnormal.
// Reference is the threshold for threshold_exceeded and the series mean for
// statistical_deviation.
type Anomaly struct {
	Kind      AnomalyKind `json:"kind"`
	Metric    string      `json:"metric"`
	Index     int         `json:"index"`
	Timestamp time.Time   `json:"timestamp"`
	Value     float64     `json:"value"`
	Reference float64     `json:"reference"`
	StdDev    float64     `json:"std_dev,omitempty"`
	Severity  Severity    `json:"severity"`
}

// DetectAnomalies flags every point above threshold (high severity) and every
// point whose distance from the series mean exceeds config.StdDevMultiple
// sample standard deviations (medium severity). Mean and deviation are taken
// over the whole series. A point may be reported under both kinds.
//
// Fewer than config.MinSamples points produce no anomalies.
func DetectAnomalies(metric string, points []Point, threshold float64, config AnomalyConfig) []Anomaly {
	if len(points) == 0 || len(points) < config.MinSamples {
		return nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	stats, err := ComputeStats(values)
	if err != nil {
		return nil
	}
	limit := config.StdDevMultiple * stats.StdDev

	var anomalies []Anomaly
	for i, p := range points {
		if p.Value > threshold {
			anomalies = append(anomalies, Anomaly{
				Kind:      AnomalyThresholdExceeded,
				Metric:    metric,
				Index:     i,
				Timestamp: p.Timestamp,
				Value:     p.Value,
				Reference: threshold,
				Severity:  SeverityHigh,
			})
		}
		if stats.StdDev > 0 && math.Abs(p.Value-stats.Mean) > limit {
			anomalies = append(anomalies, Anomaly{
				Kind:      AnomalyStatisticalDeviation,
				Metric:    metric,
				Index:     i,
				Timestamp: p.Timestamp,
				Value:     p.Value,
				Reference: stats.Mean,
				StdDev:    stats.StdDev,
				Severity:  SeverityMedium,
			})
		}
	}
	return anomalies
}
