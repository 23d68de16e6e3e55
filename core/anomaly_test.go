package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointsOf(start time.Time, values ...float64) []Point {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Timestamp: start.Add(time.Duration(i) * time.Second), Value: v}
	}
	return points
}

func TestDetectAnomalies_ThresholdAndDeviation(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := pointsOf(start, 10, 12, 11, 13, 97, 12)

	anomalies := DetectAnomalies("cpu", points, 95, DefaultAnalyzerConfig().Anomaly)
	require.Len(t, anomalies, 2)

	threshold := anomalies[0]
	assert.Equal(t, AnomalyThresholdExceeded, threshold.Kind)
	assert.Equal(t, SeverityHigh, threshold.Severity)
	assert.Equal(t, 4, threshold.Index)
	assert.Equal(t, 97.0, threshold.Value)
	assert.Equal(t, 95.0, threshold.Reference)
	assert.Equal(t, points[4].Timestamp, threshold.Timestamp)
	assert.Equal(t, "cpu", threshold.Metric)

	deviation := anomalies[1]
	assert.Equal(t, AnomalyStatisticalDeviation, deviation.Kind)
	assert.Equal(t, SeverityMedium, deviation.Severity)
	assert.Equal(t, 4, deviation.Index)
	assert.InDelta(t, 155.0/6.0, deviation.Reference, 1e-9)
	assert.Greater(t, deviation.StdDev, 0.0)
}

func TestDetectAnomalies_ThresholdIsStrict(t *testing.T) {
	points := pointsOf(time.Now(), 95, 95, 95, 95, 95)
	anomalies := DetectAnomalies("memory", points, 95, DefaultAnalyzerConfig().Anomaly)
	assert.Empty(t, anomalies)
}

func TestDetectAnomalies_EveryValueAboveThreshold(t *testing.T) {
	points := pointsOf(time.Now(), 96, 97, 98, 99, 100)
	anomalies := DetectAnomalies("cpu", points, 95, DefaultAnalyzerConfig().Anomaly)

	assert.Len(t, anomalies, 5)
	for _, a := range anomalies {
		assert.Equal(t, AnomalyThresholdExceeded, a.Kind)
	}
}

func TestDetectAnomalies_TooFewSamples(t *testing.T) {
	points := pointsOf(time.Now(), 10, 99, 10, 10)
	anomalies := DetectAnomalies("cpu", points, 95, DefaultAnalyzerConfig().Anomaly)
	assert.Empty(t, anomalies)
}

func TestDetectAnomalies_FlatSeries(t *testing.T) {
	points := pointsOf(time.Now(), 20, 20, 20, 20, 20, 20)
	anomalies := DetectAnomalies("cpu", points, 95, DefaultAnalyzerConfig().Anomaly)
	assert.Empty(t, anomalies)
}
