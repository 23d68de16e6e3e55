package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(DefaultAnalyzerConfig())
	require.NoError(t, err)
	a.now = func() time.Time { return testEpoch }
	return a
}

// samplesOf builds one sample per cpu value, one second apart, with memory
// and disk held constant.
func samplesOf(cpu []float64, memory, disk float64) []Sample {
	samples := make([]Sample, len(cpu))
	for i, c := range cpu {
		samples[i] = Sample{
			Timestamp:     testEpoch.Add(time.Duration(i) * time.Second),
			CPUPercent:    c,
			MemoryPercent: memory,
			DiskPercent:   disk,
			LoadAverage1m: 1.5,
		}
	}
	return samples
}

func TestNewAnalyzer_RejectsInvalidConfig(t *testing.T) {
	config := DefaultAnalyzerConfig()
	config.Thresholds.CPUCritical = 50 // below CPUHigh

	_, err := NewAnalyzer(config)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	a := newTestAnalyzer(t)
	_, err := a.Analyze(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAnalyze_SingleSample(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Analyze(samplesOf([]float64{42}, 30, 10))
	require.NoError(t, err)

	assert.Equal(t, 1, report.DataPoints)
	assert.Equal(t, 0.0, report.CPU.Stats.StdDev)
	assert.Equal(t, TrendStable, report.CPU.Trend.Direction)
	assert.Empty(t, report.Anomalies)
	assert.Empty(t, report.Memory.LeakFindings)
	assert.Equal(t, 100, report.Health.Score)
	assert.Equal(t, time.Duration(0), report.TimeRange.Duration)
}

func TestAnalyze_SteadyLoad(t *testing.T) {
	a := newTestAnalyzer(t)
	cpu := make([]float64, 20)
	for i := range cpu {
		cpu[i] = 30
	}
	report, err := a.Analyze(samplesOf(cpu, 40, 20))
	require.NoError(t, err)

	assert.Equal(t, 100, report.Health.Score)
	assert.Equal(t, HealthGood, report.Health.Status)
	assert.Empty(t, report.Anomalies)
	assert.Empty(t, report.Recommendations)
	assert.Empty(t, report.Summary.KeyFindings)
	assert.Empty(t, report.Summary.CriticalIssues)
	assert.Equal(t, TrendStable, report.CPU.Trend.Direction)
	assert.Equal(t, 1.5, report.CPU.LoadAverage)
	assert.Equal(t, testEpoch, report.GeneratedAt)
	assert.Equal(t, 19*time.Second, report.TimeRange.Duration)
}

func TestAnalyze_CPUSpike(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Analyze(samplesOf([]float64{10, 12, 11, 13, 97, 12}, 40, 20))
	require.NoError(t, err)

	var cpuAnomalies []Anomaly
	for _, an := range report.Anomalies {
		if an.Metric == "cpu" {
			cpuAnomalies = append(cpuAnomalies, an)
		}
	}
	require.Len(t, cpuAnomalies, 2)
	assert.Equal(t, AnomalyThresholdExceeded, cpuAnomalies[0].Kind)
	assert.Equal(t, AnomalyStatisticalDeviation, cpuAnomalies[1].Kind)
	assert.Equal(t, 4, cpuAnomalies[0].Index)

	require.Len(t, report.CPU.Spikes, 1)
	assert.Equal(t, 97.0, report.CPU.Spikes[0].Value)
	assert.Equal(t, 90, report.Health.Score)
	assert.Equal(t, report.Summary.AnomaliesCount, len(report.Anomalies))
}

func TestAnalyze_MemoryLeak(t *testing.T) {
	a := newTestAnalyzer(t)
	memory := []float64{50, 52, 54, 56, 58, 70, 72, 74, 76, 78}
	samples := samplesOf(make([]float64, len(memory)), 0, 0)
	for i := range samples {
		samples[i].MemoryPercent = memory[i]
	}

	report, err := a.Analyze(samples)
	require.NoError(t, err)

	require.Len(t, report.Memory.LeakFindings, 1)
	assert.Equal(t, TrendIncreasing, report.Memory.Trend.Direction)
}

func TestAnalyze_CPUBoundary(t *testing.T) {
	a := newTestAnalyzer(t)

	atHigh, err := a.Analyze(samplesOf([]float64{80.0, 80.0, 80.0, 80.0, 80.0}, 10, 10))
	require.NoError(t, err)
	assert.Empty(t, atHigh.Recommendations)
	assert.Empty(t, atHigh.Summary.KeyFindings)
	assert.Equal(t, 100, atHigh.Health.Score)
	assert.Equal(t, 0.0, atHigh.CPU.HighUsagePercent)

	aboveHigh, err := a.Analyze(samplesOf([]float64{80.01, 80.01, 80.01, 80.01, 80.01}, 10, 10))
	require.NoError(t, err)
	require.Len(t, aboveHigh.Recommendations, 1)
	assert.Equal(t, RecommendCPUMedium, aboveHigh.Recommendations[0].Kind)
	assert.Equal(t, []string{"Average CPU usage is high: 80.0%"}, aboveHigh.Summary.KeyFindings)
	assert.Equal(t, 85, aboveHigh.Health.Score)
	assert.Equal(t, 100.0, aboveHigh.CPU.HighUsagePercent)
	assert.Empty(t, aboveHigh.Anomalies)
}

func TestAnalyze_CriticalIssues(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Analyze(samplesOf([]float64{97, 98, 99}, 96, 10))
	require.NoError(t, err)

	assert.Equal(t, []string{"CPU usage critical", "Memory usage critical"}, report.Summary.CriticalIssues)
	assert.Equal(t, 20, report.Health.Score)
	assert.Equal(t, HealthAttention, report.Summary.HealthStatus)
	assert.Len(t, report.Summary.KeyFindings, 2)
}

func TestAnalyze_RecommendationsUseLatestSample(t *testing.T) {
	a := newTestAnalyzer(t)
	// Average is high but the latest sample is quiet.
	report, err := a.Analyze(samplesOf([]float64{99, 99, 99, 99, 10}, 10, 10))
	require.NoError(t, err)

	assert.Empty(t, report.Recommendations)
	assert.NotEmpty(t, report.Summary.KeyFindings)
}

func TestAnalyze_OutOfOrderInput(t *testing.T) {
	a := newTestAnalyzer(t)
	ordered := samplesOf([]float64{10, 20, 30, 40, 50, 60}, 40, 20)
	shuffled := []Sample{ordered[3], ordered[0], ordered[5], ordered[1], ordered[4], ordered[2]}
	original := make([]Sample, len(shuffled))
	copy(original, shuffled)

	fromOrdered, err := a.Analyze(ordered)
	require.NoError(t, err)
	fromShuffled, err := a.Analyze(shuffled)
	require.NoError(t, err)

	assert.Equal(t, fromOrdered, fromShuffled)
	assert.Equal(t, original, shuffled, "input must not be reordered")
	assert.Equal(t, TrendIncreasing, fromShuffled.CPU.Trend.Direction)
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := newTestAnalyzer(t)
	samples := samplesOf([]float64{15, 85, 40, 99, 20, 60, 30}, 82, 91)
	samples[len(samples)-1].Processes = []ProcessSample{
		{PID: 1, Name: "java", CPUPercent: 65, MemoryPercent: 30},
		{PID: 2, Name: "python", CPUPercent: 55, MemoryPercent: 10},
	}

	first, err := a.Analyze(samples)
	require.NoError(t, err)
	second, err := a.Analyze(samples)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
}

func TestAnalyze_HealthIsMonotonicInCPU(t *testing.T) {
	a := newTestAnalyzer(t)
	previous := 101
	for level := 0.0; level <= 100; level += 5 {
		report, err := a.Analyze(samplesOf([]float64{level, level, level}, 30, 10))
		require.NoError(t, err)
		assert.LessOrEqual(t, report.Health.Score, previous, "cpu level %.0f", level)
		previous = report.Health.Score
	}
}

func TestAnalyze_ReportSerializesEmptySections(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Analyze(samplesOf([]float64{10}, 10, 10))
	require.NoError(t, err)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []interface{}{}, decoded["anomalies"])
	assert.Equal(t, []interface{}{}, decoded["recommendations"])
}
