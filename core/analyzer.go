package core

import (
	"fmt"
	"time"
)

// TimeRange bounds the samples of a window.
type TimeRange struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// Spike is a sample whose CPU usage crossed the critical threshold.
type Spike struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// CPUAnalysis is the CPU section of a report.
type CPUAnalysis struct {
	Stats            SeriesStats `json:"stats"`
	Trend            TrendResult `json:"trend"`
	LoadAverage      float64     `json:"load_average"`
	HighUsagePercent float64     `json:"high_usage_percent"`
	Spikes           []Spike     `json:"spikes"`
}

// MemoryAnalysis is the memory section of a report.
type MemoryAnalysis struct {
	Stats            SeriesStats   `json:"stats"`
	Trend            TrendResult   `json:"trend"`
	HighUsagePercent float64       `json:"high_usage_percent"`
	LeakFindings     []LeakFinding `json:"leak_findings"`
}

// DiskAnalysis is the disk section of a report.
type DiskAnalysis struct {
	Stats            SeriesStats `json:"stats"`
	Trend            TrendResult `json:"trend"`
	HighUsagePercent float64     `json:"high_usage_percent"`
}

// Summary condenses a report for quick display.
type Summary struct {
	HealthStatus         HealthStatus `json:"health_status"`
	HealthScore          int          `json:"health_score"`
	KeyFindings          []string     `json:"key_findings"`
	CriticalIssues       []string     `json:"critical_issues"`
	RecommendationsCount int          `json:"recommendations_count"`
	AnomaliesCount       int          `json:"anomalies_count"`
}

// AnalysisReport is the complete diagnosis of one window. It is
// self-contained and JSON serializable.
type AnalysisReport struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	DataPoints      int              `json:"data_points"`
	TimeRange       TimeRange        `json:"time_range"`
	Health          HealthAssessment `json:"health"`
	CPU             CPUAnalysis      `json:"cpu"`
	Memory          MemoryAnalysis   `json:"memory"`
	Disk            DiskAnalysis     `json:"disk"`
	Anomalies       []Anomaly        `json:"anomalies"`
	Processes       ProcessAnalysis  `json:"processes"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         Summary          `json:"summary"`
}

// Analyzer runs the analysis pipeline over a window of samples. It keeps no
// state between calls and may be shared by goroutines analyzing disjoint
// snapshots.
type Analyzer struct {
	config AnalyzerConfig
	now    func() time.Time
}

// NewAnalyzer validates config and returns an Analyzer.
func NewAnalyzer(config AnalyzerConfig) (*Analyzer, error) {
	if err := ValidateAnalyzerConfig(config); err != nil {
		return nil, err
	}
	return &Analyzer{config: config, now: time.Now}, nil
}

// Analyze diagnoses samples. Samples are analyzed in timestamp order; the
// input slice is not modified. An empty window returns ErrNoData.
func (a *Analyzer) Analyze(samples []Sample) (*AnalysisReport, error) {
	if len(samples) == 0 {
		return nil, ErrNoData
	}

	ordered := orderedCopy(samples)
	t := a.config.Thresholds

	cpuValues, cpuPoints := metricSeries(ordered, cpuOf)
	memValues, memPoints := metricSeries(ordered, memoryOf)
	diskValues, diskPoints := metricSeries(ordered, diskOf)
	loadValues, _ := metricSeries(ordered, loadOf)

	cpuStats, err := ComputeStats(cpuValues)
	if err != nil {
		return nil, fmt.Errorf("cpu: %w", err)
	}
	memStats, err := ComputeStats(memValues)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}
	diskStats, err := ComputeStats(diskValues)
	if err != nil {
		return nil, fmt.Errorf("disk: %w", err)
	}

	report := &AnalysisReport{
		GeneratedAt: a.now(),
		DataPoints:  len(ordered),
		TimeRange:   timeRangeOf(ordered),
		Health:      ScoreHealth(cpuStats, memStats, t),
		CPU: CPUAnalysis{
			Stats:            cpuStats,
			Trend:            EstimateTrend(cpuValues, a.config.Trend),
			LoadAverage:      mean(loadValues),
			HighUsagePercent: percentAbove(cpuValues, t.CPUHigh),
			Spikes:           spikesAbove(cpuPoints, t.CPUCritical),
		},
		Memory: MemoryAnalysis{
			Stats:            memStats,
			Trend:            EstimateTrend(memValues, a.config.Trend),
			HighUsagePercent: percentAbove(memValues, t.MemoryHigh),
			LeakFindings:     nonNil(DetectMemoryLeak(memValues, a.config.Leak)),
		},
		Disk: DiskAnalysis{
			Stats:            diskStats,
			Trend:            EstimateTrend(diskValues, a.config.Trend),
			HighUsagePercent: percentAbove(diskValues, t.DiskHigh),
		},
		Processes:       AggregateProcesses(ordered, a.config.TopN),
		Recommendations: Recommend(ordered[len(ordered)-1], a.config.Recommendations, t),
	}

	anomalies := make([]Anomaly, 0)
	anomalies = append(anomalies, DetectAnomalies("cpu", cpuPoints, t.CPUCritical, a.config.Anomaly)...)
	anomalies = append(anomalies, DetectAnomalies("memory", memPoints, t.MemoryCritical, a.config.Anomaly)...)
	anomalies = append(anomalies, DetectAnomalies("disk", diskPoints, t.DiskCritical, a.config.Anomaly)...)
	report.Anomalies = anomalies

	report.Summary = a.summarize(report)
	return report, nil
}

func (a *Analyzer) summarize(report *AnalysisReport) Summary {
	t := a.config.Thresholds
	summary := Summary{
		HealthStatus:         report.Health.Status,
		HealthScore:          report.Health.Score,
		KeyFindings:          make([]string, 0),
		CriticalIssues:       make([]string, 0),
		RecommendationsCount: len(report.Recommendations),
		AnomaliesCount:       len(report.Anomalies),
	}

	if report.CPU.Stats.Mean > t.CPUHigh {
		summary.KeyFindings = append(summary.KeyFindings,
			fmt.Sprintf("Average CPU usage is high: %.1f%%", report.CPU.Stats.Mean))
	}
	if report.Memory.Stats.Mean > t.MemoryHigh {
		summary.KeyFindings = append(summary.KeyFindings,
			fmt.Sprintf("Average memory usage is high: %.1f%%", report.Memory.Stats.Mean))
	}
	if report.Disk.Stats.Mean > t.DiskHigh {
		summary.KeyFindings = append(summary.KeyFindings,
			fmt.Sprintf("Average disk usage is high: %.1f%%", report.Disk.Stats.Mean))
	}

	for _, rec := range report.Recommendations {
		if rec.Priority == PriorityHigh {
			summary.CriticalIssues = append(summary.CriticalIssues, rec.Title)
		}
	}
	return summary
}

func timeRangeOf(ordered []Sample) TimeRange {
	start := ordered[0].Timestamp
	end := ordered[len(ordered)-1].Timestamp
	return TimeRange{Start: start, End: end, Duration: end.Sub(start)}
}

func spikesAbove(points []Point, threshold float64) []Spike {
	spikes := make([]Spike, 0)
	for i, p := range points {
		if p.Value > threshold {
			spikes = append(spikes, Spike{Index: i, Timestamp: p.Timestamp, Value: p.Value})
		}
	}
	return spikes
}

func nonNil(findings []LeakFinding) []LeakFinding {
	if findings == nil {
		return make([]LeakFinding, 0)
	}
	return findings
}
