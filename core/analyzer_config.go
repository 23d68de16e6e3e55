package core

import "fmt"

// Thresholds are the "high" and "critical" levels for each host metric, in percent.
type Thresholds struct {
	CPUHigh        float64 `yaml:"cpu_high" json:"cpu_high" validate:"gt=0,lte=100"`
	CPUCritical    float64 `yaml:"cpu_critical" json:"cpu_critical" validate:"gt=0,lte=100,gtefield=CPUHigh"`
	MemoryHigh     float64 `yaml:"memory_high" json:"memory_high" validate:"gt=0,lte=100"`
	MemoryCritical float64 `yaml:"memory_critical" json:"memory_critical" validate:"gt=0,lte=100,gtefield=MemoryHigh"`
	DiskHigh       float64 `yaml:"disk_high" json:"disk_high" validate:"gt=0,lte=100"`
	DiskCritical   float64 `yaml:"disk_critical" json:"disk_critical" validate:"gt=0,lte=100,gtefield=DiskHigh"`
}

// TrendConfig controls linear trend classification.
type TrendConfig struct {
	MinSamples  int     `yaml:"min_samples" json:"min_samples" validate:"gte=2"`
	StableSlope float64 `yaml:"stable_slope" json:"stable_slope" validate:"gte=0"`
}

// AnomalyConfig controls statistical deviation detection.
type AnomalyConfig struct {
	MinSamples     int     `yaml:"min_samples" json:"min_samples" validate:"gte=2"`
	StdDevMultiple float64 `yaml:"stddev_multiple" json:"stddev_multiple" validate:"gt=0"`
}

// LeakConfig controls the sustained memory growth heuristic.
type LeakConfig struct {
	MinSamples   int     `yaml:"min_samples" json:"min_samples" validate:"gtefield=WindowSize"`
	WindowSize   int     `yaml:"window_size" json:"window_size" validate:"gte=2"`
	GrowthPoints float64 `yaml:"growth_points" json:"growth_points" validate:"gte=0"`
	GrowingRatio float64 `yaml:"growing_ratio" json:"growing_ratio" validate:"gte=0,lte=1"`
}

// RecommendationConfig controls process-level recommendations.
type RecommendationConfig struct {
	TopProcesses      int     `yaml:"top_processes" json:"top_processes" validate:"gte=1"`
	ProcessCPUPercent float64 `yaml:"process_cpu_percent" json:"process_cpu_percent" validate:"gt=0"`
}

// AnalyzerConfig is everything the analysis engine needs. It is passed to
// NewAnalyzer explicitly so tests can exercise boundary values.
type AnalyzerConfig struct {
	Thresholds      Thresholds           `yaml:"thresholds" json:"thresholds"`
	Trend           TrendConfig          `yaml:"trend" json:"trend"`
	Anomaly         AnomalyConfig        `yaml:"anomaly" json:"anomaly"`
	Leak            LeakConfig           `yaml:"leak" json:"leak"`
	Recommendations RecommendationConfig `yaml:"recommendations" json:"recommendations"`
	TopN            int                  `yaml:"top_n" json:"top_n" validate:"gte=1,lte=100"`
}

// DefaultThresholds returns the 80/95 levels used for every metric.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPUHigh:        80.0,
		CPUCritical:    95.0,
		MemoryHigh:     80.0,
		MemoryCritical: 95.0,
		DiskHigh:       80.0,
		DiskCritical:   95.0,
	}
}

// DefaultAnalyzerConfig returns the default engine configuration.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		Thresholds: DefaultThresholds(),
		Trend: TrendConfig{
			MinSamples:  5,
			StableSlope: 0.1,
		},
		Anomaly: AnomalyConfig{
			MinSamples:     5,
			StdDevMultiple: 2.0,
		},
		Leak: LeakConfig{
			MinSamples:   10,
			WindowSize:   5,
			GrowthPoints: 5.0,
			GrowingRatio: 0.6,
		},
		Recommendations: RecommendationConfig{
			TopProcesses:      5,
			ProcessCPUPercent: 50.0,
		},
		TopN: 10,
	}
}

// ValidateAnalyzerConfig checks field ranges and cross-field ordering.
func ValidateAnalyzerConfig(config AnalyzerConfig) error {
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("%w: analysis: %v", ErrInvalidConfig, err)
	}
	return nil
}
