package core

import "fmt"

// LeakFinding describes a sustained memory growth pattern.
type LeakFinding struct {
	Severity       string         `json:"severity"`
	Description    string         `json:"description"`
	Trend          TrendDirection `json:"trend"`
	GrowingWindows int            `json:"growing_windows"`
	TotalWindows   int            `json:"total_windows"`
}

// DetectMemoryLeak splits memory percentages into consecutive, non-overlapping
// windows of config.WindowSize samples (a shorter trailing remainder is
// dropped). A window grows when its last value exceeds its first by more than
// config.GrowthPoints percentage points. When the share of growing windows is
// above config.GrowingRatio a single warning is returned.
func DetectMemoryLeak(values []float64, config LeakConfig) []LeakFinding {
	if config.WindowSize <= 0 || len(values) < config.MinSamples {
		return nil
	}

	total := len(values) / config.WindowSize
	if total == 0 {
		return nil
	}

	growing := 0
	for w := 0; w < total; w++ {
		window := values[w*config.WindowSize : (w+1)*config.WindowSize]
		if window[len(window)-1]-window[0] > config.GrowthPoints {
			growing++
		}
	}

	if float64(growing) <= float64(total)*config.GrowingRatio {
		return nil
	}

	description := fmt.Sprintf("possible memory leak: memory grew by more than %.0f points in %d of %d windows",
		config.GrowthPoints, growing, total)

	return []LeakFinding{{
		Severity:       "warning",
		Description:    description,
		Trend:          TrendIncreasing,
		GrowingWindows: growing,
		TotalWindows:   total,
	}}
}
