package core

import (
	"fmt"
	"sort"
	"strings"
)

// Priority orders recommendations; high comes first.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Recommendation kinds.
const (
	RecommendCPUHigh             = "cpu_high"
	RecommendCPUMedium           = "cpu_medium"
	RecommendMemoryHigh          = "memory_high"
	RecommendMemoryMedium        = "memory_medium"
	RecommendProcessOptimization = "process_optimization"
)

// Recommendation is a prioritized remediation suggestion.
type Recommendation struct {
	Kind        string   `json:"kind"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// Recommend derives action items from the latest sample of a window rather
// than from window averages, so that they describe the host "right now".
// The result lists high-priority items before medium ones and is empty when
// every dimension is within its normal range.
func Recommend(latest Sample, config RecommendationConfig, t Thresholds) []Recommendation {
	recs := make([]Recommendation, 0)

	switch {
	case latest.CPUPercent > t.CPUCritical:
		recs = append(recs, Recommendation{
			Kind:        RecommendCPUHigh,
			Priority:    PriorityHigh,
			Title:       "CPU usage critical",
			Description: fmt.Sprintf("CPU usage is %.1f%%; inspect the processes consuming the most CPU", latest.CPUPercent),
			Actions: []string{
				"Identify the top CPU consumers with top or htop",
				"Consider terminating unnecessary processes",
				"Check for processes stuck in runaway loops",
				"Consider scaling up hardware or optimizing the workload",
			},
		})
	case latest.CPUPercent > t.CPUHigh:
		recs = append(recs, Recommendation{
			Kind:        RecommendCPUMedium,
			Priority:    PriorityMedium,
			Title:       "CPU usage elevated",
			Description: fmt.Sprintf("CPU usage is %.1f%%; keep an eye on system load", latest.CPUPercent),
			Actions: []string{
				"Monitor the CPU usage trend",
				"Look for unnecessary background processes",
				"Schedule compute-heavy jobs for off-peak hours",
			},
		})
	}

	switch {
	case latest.MemoryPercent > t.MemoryCritical:
		recs = append(recs, Recommendation{
			Kind:        RecommendMemoryHigh,
			Priority:    PriorityHigh,
			Title:       "Memory usage critical",
			Description: fmt.Sprintf("Memory usage is %.1f%%; system performance may degrade", latest.MemoryPercent),
			Actions: []string{
				"Identify the processes using the most memory",
				"Consider terminating unnecessary processes",
				"Drop filesystem caches",
				"Consider adding memory or enabling swap",
			},
		})
	case latest.MemoryPercent > t.MemoryHigh:
		recs = append(recs, Recommendation{
			Kind:        RecommendMemoryMedium,
			Priority:    PriorityMedium,
			Title:       "Memory usage elevated",
			Description: fmt.Sprintf("Memory usage is %.1f%%; consider reducing memory pressure", latest.MemoryPercent),
			Actions: []string{
				"Monitor the memory usage trend",
				"Check for memory leaks",
				"Consider restarting long-running applications",
			},
		})
	}

	if hot := hotProcesses(latest.Processes, config); len(hot) > 0 {
		recs = append(recs, Recommendation{
			Kind:        RecommendProcessOptimization,
			Priority:    PriorityMedium,
			Title:       "High CPU processes detected",
			Description: fmt.Sprintf("%d process(es) above %.0f%% CPU", len(hot), config.ProcessCPUPercent),
			Actions: []string{
				"Inspect processes: " + strings.Join(hot, ", "),
				"Consider optimizing or restarting these processes",
				"Verify these processes are behaving normally",
			},
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) < priorityRank(recs[j].Priority)
	})
	return recs
}

// hotProcesses returns the names of the config.TopProcesses busiest
// processes that exceed config.ProcessCPUPercent.
func hotProcesses(processes []ProcessSample, config RecommendationConfig) []string {
	ranked := make([]ProcessSample, len(processes))
	copy(ranked, processes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CPUPercent > ranked[j].CPUPercent
	})
	if len(ranked) > config.TopProcesses {
		ranked = ranked[:config.TopProcesses]
	}

	var names []string
	for _, p := range ranked {
		if p.CPUPercent > config.ProcessCPUPercent {
			names = append(names, p.Name)
		}
	}
	return names
}

func priorityRank(p Priority) int {
	if p == PriorityHigh {
		return 0
	}
	return 1
}
