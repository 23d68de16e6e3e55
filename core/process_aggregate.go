package core

import (
	"sort"
	"time"
)

// ProcessAggregate merges every ProcessSample sharing a name across the window.
type ProcessAggregate struct {
	Name             string        `json:"name"`
	AvgCPU           float64       `json:"avg_cpu"`
	MaxCPU           float64       `json:"max_cpu"`
	AvgMemory        float64       `json:"avg_memory"`
	MaxMemory        float64       `json:"max_memory"`
	InstanceCount    int           `json:"instance_count"`
	FirstSeen        time.Time     `json:"first_seen"`
	LastSeen         time.Time     `json:"last_seen"`
	ObservedDuration time.Duration `json:"observed_duration"`
}

// ProcessAnalysis ranks the aggregated processes of a window.
type ProcessAnalysis struct {
	TotalUnique int                `json:"total_unique"`
	TopCPU      []ProcessAggregate `json:"top_cpu"`
	TopMemory   []ProcessAggregate `json:"top_memory"`
}

type processAccumulator struct {
	name      string
	cpu       []float64
	memory    []float64
	firstSeen time.Time
	lastSeen  time.Time
}

// AggregateProcesses groups process samples by name and returns the topN
// aggregates by average CPU and by average memory.
//
// Identity is the process name, not the pid: pids get reused while names
// stay stable across a window. Distinct processes that share a name are
// merged into one aggregate.
//
// Both rankings are stable: equal averages keep first-seen order.
func AggregateProcesses(samples []Sample, topN int) ProcessAnalysis {
	index := make(map[string]int)
	var groups []*processAccumulator

	for _, s := range samples {
		for _, p := range s.Processes {
			i, ok := index[p.Name]
			if !ok {
				i = len(groups)
				index[p.Name] = i
				groups = append(groups, &processAccumulator{
					name:      p.Name,
					firstSeen: s.Timestamp,
					lastSeen:  s.Timestamp,
				})
			}
			g := groups[i]
			g.cpu = append(g.cpu, p.CPUPercent)
			g.memory = append(g.memory, p.MemoryPercent)
			if s.Timestamp.Before(g.firstSeen) {
				g.firstSeen = s.Timestamp
			}
			if s.Timestamp.After(g.lastSeen) {
				g.lastSeen = s.Timestamp
			}
		}
	}

	aggregates := make([]ProcessAggregate, 0, len(groups))
	for _, g := range groups {
		cpuStats, err := ComputeStats(g.cpu)
		if err != nil {
			continue
		}
		memStats, err := ComputeStats(g.memory)
		if err != nil {
			continue
		}
		aggregates = append(aggregates, ProcessAggregate{
			Name:             g.name,
			AvgCPU:           cpuStats.Mean,
			MaxCPU:           cpuStats.Max,
			AvgMemory:        memStats.Mean,
			MaxMemory:        memStats.Max,
			InstanceCount:    len(g.cpu),
			FirstSeen:        g.firstSeen,
			LastSeen:         g.lastSeen,
			ObservedDuration: g.lastSeen.Sub(g.firstSeen),
		})
	}

	return ProcessAnalysis{
		TotalUnique: len(aggregates),
		TopCPU: rankProcesses(aggregates, topN, func(a ProcessAggregate) float64 {
			return a.AvgCPU
		}),
		TopMemory: rankProcesses(aggregates, topN, func(a ProcessAggregate) float64 {
			return a.AvgMemory
		}),
	}
}

func rankProcesses(aggregates []ProcessAggregate, topN int, key func(ProcessAggregate) float64) []ProcessAggregate {
	ranked := make([]ProcessAggregate, len(aggregates))
	copy(ranked, aggregates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return key(ranked[i]) > key(ranked[j])
	})
	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
