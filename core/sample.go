package core

import (
	"sort"
	"time"
)

// ProcessStatus is the scheduler state of a process at sample time.
type ProcessStatus string

const (
	StatusRunning   ProcessStatus = "running"
	StatusSleeping  ProcessStatus = "sleeping"
	StatusDiskSleep ProcessStatus = "disk_sleep"
	StatusStopped   ProcessStatus = "stopped"
	StatusZombie    ProcessStatus = "zombie"
)

// Sample is one timestamped snapshot of host and process metrics.
// Fields the source platform cannot provide are zero-filled.
type Sample struct {
	Timestamp       time.Time       `json:"timestamp"`
	CPUPercent      float64         `json:"cpu_percent"`
	MemoryPercent   float64         `json:"memory_percent"`
	MemoryUsedBytes uint64          `json:"memory_used_bytes"`
	LoadAverage1m   float64         `json:"load_average_1m"`
	DiskPercent     float64         `json:"disk_percent"`
	Processes       []ProcessSample `json:"processes"`
}

// ProcessSample is the state of a single process inside a Sample.
type ProcessSample struct {
	PID            int32         `json:"pid"`
	Name           string        `json:"name"`
	CPUPercent     float64       `json:"cpu_percent"`
	MemoryPercent  float64       `json:"memory_percent"`
	MemoryRSSBytes uint64        `json:"memory_rss_bytes"`
	Status         ProcessStatus `json:"status"`
	User           string        `json:"user"`
}

// Point is a single timestamped value of a metric series.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// orderedCopy returns a copy of samples stable-sorted by timestamp.
// The caller's slice is never reordered.
func orderedCopy(samples []Sample) []Sample {
	ordered := make([]Sample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	return ordered
}

// metricSeries extracts one metric from every sample, in order.
func metricSeries(samples []Sample, pick func(Sample) float64) ([]float64, []Point) {
	values := make([]float64, len(samples))
	points := make([]Point, len(samples))
	for i, s := range samples {
		v := pick(s)
		values[i] = v
		points[i] = Point{Timestamp: s.Timestamp, Value: v}
	}
	return values, points
}

func cpuOf(s Sample) float64    { return s.CPUPercent }
func memoryOf(s Sample) float64 { return s.MemoryPercent }
func diskOf(s Sample) float64   { return s.DiskPercent }
func loadOf(s Sample) float64   { return s.LoadAverage1m }
