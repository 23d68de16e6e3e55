package core

import (
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
)

var (
	cpuCoresOnce sync.Once
	cpuCores     int
)

// SystemCPUCores returns the number of logical CPUs, read once
func SystemCPUCores() int {
	cpuCoresOnce.Do(func() {
		if counts, err := cpu.Counts(true); err == nil && counts > 0 {
			cpuCores = counts
			return
		}
		cpuCores = runtime.NumCPU()
	})
	return cpuCores
}

// normalizeCPUPercent rescales a per-core percentage (where 400 means four
// busy cores) onto 0-100 of the whole machine.
func normalizeCPUPercent(percent float64, cores int) float64 {
	if cores <= 0 {
		return percent
	}
	return percent / float64(cores)
}
