package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"
)

// SampleSource produces one Sample per call.
type SampleSource interface {
	Collect(ctx context.Context) (Sample, error)
}

// ContainerSource reports running containers as process samples.
type ContainerSource interface {
	ContainerSamples(ctx context.Context) ([]ProcessSample, error)
	Close() error
}

// hostMetrics is the system-wide part of a sample.
type hostMetrics struct {
	cpuPercent      float64
	memoryPercent   float64
	memoryUsedBytes uint64
	load1           float64
	diskPercent     float64
}

// Collector samples the local host with gopsutil.
type Collector struct {
	config     CollectorConfig
	log        *logrus.Entry
	containers ContainerSource

	// processes caches handles so CPU percentages are computed between
	// consecutive samples instead of since process start.
	processes map[int32]*process.Process

	// Overridable for testing.
	readHost      func(ctx context.Context) (hostMetrics, error)
	readProcesses func(ctx context.Context) ([]ProcessSample, error)
	now           func() time.Time
	cores         func() int
}

// NewCollector creates a Collector. containers may be nil.
func NewCollector(config CollectorConfig, containers ContainerSource, logger logrus.FieldLogger) *Collector {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	c := &Collector{
		config:     config,
		log:        logger.WithField("component", "collector"),
		containers: containers,
		processes:  make(map[int32]*process.Process),
		now:        time.Now,
		cores:      SystemCPUCores,
	}
	c.readHost = c.hostMetrics
	c.readProcesses = c.processSamples
	return c
}

// Collect gathers one Sample. Host-level failures are returned; failures on
// individual processes or containers are logged and skipped.
func (c *Collector) Collect(ctx context.Context) (Sample, error) {
	select {
	case <-ctx.Done():
		return Sample{}, ctx.Err()
	default:
	}

	host, err := c.readHost(ctx)
	if err != nil {
		return Sample{}, err
	}

	sample := Sample{
		Timestamp:       c.now(),
		CPUPercent:      host.cpuPercent,
		MemoryPercent:   host.memoryPercent,
		MemoryUsedBytes: host.memoryUsedBytes,
		LoadAverage1m:   host.load1,
		DiskPercent:     host.diskPercent,
	}

	if c.config.TopProcesses > 0 {
		procs, err := c.readProcesses(ctx)
		if err != nil {
			c.log.WithError(err).Warn("process enumeration failed")
		}
		sample.Processes = procs
	}

	if c.containers != nil {
		containers, err := c.containers.ContainerSamples(ctx)
		if err != nil {
			c.log.WithError(err).Warn("container stats failed")
		}
		sample.Processes = append(sample.Processes, containers...)
	}
	// Process and container CPU is summed across cores until normalized.
	if c.config.NormalizeCPU {
		cores := c.cores()
		for i := range sample.Processes {
			sample.Processes[i].CPUPercent = normalizeCPUPercent(sample.Processes[i].CPUPercent, cores)
		}
	}
	if sample.Processes == nil {
		sample.Processes = make([]ProcessSample, 0)
	}

	return sample, nil
}

// Close releases the container source, if any.
func (c *Collector) Close() error {
	if c.containers != nil {
		return c.containers.Close()
	}
	return nil
}

func (c *Collector) hostMetrics(ctx context.Context) (hostMetrics, error) {
	var m hostMetrics

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return m, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	if len(percents) > 0 {
		m.cpuPercent = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return m, fmt.Errorf("failed to read memory usage: %w", err)
	}
	m.memoryPercent = vm.UsedPercent
	m.memoryUsedBytes = vm.Used

	// Load average and disk usage are zero-filled where unsupported.
	if avg, err := load.AvgWithContext(ctx); err == nil {
		m.load1 = avg.Load1
	} else {
		c.log.WithError(err).Debug("load average unavailable")
	}
	if usage, err := disk.UsageWithContext(ctx, c.config.DiskPath); err == nil {
		m.diskPercent = usage.UsedPercent
	} else {
		c.log.WithError(err).WithField("path", c.config.DiskPath).Debug("disk usage unavailable")
	}

	return m, nil
}

func (c *Collector) processSamples(ctx context.Context) ([]ProcessSample, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	seen := make(map[int32]bool, len(procs))
	samples := make([]ProcessSample, 0, len(procs))
	for _, p := range procs {
		seen[p.Pid] = true
		cached, ok := c.processes[p.Pid]
		if !ok {
			cached = p
			c.processes[p.Pid] = p
		}

		ps, err := readProcess(ctx, cached)
		if err != nil {
			// Exited or not accessible between listing and reading.
			continue
		}
		samples = append(samples, ps)
	}

	for pid := range c.processes {
		if !seen[pid] {
			delete(c.processes, pid)
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].CPUPercent > samples[j].CPUPercent
	})
	if len(samples) > c.config.TopProcesses {
		samples = samples[:c.config.TopProcesses]
	}
	return samples, nil
}

func readProcess(ctx context.Context, p *process.Process) (ProcessSample, error) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return ProcessSample{}, err
	}
	ps := ProcessSample{PID: p.Pid, Name: name}

	if cpuPercent, err := p.PercentWithContext(ctx, 0); err == nil {
		ps.CPUPercent = cpuPercent
	}
	if memPercent, err := p.MemoryPercentWithContext(ctx); err == nil {
		ps.MemoryPercent = float64(memPercent)
	}
	if info, err := p.MemoryInfoWithContext(ctx); err == nil && info != nil {
		ps.MemoryRSSBytes = info.RSS
	}
	if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
		ps.Status = processStatusFrom(status[0])
	}
	if user, err := p.UsernameWithContext(ctx); err == nil {
		ps.User = user
	} else {
		ps.User = "unknown"
	}
	return ps, nil
}

// processStatusFrom maps gopsutil status names onto ProcessStatus.
func processStatusFrom(status string) ProcessStatus {
	switch status {
	case process.Running:
		return StatusRunning
	case process.Stop:
		return StatusStopped
	case process.Zombie:
		return StatusZombie
	case process.Wait, process.Lock:
		return StatusDiskSleep
	default:
		return StatusSleeping
	}
}
