//go:build !nodocker

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/sirupsen/logrus"
)

// containerPrefix marks container entries among process samples.
const containerPrefix = "container:"

// DockerSource reports running containers as process samples
type DockerSource struct {
	client *client.Client
	log    *logrus.Entry
}

// NewDockerSource connects to the Docker daemon described by config
func NewDockerSource(ctx context.Context, config DockerConfig, logger logrus.FieldLogger) (*DockerSource, error) {
	if logger == nil {
		logger = NewDiscardLogger()
	}

	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if config.SocketPath != "" {
		opts = append(opts, client.WithHost("unix://"+config.SocketPath))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	// Test connection
	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to connect to docker daemon: %w", err)
	}

	return &DockerSource{
		client: cli,
		log:    logger.WithField("component", "docker"),
	}, nil
}

// ContainerSamples collects statistics from all running containers
func (ds *DockerSource) ContainerSamples(ctx context.Context) ([]ProcessSample, error) {
	containers, err := ds.client.ContainerList(ctx, container.ListOptions{All: false})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	samples := make([]ProcessSample, len(containers))
	ok := make([]bool, len(containers))
	var wg sync.WaitGroup

	// Collect stats for each container concurrently; results keep list order.
	for i, c := range containers {
		wg.Add(1)
		go func(i int, c types.Container) {
			defer wg.Done()

			sample, err := ds.containerSample(ctx, c)
			if err != nil {
				ds.log.WithError(err).Warn("container stats unavailable")
				return
			}
			samples[i] = sample
			ok[i] = true
		}(i, c)
	}
	wg.Wait()

	result := make([]ProcessSample, 0, len(containers))
	for i := range samples {
		if ok[i] {
			result = append(result, samples[i])
		}
	}
	return result, nil
}

// Close closes the Docker client
func (ds *DockerSource) Close() error {
	return ds.client.Close()
}

func (ds *DockerSource) containerSample(ctx context.Context, c types.Container) (ProcessSample, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	shortID := c.ID
	if len(shortID) > 12 {
		shortID = shortID[:12]
	}

	var pid int32
	if inspect, err := ds.client.ContainerInspect(ctx, c.ID); err == nil && inspect.State != nil {
		pid = int32(inspect.State.Pid)
	}

	statsResp, err := ds.client.ContainerStats(ctx, c.ID, false)
	if err != nil {
		return ProcessSample{}, fmt.Errorf("failed to get stats for container %s: %w", shortID, err)
	}
	defer statsResp.Body.Close()

	var stats types.StatsJSON
	if err := json.NewDecoder(statsResp.Body).Decode(&stats); err != nil {
		return ProcessSample{}, fmt.Errorf("failed to decode stats for container %s: %w", shortID, err)
	}

	name := shortID
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return ProcessSample{
		PID:            pid,
		Name:           containerPrefix + name,
		CPUPercent:     containerCPUPercent(&stats),
		MemoryPercent:  containerMemoryPercent(&stats),
		MemoryRSSBytes: stats.MemoryStats.Usage,
		Status:         StatusRunning,
		User:           c.Image,
	}, nil
}

func containerCPUPercent(stats *types.StatsJSON) float64 {
	cpuDelta := float64(stats.CPUStats.CPUUsage.TotalUsage) - float64(stats.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(stats.CPUStats.SystemUsage) - float64(stats.PreCPUStats.SystemUsage)

	cpus := float64(stats.CPUStats.OnlineCPUs)
	if cpus == 0 {
		cpus = float64(len(stats.CPUStats.CPUUsage.PercpuUsage))
	}

	if systemDelta > 0.0 && cpuDelta > 0.0 {
		return (cpuDelta / systemDelta) * cpus * 100.0
	}
	return 0.0
}

func containerMemoryPercent(stats *types.StatsJSON) float64 {
	if stats.MemoryStats.Limit > 0 {
		return float64(stats.MemoryStats.Usage) / float64(stats.MemoryStats.Limit) * 100.0
	}
	return 0.0
}
