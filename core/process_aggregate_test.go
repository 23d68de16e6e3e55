package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateProcesses_GroupsByName(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Timestamp: start, Processes: []ProcessSample{
			{PID: 10, Name: "postgres", CPUPercent: 20, MemoryPercent: 10},
			{PID: 11, Name: "nginx", CPUPercent: 5, MemoryPercent: 2},
		}},
		{Timestamp: start.Add(time.Minute), Processes: []ProcessSample{
			{PID: 12, Name: "postgres", CPUPercent: 40, MemoryPercent: 12},
		}},
	}

	analysis := AggregateProcesses(samples, 10)

	assert.Equal(t, 2, analysis.TotalUnique)
	require.Len(t, analysis.TopCPU, 2)

	pg := analysis.TopCPU[0]
	assert.Equal(t, "postgres", pg.Name)
	assert.InDelta(t, 30.0, pg.AvgCPU, 1e-9)
	assert.Equal(t, 40.0, pg.MaxCPU)
	assert.InDelta(t, 11.0, pg.AvgMemory, 1e-9)
	assert.Equal(t, 12.0, pg.MaxMemory)
	assert.Equal(t, 2, pg.InstanceCount)
	assert.Equal(t, start, pg.FirstSeen)
	assert.Equal(t, time.Minute, pg.ObservedDuration)
}

func TestAggregateProcesses_TopNTruncates(t *testing.T) {
	var procs []ProcessSample
	for i := 0; i < 12; i++ {
		procs = append(procs, ProcessSample{
			PID:           int32(i),
			Name:          string(rune('a' + i)),
			CPUPercent:    float64(i),
			MemoryPercent: float64(12 - i),
		})
	}
	analysis := AggregateProcesses([]Sample{{Timestamp: time.Now(), Processes: procs}}, 10)

	assert.Equal(t, 12, analysis.TotalUnique)
	assert.Len(t, analysis.TopCPU, 10)
	assert.Len(t, analysis.TopMemory, 10)
	assert.Equal(t, "l", analysis.TopCPU[0].Name)
	assert.Equal(t, "a", analysis.TopMemory[0].Name)

	for i := 1; i < len(analysis.TopCPU); i++ {
		assert.GreaterOrEqual(t, analysis.TopCPU[i-1].AvgCPU, analysis.TopCPU[i].AvgCPU)
	}
}

func TestAggregateProcesses_TiesKeepFirstSeenOrder(t *testing.T) {
	samples := []Sample{{Timestamp: time.Now(), Processes: []ProcessSample{
		{Name: "first", CPUPercent: 5},
		{Name: "second", CPUPercent: 5},
		{Name: "third", CPUPercent: 5},
	}}}

	analysis := AggregateProcesses(samples, 10)
	names := []string{analysis.TopCPU[0].Name, analysis.TopCPU[1].Name, analysis.TopCPU[2].Name}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestAggregateProcesses_NoProcesses(t *testing.T) {
	analysis := AggregateProcesses([]Sample{{Timestamp: time.Now()}}, 10)

	assert.Equal(t, 0, analysis.TotalUnique)
	assert.NotNil(t, analysis.TopCPU)
	assert.Empty(t, analysis.TopCPU)
	assert.Empty(t, analysis.TopMemory)
}
