package core

// HealthStatus is the categorical reading of a health score.
type HealthStatus string

const (
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthAttention HealthStatus = "attention"
)

// HealthAssessment is the 0-100 score of a window.
type HealthAssessment struct {
	Score     int          `json:"score"`
	Status    HealthStatus `json:"status"`
	AvgCPU    float64      `json:"avg_cpu"`
	AvgMemory float64      `json:"avg_memory"`
	MaxCPU    float64      `json:"max_cpu"`
	MaxMemory float64      `json:"max_memory"`
}

// ScoreHealth starts at 100 and applies independent penalties:
//
//	avg above critical -30, else avg above high -15 (CPU and memory each)
//	peak above critical -10 (CPU and memory each)
//
// The result is clamped to [0, 100].
func ScoreHealth(cpu, memory SeriesStats, t Thresholds) HealthAssessment {
	score := 100
	score -= averagePenalty(cpu.Mean, t.CPUHigh, t.CPUCritical)
	score -= averagePenalty(memory.Mean, t.MemoryHigh, t.MemoryCritical)
	if cpu.Max > t.CPUCritical {
		score -= 10
	}
	if memory.Max > t.MemoryCritical {
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return HealthAssessment{
		Score:     score,
		Status:    healthStatusFor(score),
		AvgCPU:    cpu.Mean,
		AvgMemory: memory.Mean,
		MaxCPU:    cpu.Max,
		MaxMemory: memory.Max,
	}
}

func averagePenalty(avg, high, critical float64) int {
	switch {
	case avg > critical:
		return 30
	case avg > high:
		return 15
	default:
		return 0
	}
}

func healthStatusFor(score int) HealthStatus {
	switch {
	case score >= 80:
		return HealthGood
	case score >= 60:
		return HealthFair
	default:
		return HealthAttention
	}
}
