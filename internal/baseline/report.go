package baseline

import (
	"gonum.org/v1/gonum/floats"

	"github.com/fentz26/prochunt/internal/models"
)

// Tier buckets a remaining-time delta.
type Tier string

const (
	TierMajor      Tier = "major"
	TierNotable    Tier = "notable"
	TierMarginal   Tier = "marginal"
	TierNoChange   Tier = "no_change"
	TierRegression Tier = "regression"
	// TierUnknown means one side had no remaining-time estimate.
	TierUnknown Tier = "unknown"
)

// TierFor buckets a delta in minutes.
func TierFor(delta int) Tier {
	switch {
	case delta > 30:
		return TierMajor
	case delta > 10:
		return TierNotable
	case delta > 0:
		return TierMarginal
	case delta == 0:
		return TierNoChange
	default:
		return TierRegression
	}
}

// compareDepth is how many top consumers each side of a report shows.
const compareDepth = 3

// ImpactReport compares a baseline with the current state.
type ImpactReport struct {
	HasBaseline bool
	Before      *models.BaselineSnapshot
	After       models.PowerState
	AfterTop    []models.TopProcess

	ProcessesKilled int
	MemFreedMB      float64

	// DeltaMinutes is nil when either side lacks an estimate.
	DeltaMinutes *int
	Tier         Tier

	BeforeTop []models.TopProcess
	BeforeCPU float64
	AfterCPU  float64
	// CPUReduction is set only when the top consumers got lighter.
	CPUReduction float64

	Improved bool
}

// ShowReduction reports whether the CPU reduction line belongs in the report.
func (r ImpactReport) ShowReduction() bool {
	return r.HasBaseline && r.CPUReduction > 0
}

// BuildReport derives the impact report. before may be nil.
func BuildReport(before *models.BaselineSnapshot, after models.PowerState, afterTop []models.TopProcess, killed int, memFreedMB float64) ImpactReport {
	r := ImpactReport{
		HasBaseline:     before != nil,
		Before:          before,
		After:           after,
		AfterTop:        head(afterTop, compareDepth),
		ProcessesKilled: killed,
		MemFreedMB:      memFreedMB,
		Tier:            TierUnknown,
		Improved:        before != nil && killed > 0,
	}
	if before == nil {
		return r
	}

	b, a := before.PowerState.TimeRemainingMinutes, after.TimeRemainingMinutes
	if b != nil && a != nil {
		delta := *a - *b
		r.DeltaMinutes = &delta
		r.Tier = TierFor(delta)
	}

	r.BeforeTop = head(before.TopProcesses, compareDepth)
	r.BeforeCPU = cpuSum(r.BeforeTop)
	r.AfterCPU = cpuSum(r.AfterTop)
	if reduction := r.BeforeCPU - r.AfterCPU; reduction > 0 {
		r.CPUReduction = reduction
	}
	return r
}

func head(procs []models.TopProcess, n int) []models.TopProcess {
	if len(procs) > n {
		return procs[:n]
	}
	return procs
}

func cpuSum(procs []models.TopProcess) float64 {
	cpu := make([]float64, len(procs))
	for i, p := range procs {
		cpu[i] = p.CPUPercent
	}
	return floats.Sum(cpu)
}
