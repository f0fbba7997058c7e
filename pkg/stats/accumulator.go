// Package stats accrues the tick-granular statistics the simulation driver
// observes each tick: per-frequency occupancy, DPM occupancy, the energy
// proxy, and transition counts. The Accumulator is safe for concurrent
// reads via Snapshot while the driver's own goroutine mutates it through
// Observe, mirroring a mutex-guarded-snapshot exporter.
package stats

import (
	"sync"

	"rtsim/pkg/power"
)

// Accumulator owns the SchedulerStats counters.
type Accumulator struct {
	mu sync.RWMutex

	totalExecutionTime int64
	energyConsumption  float64
	dvfsTransitions    uint64
	dpmTransitions     uint64
	timeAtFrequency    [4]int64
	timeInPowerDown    int64
}

// New returns a zeroed Accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

func levelIndex(level power.Level) int {
	switch level {
	case power.Level04:
		return 0
	case power.Level06:
		return 1
	case power.Level08:
		return 2
	default:
		return 3
	}
}

// Observe accrues one tick's worth of statistics for the given post-decision
// power state, counting the decision's transition (if any) and the tick's
// occupancy/energy contribution. currentTime is the tick being observed.
func (a *Accumulator) Observe(state power.State, decision power.Decision, currentTime int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalExecutionTime = currentTime + 1

	if state.IsDPMActive {
		a.timeInPowerDown++
		a.energyConsumption += power.LeakageEnergy
	} else {
		a.timeAtFrequency[levelIndex(state.FrequencyLevel)]++
		f := float64(state.FrequencyLevel)
		a.energyConsumption += f * f * f
	}

	switch decision.Kind {
	case power.DvfsChange:
		a.dvfsTransitions++
	case power.DpmOn, power.DpmOff:
		a.dpmTransitions++
	}
}

// Snapshot is an immutable point-in-time copy of the accumulated stats,
// suitable for the live HTTP surface and the final analysis report.
type Snapshot struct {
	TotalExecutionTime int64
	EnergyConsumption  float64
	DVFSTransitions    uint64
	DPMTransitions     uint64
	TimeAtFrequency    [4]int64
	TimeInPowerDown    int64
}

// Snapshot returns a consistent copy of the current counters.
func (a *Accumulator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return Snapshot{
		TotalExecutionTime: a.totalExecutionTime,
		EnergyConsumption:  a.energyConsumption,
		DVFSTransitions:    a.dvfsTransitions,
		DPMTransitions:     a.dpmTransitions,
		TimeAtFrequency:    a.timeAtFrequency,
		TimeInPowerDown:    a.timeInPowerDown,
	}
}
