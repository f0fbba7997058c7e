// Package sim composes the EDF scheduler and power controller into the
// per-tick simulation loop: release, select, decide, apply, observe, emit,
// advance, reap - repeated until the fixed simulation horizon is reached.
package sim

import (
	"context"
	"fmt"
	"sync"

	"rtsim/pkg/power"
	"rtsim/pkg/rtstask"
	"rtsim/pkg/sched"
	"rtsim/pkg/stats"
	"rtsim/pkg/trace"
)

// DefaultPeriods is the default hyperperiod-approximation multiple applied
// to the largest task period to compute the simulation horizon.
const DefaultPeriods = 3

// Driver owns the task set, power state and stats for one simulation run,
// and drives the clock forward one tick at a time. A mutex guards the
// fields read concurrently by the live status/metrics HTTP surface, since
// that surface runs on its own goroutine while Run executes on the caller's.
type Driver struct {
	mu sync.RWMutex

	tasks        *rtstask.TaskSet
	powerState   power.State
	stats        *stats.Accumulator
	emitter      *trace.Emitter
	dpmThreshold int64

	currentTime int64
	endTime     int64
}

// New builds a Driver for the given task set. periods (if <= 0, defaults to
// DefaultPeriods) sets how many multiples of the largest task period the
// simulation runs for; emitter may be nil to run without trace output.
func New(tasks *rtstask.TaskSet, periods int, dpmThreshold int64, emitter *trace.Emitter) *Driver {
	if periods <= 0 {
		periods = DefaultPeriods
	}

	if dpmThreshold <= 0 {
		dpmThreshold = power.DefaultDPMThreshold
	}

	return &Driver{
		tasks:        tasks,
		powerState:   power.NewState(),
		stats:        stats.New(),
		emitter:      emitter,
		dpmThreshold: dpmThreshold,
		endTime:      tasks.MaxPeriod() * int64(periods),
	}
}

// Stats returns the driver's statistics accumulator.
func (d *Driver) Stats() *stats.Accumulator {
	return d.stats
}

// Tasks returns the task set being simulated.
func (d *Driver) Tasks() *rtstask.TaskSet {
	return d.tasks
}

// EndTime returns the fixed simulation horizon, T_end = P_max * N_periods.
func (d *Driver) EndTime() int64 {
	return d.endTime
}

// Step executes exactly one tick of the release/select/decide/apply/
// observe/emit/advance/reap sequence. Returns false once the simulation
// horizon has passed, with no further state change.
func (d *Driver) Step() (bool, error) {
	if d.currentTime > d.endTime {
		return false, nil
	}

	sched.Release(d.tasks, d.currentTime)
	selected := sched.Select(d.tasks)
	slack := sched.Slack(d.tasks, d.currentTime)

	var decision power.Decision
	if selected != nil {
		decision = power.DVFSDecision(selected, d.currentTime, d.readPower())
	} else {
		decision = power.DPMDecision(slack, d.readPower(), d.dpmThreshold)
	}

	d.mu.Lock()
	power.Apply(decision, &d.powerState)
	state := d.powerState
	d.mu.Unlock()

	d.stats.Observe(state, decision, d.currentTime)

	if d.emitter != nil {
		if err := d.emitter.WriteRecord(d.currentTime, selected, state, slack, decision); err != nil {
			return false, fmt.Errorf("emit trace record: %w", err)
		}
	}

	if selected != nil {
		sched.Execute(selected, state.FrequencyLevel)
	}

	d.mu.Lock()
	d.currentTime++
	next := d.currentTime
	d.mu.Unlock()

	sched.Reap(d.tasks, next)

	return true, nil
}

func (d *Driver) readPower() power.State {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.powerState
}

// Run drives ticks to completion, or until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	if d.emitter != nil {
		if err := d.emitter.WriteHeader(); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		more, err := d.Step()
		if err != nil {
			return err
		}

		if !more {
			return nil
		}
	}
}

// Snapshot is a point-in-time view of simulation progress, for the live
// status/metrics HTTP surface. CurrentTime and Power are read together under
// the driver's lock; Stats is read under the accumulator's own lock, so
// mid-tick it may not yet include the tick that Power already reflects.
type Snapshot struct {
	CurrentTime int64
	EndTime     int64
	Power       power.State
	Stats       stats.Snapshot
}

// Snapshot returns the driver's current progress.
func (d *Driver) Snapshot() Snapshot {
	d.mu.RLock()
	current := d.currentTime
	state := d.powerState
	d.mu.RUnlock()

	return Snapshot{
		CurrentTime: current,
		EndTime:     d.endTime,
		Power:       state,
		Stats:       d.stats.Snapshot(),
	}
}
