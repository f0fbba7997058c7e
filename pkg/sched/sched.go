// Package sched implements the EDF release/select/slack/execute/complete
// lifecycle over a rtstask.TaskSet. Each phase is a free function operating
// on the task set in place; the Simulation Driver composes them in the order
// the data-flow in the specification requires.
package sched

import (
	"math"

	"rtsim/pkg/power"
	"rtsim/pkg/rtstask"
)

// MaxSlack represents "no ready task and no pending arrival": the maximum
// representable slack value, reported as MAX in the trace.
const MaxSlack int64 = math.MaxInt64

// Release transitions every IDLE task whose next arrival has come due into
// READY, starting its new instance.
func Release(ts *rtstask.TaskSet, currentTime int64) {
	for i := range ts.Tasks {
		task := &ts.Tasks[i]

		if task.State == rtstask.StateIdle && currentTime >= task.NextArrivalTime {
			task.State = rtstask.StateReady
			task.RemainingExecutionTime = float64(task.ActualExecutionTime[task.CurrentInstance])
			task.ArrivalTime = currentTime
			task.AbsoluteDeadline = currentTime + task.RelativeDeadline
			task.NextArrivalTime += task.Period
		}
	}
}

// Select picks the READY/RUNNING task with the smallest absolute deadline,
// breaking ties by first occurrence in the task array, and transitions it to
// RUNNING. Returns nil if no task is eligible.
func Select(ts *rtstask.TaskSet) *rtstask.Task {
	var selected *rtstask.Task

	earliest := int64(math.MaxInt64)

	for i := range ts.Tasks {
		task := &ts.Tasks[i]

		if task.State != rtstask.StateReady && task.State != rtstask.StateRunning {
			continue
		}

		if task.AbsoluteDeadline < earliest {
			earliest = task.AbsoluteDeadline
			selected = task
		}
	}

	if selected != nil && selected.State == rtstask.StateReady {
		selected.State = rtstask.StateRunning
	}

	return selected
}

// Slack computes system slack at currentTime: the minimum per-task slack
// among READY/RUNNING tasks, or, if none are ready, the time until the
// nearest future arrival. Returns MaxSlack if neither exists.
func Slack(ts *rtstask.TaskSet, currentTime int64) int64 {
	slack := MaxSlack
	hasReady := false

	for i := range ts.Tasks {
		task := &ts.Tasks[i]

		if task.State != rtstask.StateReady && task.State != rtstask.StateRunning {
			continue
		}

		hasReady = true
		taskSlack := task.AbsoluteDeadline - currentTime - int64(task.RemainingExecutionTime)

		if taskSlack < slack {
			slack = taskSlack
		}
	}

	if hasReady {
		return slack
	}

	slack = MaxSlack

	for i := range ts.Tasks {
		task := &ts.Tasks[i]

		if task.NextArrivalTime > currentTime {
			untilArrival := task.NextArrivalTime - currentTime
			if untilArrival < slack {
				slack = untilArrival
			}
		}
	}

	return slack
}

// Execute advances a RUNNING task by one tick of work at the given
// frequency level, saturating remaining work at 0.
func Execute(task *rtstask.Task, level power.Level) {
	progress := float64(level)

	if task.RemainingExecutionTime >= progress {
		task.RemainingExecutionTime -= progress
	} else {
		task.RemainingExecutionTime = 0
	}
}

// Reap transitions any RUNNING task whose remaining work has reached 0 to
// IDLE, recording completion statistics and advancing to the next instance.
func Reap(ts *rtstask.TaskSet, currentTime int64) {
	for i := range ts.Tasks {
		task := &ts.Tasks[i]

		if task.State != rtstask.StateRunning || task.RemainingExecutionTime > 0 {
			continue
		}

		task.State = rtstask.StateIdle

		responseTime := currentTime - task.ArrivalTime
		task.TotalResponseTime += responseTime
		task.InstancesCompleted++

		if currentTime > task.AbsoluteDeadline {
			task.DeadlineMisses++
		}

		task.CurrentInstance = (task.CurrentInstance + 1) % rtstask.MaxInstances
	}
}
