// Package rtstask holds the static and runtime state of periodic hard-real-time
// tasks and the fixed-capacity collection that owns them.
package rtstask

import "fmt"

// State is a task's position in the release/ready/run/complete lifecycle.
type State int

const (
	StateIdle State = iota
	StateReady
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

const (
	// MaxTasks bounds the number of tasks a TaskSet can hold.
	MaxTasks = 50
	// MaxInstances bounds the per-task actual-execution-time table; the
	// current instance index wraps modulo this value, reusing earlier
	// entries for long simulations.
	MaxInstances = 100
)

// Task is a periodic hard-real-time task: fixed period/deadline/WCET plus the
// mutable state of its current instance.
type Task struct {
	ID int

	Period           int64
	RelativeDeadline int64
	WCET             int64

	State                  State
	NextArrivalTime        int64
	AbsoluteDeadline       int64
	ArrivalTime            int64
	RemainingExecutionTime float64
	CurrentInstance        int
	ActualExecutionTime    [MaxInstances]int64

	InstancesCompleted uint64
	DeadlineMisses     uint64
	TotalResponseTime  int64
}

// NewTask builds a Task in its initial IDLE state, with every instance's
// actual execution time defaulted to the WCET (overridable later via
// SetActualExecutionTime). period, deadline and wcet must be strictly
// positive; id must be non-negative.
func NewTask(id int, period, relativeDeadline, wcet int64) (Task, error) {
	if id < 0 {
		return Task{}, fmt.Errorf("task id must be non-negative, got %d", id)
	}
	if period <= 0 {
		return Task{}, fmt.Errorf("task %d: period must be positive, got %d", id, period)
	}
	if relativeDeadline <= 0 {
		return Task{}, fmt.Errorf("task %d: relative deadline must be positive, got %d", id, relativeDeadline)
	}
	if wcet <= 0 {
		return Task{}, fmt.Errorf("task %d: wcet must be positive, got %d", id, wcet)
	}

	t := Task{
		ID:               id,
		Period:           period,
		RelativeDeadline: relativeDeadline,
		WCET:             wcet,
		State:            StateIdle,
	}

	for i := range t.ActualExecutionTime {
		t.ActualExecutionTime[i] = wcet
	}

	return t, nil
}

// SetActualExecutionTime overrides the prescribed runtime of a single
// instance. instance must be in [0, MaxInstances).
func (t *Task) SetActualExecutionTime(instance int, execTime int64) error {
	if instance < 0 || instance >= MaxInstances {
		return fmt.Errorf("instance %d out of range [0, %d)", instance, MaxInstances)
	}
	t.ActualExecutionTime[instance] = execTime
	return nil
}
