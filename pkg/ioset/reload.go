package ioset

import (
	"fmt"
	"os"
	"time"

	"github.com/sony/gobreaker"

	"rtsim/pkg/rtstask"
)

// Reloader re-parses a task-set and execution-times file pair on demand,
// used by -watch mode to pick up edits without restarting the process. A
// circuit breaker guards the reload path: an editor that leaves the input
// files mid-write for several consecutive polls trips the breaker, so a
// transient half-written file doesn't spin the watch loop through repeated
// fatal-looking failures - it instead short-circuits until the files settle.
type Reloader struct {
	taskSetPath   string
	execTimesPath string
	breaker       *gobreaker.CircuitBreaker
}

// NewReloader builds a Reloader for the given input file pair. name
// distinguishes this breaker's metrics/logging from others in the process.
func NewReloader(name, taskSetPath, execTimesPath string) *Reloader {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &Reloader{
		taskSetPath:   taskSetPath,
		execTimesPath: execTimesPath,
		breaker:       gobreaker.NewCircuitBreaker(settings),
	}
}

// Result is the outcome of a single reload attempt.
type Result struct {
	TaskSet  *rtstask.TaskSet
	Warnings []Warning
}

// Reload re-opens and re-parses both input files through the circuit
// breaker. Parse warnings are never treated as breaker failures - only
// returned errors count towards tripping it: a file that fails to open
// (momentarily missing) or fails to parse (e.g. truncated to empty mid-rewrite).
func (r *Reloader) Reload() (Result, error) {
	raw, err := r.breaker.Execute(func() (any, error) {
		taskSetFile, err := os.Open(r.taskSetPath) //nolint:gosec // operator-supplied CLI flag
		if err != nil {
			return nil, fmt.Errorf("open task set %q: %w", r.taskSetPath, err)
		}
		defer taskSetFile.Close()

		taskSet, warnings, err := ParseTaskSet(taskSetFile)
		if err != nil {
			return nil, fmt.Errorf("parse task set %q: %w", r.taskSetPath, err)
		}

		execTimesFile, err := os.Open(r.execTimesPath) //nolint:gosec // operator-supplied CLI flag
		if err != nil {
			return nil, fmt.Errorf("open execution times %q: %w", r.execTimesPath, err)
		}
		defer execTimesFile.Close()

		execWarnings, err := ParseExecutionTimes(execTimesFile, taskSet)
		if err != nil {
			return nil, fmt.Errorf("parse execution times %q: %w", r.execTimesPath, err)
		}

		return Result{TaskSet: taskSet, Warnings: append(warnings, execWarnings...)}, nil
	})
	if err != nil {
		return Result{}, err
	}

	return raw.(Result), nil
}
