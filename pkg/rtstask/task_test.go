package rtstask_test

import (
	"testing"

	"rtsim/pkg/rtstask"
)

func TestNewTaskDefaultsActualExecutionTimeToWCET(t *testing.T) {
	t.Parallel()

	task, err := rtstask.NewTask(1, 10, 10, 4)
	if err != nil {
		t.Fatalf("NewTask returned error: %v", err)
	}

	if task.State != rtstask.StateIdle {
		t.Fatalf("expected initial state IDLE, got %s", task.State)
	}

	for i := 0; i < rtstask.MaxInstances; i++ {
		if task.ActualExecutionTime[i] != 4 {
			t.Fatalf("instance %d: expected actual exec time 4, got %d", i, task.ActualExecutionTime[i])
		}
	}
}

func TestNewTaskValidation(t *testing.T) {
	t.Parallel()

	scenarios := []struct {
		name                                  string
		id                                    int
		period, relativeDeadline, wcet        int64
		wantErr                               bool
	}{
		{name: "valid", id: 0, period: 10, relativeDeadline: 10, wcet: 5, wantErr: false},
		{name: "negative id", id: -1, period: 10, relativeDeadline: 10, wcet: 5, wantErr: true},
		{name: "zero period", id: 1, period: 0, relativeDeadline: 10, wcet: 5, wantErr: true},
		{name: "zero deadline", id: 1, period: 10, relativeDeadline: 0, wcet: 5, wantErr: true},
		{name: "zero wcet", id: 1, period: 10, relativeDeadline: 10, wcet: 0, wantErr: true},
	}

	for _, scenario := range scenarios {
		scenario := scenario

		t.Run(scenario.name, func(t *testing.T) {
			t.Parallel()

			_, err := rtstask.NewTask(scenario.id, scenario.period, scenario.relativeDeadline, scenario.wcet)
			if scenario.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}

			if !scenario.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSetActualExecutionTimeRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	task, err := rtstask.NewTask(1, 10, 10, 5)
	if err != nil {
		t.Fatalf("NewTask returned error: %v", err)
	}

	if err := task.SetActualExecutionTime(rtstask.MaxInstances, 3); err == nil {
		t.Fatalf("expected error for out-of-range instance")
	}

	if err := task.SetActualExecutionTime(0, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if task.ActualExecutionTime[0] != 7 {
		t.Fatalf("expected instance 0 to be overridden to 7, got %d", task.ActualExecutionTime[0])
	}
}
