package rtstask_test

import (
	"errors"
	"testing"

	"rtsim/pkg/rtstask"
)

func TestTaskSetAddRespectsCapacity(t *testing.T) {
	t.Parallel()

	ts := rtstask.NewTaskSet()

	for i := 0; i < rtstask.MaxTasks; i++ {
		task, err := rtstask.NewTask(i, 10, 10, 1)
		if err != nil {
			t.Fatalf("NewTask(%d) returned error: %v", i, err)
		}

		if err := ts.Add(task); err != nil {
			t.Fatalf("Add(%d) returned unexpected error: %v", i, err)
		}
	}

	overflow, err := rtstask.NewTask(rtstask.MaxTasks, 10, 10, 1)
	if err != nil {
		t.Fatalf("NewTask returned error: %v", err)
	}

	if err := ts.Add(overflow); !errors.Is(err, rtstask.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestTaskSetLookup(t *testing.T) {
	t.Parallel()

	ts := rtstask.NewTaskSet()

	task, err := rtstask.NewTask(7, 10, 10, 1)
	if err != nil {
		t.Fatalf("NewTask returned error: %v", err)
	}

	if err := ts.Add(task); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	found, ok := ts.Lookup(7)
	if !ok || found.ID != 7 {
		t.Fatalf("expected to find task 7, got %+v, ok=%v", found, ok)
	}

	if _, ok := ts.Lookup(99); ok {
		t.Fatalf("expected lookup miss for unknown id")
	}
}

func TestTaskSetMaxPeriod(t *testing.T) {
	t.Parallel()

	ts := rtstask.NewTaskSet()

	if ts.MaxPeriod() != 0 {
		t.Fatalf("expected 0 for empty set, got %d", ts.MaxPeriod())
	}

	periods := []int64{10, 50, 20}
	for i, p := range periods {
		task, err := rtstask.NewTask(i, p, p, 1)
		if err != nil {
			t.Fatalf("NewTask returned error: %v", err)
		}

		if err := ts.Add(task); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}

	if got := ts.MaxPeriod(); got != 50 {
		t.Fatalf("expected max period 50, got %d", got)
	}
}
