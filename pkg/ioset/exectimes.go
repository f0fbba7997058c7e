package ioset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rtsim/pkg/rtstask"
)

// ParseExecutionTimes reads the actual-execution-times file format: an
// ignored header line, followed by "taskId instanceId execTime" records.
// Unknown task IDs and out-of-range instance IDs are reported as warnings
// and skipped; unspecified (task, instance) pairs keep their WCET default.
func ParseExecutionTimes(r io.Reader, ts *rtstask.TaskSet) ([]Warning, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read execution times header: %w", err)
		}
		return nil, ErrEmptyFile
	}

	var warnings []Warning

	lineNo := 1

	for scanner.Scan() {
		lineNo++

		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) != 3 {
			warnings = append(warnings, Warning{lineNo, fmt.Sprintf("expected 3 fields, got %d", len(fields))})
			continue
		}

		taskID, errTaskID := strconv.Atoi(fields[0])
		instanceID, errInstanceID := strconv.Atoi(fields[1])
		execTime, errExecTime := strconv.ParseInt(fields[2], 10, 64)

		if errTaskID != nil || errInstanceID != nil || errExecTime != nil {
			warnings = append(warnings, Warning{lineNo, "non-integer execution time parameter"})
			continue
		}

		task, ok := ts.Lookup(taskID)
		if !ok {
			warnings = append(warnings, Warning{lineNo, fmt.Sprintf("no task with id %d", taskID)})
			continue
		}

		if err := task.SetActualExecutionTime(instanceID, execTime); err != nil {
			warnings = append(warnings, Warning{lineNo, err.Error()})
			continue
		}
	}

	if err := scanner.Err(); err != nil {
		return warnings, fmt.Errorf("scan execution times: %w", err)
	}

	return warnings, nil
}
