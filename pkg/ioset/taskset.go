// Package ioset parses the task-set and actual-execution-times input files.
// Malformed records are reported as Warning values rather than printed
// directly, so callers (the CLI, or a -watch re-load loop) decide how to
// surface them.
package ioset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rtsim/pkg/rtstask"
)

// Warning describes one skipped input line.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// ErrEmptyFile is returned when a task-set or execution-times file has no
// header line at all.
var ErrEmptyFile = errors.New("input file is empty: missing header line")

// ParseTaskSet reads the task-set file format: an ignored header line,
// followed by blank lines, '#' comments, or four whitespace-separated
// integers "id period deadline wcet". Malformed lines and tasks beyond
// rtstask.MaxTasks are skipped and reported as warnings, not errors.
func ParseTaskSet(r io.Reader) (*rtstask.TaskSet, []Warning, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, nil, fmt.Errorf("read task set header: %w", err)
		}
		return nil, nil, ErrEmptyFile
	}

	ts := rtstask.NewTaskSet()

	var warnings []Warning

	lineNo := 1

	for scanner.Scan() {
		lineNo++

		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) != 4 {
			warnings = append(warnings, Warning{lineNo, fmt.Sprintf("expected 4 fields, got %d", len(fields))})
			continue
		}

		id, errID := strconv.Atoi(fields[0])
		period, errPeriod := strconv.ParseInt(fields[1], 10, 64)
		deadline, errDeadline := strconv.ParseInt(fields[2], 10, 64)
		wcet, errWCET := strconv.ParseInt(fields[3], 10, 64)

		if errID != nil || errPeriod != nil || errDeadline != nil || errWCET != nil {
			warnings = append(warnings, Warning{lineNo, "non-integer task parameter"})
			continue
		}

		task, err := rtstask.NewTask(id, period, deadline, wcet)
		if err != nil {
			warnings = append(warnings, Warning{lineNo, err.Error()})
			continue
		}

		if err := ts.Add(task); err != nil {
			warnings = append(warnings, Warning{lineNo, fmt.Sprintf("capacity exceeded, discarding task %d", id)})
			continue
		}
	}

	if err := scanner.Err(); err != nil {
		return ts, warnings, fmt.Errorf("scan task set: %w", err)
	}

	return ts, warnings, nil
}
