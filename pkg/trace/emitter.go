// Package trace serializes each simulated tick's observable state to the
// line-oriented record format external tools consume, and (in -watch mode)
// guards the output file against concurrent re-runs with an advisory lock.
package trace

import (
	"fmt"
	"io"
	"strings"

	"rtsim/pkg/power"
	"rtsim/pkg/rtstask"
	"rtsim/pkg/sched"
)

const header = "Time | Running Task | Frequency | Power Mode | Slack | Decision"

// Emitter writes tick records to an underlying io.Writer.
type Emitter struct {
	w io.Writer
}

// NewEmitter wraps w for tick-record output.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// WriteHeader writes the one header line and one separator line that
// precede every tick record in the trace.
func (e *Emitter) WriteHeader() error {
	if _, err := io.WriteString(e.w, header+"\n"); err != nil {
		return fmt.Errorf("write trace header: %w", err)
	}

	if _, err := io.WriteString(e.w, strings.Repeat("-", len(header))+"\n"); err != nil {
		return fmt.Errorf("write trace separator: %w", err)
	}

	return nil
}

// WriteRecord writes one tick's record: time, the running task (if any),
// frequency, power mode, slack, and the decision applied this tick.
func (e *Emitter) WriteRecord(currentTime int64, task *rtstask.Task, state power.State, slack int64, decision power.Decision) error {
	var taskField string
	if task != nil {
		taskField = fmt.Sprintf("Task %2d (%2d/%2d)", task.ID, int64(task.RemainingExecutionTime), task.AbsoluteDeadline)
	} else {
		taskField = "     None     "
	}

	modeField := "Active    "
	if state.IsDPMActive {
		modeField = "Power-down"
	}

	var slackField string
	if slack == sched.MaxSlack {
		slackField = "  MAX"
	} else {
		slackField = fmt.Sprintf("%5d", slack)
	}

	line := fmt.Sprintf("%5d | %s | %.1f | %s | %s | %s\n",
		currentTime, taskField, float64(state.FrequencyLevel), modeField, slackField, decision.String())

	if _, err := io.WriteString(e.w, line); err != nil {
		return fmt.Errorf("write trace record for tick %d: %w", currentTime, err)
	}

	return nil
}
