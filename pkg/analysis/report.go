// Package analysis renders the human-readable end-of-run summary: overall
// statistics, DVFS/DPM transition counts, per-level occupancy percentages,
// and per-task completion/deadline-miss/response-time figures.
package analysis

import (
	"fmt"
	"io"

	"rtsim/pkg/rtstask"
	"rtsim/pkg/stats"
)

// Report is the immutable value summarizing one completed simulation run.
type Report struct {
	Stats stats.Snapshot
	Tasks []rtstask.Task
}

// New builds a Report from a finished driver's stats snapshot and task set.
func New(snapshot stats.Snapshot, tasks []rtstask.Task) Report {
	return Report{Stats: snapshot, Tasks: tasks}
}

func percentOf(part int64, total int64) float64 {
	if total == 0 {
		return 0
	}

	return float64(part) / float64(total) * 100
}

// WriteText writes the report in the fixed textual format analysis.txt
// consumers expect.
func (r Report) WriteText(w io.Writer) error {
	total := r.Stats.TotalExecutionTime

	lines := []string{
		"---- Scheduler Analysis ----",
		"",
		fmt.Sprintf("Total execution time: %d ticks", total),
		fmt.Sprintf("Energy consumption estimate: %.2f units", r.Stats.EnergyConsumption),
		fmt.Sprintf("DVFS transitions: %d", r.Stats.DVFSTransitions),
		"Time spent at different frequency levels:",
		fmt.Sprintf("  - 1.0: %.2f%%", percentOf(r.Stats.TimeAtFrequency[3], total)),
		fmt.Sprintf("  - 0.8: %.2f%%", percentOf(r.Stats.TimeAtFrequency[2], total)),
		fmt.Sprintf("  - 0.6: %.2f%%", percentOf(r.Stats.TimeAtFrequency[1], total)),
		fmt.Sprintf("  - 0.4: %.2f%%", percentOf(r.Stats.TimeAtFrequency[0], total)),
		fmt.Sprintf("DPM transitions: %d", r.Stats.DPMTransitions),
		fmt.Sprintf("Time spent in power-down mode: %.2f%%", percentOf(r.Stats.TimeInPowerDown, total)),
		"",
		"Task Statistics:",
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write analysis report: %w", err)
		}
	}

	for _, task := range r.Tasks {
		meanResponse := 0.0
		if task.InstancesCompleted > 0 {
			meanResponse = float64(task.TotalResponseTime) / float64(task.InstancesCompleted)
		}

		taskLines := []string{
			fmt.Sprintf("Task %d:", task.ID),
			fmt.Sprintf("  - Instances completed: %d", task.InstancesCompleted),
			fmt.Sprintf("  - Deadline misses: %d", task.DeadlineMisses),
			fmt.Sprintf("  - Average response time: %.2f ticks", meanResponse),
		}

		for _, line := range taskLines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return fmt.Errorf("write analysis report: %w", err)
			}
		}
	}

	return nil
}
