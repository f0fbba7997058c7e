package power

import "rtsim/pkg/rtstask"

// DVFSDecision computes the Cycle-Conserving EDF frequency decision for the
// currently selected task at currentTime.
//
// If DPM is active the processor must wake up before any frequency decision
// is meaningful, so this returns DpmOff unconditionally in that case.
//
// The required relative frequency phi is derived from the task's remaining
// work against the time left to its deadline. Per the behavioral resolution
// of the source's ambiguous formula, time-to-deadline is computed against
// the simulation clock (d - currentTime) rather than against consumed work;
// the two coincide whenever the clock advances in lock-step with work
// (frequency 1.0), and diverge slightly under scaling.
func DVFSDecision(task *rtstask.Task, currentTime int64, state State) Decision {
	if state.IsDPMActive {
		return Decision{Kind: DpmOff}
	}

	phi := requiredFrequency(task, currentTime)
	level := selectLevel(phi)

	if level == state.FrequencyLevel {
		return Decision{Kind: NoChange, NewLevel: level}
	}

	return Decision{Kind: DvfsChange, NewLevel: level}
}

func requiredFrequency(task *rtstask.Task, currentTime int64) float64 {
	r := task.RemainingExecutionTime

	if r > 0 {
		currentTimeToDeadline := float64(task.AbsoluteDeadline - currentTime)
		if currentTimeToDeadline > 0 {
			return r / currentTimeToDeadline
		}
		// Already past deadline: nothing to gain from downscaling.
		return 1.0
	}

	// r == 0 at release: fall back to the release-time baseline W / (d - a).
	w := float64(task.ActualExecutionTime[task.CurrentInstance])
	denom := float64(task.AbsoluteDeadline - task.ArrivalTime)
	if denom <= 0 {
		return 1.0
	}

	return w / denom
}

// selectLevel returns the smallest level in Levels that is >= phi, or the
// highest level if none qualifies.
func selectLevel(phi float64) Level {
	for _, l := range Levels {
		if float64(l) >= phi {
			return l
		}
	}
	return Level10
}

// DPMDecision computes the sleep on/off decision from system slack.
func DPMDecision(slack int64, state State, threshold int64) Decision {
	switch {
	case slack > threshold && !state.IsDPMActive:
		return Decision{Kind: DpmOn}
	case state.IsDPMActive && slack <= threshold:
		return Decision{Kind: DpmOff}
	default:
		return Decision{Kind: NoChange}
	}
}
