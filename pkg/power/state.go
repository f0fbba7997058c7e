// Package power implements the energy-aware policies layered on top of EDF
// dispatch: Cycle-Conserving EDF (CCEDF) frequency selection and Dynamic
// Power Management (DPM) sleep on/off. Both decision functions are pure:
// they borrow a Task and the current State read-only and return a Decision
// by value, leaving application of that decision to a separate step.
package power

import "fmt"

// Level is one of the four discrete DVFS operating points.
type Level float64

// The available frequency levels, ascending. CCEDF always selects from this
// set; DVFS_LEVELS in the source system.
const (
	Level04 Level = 0.4
	Level06 Level = 0.6
	Level08 Level = 0.8
	Level10 Level = 1.0
)

// Levels lists the discrete frequency levels in ascending order, the order
// CCEDF scans when picking the smallest sufficient level.
var Levels = [...]Level{Level04, Level06, Level08, Level10}

// DefaultDPMThreshold is the nominal DPM break-even slack, in ticks: entering
// sleep is only worthwhile if the idle window exceeds it.
const DefaultDPMThreshold int64 = 20

// LeakageEnergy is the flat per-tick energy charged while DPM is active, in
// place of the cubic active-tick proxy.
const LeakageEnergy = 0.05

// State is the processor's current operating point.
type State struct {
	FrequencyLevel Level
	IsDPMActive    bool
}

// NewState returns the initial operating point: maximum frequency, DPM off.
func NewState() State {
	return State{FrequencyLevel: Level10}
}

func (l Level) String() string {
	return fmt.Sprintf("%.1f", float64(l))
}
