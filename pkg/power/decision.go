package power

import "fmt"

// Kind tags the variant a Decision holds.
type Kind int

const (
	NoChange Kind = iota
	DvfsChange
	DpmOn
	DpmOff
)

func (k Kind) String() string {
	switch k {
	case NoChange:
		return "NoChange"
	case DvfsChange:
		return "DvfsChange"
	case DpmOn:
		return "DpmOn"
	case DpmOff:
		return "DpmOff"
	default:
		return "Unknown"
	}
}

// Decision is the tagged result of a power-policy evaluation. NewLevel is
// only meaningful when Kind is DvfsChange.
type Decision struct {
	Kind     Kind
	NewLevel Level
}

// String renders the decision the way the trace emitter reports it:
// "No change", "DVFS -> 0.6", "DPM -> ON", "DPM -> OFF".
func (d Decision) String() string {
	switch d.Kind {
	case DvfsChange:
		return fmt.Sprintf("DVFS -> %.1f", float64(d.NewLevel))
	case DpmOn:
		return "DPM -> ON"
	case DpmOff:
		return "DPM -> OFF"
	default:
		return "No change"
	}
}

// Apply mutates state in place according to the decision. NoChange leaves
// state untouched.
func Apply(d Decision, state *State) {
	switch d.Kind {
	case DvfsChange:
		state.FrequencyLevel = d.NewLevel
	case DpmOn:
		state.IsDPMActive = true
	case DpmOff:
		state.IsDPMActive = false
	}
}
