// Package httpapi exposes a read-only live view of an in-progress
// simulation: a JSON status endpoint and an OpenMetrics text endpoint. Both
// are ambient to the simulation core - they read a Snapshot from the driver
// on the request's goroutine and never mutate simulation state.
package httpapi

import (
	"encoding/json"
	"net/http"

	"rtsim/pkg/sim"
)

// SnapshotSource is the dependency both handlers need: a way to read the
// current simulation progress without touching the driver's internals.
type SnapshotSource interface {
	Snapshot() sim.Snapshot
}

// StatusSnapshot is the JSON shape served at /status.
type StatusSnapshot struct {
	CurrentTime        int64   `json:"currentTime"`
	EndTime            int64   `json:"endTime"`
	FrequencyLevel     float64 `json:"frequencyLevel"`
	DPMActive          bool    `json:"dpmActive"`
	TotalExecutionTime int64   `json:"totalExecutionTime"`
	EnergyConsumption  float64 `json:"energyConsumption"`
	DVFSTransitions    uint64  `json:"dvfsTransitions"`
	DPMTransitions     uint64  `json:"dpmTransitions"`
}

// StatusHandler renders simulation progress as JSON.
type StatusHandler struct {
	source SnapshotSource
}

// NewStatusHandler constructs a StatusHandler over the given snapshot source.
func NewStatusHandler(source SnapshotSource) *StatusHandler {
	return &StatusHandler{source: source}
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	if h == nil || h.source == nil {
		http.Error(writer, "simulation not running", http.StatusServiceUnavailable)
		return
	}

	snap := h.source.Snapshot()

	status := StatusSnapshot{
		CurrentTime:        snap.CurrentTime,
		EndTime:            snap.EndTime,
		FrequencyLevel:     float64(snap.Power.FrequencyLevel),
		DPMActive:          snap.Power.IsDPMActive,
		TotalExecutionTime: snap.Stats.TotalExecutionTime,
		EnergyConsumption:  snap.Stats.EnergyConsumption,
		DVFSTransitions:    snap.Stats.DVFSTransitions,
		DPMTransitions:     snap.Stats.DPMTransitions,
	}

	payload, err := json.Marshal(status)
	if err != nil {
		http.Error(writer, "marshal status", http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	_, _ = writer.Write(payload)
}
