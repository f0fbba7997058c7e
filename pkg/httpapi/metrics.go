package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const metricsContentType = "application/openmetrics-text; version=1.0.0; charset=utf-8"

var errNilWriter = errors.New("httpapi: writer is nil")

// MetricsHandler renders live simulation progress as OpenMetrics text.
type MetricsHandler struct {
	source SnapshotSource
}

// NewMetricsHandler constructs a MetricsHandler over the given snapshot source.
func NewMetricsHandler(source SnapshotSource) *MetricsHandler {
	return &MetricsHandler{source: source}
}

// ServeHTTP implements http.Handler.
func (h *MetricsHandler) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	data, err := h.Render()
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", metricsContentType)
	_, _ = writer.Write(data)
}

// Render returns the current metrics snapshot encoded as OpenMetrics text.
func (h *MetricsHandler) Render() ([]byte, error) {
	var buffer bytes.Buffer

	if _, err := h.WriteTo(&buffer); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// WriteTo writes the current metrics snapshot to dst.
func (h *MetricsHandler) WriteTo(dst io.Writer) (int64, error) {
	if dst == nil {
		return 0, errNilWriter
	}

	if h.source == nil {
		return 0, errors.New("httpapi: no snapshot source configured")
	}

	snap := h.source.Snapshot()

	dpmActive := 0
	if snap.Power.IsDPMActive {
		dpmActive = 1
	}

	lines := []string{
		"# HELP rtsim_current_time Current simulated tick.\n",
		"# TYPE rtsim_current_time gauge\n",
		fmt.Sprintf("rtsim_current_time %d\n", snap.CurrentTime),
		"# HELP rtsim_end_time Fixed simulation horizon (P_max * N_periods).\n",
		"# TYPE rtsim_end_time gauge\n",
		fmt.Sprintf("rtsim_end_time %d\n", snap.EndTime),
		"# HELP rtsim_frequency_level Current DVFS frequency level.\n",
		"# TYPE rtsim_frequency_level gauge\n",
		fmt.Sprintf("rtsim_frequency_level %.1f\n", float64(snap.Power.FrequencyLevel)),
		"# HELP rtsim_dpm_active Whether DPM sleep is currently active.\n",
		"# TYPE rtsim_dpm_active gauge\n",
		fmt.Sprintf("rtsim_dpm_active %d\n", dpmActive),
		"# HELP rtsim_energy_consumption_total Cumulative cubic-proxy energy estimate.\n",
		"# TYPE rtsim_energy_consumption_total counter\n",
		fmt.Sprintf("rtsim_energy_consumption_total %.6f\n", snap.Stats.EnergyConsumption),
		"# HELP rtsim_dvfs_transitions_total Count of applied DVFS level changes.\n",
		"# TYPE rtsim_dvfs_transitions_total counter\n",
		fmt.Sprintf("rtsim_dvfs_transitions_total %d\n", snap.Stats.DVFSTransitions),
		"# HELP rtsim_dpm_transitions_total Count of applied DPM on/off transitions.\n",
		"# TYPE rtsim_dpm_transitions_total counter\n",
		fmt.Sprintf("rtsim_dpm_transitions_total %d\n", snap.Stats.DPMTransitions),
		"# EOF\n",
	}

	var total int64

	for _, line := range lines {
		n, err := io.WriteString(dst, line)

		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write metrics: %w", err)
		}
	}

	return total, nil
}
