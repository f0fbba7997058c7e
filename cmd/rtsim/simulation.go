package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"rtsim/pkg/analysis"
	"rtsim/pkg/httpapi"
	"rtsim/pkg/ioset"
	"rtsim/pkg/rtstask"
	"rtsim/pkg/sim"
	"rtsim/pkg/trace"
)

// watchPollInterval is how often -watch mode checks the input files for
// changes once a run has completed.
const watchPollInterval = 500 * time.Millisecond

// runSimulation loads the task set and execution times, runs one simulation
// to completion, writes the trace and analysis output, and - when cfg.Watch
// is set - re-runs whenever the input files change until ctx is cancelled.
func runSimulation(ctx context.Context, cfg runtimeConfig, logger *zap.Logger) error {
	var server *http.Server

	source := &driverSource{}

	if cfg.HTTPAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/status", httpapi.NewStatusHandler(source))
		mux.Handle("/metrics", httpapi.NewMetricsHandler(source))

		server = &http.Server{Addr: cfg.HTTPAddr, Handler: mux} //nolint:gosec // offline simulator, no client-facing deadlines needed

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status/metrics server exited", zap.Error(err))
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = server.Shutdown(shutdownCtx)
		}()
	}

	if !cfg.Watch {
		return runOnce(ctx, cfg, logger, source)
	}

	return runWatching(ctx, cfg, logger, source)
}

// driverSource adapts a *sim.Driver, swapped atomically between runs, into
// the stable httpapi.SnapshotSource the status/metrics server is built once
// against. Field access is only ever read by the HTTP goroutine and written
// by the run loop, both through the driver field below; sim.Driver itself
// already guards its own internal state.
type driverSource struct {
	driver *sim.Driver
}

func (s *driverSource) Snapshot() sim.Snapshot {
	if s.driver == nil {
		return sim.Snapshot{}
	}

	return s.driver.Snapshot()
}

func runOnce(ctx context.Context, cfg runtimeConfig, logger *zap.Logger, source *driverSource) error {
	taskSet, warnings, err := loadTaskSet(cfg.TaskSetPath, cfg.ExecTimesPath)
	if err != nil {
		return err
	}

	for _, warning := range warnings {
		logger.Warn("skipped malformed input line", zap.String("detail", warning.String()))
	}

	traceWriter, closeTrace, err := openTraceOutput(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeTrace(); err != nil {
			logger.Error("failed to close trace output", zap.Error(err))
		}
	}()

	emitter := trace.NewEmitter(traceWriter)
	driver := sim.New(taskSet, cfg.Periods, cfg.DPMThreshold, emitter)

	if source != nil {
		source.driver = driver
	}

	logger.Info("running simulation",
		zap.Int64("endTime", driver.EndTime()),
		zap.Int("taskCount", len(taskSet.Tasks)),
	)

	if err := driver.Run(ctx); err != nil {
		return fmt.Errorf("run simulation: %w", err)
	}

	report := analysis.New(driver.Stats().Snapshot(), taskSet.Tasks)

	if err := writeAnalysisReport(cfg.AnalysisOutPath, report); err != nil {
		return err
	}

	logger.Info("simulation complete", zap.String("analysisOut", cfg.AnalysisOutPath))

	return nil
}

func runWatching(ctx context.Context, cfg runtimeConfig, logger *zap.Logger, source *driverSource) error {
	reloader := ioset.NewReloader("rtsim-watch", cfg.TaskSetPath, cfg.ExecTimesPath)

	if err := runOnce(ctx, cfg, logger, source); err != nil {
		return err
	}

	lastTaskSetMod, lastExecMod := statModTimes(cfg.TaskSetPath, cfg.ExecTimesPath)

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			taskSetMod, execMod := statModTimes(cfg.TaskSetPath, cfg.ExecTimesPath)
			if taskSetMod.Equal(lastTaskSetMod) && execMod.Equal(lastExecMod) {
				continue
			}

			lastTaskSetMod, lastExecMod = taskSetMod, execMod

			result, err := reloader.Reload()
			if err != nil {
				logger.Warn("watch reload failed, keeping previous run", zap.Error(err))
				continue
			}

			for _, warning := range result.Warnings {
				logger.Warn("skipped malformed input line", zap.String("detail", warning.String()))
			}

			logger.Info("input files changed, re-running simulation")

			if err := runOnce(ctx, cfg, logger, source); err != nil {
				logger.Error("re-run failed", zap.Error(err))
			}
		}
	}
}

func statModTimes(taskSetPath, execTimesPath string) (time.Time, time.Time) {
	var taskSetMod, execMod time.Time

	if info, err := os.Stat(taskSetPath); err == nil {
		taskSetMod = info.ModTime()
	}

	if info, err := os.Stat(execTimesPath); err == nil {
		execMod = info.ModTime()
	}

	return taskSetMod, execMod
}

func loadTaskSet(taskSetPath, execTimesPath string) (*rtstask.TaskSet, []ioset.Warning, error) {
	taskSetFile, err := os.Open(taskSetPath) //nolint:gosec // operator-supplied CLI flag
	if err != nil {
		return nil, nil, fmt.Errorf("open task set %q: %w", taskSetPath, err)
	}
	defer taskSetFile.Close()

	taskSet, warnings, err := ioset.ParseTaskSet(taskSetFile)
	if err != nil {
		return nil, nil, fmt.Errorf("parse task set %q: %w", taskSetPath, err)
	}

	execTimesFile, err := os.Open(execTimesPath) //nolint:gosec // operator-supplied CLI flag
	if err != nil {
		return nil, nil, fmt.Errorf("open execution times %q: %w", execTimesPath, err)
	}
	defer execTimesFile.Close()

	execWarnings, err := ioset.ParseExecutionTimes(execTimesFile, taskSet)
	if err != nil {
		return nil, nil, fmt.Errorf("parse execution times %q: %w", execTimesPath, err)
	}

	return taskSet, append(warnings, execWarnings...), nil
}

func openTraceOutput(cfg runtimeConfig) (*os.File, func() error, error) {
	if !cfg.Watch {
		file, err := os.Create(cfg.TraceOutPath) //nolint:gosec // operator-supplied CLI flag
		if err != nil {
			return nil, nil, fmt.Errorf("create trace output %q: %w", cfg.TraceOutPath, err)
		}

		return file, file.Close, nil
	}

	locked, err := trace.OpenLocked(cfg.TraceOutPath)
	if err != nil {
		return nil, nil, err
	}

	return locked.File, locked.Close, nil
}

func writeAnalysisReport(path string, report analysis.Report) error {
	file, err := os.Create(path) //nolint:gosec // operator-supplied CLI flag
	if err != nil {
		return fmt.Errorf("create analysis output %q: %w", path, err)
	}
	defer file.Close()

	if err := report.WriteText(file); err != nil {
		return err
	}

	return nil
}
