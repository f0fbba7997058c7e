package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errStubSimulateFailed = errors.New("simulate failed")

func TestParseArgsRequiresTaskSetAndExecTimes(t *testing.T) {
	t.Parallel()

	if _, err := parseArgs(nil); !errors.Is(err, errMissingFlag) {
		t.Fatalf("expected errMissingFlag, got %v", err)
	}

	if _, err := parseArgs([]string{"-task-set", "tasks.txt"}); !errors.Is(err, errMissingFlag) {
		t.Fatalf("expected errMissingFlag for missing -exec-times, got %v", err)
	}
}

func TestParseArgsDefaults(t *testing.T) {
	t.Parallel()

	opts, err := parseArgs([]string{"-task-set", "tasks.txt", "-exec-times", "exec.txt"})
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}

	if opts.traceOutPath != "output.txt" {
		t.Fatalf("unexpected default trace-out path: %q", opts.traceOutPath)
	}

	if opts.analysisOutPath != "analysis.txt" {
		t.Fatalf("unexpected default analysis-out path: %q", opts.analysisOutPath)
	}

	if opts.logLevel != defaultLogLevel {
		t.Fatalf("unexpected default log level: %q", opts.logLevel)
	}

	if opts.watch {
		t.Fatal("expected watch to default to false")
	}
}

func TestParseArgsReturnsFlagError(t *testing.T) {
	t.Parallel()

	_, err := parseArgs([]string{"-unknown-flag"})
	if err == nil {
		t.Fatal("expected flag parsing error")
	}
}

func TestNewLoggerRejectsInvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := newLogger("not-a-level")
	if !errors.Is(err, errInvalidLogLevel) {
		t.Fatalf("expected errInvalidLogLevel, got %v", err)
	}
}

func TestNewLoggerAppliesLevel(t *testing.T) {
	t.Parallel()

	logger, err := newLogger("debug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer func() {
		_ = logger.Sync()
	}()

	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected logger to enable debug level")
	}
}

func TestRunReturnsParseErrorExitCodeOnMissingFlags(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer

	code := run(t.Context(), nil, defaultRunDeps(), &stderr)
	if code != exitCodeParseError {
		t.Fatalf("expected exit code %d, got %d", exitCodeParseError, code)
	}

	if stderr.Len() == 0 {
		t.Fatal("expected an error message to be written to stderr")
	}
}

func TestRunSuccessfulPath(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	deps := runDeps{
		newLogger: func(level string) (*zap.Logger, error) {
			if level != "debug" {
				t.Fatalf("expected log level \"debug\", got %q", level)
			}

			return logger, nil
		},
	}

	var gotCfg runtimeConfig

	deps.simulate = func(_ context.Context, cfg runtimeConfig, _ *zap.Logger) error {
		gotCfg = cfg
		return nil
	}

	code := run(
		t.Context(),
		[]string{"-task-set", "tasks.txt", "-exec-times", "exec.txt", "-log-level", "debug"},
		deps,
		bytes.NewBuffer(nil),
	)
	if code != exitCodeSuccess {
		t.Fatalf("expected success exit code, got %d", code)
	}

	if gotCfg.TaskSetPath != "tasks.txt" || gotCfg.ExecTimesPath != "exec.txt" {
		t.Fatalf("unexpected config passed to simulate: %+v", gotCfg)
	}

	foundStart := false

	for _, entry := range observed.All() {
		if entry.Message == "starting rtsim" {
			foundStart = true
		}
	}

	if !foundStart {
		t.Fatal("expected a \"starting rtsim\" log entry")
	}
}

func TestRunReturnsRuntimeErrorExitCodeOnSimulateFailure(t *testing.T) {
	t.Parallel()

	deps := runDeps{
		newLogger: func(string) (*zap.Logger, error) { return zap.NewNop(), nil },
		simulate: func(context.Context, runtimeConfig, *zap.Logger) error {
			return errStubSimulateFailed
		},
	}

	code := run(
		t.Context(),
		[]string{"-task-set", "tasks.txt", "-exec-times", "exec.txt"},
		deps,
		bytes.NewBuffer(nil),
	)
	if code != exitCodeRuntimeError {
		t.Fatalf("expected runtime error exit code, got %d", code)
	}
}
