// Package main wires the rtsim CLI entrypoint: an offline simulator of a
// uniprocessor EDF scheduler with CCEDF DVFS and DPM energy policies.
package main

//nolint:depguard // main wires project-internal modules and zap logging
import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"rtsim/internal/buildinfo"
)

const (
	defaultLogLevel = "info"

	exitCodeSuccess      = 0
	exitCodeRuntimeError = 1
	exitCodeParseError   = 2
)

func main() {
	code := run(context.Background(), os.Args[1:], defaultRunDeps(), os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
}

type runDeps struct {
	newLogger func(level string) (*zap.Logger, error)
	simulate  func(ctx context.Context, cfg runtimeConfig, logger *zap.Logger) error
}

func defaultRunDeps() runDeps {
	return runDeps{
		newLogger: newLogger,
		simulate:  runSimulation,
	}
}

func run(ctx context.Context, args []string, deps runDeps, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err) //nolint:errcheck

		return exitCodeParseError
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err) //nolint:errcheck

		return exitCodeParseError
	}

	logger, err := deps.newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "failed to configure logger: %v\n", err) //nolint:errcheck

		return exitCodeRuntimeError
	}

	defer func() {
		_ = logger.Sync()
	}()

	info := buildinfo.Current()
	logger.Info(
		"starting rtsim",
		zap.String("version", info.Version),
		zap.String("commit", info.GitCommit),
		zap.String("buildDate", info.BuildDate),
		zap.String("taskSet", cfg.TaskSetPath),
		zap.String("execTimes", cfg.ExecTimesPath),
		zap.Int("periods", cfg.Periods),
		zap.Int64("dpmThreshold", cfg.DPMThreshold),
		zap.Bool("watch", cfg.Watch),
	)

	if err := deps.simulate(ctx, cfg, logger); err != nil {
		logger.Error("simulation failed", zap.Error(err))

		return exitCodeRuntimeError
	}

	return exitCodeSuccess
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = defaultLogLevel
	}

	cfg := zap.NewProductionConfig()

	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.CallerKey = "caller"

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return logger, nil
}

var (
	errInvalidLogLevel = errors.New("invalid log level")
	errMissingFlag     = errors.New("missing required flag")
)

type cliOptions struct {
	taskSetPath     string
	execTimesPath   string
	traceOutPath    string
	analysisOutPath string
	periods         int
	dpmThreshold    int64
	logLevel        string
	httpAddr        string
	configPath      string
	watch           bool
}

func parseArgs(args []string) (cliOptions, error) {
	var opts cliOptions

	flagSet := flag.NewFlagSet("rtsim", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	flagSet.StringVar(&opts.taskSetPath, "task-set", "", "path to the task-set input file (required)")
	flagSet.StringVar(&opts.execTimesPath, "exec-times", "", "path to the actual-execution-times input file (required)")
	flagSet.StringVar(&opts.traceOutPath, "trace-out", "output.txt", "path to write the tick-by-tick trace")
	flagSet.StringVar(&opts.analysisOutPath, "analysis-out", "analysis.txt", "path to write the end-of-run analysis")
	flagSet.IntVar(&opts.periods, "periods", 0, "multiples of the largest task period to simulate (default 3)")
	flagSet.Int64Var(&opts.dpmThreshold, "dpm-threshold", 0, "DPM break-even slack threshold in ticks (default 20)")
	flagSet.StringVar(&opts.logLevel, "log-level", defaultLogLevel, "structured log level (debug, info, warn, error)")
	flagSet.StringVar(&opts.httpAddr, "http-addr", "", "optional bind address for the live /status and /metrics endpoints")
	flagSet.StringVar(&opts.configPath, "config", "", "optional YAML config overlay")
	flagSet.BoolVar(&opts.watch, "watch", false, "re-run the simulation whenever the input files change")

	if err := flagSet.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("parse CLI arguments: %w", err)
	}

	opts.taskSetPath = strings.TrimSpace(opts.taskSetPath)
	opts.execTimesPath = strings.TrimSpace(opts.execTimesPath)

	if opts.taskSetPath == "" {
		return cliOptions{}, fmt.Errorf("%w: -task-set", errMissingFlag)
	}

	if opts.execTimesPath == "" {
		return cliOptions{}, fmt.Errorf("%w: -exec-times", errMissingFlag)
	}

	return opts, nil
}
