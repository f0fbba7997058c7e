package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"rtsim/pkg/power"
	"rtsim/pkg/sim"
)

const (
	envTaskSetPath     = "RTSIM_TASK_SET"
	envExecTimesPath   = "RTSIM_EXEC_TIMES"
	envTraceOutPath    = "RTSIM_TRACE_OUT"
	envAnalysisOutPath = "RTSIM_ANALYSIS_OUT"
	envPeriods         = "RTSIM_PERIODS"
	envDPMThreshold    = "RTSIM_DPM_THRESHOLD"
	envLogLevel        = "RTSIM_LOG_LEVEL"
	envHTTPAddr        = "RTSIM_HTTP_ADDR"
)

// runtimeConfig is the fully resolved configuration for one run: CLI flags,
// overlaid with an optional YAML file, overlaid with environment variables.
type runtimeConfig struct {
	TaskSetPath     string
	ExecTimesPath   string
	TraceOutPath    string
	AnalysisOutPath string
	Periods         int
	DPMThreshold    int64
	LogLevel        string
	HTTPAddr        string
	Watch           bool
}

type fileConfig struct {
	TraceOutPath    *string `yaml:"traceOutPath"`
	AnalysisOutPath *string `yaml:"analysisOutPath"`
	Periods         *int    `yaml:"periods"`
	DPMThreshold    *int64  `yaml:"dpmThreshold"`
	LogLevel        *string `yaml:"logLevel"`
	HTTPAddr        *string `yaml:"httpAddr"`
}

func defaultRuntimeConfig(opts cliOptions) runtimeConfig {
	return runtimeConfig{
		TaskSetPath:     opts.taskSetPath,
		ExecTimesPath:   opts.execTimesPath,
		TraceOutPath:    opts.traceOutPath,
		AnalysisOutPath: opts.analysisOutPath,
		Periods:         sim.DefaultPeriods,
		DPMThreshold:    power.DefaultDPMThreshold,
		LogLevel:        defaultLogLevel,
		HTTPAddr:        opts.httpAddr,
		Watch:           opts.watch,
	}
}

// loadConfig resolves the runtime configuration: CLI flags take the place of
// defaults where the flag was set, an optional -config YAML file may
// override further, and environment variables have the final word - the
// same three-tier precedence the config overlay in the wider corpus uses.
func loadConfig(opts cliOptions) (runtimeConfig, error) {
	cfg := defaultRuntimeConfig(opts)

	if opts.periods > 0 {
		cfg.Periods = opts.periods
	}

	if opts.dpmThreshold > 0 {
		cfg.DPMThreshold = opts.dpmThreshold
	}

	if strings.TrimSpace(opts.logLevel) != "" {
		cfg.LogLevel = strings.TrimSpace(opts.logLevel)
	}

	trimmedConfigPath := strings.TrimSpace(opts.configPath)
	if trimmedConfigPath != "" {
		data, err := os.ReadFile(trimmedConfigPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return runtimeConfig{}, fmt.Errorf("read config file %q: %w", trimmedConfigPath, err)
			}
		} else {
			var file fileConfig

			if err := yaml.Unmarshal(data, &file); err != nil {
				return runtimeConfig{}, fmt.Errorf("decode config file %q: %w", trimmedConfigPath, err)
			}

			mergeFileConfig(&cfg, file)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Periods <= 0 {
		cfg.Periods = sim.DefaultPeriods
	}

	if cfg.DPMThreshold <= 0 {
		cfg.DPMThreshold = power.DefaultDPMThreshold
	}

	return cfg, nil
}

func mergeFileConfig(cfg *runtimeConfig, file fileConfig) {
	assignString(&cfg.TraceOutPath, file.TraceOutPath)
	assignString(&cfg.AnalysisOutPath, file.AnalysisOutPath)
	assignInt(&cfg.Periods, file.Periods)
	assignInt64(&cfg.DPMThreshold, file.DPMThreshold)
	assignString(&cfg.LogLevel, file.LogLevel)
	assignString(&cfg.HTTPAddr, file.HTTPAddr)
}

func assignString(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}

func assignInt(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}

func assignInt64(target *int64, value *int64) {
	if value != nil {
		*target = *value
	}
}

var lookupEnv = os.LookupEnv //nolint:gochecknoglobals // overridden in tests

func applyEnvOverrides(cfg *runtimeConfig) {
	cfg.TaskSetPath = envString(envTaskSetPath, cfg.TaskSetPath)
	cfg.ExecTimesPath = envString(envExecTimesPath, cfg.ExecTimesPath)
	cfg.TraceOutPath = envString(envTraceOutPath, cfg.TraceOutPath)
	cfg.AnalysisOutPath = envString(envAnalysisOutPath, cfg.AnalysisOutPath)
	cfg.LogLevel = envString(envLogLevel, cfg.LogLevel)
	cfg.HTTPAddr = envString(envHTTPAddr, cfg.HTTPAddr)
	cfg.Periods = envInt(envPeriods, cfg.Periods)
	cfg.DPMThreshold = envInt64(envDPMThreshold, cfg.DPMThreshold)
}

func envString(key, fallback string) string {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}

	return trimmed
}

func envInt(key string, fallback int) int {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func envInt64(key string, fallback int64) int64 {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}

	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
