package main

import (
	"os"
	"path/filepath"
	"testing"

	"rtsim/pkg/power"
	"rtsim/pkg/sim"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	t.Parallel()

	lookupEnv = func(string) (string, bool) { return "", false }

	opts := cliOptions{taskSetPath: "tasks.txt", execTimesPath: "exec.txt", logLevel: defaultLogLevel}

	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if cfg.Periods != sim.DefaultPeriods {
		t.Fatalf("expected default periods %d, got %d", sim.DefaultPeriods, cfg.Periods)
	}

	if cfg.DPMThreshold != power.DefaultDPMThreshold {
		t.Fatalf("expected default DPM threshold %d, got %d", power.DefaultDPMThreshold, cfg.DPMThreshold)
	}
}

func TestLoadConfigCLIOverridesDefaults(t *testing.T) {
	t.Parallel()

	lookupEnv = func(string) (string, bool) { return "", false }

	opts := cliOptions{
		taskSetPath:   "tasks.txt",
		execTimesPath: "exec.txt",
		periods:       5,
		dpmThreshold:  40,
		logLevel:      "warn",
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if cfg.Periods != 5 {
		t.Fatalf("expected periods 5, got %d", cfg.Periods)
	}

	if cfg.DPMThreshold != 40 {
		t.Fatalf("expected DPM threshold 40, got %d", cfg.DPMThreshold)
	}

	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log level \"warn\", got %q", cfg.LogLevel)
	}
}

func TestLoadConfigYAMLOverlayOverridesCLI(t *testing.T) {
	t.Parallel()

	lookupEnv = func(string) (string, bool) { return "", false }

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	yamlBody := "periods: 7\ndpmThreshold: 15\nhttpAddr: \":9090\"\n"
	if err := os.WriteFile(configPath, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	opts := cliOptions{
		taskSetPath:   "tasks.txt",
		execTimesPath: "exec.txt",
		periods:       4,
		dpmThreshold:  30,
		logLevel:      defaultLogLevel,
		configPath:    configPath,
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if cfg.Periods != 7 {
		t.Fatalf("expected periods 7 from YAML overlay, got %d", cfg.Periods)
	}

	if cfg.DPMThreshold != 15 {
		t.Fatalf("expected DPM threshold 15 from YAML overlay, got %d", cfg.DPMThreshold)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected http addr from YAML overlay, got %q", cfg.HTTPAddr)
	}
}

func TestLoadConfigEnvOverridesEverything(t *testing.T) {
	env := map[string]string{
		envPeriods:      "9",
		envDPMThreshold: "25",
		envLogLevel:     "error",
	}

	lookupEnv = func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}

	t.Cleanup(func() { lookupEnv = os.LookupEnv })

	opts := cliOptions{
		taskSetPath:   "tasks.txt",
		execTimesPath: "exec.txt",
		periods:       3,
		dpmThreshold:  10,
		logLevel:      "info",
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if cfg.Periods != 9 {
		t.Fatalf("expected env-overridden periods 9, got %d", cfg.Periods)
	}

	if cfg.DPMThreshold != 25 {
		t.Fatalf("expected env-overridden DPM threshold 25, got %d", cfg.DPMThreshold)
	}

	if cfg.LogLevel != "error" {
		t.Fatalf("expected env-overridden log level \"error\", got %q", cfg.LogLevel)
	}
}

func TestLoadConfigMissingConfigFileIsNotAnError(t *testing.T) {
	t.Parallel()

	lookupEnv = func(string) (string, bool) { return "", false }

	opts := cliOptions{
		taskSetPath:   "tasks.txt",
		execTimesPath: "exec.txt",
		logLevel:      defaultLogLevel,
		configPath:    filepath.Join(t.TempDir(), "does-not-exist.yaml"),
	}

	if _, err := loadConfig(opts); err != nil {
		t.Fatalf("expected missing -config path to be tolerated, got error: %v", err)
	}
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	lookupEnv = func(string) (string, bool) { return "", false }

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("periods: [this is not an int"), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	opts := cliOptions{
		taskSetPath:   "tasks.txt",
		execTimesPath: "exec.txt",
		logLevel:      defaultLogLevel,
		configPath:    configPath,
	}

	if _, err := loadConfig(opts); err == nil {
		t.Fatal("expected malformed YAML to return an error")
	}
}
