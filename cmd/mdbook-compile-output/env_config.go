package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alnah/mdbook-compile-output/internal/config"
)

// envPrefix namespaces every environment variable this command reads.
const envPrefix = "MDBOOK_COMPILE_OUTPUT_"

// envConfig holds configuration from environment variables.
// Lets CI override book.toml without editing it. Empty means unset.
type envConfig struct {
	ConfigPath   string // MDBOOK_COMPILE_OUTPUT_CONFIG: YAML config file path
	BaseDir      string // MDBOOK_COMPILE_OUTPUT_BASE_DIR: step directory root
	StepCommand  string // MDBOOK_COMPILE_OUTPUT_STEP_COMMAND: executable per step
	StepArgs     string // MDBOOK_COMPILE_OUTPUT_STEP_ARGS: space-separated arguments
	Timeout      string // MDBOOK_COMPILE_OUTPUT_TIMEOUT: per-step limit
	OnSpawnError string // MDBOOK_COMPILE_OUTPUT_ON_SPAWN_ERROR: abort or inline
	LogLevel     string // MDBOOK_COMPILE_OUTPUT_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid MDBOOK_COMPILE_OUTPUT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	envPrefix + "CONFIG":         true,
	envPrefix + "BASE_DIR":       true,
	envPrefix + "STEP_COMMAND":   true,
	envPrefix + "STEP_ARGS":      true,
	envPrefix + "TIMEOUT":        true,
	envPrefix + "ON_SPAWN_ERROR": true,
	envPrefix + "LOG_LEVEL":      true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		ConfigPath:   getenv(envPrefix + "CONFIG"),
		BaseDir:      getenv(envPrefix + "BASE_DIR"),
		StepCommand:  getenv(envPrefix + "STEP_COMMAND"),
		StepArgs:     getenv(envPrefix + "STEP_ARGS"),
		Timeout:      getenv(envPrefix + "TIMEOUT"),
		OnSpawnError: getenv(envPrefix + "ON_SPAWN_ERROR"),
		LogLevel:     getenv(envPrefix + "LOG_LEVEL"),
	}
}

// unknownEnvVars returns unrecognized MDBOOK_COMPILE_OUTPUT_* names, sorted.
// Helps catch typos like MDBOOK_COMPILE_OUTPUT_BASEDIR.
func unknownEnvVars(environ []string) []string {
	var unknown []string
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// applyEnvConfig overlays set environment values onto cfg.
// Precedence: flags > env vars > config file > book.toml > defaults
// (flags are applied afterwards by resolveConfig).
func applyEnvConfig(env *envConfig, cfg *config.Config) error {
	if env.BaseDir != "" {
		cfg.BaseDir = env.BaseDir
	}
	if env.StepCommand != "" {
		cfg.StepCommand = env.StepCommand
	}
	if env.StepArgs != "" {
		cfg.StepArgs = strings.Fields(env.StepArgs)
	}
	if env.Timeout != "" {
		d, err := config.ParseTimeout(env.Timeout)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", envPrefix, err)
		}
		cfg.Timeout = d
	}
	if env.OnSpawnError != "" {
		cfg.OnSpawnError = env.OnSpawnError
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	return nil
}
