package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	compileoutput "github.com/alnah/mdbook-compile-output"
	"github.com/alnah/mdbook-compile-output/internal/fileutil"
	"github.com/alnah/mdbook-compile-output/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidValue   = errors.New("invalid config value")
)

// Defaults. Step defaults are those of compileoutput.CommandCompiler.
const (
	DefaultBaseDir     = compileoutput.DefaultBaseDir
	DefaultStepCommand = compileoutput.DefaultCommand
	DefaultLogLevel    = "warn"
)

// Spawn error policies.
const (
	PolicyAbort  = string(compileoutput.SpawnAbort)
	PolicyInline = string(compileoutput.SpawnInline)
)

// BookTablePath is the gjson path of this preprocessor's table in book.toml.
const BookTablePath = "preprocessor.compile-output"

// Config holds the step execution and logging options.
type Config struct {
	BaseDir      string
	StepCommand  string
	StepArgs     []string
	Timeout      time.Duration // zero means no limit
	OnSpawnError string
	LogLevel     string
}

// DefaultConfig runs "cargo test --release" under rust_stages with no timeout.
func DefaultConfig() *Config {
	return &Config{
		BaseDir:      DefaultBaseDir,
		StepCommand:  DefaultStepCommand,
		StepArgs:     compileoutput.DefaultArgs(),
		OnSpawnError: PolicyAbort,
		LogLevel:     DefaultLogLevel,
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration can run steps.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StepCommand) == "" {
		return fmt.Errorf("%w: step command cannot be empty", ErrInvalidValue)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative, got %s", ErrInvalidValue, c.Timeout)
	}
	switch c.OnSpawnError {
	case PolicyAbort, PolicyInline:
	default:
		return fmt.Errorf("%w: on-spawn-error %q (must be abort or inline)", ErrInvalidValue, c.OnSpawnError)
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: log level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.LogLevel)
	}
	return nil
}

// fileConfig mirrors Config in the YAML file. Nil fields are unset.
type fileConfig struct {
	BaseDir      *string  `yaml:"baseDir"`
	StepCommand  *string  `yaml:"stepCommand"`
	StepArgs     []string `yaml:"stepArgs"`
	Timeout      *string  `yaml:"timeout"`
	OnSpawnError *string  `yaml:"onSpawnError"`
	LogLevel     *string  `yaml:"logLevel"`
}

// ApplyFile overlays the YAML file at path onto c.
// A missing file is an error (no silent fallback); unknown keys are rejected.
func (c *Config) ApplyFile(path string) error {
	if !fileutil.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yamlutil.DecodeStrict(data, &fc); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfigParse, path, err)
		}
	}

	if fc.BaseDir != nil {
		c.BaseDir = *fc.BaseDir
	}
	if fc.StepCommand != nil {
		c.StepCommand = *fc.StepCommand
	}
	if fc.StepArgs != nil {
		c.StepArgs = fc.StepArgs
	}
	if fc.Timeout != nil {
		d, err := ParseTimeout(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("%s: timeout: %w", path, err)
		}
		c.Timeout = d
	}
	if fc.OnSpawnError != nil {
		c.OnSpawnError = *fc.OnSpawnError
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	return nil
}

// ApplyBookTable overlays the [preprocessor.compile-output] table of a
// book.toml (as JSON) onto c. Absent config or table changes nothing.
func (c *Config) ApplyBookTable(bookConfig []byte) error {
	if len(bookConfig) == 0 {
		return nil
	}
	table := gjson.GetBytes(bookConfig, BookTablePath)
	if !table.IsObject() {
		return nil
	}

	if v := table.Get("base-dir"); v.Exists() {
		s, err := stringValue("base-dir", v)
		if err != nil {
			return err
		}
		c.BaseDir = s
	}
	if v := table.Get("step-command"); v.Exists() {
		s, err := stringValue("step-command", v)
		if err != nil {
			return err
		}
		c.StepCommand = s
	}
	if v := table.Get("step-args"); v.Exists() {
		args, err := argsValue(v)
		if err != nil {
			return err
		}
		c.StepArgs = args
	}
	if v := table.Get("timeout"); v.Exists() {
		d, err := durationValue(v)
		if err != nil {
			return err
		}
		c.Timeout = d
	}
	if v := table.Get("on-spawn-error"); v.Exists() {
		s, err := stringValue("on-spawn-error", v)
		if err != nil {
			return err
		}
		c.OnSpawnError = s
	}
	if v := table.Get("log-level"); v.Exists() {
		s, err := stringValue("log-level", v)
		if err != nil {
			return err
		}
		c.LogLevel = s
	}
	return nil
}

func stringValue(key string, v gjson.Result) (string, error) {
	if v.Type != gjson.String {
		return "", fmt.Errorf("%w: %s.%s must be a string", ErrInvalidValue, BookTablePath, key)
	}
	return v.String(), nil
}

// argsValue accepts an array of strings or a single space-separated string.
func argsValue(v gjson.Result) ([]string, error) {
	if v.Type == gjson.String {
		return strings.Fields(v.String()), nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("%w: %s.step-args must be an array of strings", ErrInvalidValue, BookTablePath)
	}
	args := []string{}
	for _, item := range v.Array() {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("%w: %s.step-args must be an array of strings", ErrInvalidValue, BookTablePath)
		}
		args = append(args, item.String())
	}
	return args, nil
}

// durationValue accepts a Go duration string ("90s") or a number of seconds.
func durationValue(v gjson.Result) (time.Duration, error) {
	switch v.Type {
	case gjson.String:
		d, err := ParseTimeout(v.String())
		if err != nil {
			return 0, fmt.Errorf("%s.timeout: %w", BookTablePath, err)
		}
		return d, nil
	case gjson.Number:
		return time.Duration(v.Float() * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%w: %s.timeout must be a duration string or seconds", ErrInvalidValue, BookTablePath)
	}
}

// ParseTimeout parses a Go duration string; "" and "0" mean no limit.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return d, nil
}
