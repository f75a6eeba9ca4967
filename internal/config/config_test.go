package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	compileoutput "github.com/alnah/mdbook-compile-output"
)

// writeFile creates a config file in a temp dir and returns its path.
func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compile-output.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestDefaultConfig - cargo test --release under rust_stages
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	want := &Config{
		BaseDir:      "rust_stages",
		StepCommand:  "cargo",
		StepArgs:     []string{"test", "--release"},
		OnSpawnError: PolicyAbort,
		LogLevel:     "warn",
	}
	if diff := cmp.Diff(want, DefaultConfig()); diff != "" {
		t.Errorf("DefaultConfig() mismatch (-want +got):\n%s", diff)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestDefaultConfig_MatchesCompiler(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	c := compileoutput.NewCommandCompiler()

	if cfg.BaseDir != c.BaseDir {
		t.Errorf("BaseDir = %q, compiler default %q", cfg.BaseDir, c.BaseDir)
	}
	if cfg.StepCommand != c.Command {
		t.Errorf("StepCommand = %q, compiler default %q", cfg.StepCommand, c.Command)
	}
	if diff := cmp.Diff(c.Args, cfg.StepArgs); diff != "" {
		t.Errorf("StepArgs mismatch (-compiler +config):\n%s", diff)
	}
	if compileoutput.SpawnPolicy(cfg.OnSpawnError) != c.OnSpawnError {
		t.Errorf("OnSpawnError = %q, compiler default %q", cfg.OnSpawnError, c.OnSpawnError)
	}

	cfg.StepArgs[0] = "build"
	if DefaultConfig().StepArgs[0] != "test" {
		t.Error("DefaultConfig() shares its StepArgs slice")
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Value checks
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "inline policy", mutate: func(c *Config) { c.OnSpawnError = PolicyInline }},
		{name: "timeout set", mutate: func(c *Config) { c.Timeout = time.Minute }},
		{name: "empty base dir runs in cwd", mutate: func(c *Config) { c.BaseDir = "" }},
		{name: "empty command", mutate: func(c *Config) { c.StepCommand = "  " }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantErr: true},
		{name: "unknown policy", mutate: func(c *Config) { c.OnSpawnError = "retry" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidValue) {
					t.Errorf("Validate() = %v, want ErrInvalidValue", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConfig_ApplyFile - YAML overlay
// ---------------------------------------------------------------------------

func TestConfig_ApplyFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    *Config
		wantErr error
	}{
		{
			name: "all fields",
			content: `baseDir: stages
stepCommand: make
stepArgs: [test, -s]
timeout: 90s
onSpawnError: inline
logLevel: debug
`,
			want: &Config{
				BaseDir:      "stages",
				StepCommand:  "make",
				StepArgs:     []string{"test", "-s"},
				Timeout:      90 * time.Second,
				OnSpawnError: PolicyInline,
				LogLevel:     "debug",
			},
		},
		{
			name:    "partial file keeps other values",
			content: "stepCommand: just\n",
			want: &Config{
				BaseDir:      "rust_stages",
				StepCommand:  "just",
				StepArgs:     []string{"test", "--release"},
				OnSpawnError: PolicyAbort,
				LogLevel:     "warn",
			},
		},
		{
			name:    "empty file changes nothing",
			content: "\n",
			want:    DefaultConfig(),
		},
		{
			name:    "unknown field rejected",
			content: "command: cargo\n",
			wantErr: ErrConfigParse,
		},
		{
			name:    "malformed yaml",
			content: "baseDir: [unclosed\n",
			wantErr: ErrConfigParse,
		},
		{
			name:    "bad duration",
			content: "timeout: soon\n",
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			err := cfg.ApplyFile(writeFile(t, tt.content))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ApplyFile() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFile() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfig_ApplyFile_NotFound(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.yaml")
	err := DefaultConfig().ApplyFile(path)

	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("ApplyFile() error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q should name the path", err)
	}
}

func TestConfig_ApplyFile_TooLarge(t *testing.T) {
	t.Parallel()

	content := "baseDir: " + strings.Repeat("x", 1<<20) + "\n"
	err := DefaultConfig().ApplyFile(writeFile(t, content))

	if !errors.Is(err, ErrConfigParse) {
		t.Errorf("ApplyFile() error = %v, want ErrConfigParse", err)
	}
}

// ---------------------------------------------------------------------------
// TestConfig_ApplyBookTable - book.toml overlay
// ---------------------------------------------------------------------------

func TestConfig_ApplyBookTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  string
		want    *Config
		wantErr error
	}{
		{
			name:   "no config",
			config: "",
			want:   DefaultConfig(),
		},
		{
			name:   "no table",
			config: `{"book":{"title":"Guide"},"preprocessor":{"links":{}}}`,
			want:   DefaultConfig(),
		},
		{
			name: "all keys",
			config: `{"preprocessor":{"compile-output":{
				"command":"mdbook-compile-output",
				"base-dir":"examples",
				"step-command":"go",
				"step-args":["test","./..."],
				"timeout":"2m",
				"on-spawn-error":"inline",
				"log-level":"info"}}}`,
			want: &Config{
				BaseDir:      "examples",
				StepCommand:  "go",
				StepArgs:     []string{"test", "./..."},
				Timeout:      2 * time.Minute,
				OnSpawnError: PolicyInline,
				LogLevel:     "info",
			},
		},
		{
			name:   "args as string and timeout as seconds",
			config: `{"preprocessor":{"compile-output":{"step-args":"run --quiet","timeout":1.5}}}`,
			want: &Config{
				BaseDir:      "rust_stages",
				StepCommand:  "cargo",
				StepArgs:     []string{"run", "--quiet"},
				Timeout:      1500 * time.Millisecond,
				OnSpawnError: PolicyAbort,
				LogLevel:     "warn",
			},
		},
		{
			name:    "base-dir wrong type",
			config:  `{"preprocessor":{"compile-output":{"base-dir":3}}}`,
			wantErr: ErrInvalidValue,
		},
		{
			name:    "step-args with non-string",
			config:  `{"preprocessor":{"compile-output":{"step-args":["test",1]}}}`,
			wantErr: ErrInvalidValue,
		},
		{
			name:    "timeout wrong type",
			config:  `{"preprocessor":{"compile-output":{"timeout":true}}}`,
			wantErr: ErrInvalidValue,
		},
		{
			name:    "timeout bad string",
			config:  `{"preprocessor":{"compile-output":{"timeout":"forever"}}}`,
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			err := cfg.ApplyBookTable([]byte(tt.config))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ApplyBookTable() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyBookTable() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParseTimeout - Duration parsing
// ---------------------------------------------------------------------------

func TestParseTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "", want: 0},
		{input: "0", want: 0},
		{input: " 30s ", want: 30 * time.Second},
		{input: "1h30m", want: 90 * time.Minute},
		{input: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTimeout(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidValue) {
					t.Errorf("ParseTimeout(%q) error = %v, want ErrInvalidValue", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeout(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeout(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
