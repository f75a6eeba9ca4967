package main

// Notes:
// - loadEnvConfig: we test that every variable lands in its field.
// - unknownEnvVars: we test typo detection and that known vars are accepted.
// - applyEnvConfig: we test that set values override and empty ones don't.
// Variables come from an injected getenv, so these tests run in parallel.

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/mdbook-compile-output/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"MDBOOK_COMPILE_OUTPUT_CONFIG":         "/etc/compile-output.yaml",
		"MDBOOK_COMPILE_OUTPUT_BASE_DIR":       "stages",
		"MDBOOK_COMPILE_OUTPUT_STEP_COMMAND":   "make",
		"MDBOOK_COMPILE_OUTPUT_STEP_ARGS":      "test -j4",
		"MDBOOK_COMPILE_OUTPUT_TIMEOUT":        "3m",
		"MDBOOK_COMPILE_OUTPUT_ON_SPAWN_ERROR": "inline",
		"MDBOOK_COMPILE_OUTPUT_LOG_LEVEL":      "info",
	}

	got := loadEnvConfig(func(k string) string { return vars[k] })

	want := &envConfig{
		ConfigPath:   "/etc/compile-output.yaml",
		BaseDir:      "stages",
		StepCommand:  "make",
		StepArgs:     "test -j4",
		Timeout:      "3m",
		OnSpawnError: "inline",
		LogLevel:     "info",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loadEnvConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvConfig_Unset(t *testing.T) {
	t.Parallel()

	got := loadEnvConfig(func(string) string { return "" })

	if diff := cmp.Diff(&envConfig{}, got); diff != "" {
		t.Errorf("loadEnvConfig() mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestUnknownEnvVars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		environ []string
		want    []string
	}{
		{
			name:    "none",
			environ: []string{"PATH=/usr/bin", "HOME=/root"},
			want:    nil,
		},
		{
			name:    "known only",
			environ: []string{"MDBOOK_COMPILE_OUTPUT_BASE_DIR=x", "MDBOOK_COMPILE_OUTPUT_TIMEOUT=1m"},
			want:    nil,
		},
		{
			name: "typos sorted",
			environ: []string{
				"MDBOOK_COMPILE_OUTPUT_TIMEOUTS=1m",
				"MDBOOK_COMPILE_OUTPUT_BASEDIR=x",
				"MDBOOK_COMPILE_OUTPUT_LOG_LEVEL=debug",
			},
			want: []string{"MDBOOK_COMPILE_OUTPUT_BASEDIR", "MDBOOK_COMPILE_OUTPUT_TIMEOUTS"},
		},
		{
			name:    "other preprocessors ignored",
			environ: []string{"MDBOOK_OUTPUT__HTML__THEME=dark"},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := unknownEnvVars(tt.environ)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("unknownEnvVars() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Overlay onto config
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("set values override", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		env := &envConfig{
			BaseDir:      "stages",
			StepCommand:  "go",
			StepArgs:     "  test   ./... ",
			Timeout:      "45s",
			OnSpawnError: "inline",
			LogLevel:     "error",
		}

		if err := applyEnvConfig(env, cfg); err != nil {
			t.Fatalf("applyEnvConfig() unexpected error: %v", err)
		}

		want := &config.Config{
			BaseDir:      "stages",
			StepCommand:  "go",
			StepArgs:     []string{"test", "./..."},
			Timeout:      45 * time.Second,
			OnSpawnError: "inline",
			LogLevel:     "error",
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty values keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Timeout = time.Minute

		if err := applyEnvConfig(&envConfig{}, cfg); err != nil {
			t.Fatalf("applyEnvConfig() unexpected error: %v", err)
		}

		want := config.DefaultConfig()
		want.Timeout = time.Minute
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Parallel()

		err := applyEnvConfig(&envConfig{Timeout: "later"}, config.DefaultConfig())
		if !errors.Is(err, config.ErrInvalidValue) {
			t.Errorf("applyEnvConfig() error = %v, want ErrInvalidValue", err)
		}
	})
}
