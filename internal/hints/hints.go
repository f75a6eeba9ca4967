// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/alnah/mdbook-compile-output/internal/fileutil"
)

// ForSpawn returns hints for a step command that could not be started.
// The step directory is checked first: a missing directory also makes
// the start fail even when the command exists.
func ForSpawn(err error, command, dir string) string {
	if !fileutil.DirExists(dir) {
		return format("create " + dir + " or set base-dir in [preprocessor.compile-output]")
	}

	if errors.Is(err, exec.ErrNotFound) {
		if fileutil.IsFilePath(command) {
			return format("check that " + command + " exists and is executable")
		}
		return format("install " + command + " or set step-command in [preprocessor.compile-output]")
	}

	return ""
}

// ForTimeout returns a hint about raising the per-step timeout.
func ForTimeout() string {
	return format("raise timeout in [preprocessor.compile-output] or MDBOOK_COMPILE_OUTPUT_TIMEOUT")
}

// ForConfigNotFound returns a hint for a missing YAML config file.
func ForConfigNotFound() string {
	return format("use --config /path/to/file.yaml or unset MDBOOK_COMPILE_OUTPUT_CONFIG")
}

// ForInvalidRequest returns a hint for input that is not an mdBook request.
func ForInvalidRequest() string {
	return format("this command is run by mdbook; add [preprocessor.compile-output] to book.toml")
}

// ForUnknownEnvVars returns a hint listing unrecognized variables.
func ForUnknownEnvVars(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return format("unknown: " + strings.Join(names, ", ") + " (typo?)")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
