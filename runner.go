package compileoutput

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
	"unicode/utf8"

	textunicode "golang.org/x/text/encoding/unicode"

	"github.com/alnah/mdbook-compile-output/internal/process"
)

// Command describes one subprocess invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// Result holds the outcome of a command that started and exited.
// Stdout and Stderr are decoded lossily: invalid UTF-8 becomes U+FFFD.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
// A non-zero exit status is reported through Result, not as an error.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner implements CommandRunner using os/exec.
// When ctx is done the command's whole process group is killed.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...) // #nosec G204 -- step command is user configuration
	cmd.Dir = c.Dir
	process.Configure(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, contextError(ctxErr)
		}
		return Result{}, fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	waitErr := cmd.Wait()
	result := Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   decodeLossy(stdout.Bytes()),
		Stderr:   decodeLossy(stderr.Bytes()),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, contextError(ctxErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return result, nil
		}
		return result, fmt.Errorf("%w: %w", ErrCaptureOutput, waitErr)
	}

	return result, nil
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrStepTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrStepInterrupted, err)
}

// decodeLossy converts command output to text, replacing invalid UTF-8.
func decodeLossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	decoded, err := textunicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte(string(utf8.RuneError))))
	}
	return string(decoded)
}
