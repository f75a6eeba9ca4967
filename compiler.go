package compileoutput

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Defaults for CommandCompiler: "cargo test --release" inside rust_stages/<step>.
const (
	DefaultBaseDir = "rust_stages"
	DefaultCommand = "cargo"
)

// DefaultArgs returns the default arguments passed to DefaultCommand.
func DefaultArgs() []string {
	return []string{"test", "--release"}
}

// Compiler turns a step name into the text that replaces its marker.
type Compiler interface {
	Compile(ctx context.Context, step string) (string, error)
}

// CompilerFunc adapts an ordinary function to the Compiler interface.
type CompilerFunc func(ctx context.Context, step string) (string, error)

// Compile calls f(ctx, step).
func (f CompilerFunc) Compile(ctx context.Context, step string) (string, error) {
	return f(ctx, step)
}

// SpawnPolicy decides what happens when a step command cannot be started.
type SpawnPolicy string

const (
	// SpawnAbort fails the whole book.
	SpawnAbort SpawnPolicy = "abort"
	// SpawnInline renders the start error in place of the step output.
	SpawnInline SpawnPolicy = "inline"
)

// CommandCompiler runs an external command in the step's directory and
// selects standard output on success, standard error otherwise.
type CommandCompiler struct {
	BaseDir      string
	Command      string
	Args         []string
	Timeout      time.Duration // zero means no limit
	OnSpawnError SpawnPolicy
	Runner       CommandRunner
	Logger       *zap.Logger
}

// NewCommandCompiler creates a CommandCompiler running "cargo test --release"
// under rust_stages.
func NewCommandCompiler() *CommandCompiler {
	return &CommandCompiler{
		BaseDir:      DefaultBaseDir,
		Command:      DefaultCommand,
		Args:         DefaultArgs(),
		OnSpawnError: SpawnAbort,
		Runner:       &ExecRunner{},
		Logger:       zap.NewNop(),
	}
}

// StepDir returns the working directory for a step.
// The name is used verbatim after trimming.
func (c *CommandCompiler) StepDir(step string) string {
	return filepath.Join(c.BaseDir, strings.TrimSpace(step))
}

// Compile runs the step command and returns the selected output stream.
// A non-zero exit is not an error; a command that cannot run is, unless
// OnSpawnError is SpawnInline.
func (c *CommandCompiler) Compile(ctx context.Context, step string) (string, error) {
	dir := c.StepDir(step)
	logger := c.logger().With(zap.String("step", step), zap.String("dir", dir))

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	logger.Debug("running step", zap.String("command", c.Command), zap.Strings("args", c.Args))

	result, err := c.runner().Run(ctx, Command{Name: c.Command, Args: c.Args, Dir: dir})
	if err != nil {
		stepErr := &StepError{Step: step, Dir: dir, Command: c.Command, Err: err}
		if c.OnSpawnError == SpawnInline && errors.Is(err, ErrSpawn) {
			logger.Warn("step command did not start, inlining error", zap.Error(err))
			return stepErr.Error(), nil
		}
		return "", stepErr
	}

	logger.Debug("step finished",
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration))

	return SelectOutput(result), nil
}

// SelectOutput returns Stdout for a successful run and Stderr otherwise.
func SelectOutput(r Result) string {
	if r.Success() {
		return r.Stdout
	}
	return r.Stderr
}

func (c *CommandCompiler) runner() CommandRunner {
	if c.Runner == nil {
		return &ExecRunner{}
	}
	return c.Runner
}

func (c *CommandCompiler) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
