package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	compileoutput "github.com/alnah/mdbook-compile-output"
	"github.com/alnah/mdbook-compile-output/internal/book"
	"github.com/alnah/mdbook-compile-output/internal/config"
	"github.com/alnah/mdbook-compile-output/internal/hints"
	"github.com/alnah/mdbook-compile-output/internal/logging"
)

// Exit codes. mdBook treats any non-zero status as a failed build.
const (
	ExitSuccess = 0
	ExitError   = 1
)

// ErrUnknownArgument is reported for any argument other than "supports",
// -c/--config, and -v/--verbose.
var ErrUnknownArgument = errors.New("unknown argument")

// supportsCommand is how mdBook asks whether a renderer is supported.
const supportsCommand = "supports"

// runMain dispatches on the command line and returns the exit code.
// "supports" is answered before flag parsing so that its renderer argument,
// whatever it looks like, is never interpreted.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) > 1 && args[1] == supportsCommand {
		// Every renderer is supported; the renderer name is not inspected.
		return ExitSuccess
	}

	flags, positional, err := parseFlags(args[1:])
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		printUsage(env.Stderr)
		return ExitError
	}

	if len(positional) > 0 {
		if positional[0] == supportsCommand {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "%v: %s\n", ErrUnknownArgument, positional[0])
		printUsage(env.Stderr)
		return ExitError
	}

	if err := runPreprocess(ctx, flags, env); err != nil {
		fmt.Fprintln(env.Stderr, formatError(err))
		return ExitError
	}
	return ExitSuccess
}

// runPreprocess reads the request from stdin and writes the rewritten book
// to stdout. Nothing is written to stdout unless every step succeeded.
func runPreprocess(ctx context.Context, flags *cliFlags, env *Environment) error {
	input, err := io.ReadAll(env.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	// The request is decoded here for its context; the book is rewritten
	// by the preprocessor from its own copy.
	req, err := book.ParseRequest(input)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(req.Context.Config, flags, env)
	if err != nil {
		return err
	}

	logger, err := logging.New(env.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf))

	if unknown := unknownEnvVars(env.Environ()); len(unknown) > 0 {
		logger.Warn("ignoring environment variables" + hints.ForUnknownEnvVars(unknown))
	}

	pre := compileoutput.NewPreprocessor(
		compileoutput.WithCompiler(newCompiler(cfg, logger)),
		compileoutput.WithLogger(logger),
	)
	logger.Debug("preprocessing book",
		zap.String("preprocessor", pre.Name()),
		zap.String("version", Version),
		zap.String("renderer", req.Context.Renderer),
		zap.String("mdbook_version", req.Context.MdbookVersion),
		zap.String("root", req.Context.Root),
		zap.String("base_dir", cfg.BaseDir))

	out, err := pre.RunBook(ctx, req.Book.Bytes())
	if err != nil {
		return err
	}

	if _, err := env.Stdout.Write(out); err != nil {
		return fmt.Errorf("writing book: %w", err)
	}
	return nil
}

// resolveConfig layers defaults < book.toml < YAML file < env < flags.
func resolveConfig(bookConfig []byte, flags *cliFlags, env *Environment) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if err := cfg.ApplyBookTable(bookConfig); err != nil {
		return nil, fmt.Errorf("loading book.toml settings: %w", err)
	}

	envCfg := loadEnvConfig(env.Getenv)
	configPath := flags.config
	if configPath == "" {
		configPath = envCfg.ConfigPath
	}
	if configPath != "" {
		if err := cfg.ApplyFile(configPath); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	if err := applyEnvConfig(envCfg, cfg); err != nil {
		return nil, err
	}

	if flags.verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newCompiler builds the step compiler described by cfg.
func newCompiler(cfg *config.Config, logger *zap.Logger) *compileoutput.CommandCompiler {
	c := compileoutput.NewCommandCompiler()
	c.BaseDir = cfg.BaseDir
	c.Command = cfg.StepCommand
	c.Args = cfg.StepArgs
	c.Timeout = cfg.Timeout
	c.OnSpawnError = compileoutput.SpawnPolicy(cfg.OnSpawnError)
	c.Logger = logger
	return c
}

// formatError appends an actionable hint to known failures.
func formatError(err error) string {
	msg := err.Error()

	var stepErr *compileoutput.StepError
	switch {
	case errors.As(err, &stepErr) && errors.Is(err, compileoutput.ErrSpawn):
		msg += hints.ForSpawn(stepErr.Err, stepErr.Command, stepErr.Dir)
	case errors.Is(err, compileoutput.ErrStepTimeout):
		msg += hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		msg += hints.ForConfigNotFound()
	case errors.Is(err, book.ErrInvalidRequest), errors.Is(err, book.ErrInvalidBook):
		msg += hints.ForInvalidRequest()
	}

	return msg
}
