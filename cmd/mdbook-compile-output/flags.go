package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// cliFlags holds the command-line flags. Neither flag takes a positional
// slot, so "supports" and the unknown-argument rule are unaffected.
type cliFlags struct {
	config  string
	verbose bool
}

// parseFlags parses args (without the program name) and returns the
// positional arguments. A rejected flag is reported as ErrUnknownArgument
// naming the argument.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("mdbook-compile-output", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	f := &cliFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "YAML config file path")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every step to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, nil, argumentError(args, err)
	}

	return f, fs.Args(), nil
}

// argumentError wraps a pflag error so the message starts with
// "unknown argument: <arg>".
func argumentError(args []string, err error) error {
	arg := rejectedArg(args, err)
	if arg == "" {
		return fmt.Errorf("%w: %v", ErrUnknownArgument, err)
	}
	if errors.Is(err, flag.ErrHelp) {
		return fmt.Errorf("%w: %s", ErrUnknownArgument, arg)
	}
	return fmt.Errorf("%w: %s (%v)", ErrUnknownArgument, arg, err)
}

// rejectedArg finds the argument pflag complained about, or "".
// pflag names the flag in its message except for an undefined -h/--help,
// which it reports as ErrHelp.
func rejectedArg(args []string, err error) string {
	msg := err.Error()
	help := errors.Is(err, flag.ErrHelp)
	best, bestLen := "", 0
	for _, a := range args {
		if a == "--" {
			break
		}
		if len(a) < 2 || a[0] != '-' {
			continue
		}
		name, _, _ := strings.Cut(a, "=")
		if help {
			if name == "--help" || (!strings.HasPrefix(name, "--") && strings.ContainsRune(name, 'h')) {
				return a
			}
			continue
		}
		if strings.Contains(msg, name) && len(name) > bestLen {
			best, bestLen = a, len(name)
		}
	}
	return best
}
